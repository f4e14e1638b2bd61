package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ken2664/llm-question-app/internal/database"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/sirupsen/logrus"
)

// CatalogCache is the slice of the Redis cache the catalog uses.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	InvalidateCatalog(ctx context.Context) error
}

type CatalogService struct {
	repoManager *repository.RepositoryManager
	cache       CatalogCache
	ttl         time.Duration
	logger      *logrus.Logger
}

// NewCatalogService builds the catalog service; cache may be nil.
func NewCatalogService(
	repoManager *repository.RepositoryManager,
	cache CatalogCache,
	ttl time.Duration,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		repoManager: repoManager,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
	}
}

func (s *CatalogService) ListFaculties(ctx context.Context) ([]models.Faculty, error) {
	var faculties []models.Faculty
	if s.fromCache(ctx, database.FacultiesKey, &faculties) {
		return faculties, nil
	}

	faculties, err := s.repoManager.Faculty.List(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, database.FacultiesKey, faculties)
	return faculties, nil
}

func (s *CatalogService) CreateFaculty(ctx context.Context, name string) (*models.Faculty, error) {
	faculty, created, err := s.EnsureFaculty(ctx, name)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: faculty %q already exists", ErrConflict, faculty.Name)
	}
	return faculty, nil
}

// EnsureFaculty returns the faculty with the given name, creating it if needed.
func (s *CatalogService) EnsureFaculty(ctx context.Context, name string) (*models.Faculty, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, invalid("faculty name is required")
	}

	existing, err := s.repoManager.Faculty.GetByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	faculty := &models.Faculty{Name: name}
	if err := s.repoManager.Faculty.Create(ctx, faculty); err != nil {
		return nil, false, err
	}

	s.logger.WithFields(logrus.Fields{"faculty_id": faculty.ID, "name": name}).Info("Faculty created")
	s.invalidate(ctx)
	return faculty, true, nil
}

func (s *CatalogService) ListCourses(ctx context.Context, facultyID *uint) ([]models.Course, error) {
	key := database.CoursesCacheKey(facultyID)

	var courses []models.Course
	if s.fromCache(ctx, key, &courses) {
		return courses, nil
	}

	courses, err := s.repoManager.Course.List(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, key, courses)
	return courses, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, name string, facultyID uint) (*models.Course, error) {
	course, created, err := s.EnsureCourse(ctx, name, facultyID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: course %q already exists", ErrConflict, course.Name)
	}
	return course, nil
}

// EnsureCourse returns the named course of a faculty, creating it if needed.
func (s *CatalogService) EnsureCourse(ctx context.Context, name string, facultyID uint) (*models.Course, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, invalid("course name is required")
	}

	if _, err := s.repoManager.Faculty.GetByID(ctx, facultyID); err != nil {
		return nil, false, notFound("faculty", err)
	}

	existing, err := s.repoManager.Course.GetByName(ctx, facultyID, name)
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, err
	}

	course := &models.Course{Name: name, FacultyID: facultyID}
	if err := s.repoManager.Course.Create(ctx, course); err != nil {
		return nil, false, err
	}

	s.logger.WithFields(logrus.Fields{
		"course_id":  course.ID,
		"faculty_id": facultyID,
		"name":       name,
	}).Info("Course created")
	s.invalidate(ctx)
	return course, true, nil
}

func (s *CatalogService) ListLectures(ctx context.Context, courseID uint) ([]models.Lecture, error) {
	if _, err := s.repoManager.Course.GetByID(ctx, courseID); err != nil {
		return nil, notFound("course", err)
	}
	return s.repoManager.Lecture.ListByCourse(ctx, courseID)
}

// GetOrCreateLecture resolves the lecture of a course on a date.
func (s *CatalogService) GetOrCreateLecture(ctx context.Context, courseID uint, date string) (*models.Lecture, bool, error) {
	date = strings.TrimSpace(date)
	if err := models.ValidateDate(date); err != nil {
		return nil, false, invalid("%v", err)
	}
	if _, err := s.repoManager.Course.GetByID(ctx, courseID); err != nil {
		return nil, false, notFound("course", err)
	}

	lecture, created, err := s.repoManager.Lecture.GetOrCreate(ctx, courseID, date)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.WithFields(logrus.Fields{
			"lecture_id": lecture.ID,
			"course_id":  courseID,
			"date":       date,
		}).Info("Lecture created")
	}
	return lecture, created, nil
}

func (s *CatalogService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, database.ErrCacheMiss) {
		s.logger.WithError(err).WithField("key", key).Warn("Catalog cache read failed")
	}
	return false
}

func (s *CatalogService) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Catalog cache write failed")
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	invalidateCatalog(ctx, s.cache, s.logger)
}

func invalidateCatalog(ctx context.Context, cache CatalogCache, logger *logrus.Logger) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateCatalog(ctx); err != nil {
		logger.WithError(err).Warn("Catalog cache invalidation failed")
	}
}
