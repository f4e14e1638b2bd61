package services

import (
	"context"
	"errors"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/sirupsen/logrus"
)

type TeacherService struct {
	repoManager *repository.RepositoryManager
	cache       CatalogCache
	logger      *logrus.Logger
}

// NewTeacherService builds the triage service; cache may be nil. Claims
// change course listings, so the catalog cache is dropped after each one.
func NewTeacherService(repoManager *repository.RepositoryManager, cache CatalogCache, logger *logrus.Logger) *TeacherService {
	return &TeacherService{
		repoManager: repoManager,
		cache:       cache,
		logger:      logger,
	}
}

// Unresolved groups the open questions of every course the teacher owns.
// Courses without open questions are included with an empty list.
func (s *TeacherService) Unresolved(ctx context.Context, teacherID string) ([]models.CourseQuestions, error) {
	courses, err := s.repoManager.Course.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	questions, err := s.repoManager.Question.ListUnsolvedByCourses(ctx, ids)
	if err != nil {
		return nil, err
	}

	byCourse := make(map[uint][]models.Question, len(courses))
	for _, q := range questions {
		if q.Lecture == nil {
			continue
		}
		byCourse[q.Lecture.CourseID] = append(byCourse[q.Lecture.CourseID], q)
	}

	result := make([]models.CourseQuestions, len(courses))
	for i, c := range courses {
		list := byCourse[c.ID]
		if list == nil {
			list = []models.Question{}
		}
		result[i] = models.CourseQuestions{Course: c, Questions: list}
	}

	s.logger.WithFields(logrus.Fields{
		"teacher_id": teacherID,
		"courses":    len(courses),
		"questions":  len(questions),
	}).Debug("Teacher triage list built")

	return result, nil
}

// ClaimCourse makes the teacher the owner of a course that has none.
func (s *TeacherService) ClaimCourse(ctx context.Context, teacherID string, courseID uint) (*models.Course, error) {
	if err := s.repoManager.Course.SetTeacher(ctx, courseID, teacherID); err != nil {
		if errors.Is(err, repository.ErrCourseClaimed) {
			return nil, ErrConflict
		}
		return nil, notFound("course", err)
	}
	invalidateCatalog(ctx, s.cache, s.logger)

	s.logger.WithFields(logrus.Fields{
		"teacher_id": teacherID,
		"course_id":  courseID,
	}).Info("Course claimed")

	course, err := s.repoManager.Course.GetByID(ctx, courseID)
	if err != nil {
		return nil, notFound("course", err)
	}
	return course, nil
}
