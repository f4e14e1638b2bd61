package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Ken2664/llm-question-app/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSearchLimit = 100

// ErrNotFound is returned when no row matched.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrCourseClaimed is returned when another teacher already owns the course.
var ErrCourseClaimed = errors.New("course already has a teacher")

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes % and _ in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// FacultyRepositoryImpl implements FacultyRepository
type FacultyRepositoryImpl struct {
	db *gorm.DB
}

func NewFacultyRepository(db *gorm.DB) models.FacultyRepository {
	return &FacultyRepositoryImpl{db: db}
}

func (r *FacultyRepositoryImpl) Create(ctx context.Context, faculty *models.Faculty) error {
	return r.db.WithContext(ctx).Create(faculty).Error
}

func (r *FacultyRepositoryImpl) GetByID(ctx context.Context, id uint) (*models.Faculty, error) {
	var faculty models.Faculty
	err := r.db.WithContext(ctx).First(&faculty, id).Error
	if err != nil {
		return nil, err
	}
	return &faculty, nil
}

func (r *FacultyRepositoryImpl) GetByName(ctx context.Context, name string) (*models.Faculty, error) {
	var faculty models.Faculty
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&faculty).Error
	if err != nil {
		return nil, err
	}
	return &faculty, nil
}

func (r *FacultyRepositoryImpl) List(ctx context.Context) ([]models.Faculty, error) {
	var faculties []models.Faculty
	err := r.db.WithContext(ctx).Order("name").Find(&faculties).Error
	return faculties, err
}

// CourseRepositoryImpl implements CourseRepository
type CourseRepositoryImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) models.CourseRepository {
	return &CourseRepositoryImpl{db: db}
}

func (r *CourseRepositoryImpl) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *CourseRepositoryImpl) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Preload("Faculty").First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepositoryImpl) GetByName(ctx context.Context, facultyID uint, name string) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Where("faculty_id = ? AND name = ?", facultyID, name).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepositoryImpl) List(ctx context.Context, facultyID *uint) ([]models.Course, error) {
	var courses []models.Course
	query := r.db.WithContext(ctx).Order("name")
	if facultyID != nil {
		query = query.Where("faculty_id = ?", *facultyID)
	}
	err := query.Find(&courses).Error
	return courses, err
}

func (r *CourseRepositoryImpl) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("name").
		Find(&courses).Error
	return courses, err
}

// SetTeacher assigns the course to teacherID unless another teacher owns it.
// The ownership check and the write are one statement.
func (r *CourseRepositoryImpl) SetTeacher(ctx context.Context, id uint, teacherID string) error {
	result := r.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ? AND (teacher_id IS NULL OR teacher_id = ?)", id, teacherID).
		Update("teacher_id", teacherID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrCourseClaimed
}

// LectureRepositoryImpl implements LectureRepository
type LectureRepositoryImpl struct {
	db *gorm.DB
}

func NewLectureRepository(db *gorm.DB) models.LectureRepository {
	return &LectureRepositoryImpl{db: db}
}

// GetOrCreate inserts with ON CONFLICT DO NOTHING against the
// (course_id, lecture_date) index and then reads the row back, so concurrent
// callers converge on a single lecture.
func (r *LectureRepositoryImpl) GetOrCreate(ctx context.Context, courseID uint, date string) (*models.Lecture, bool, error) {
	db := r.db.WithContext(ctx)

	var existing models.Lecture
	err := db.Where("course_id = ? AND lecture_date = ?", courseID, date).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	var count int64
	if err := db.Model(&models.Lecture{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
		return nil, false, err
	}

	lecture := models.Lecture{CourseID: courseID, Date: date, Number: int(count) + 1}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lecture)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return &lecture, true, nil
	}

	var winner models.Lecture
	err = db.Where("course_id = ? AND lecture_date = ?", courseID, date).First(&winner).Error
	if err != nil {
		return nil, false, err
	}
	return &winner, false, nil
}

func (r *LectureRepositoryImpl) ListByCourse(ctx context.Context, courseID uint) ([]models.Lecture, error) {
	var lectures []models.Lecture
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("lecture_date DESC").
		Find(&lectures).Error
	return lectures, err
}

// QuestionRepositoryImpl implements QuestionRepository
type QuestionRepositoryImpl struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) models.QuestionRepository {
	return &QuestionRepositoryImpl{db: db}
}

func (r *QuestionRepositoryImpl) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *QuestionRepositoryImpl) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := r.db.WithContext(ctx).
		Preload("Lecture.Course.Faculty").
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepositoryImpl) Search(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN lectures ON lectures.id = questions.lecture_id").
		Joins("JOIN courses ON courses.id = lectures.course_id").
		Preload("Lecture.Course")

	if filter.FacultyID != nil {
		query = query.Where("courses.faculty_id = ?", *filter.FacultyID)
	}
	if filter.CourseID != nil {
		query = query.Where("lectures.course_id = ?", *filter.CourseID)
	}
	if filter.LectureDate != "" {
		query = query.Where("lectures.lecture_date = ?", filter.LectureDate)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query = query.Where(`LOWER(questions.question_text) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(keyword))+"%")
	}
	if filter.UserID != "" {
		query = query.Where("questions.user_id = ?", filter.UserID)
	}
	if filter.UnsolvedOnly {
		query = query.Where("questions.solved = ?", false)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var questions []models.Question
	err := query.Order("questions.created_at DESC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepositoryImpl) UpdateSolved(ctx context.Context, id uint, solved bool) error {
	result := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", id).
		Update("solved", solved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *QuestionRepositoryImpl) ListUnsolvedByCourses(ctx context.Context, courseIDs []uint) ([]models.Question, error) {
	var questions []models.Question
	if len(courseIDs) == 0 {
		return questions, nil
	}
	err := r.db.WithContext(ctx).
		Joins("JOIN lectures ON lectures.id = questions.lecture_id").
		Where("lectures.course_id IN ? AND questions.solved = ?", courseIDs, false).
		Preload("Lecture").
		Order("questions.created_at DESC").
		Find(&questions).Error
	return questions, err
}

// CommentRepositoryImpl implements CommentRepository
type CommentRepositoryImpl struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) models.CommentRepository {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepositoryImpl) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) ListByQuestion(ctx context.Context, questionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepositoryImpl) MarkRead(ctx context.Context, id uint) error {
	return markRead(ctx, r.db, &models.Comment{}, id)
}

func (r *CommentRepositoryImpl) CountByQuestions(ctx context.Context, questionIDs []uint) (map[uint]models.CommentCounts, error) {
	return countByQuestions(ctx, r.db, &models.Comment{}, questionIDs)
}

// TeachCommentRepositoryImpl implements TeachCommentRepository
type TeachCommentRepositoryImpl struct {
	db *gorm.DB
}

func NewTeachCommentRepository(db *gorm.DB) models.TeachCommentRepository {
	return &TeachCommentRepositoryImpl{db: db}
}

func (r *TeachCommentRepositoryImpl) Create(ctx context.Context, comment *models.TeachComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *TeachCommentRepositoryImpl) GetByID(ctx context.Context, id uint) (*models.TeachComment, error) {
	var comment models.TeachComment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *TeachCommentRepositoryImpl) ListByQuestion(ctx context.Context, questionID uint) ([]models.TeachComment, error) {
	var comments []models.TeachComment
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *TeachCommentRepositoryImpl) MarkRead(ctx context.Context, id uint) error {
	return markRead(ctx, r.db, &models.TeachComment{}, id)
}

func (r *TeachCommentRepositoryImpl) CountByQuestions(ctx context.Context, questionIDs []uint) (map[uint]models.CommentCounts, error) {
	return countByQuestions(ctx, r.db, &models.TeachComment{}, questionIDs)
}

func markRead(ctx context.Context, db *gorm.DB, model interface{}, id uint) error {
	result := db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func countByQuestions(ctx context.Context, db *gorm.DB, model interface{}, questionIDs []uint) (map[uint]models.CommentCounts, error) {
	counts := make(map[uint]models.CommentCounts, len(questionIDs))
	if len(questionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		QuestionID uint
		Total      int64
		Unread     int64
	}
	err := db.WithContext(ctx).Model(model).
		Select(`question_id, COUNT(*) AS total, SUM(CASE WHEN "read" = ? THEN 1 ELSE 0 END) AS unread`, false).
		Where("question_id IN ?", questionIDs).
		Group("question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.QuestionID] = models.CommentCounts{Total: row.Total, Unread: row.Unread}
	}
	return counts, nil
}

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) models.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert writes name and faculty; the role column is only set on insert.
func (r *UserRepositoryImpl) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "faculty_id", "updated_at"}),
	}).Create(user).Error
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(ctx context.Context, serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.WithContext(ctx).Create(&models.SystemHealth{
		ServiceName:    serviceName,
		Status:         status,
		ResponseTimeMs: responseTime,
		ErrorMessage:   errorMsg,
	}).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(ctx context.Context, serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.WithContext(ctx).Where("service_name = ?", serviceName).
		Order("checked_at DESC, id DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth(ctx context.Context) ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.latestIDs(ctx)).
		Order("service_name").
		Find(&health).Error
	return health, err
}

func (r *SystemHealthRepositoryImpl) GetUnhealthyServices(ctx context.Context) ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.WithContext(ctx).
		Where("id IN (?) AND status != ?", r.latestIDs(ctx), "healthy").
		Order("service_name").
		Find(&health).Error
	return health, err
}

// latestIDs selects the newest row per service.
func (r *SystemHealthRepositoryImpl) latestIDs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.SystemHealth{}).
		Select("MAX(id)").
		Group("service_name")
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Faculty      models.FacultyRepository
	Course       models.CourseRepository
	Lecture      models.LectureRepository
	Question     models.QuestionRepository
	Comment      models.CommentRepository
	TeachComment models.TeachCommentRepository
	User         models.UserRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Faculty:      NewFacultyRepository(db),
		Course:       NewCourseRepository(db),
		Lecture:      NewLectureRepository(db),
		Question:     NewQuestionRepository(db),
		Comment:      NewCommentRepository(db),
		TeachComment: NewTeachCommentRepository(db),
		User:         NewUserRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
