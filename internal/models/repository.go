package models

import "context"

// QuestionFilter narrows a question search; zero values are ignored.
type QuestionFilter struct {
	FacultyID    *uint
	CourseID     *uint
	LectureDate  string
	Keyword      string
	UserID       string
	UnsolvedOnly bool
	Limit        int
}

// CommentCounts summarises the replies on one question.
type CommentCounts struct {
	Total  int64
	Unread int64
}

// Database interfaces for repository pattern
type FacultyRepository interface {
	Create(ctx context.Context, faculty *Faculty) error
	GetByID(ctx context.Context, id uint) (*Faculty, error)
	GetByName(ctx context.Context, name string) (*Faculty, error)
	List(ctx context.Context) ([]Faculty, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id uint) (*Course, error)
	GetByName(ctx context.Context, facultyID uint, name string) (*Course, error)
	List(ctx context.Context, facultyID *uint) ([]Course, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]Course, error)
	SetTeacher(ctx context.Context, id uint, teacherID string) error
}

type LectureRepository interface {
	// GetOrCreate returns the lecture for (courseID, date) and whether this
	// call inserted it.
	GetOrCreate(ctx context.Context, courseID uint, date string) (*Lecture, bool, error)
	ListByCourse(ctx context.Context, courseID uint) ([]Lecture, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id uint) (*Question, error)
	Search(ctx context.Context, filter QuestionFilter) ([]Question, error)
	UpdateSolved(ctx context.Context, id uint, solved bool) error
	ListUnsolvedByCourses(ctx context.Context, courseIDs []uint) ([]Question, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id uint) (*Comment, error)
	ListByQuestion(ctx context.Context, questionID uint) ([]Comment, error)
	MarkRead(ctx context.Context, id uint) error
	CountByQuestions(ctx context.Context, questionIDs []uint) (map[uint]CommentCounts, error)
}

type TeachCommentRepository interface {
	Create(ctx context.Context, comment *TeachComment) error
	GetByID(ctx context.Context, id uint) (*TeachComment, error)
	ListByQuestion(ctx context.Context, questionID uint) ([]TeachComment, error)
	MarkRead(ctx context.Context, id uint) error
	CountByQuestions(ctx context.Context, questionIDs []uint) (map[uint]CommentCounts, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	Upsert(ctx context.Context, user *User) error
}

type SystemHealthRepository interface {
	UpdateServiceHealth(ctx context.Context, serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(ctx context.Context, serviceName string) (*SystemHealth, error)
	GetAllServicesHealth(ctx context.Context) ([]SystemHealth, error)
	GetUnhealthyServices(ctx context.Context) ([]SystemHealth, error)
}
