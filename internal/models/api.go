package models

import "time"

// AskRequest is the body of POST /api/ask. Only question, model and
// courseName are consumed; the rest belongs to the client's save flow.
type AskRequest struct {
	Question    string `json:"question" validate:"required"`
	Model       string `json:"model" validate:"required"`
	CourseName  string `json:"courseName" validate:"required"`
	LectureDate string `json:"lectureDate,omitempty"`
	CourseID    *int64 `json:"courseId,omitempty"`
	FacultyID   *int64 `json:"facultyId,omitempty"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type AskErrorResponse struct {
	Error string `json:"error"`
}

type CreateFacultyRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateCourseRequest struct {
	Name      string `json:"name" binding:"required"`
	FacultyID uint   `json:"faculty_id" binding:"required"`
}

type CreateLectureRequest struct {
	CourseID uint   `json:"course_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
}

type CreateQuestionRequest struct {
	Question    string `json:"question" binding:"required"`
	Answer      string `json:"answer"`
	Solved      bool   `json:"solved"`
	CourseID    uint   `json:"course_id" binding:"required"`
	LectureDate string `json:"lecture_date" binding:"required"`
}

type UpdateSolvedRequest struct {
	Solved *bool `json:"solved" binding:"required"`
}

type CreateCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"required"`
	FacultyID *uint  `json:"faculty_id"`
}

// UnresolvedQuestion is a my-page entry for one of the caller's open questions.
type UnresolvedQuestion struct {
	Question
	HasComments    bool  `json:"has_comments"`
	UnreadComments int64 `json:"unread_comments"`
}

// CourseQuestions groups a teacher's open questions per course.
type CourseQuestions struct {
	Course    Course     `json:"course"`
	Questions []Question `json:"questions"`
}

// QuestionDetail is a question with both comment threads.
type QuestionDetail struct {
	Question      Question       `json:"question"`
	Comments      []Comment      `json:"comments"`
	TeachComments []TeachComment `json:"teach_comments"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// ServiceStatus is the outcome of one dependency check.
type ServiceStatus struct {
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	ResponseTimeMs int       `json:"response_time_ms"`
	Error          string    `json:"error,omitempty"`
	LastChecked    time.Time `json:"last_checked"`
}
