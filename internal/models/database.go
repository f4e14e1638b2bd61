package models

// GORM models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"

	// DateLayout is the wire and storage format of lecture dates.
	DateLayout = "2006-01-02"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Faculty groups courses
type Faculty struct {
	BaseModel
	Name string `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
}

// Course belongs to a faculty and is optionally owned by a teacher
type Course struct {
	BaseModel
	Name      string  `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_courses_faculty_name"`
	FacultyID uint    `json:"faculty_id" gorm:"not null;index;uniqueIndex:idx_courses_faculty_name"`
	TeacherID *string `json:"teacher_id" gorm:"type:varchar(64);index"`

	// Associations
	Faculty *Faculty `json:"faculty,omitempty" gorm:"foreignKey:FacultyID"`
}

// Lecture is a dated session of a course; (course_id, date) is unique
type Lecture struct {
	BaseModel
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_lectures_course_date"`
	Date     string `json:"date" gorm:"column:lecture_date;type:varchar(10);not null;uniqueIndex:idx_lectures_course_date"`
	Number   int    `json:"number" gorm:"not null;default:1"`

	// Associations
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Question is a student's question with the answer they accepted
type Question struct {
	BaseModel
	UserID       string `json:"user_id" gorm:"type:varchar(64);not null;index"`
	LectureID    uint   `json:"lecture_id" gorm:"not null;index"`
	QuestionText string `json:"question_text" gorm:"type:text;not null"`
	AnswerText   string `json:"answer_text" gorm:"type:text"`
	Solved       bool   `json:"solved" gorm:"not null;default:false;index"`

	// Associations
	Lecture *Lecture `json:"lecture,omitempty" gorm:"foreignKey:LectureID"`
}

// Comment is a student reply on a question
type Comment struct {
	BaseModel
	QuestionID  uint   `json:"question_id" gorm:"not null;index"`
	UserID      string `json:"user_id" gorm:"type:varchar(64);not null"`
	CommentText string `json:"comment_text" gorm:"type:text;not null"`
	Read        bool   `json:"read" gorm:"not null;default:false"`
}

// TeachComment is an instructor reply on a question
type TeachComment struct {
	BaseModel
	QuestionID  uint   `json:"question_id" gorm:"not null;index"`
	UserID      string `json:"user_id" gorm:"type:varchar(64);not null"`
	CommentText string `json:"comment_text" gorm:"type:text;not null"`
	Read        bool   `json:"read" gorm:"not null;default:false"`
}

// User is keyed by the subject of the auth token
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	FacultyID *uint     `json:"faculty_id"`
	Role      string    `json:"role" gorm:"type:varchar(16);not null;default:'student';check:role IN ('student','teacher')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null;index"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"autoCreateTime"`
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Faculty{},
		&Course{},
		&Lecture{},
		&User{},
		&Question{},
		&Comment{},
		&TeachComment{},
		&SystemHealth{},
	}
}

// TableName methods for custom table names
func (Faculty) TableName() string      { return "faculties" }
func (Course) TableName() string       { return "courses" }
func (Lecture) TableName() string      { return "lectures" }
func (Question) TableName() string     { return "questions" }
func (Comment) TableName() string      { return "comments" }
func (TeachComment) TableName() string { return "teach_comments" }
func (User) TableName() string         { return "users" }
func (SystemHealth) TableName() string { return "system_health" }

// Model validation methods
func (f *Faculty) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("faculty name is required")
	}
	return nil
}

func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("course name is required")
	}
	if c.FacultyID == 0 {
		return fmt.Errorf("faculty ID is required")
	}
	return nil
}

func (l *Lecture) Validate() error {
	if l.CourseID == 0 {
		return fmt.Errorf("course ID is required")
	}
	return ValidateDate(l.Date)
}

func (q *Question) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if q.LectureID == 0 {
		return fmt.Errorf("lecture ID is required")
	}
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("question text is required")
	}
	return nil
}

func (c *Comment) Validate() error {
	return validateComment(c.QuestionID, c.UserID, c.CommentText)
}

func (c *TeachComment) Validate() error {
	return validateComment(c.QuestionID, c.UserID, c.CommentText)
}

func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	if u.Role != RoleStudent && u.Role != RoleTeacher {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}

// ValidateDate checks the YYYY-MM-DD lecture date format.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid lecture date %q: expected YYYY-MM-DD", date)
	}
	return nil
}

func validateComment(questionID uint, userID, text string) error {
	if questionID == 0 {
		return fmt.Errorf("question ID is required")
	}
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("comment text is required")
	}
	return nil
}

// GORM hooks
func (f *Faculty) BeforeCreate(tx *gorm.DB) error      { return f.Validate() }
func (c *Course) BeforeCreate(tx *gorm.DB) error       { return c.Validate() }
func (l *Lecture) BeforeCreate(tx *gorm.DB) error      { return l.Validate() }
func (q *Question) BeforeCreate(tx *gorm.DB) error     { return q.Validate() }
func (c *Comment) BeforeCreate(tx *gorm.DB) error      { return c.Validate() }
func (c *TeachComment) BeforeCreate(tx *gorm.DB) error { return c.Validate() }

func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return u.Validate()
}
