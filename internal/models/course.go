package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

const (
	DefaultMaxStudents = 50
	MinCredits         = 1
	MaxCredits         = 10
	MinMaxStudents     = 1
	MaxMaxStudents     = 500
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null;size:20"`
	Description *string `json:"description" gorm:"type:text"`
	Credits     int     `json:"credits" gorm:"not null;default:1"`
	TeacherID   *uint   `json:"teacher_id" gorm:"index"`
	Classroom   *string `json:"classroom" gorm:"size:50"`
	Schedule    *string `json:"schedule" gorm:"size:200"`
	MaxStudents int     `json:"max_students" gorm:"not null;default:50"`
	IsActive    bool    `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

func (Course) TableName() string {
	return "courses"
}

// TeacherName returns the assigned teacher's display name, or "Unassigned".
// Teacher.User must be preloaded.
func (c *Course) TeacherName() string {
	if c.Teacher != nil && c.Teacher.User != nil {
		return c.Teacher.User.FullName
	}
	return "Unassigned"
}

type Enrollment struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	StudentID      uint             `json:"student_id" gorm:"not null;index"`
	CourseID       uint             `json:"course_id" gorm:"not null;index"`
	EnrollmentDate time.Time        `json:"enrollment_date" gorm:"not null"`
	Status         EnrollmentStatus `json:"status" gorm:"not null;size:20;default:active;index"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
