package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
	RoleGuest   UserRole = "guest"
)

// AllRoles lists every role a user can hold.
var AllRoles = []UserRole{RoleStudent, RoleTeacher, RoleAdmin, RoleGuest}

func (r UserRole) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	FullName     string   `json:"full_name" gorm:"not null;size:100"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:guest;index"`
	IsActive     bool     `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student *Student `json:"student,omitempty" gorm:"foreignKey:UserID"`
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

type Student struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	UserID         uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	StudentID      string  `json:"student_id" gorm:"uniqueIndex;not null;size:20"`
	ClassName      *string `json:"class_name" gorm:"size:50"`
	EnrollmentYear *int    `json:"enrollment_year"`
	Phone          *string `json:"phone" gorm:"size:20"`
	Address        *string `json:"address" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Student) TableName() string {
	return "students"
}

type Teacher struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	UserID        uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	TeacherID     string  `json:"teacher_id" gorm:"uniqueIndex;not null;size:20"`
	Department    *string `json:"department" gorm:"size:100;index"`
	Title         *string `json:"title" gorm:"size:50"`
	Phone         *string `json:"phone" gorm:"size:20"`
	OfficeAddress *string `json:"office_address" gorm:"size:200"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Teacher) TableName() string {
	return "teachers"
}
