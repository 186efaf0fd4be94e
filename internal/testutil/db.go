// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/pkg"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory sqlite database with the full schema
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, pkg.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with password "pw" and the given role
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@school.edu",
		PasswordHash: hash,
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Deactivate flips a stored user to inactive. The column defaults to true,
// so it cannot be set on insert.
func Deactivate(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	user.IsActive = false
}

// CreateStudent inserts a student user with its profile
func CreateStudent(t *testing.T, db *gorm.DB, username, studentID string) (*models.User, *models.Student) {
	t.Helper()

	user := CreateUser(t, db, username, models.RoleStudent)
	className := "CS-1"
	year := 2024
	student := &models.Student{UserID: user.ID, StudentID: studentID, ClassName: &className, EnrollmentYear: &year}
	require.NoError(t, db.Omit("User").Create(student).Error)
	return user, student
}

// CreateTeacher inserts a teacher user with its profile
func CreateTeacher(t *testing.T, db *gorm.DB, username, teacherID string) (*models.User, *models.Teacher) {
	t.Helper()

	user := CreateUser(t, db, username, models.RoleTeacher)
	dept := "Computer Science"
	title := "Lecturer"
	teacher := &models.Teacher{UserID: user.ID, TeacherID: teacherID, Department: &dept, Title: &title}
	require.NoError(t, db.Omit("User").Create(teacher).Error)
	return user, teacher
}

// CreateCourse inserts an active course, optionally owned by teacherID
func CreateCourse(t *testing.T, db *gorm.DB, name, code string, teacherID *uint, schedule string) *models.Course {
	t.Helper()

	room := "A101"
	course := &models.Course{
		Name:        name,
		Code:        code,
		Credits:     3,
		TeacherID:   teacherID,
		Classroom:   &room,
		MaxStudents: models.DefaultMaxStudents,
		IsActive:    true,
	}
	if schedule != "" {
		course.Schedule = &schedule
	}
	require.NoError(t, db.Omit("Teacher").Create(course).Error)
	return course
}

// Enroll adds an active enrollment
func Enroll(t *testing.T, db *gorm.DB, studentID, courseID uint) *models.Enrollment {
	t.Helper()

	enrollment := &models.Enrollment{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: time.Now().UTC(),
		Status:         models.EnrollmentActive,
	}
	require.NoError(t, db.Omit("Student", "Course").Create(enrollment).Error)
	return enrollment
}
