package repositories

import (
	"context"

	"github.com/SAP-F-2025/student-service/internal/models"
	"gorm.io/gorm"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Role     *models.UserRole
	IsActive *bool
	Limit    int // Page size
	Offset   int // Offset for pagination
}

// UserRepository is the credential store. Reads preload the Student and
// Teacher profiles.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error

	// List and search operations
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, excludeID uint, limit int) ([]*models.User, error)

	// Validation and checks
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

// ProfileRepository manages the role-specific student and teacher rows.
type ProfileRepository interface {
	CreateStudent(ctx context.Context, tx *gorm.DB, student *models.Student) error
	CreateTeacher(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error

	GetStudentByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Student, error)
	GetStudentByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetTeacherByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Teacher, error)
	GetTeacherByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error)

	StudentNumberExists(ctx context.Context, tx *gorm.DB, studentID string) (bool, error)
	TeacherNumberExists(ctx context.Context, tx *gorm.DB, teacherID string) (bool, error)
}
