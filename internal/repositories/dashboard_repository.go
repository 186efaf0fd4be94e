package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
	"gorm.io/gorm"
)

// DashboardRepository interface for dashboard analytics operations
type DashboardRepository interface {
	// System stats
	CountUsers(ctx context.Context, tx *gorm.DB, active *bool) (int64, error)
	CountStudents(ctx context.Context, tx *gorm.DB) (int64, error)
	CountTeachers(ctx context.Context, tx *gorm.DB) (int64, error)
	CountActiveCourses(ctx context.Context, tx *gorm.DB) (int64, error)
	CountDepartments(ctx context.Context, tx *gorm.DB) (int64, error)

	// Growth
	GetSignupsSince(ctx context.Context, tx *gorm.DB, since time.Time, roles []models.UserRole) ([]SignupData, error)
}

// SignupData is one user creation event used to build growth series.
type SignupData struct {
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}
