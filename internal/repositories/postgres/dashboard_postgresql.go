package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"gorm.io/gorm"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

// ===== SYSTEM STATS =====

func (r *dashboardRepository) CountUsers(ctx context.Context, tx *gorm.DB, active *bool) (int64, error) {
	db := pickDB(r.db, tx)
	var count int64

	query := db.WithContext(ctx).Model(&models.User{})
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count users")
	}
	return count, nil
}

func (r *dashboardRepository) CountStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count students")
	}
	return count, nil
}

func (r *dashboardRepository) CountTeachers(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Teacher{}).Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count teachers")
	}
	return count, nil
}

func (r *dashboardRepository) CountActiveCourses(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count active courses")
	}
	return count, nil
}

// CountDepartments counts distinct non-empty teacher departments.
func (r *dashboardRepository) CountDepartments(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Teacher{}).
		Where("department IS NOT NULL AND department <> ''").
		Distinct("department").
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count departments")
	}
	return count, nil
}

// ===== GROWTH =====

// GetSignupsSince returns raw creation rows. Bucketing by month happens in
// the service so the query stays portable across drivers.
func (r *dashboardRepository) GetSignupsSince(ctx context.Context, tx *gorm.DB, since time.Time, roles []models.UserRole) ([]repositories.SignupData, error) {
	db := pickDB(r.db, tx)
	var rows []repositories.SignupData

	query := db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, created_at").
		Where("created_at >= ?", since)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	if err := query.Order("created_at ASC").Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "get signups")
	}
	return rows, nil
}
