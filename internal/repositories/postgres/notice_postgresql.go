package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type noticePostgreSQL struct {
	db *gorm.DB
}

func NewNoticePostgreSQL(db *gorm.DB) repositories.NoticeRepository {
	return &noticePostgreSQL{db: db}
}

func (r *noticePostgreSQL) Create(ctx context.Context, tx *gorm.DB, notice *models.Notice) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Author").Create(notice).Error; err != nil {
		return handleDBError(err, "create notice")
	}
	return nil
}

func (r *noticePostgreSQL) ListActive(ctx context.Context, tx *gorm.DB, audiences []models.NoticeAudience, limit int) ([]*models.Notice, error) {
	db := pickDB(r.db, tx)
	var notices []*models.Notice

	query := db.WithContext(ctx).
		Preload("Author").
		Where("is_active = ?", true)
	if len(audiences) > 0 {
		query = query.Where("target_audience IN ?", audiences)
	}
	query = query.Order("created_at DESC, id DESC")

	if err := applyPagination(query, limit, 0).Find(&notices).Error; err != nil {
		return nil, handleDBError(err, "list active notices")
	}
	return notices, nil
}

// ===== SYSTEM LOGS =====

type systemLogPostgreSQL struct {
	db *gorm.DB
}

func NewSystemLogPostgreSQL(db *gorm.DB) repositories.SystemLogRepository {
	return &systemLogPostgreSQL{db: db}
}

func (r *systemLogPostgreSQL) Create(ctx context.Context, tx *gorm.DB, log *models.SystemLog) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("User").Create(log).Error; err != nil {
		return handleDBError(err, "create system log")
	}
	return nil
}

func (r *systemLogPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SystemLogFilters) ([]*models.SystemLog, int64, error) {
	db := pickDB(r.db, tx)
	var logs []*models.SystemLog
	var total int64

	query := db.WithContext(ctx).Model(&models.SystemLog{})
	if filters.Action != nil && *filters.Action != "" {
		query = query.Where(`LOWER(action) LIKE ? ESCAPE '\'`, containsPattern(*filters.Action))
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count system logs")
	}

	query = applyPagination(query.Order("created_at DESC, id DESC"), filters.Limit, filters.Offset)
	if err := query.Preload("User").Find(&logs).Error; err != nil {
		return nil, 0, handleDBError(err, "list system logs")
	}

	return logs, total, nil
}

func (r *systemLogPostgreSQL) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	db := pickDB(r.db, tx)
	result := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete old system logs")
	}
	return result.RowsAffected, nil
}
