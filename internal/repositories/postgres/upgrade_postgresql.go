package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type upgradePostgreSQL struct {
	db *gorm.DB
}

func NewUpgradePostgreSQL(db *gorm.DB) repositories.UpgradeRepository {
	return &upgradePostgreSQL{db: db}
}

func (r *upgradePostgreSQL) Create(ctx context.Context, tx *gorm.DB, request *models.UpgradeRequest) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("User").Create(request).Error; err != nil {
		return handleDBError(err, "create upgrade request")
	}
	return nil
}

func (r *upgradePostgreSQL) Update(ctx context.Context, tx *gorm.DB, request *models.UpgradeRequest) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("User").Save(request).Error; err != nil {
		return handleDBError(err, "update upgrade request")
	}
	return nil
}

func (r *upgradePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UpgradeRequest, error) {
	db := pickDB(r.db, tx)
	var request models.UpgradeRequest
	if err := db.WithContext(ctx).Preload("User").First(&request, id).Error; err != nil {
		return nil, handleDBError(err, "get upgrade request")
	}
	return &request, nil
}

func (r *upgradePostgreSQL) ListPending(ctx context.Context, tx *gorm.DB) ([]*models.UpgradeRequest, error) {
	db := pickDB(r.db, tx)
	var requests []*models.UpgradeRequest
	if err := db.WithContext(ctx).
		Preload("User").
		Where("status = ?", models.UpgradePending).
		Order("created_at ASC, id ASC").
		Find(&requests).Error; err != nil {
		return nil, handleDBError(err, "list pending upgrade requests")
	}
	return requests, nil
}

func (r *upgradePostgreSQL) LatestByUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.UpgradeRequest, error) {
	db := pickDB(r.db, tx)
	var request models.UpgradeRequest
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&request).Error; err != nil {
		return nil, handleDBError(err, "get latest upgrade request")
	}
	return &request, nil
}
