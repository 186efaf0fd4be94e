package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type friendPostgreSQL struct {
	db *gorm.DB
}

func NewFriendPostgreSQL(db *gorm.DB) repositories.FriendRepository {
	return &friendPostgreSQL{db: db}
}

// ===== REQUESTS =====

func (r *friendPostgreSQL) CreateRequest(ctx context.Context, tx *gorm.DB, request *models.FriendRequest) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Sender", "Receiver").Create(request).Error; err != nil {
		return handleDBError(err, "create friend request")
	}
	return nil
}

func (r *friendPostgreSQL) UpdateRequest(ctx context.Context, tx *gorm.DB, request *models.FriendRequest) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Sender", "Receiver").Save(request).Error; err != nil {
		return handleDBError(err, "update friend request")
	}
	return nil
}

func (r *friendPostgreSQL) GetPendingForReceiver(ctx context.Context, tx *gorm.DB, id, receiverID uint) (*models.FriendRequest, error) {
	db := pickDB(r.db, tx)
	var request models.FriendRequest
	if err := db.WithContext(ctx).
		Where("id = ? AND receiver_id = ? AND status = ?", id, receiverID, models.FriendRequestPending).
		First(&request).Error; err != nil {
		return nil, handleDBError(err, "get pending friend request")
	}
	return &request, nil
}

func (r *friendPostgreSQL) HasPendingBetween(ctx context.Context, tx *gorm.DB, a, b uint) (bool, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("pending_key = ?", models.PairKey(a, b)).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check pending friend request")
	}
	return count > 0, nil
}

func (r *friendPostgreSQL) ListSent(ctx context.Context, tx *gorm.DB, senderID uint) ([]*models.FriendRequest, error) {
	db := pickDB(r.db, tx)
	var requests []*models.FriendRequest
	if err := db.WithContext(ctx).
		Preload("Receiver").
		Where("sender_id = ?", senderID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, handleDBError(err, "list sent friend requests")
	}
	return requests, nil
}

func (r *friendPostgreSQL) ListPendingReceived(ctx context.Context, tx *gorm.DB, receiverID uint) ([]*models.FriendRequest, error) {
	db := pickDB(r.db, tx)
	var requests []*models.FriendRequest
	if err := db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ? AND status = ?", receiverID, models.FriendRequestPending).
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, handleDBError(err, "list received friend requests")
	}
	return requests, nil
}

// ===== FRIENDSHIPS =====

func (r *friendPostgreSQL) CreateFriendship(ctx context.Context, tx *gorm.DB, friendship *models.Friendship) error {
	friendship.UserLowID, friendship.UserHighID = models.OrderedPair(friendship.UserLowID, friendship.UserHighID)

	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("UserLow", "UserHigh").Create(friendship).Error; err != nil {
		return handleDBError(err, "create friendship")
	}
	return nil
}

func (r *friendPostgreSQL) GetActiveFriendship(ctx context.Context, tx *gorm.DB, a, b uint) (*models.Friendship, error) {
	low, high := models.OrderedPair(a, b)

	db := pickDB(r.db, tx)
	var friendship models.Friendship
	if err := db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ? AND status = ?", low, high, models.FriendshipActive).
		First(&friendship).Error; err != nil {
		return nil, handleDBError(err, "get friendship")
	}
	return &friendship, nil
}

func (r *friendPostgreSQL) ListActiveFriendships(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Friendship, error) {
	db := pickDB(r.db, tx)
	var friendships []*models.Friendship
	if err := db.WithContext(ctx).
		Preload("UserLow.Student").
		Preload("UserLow.Teacher").
		Preload("UserHigh.Student").
		Preload("UserHigh.Teacher").
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, models.FriendshipActive).
		Order("created_at DESC, id DESC").
		Find(&friendships).Error; err != nil {
		return nil, handleDBError(err, "list friendships")
	}
	return friendships, nil
}

func (r *friendPostgreSQL) DeleteFriendship(ctx context.Context, tx *gorm.DB, id uint) error {
	db := pickDB(r.db, tx)
	result := db.WithContext(ctx).Delete(&models.Friendship{}, id)
	if result.Error != nil {
		return handleDBError(result.Error, "delete friendship")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete friendship")
	}
	return nil
}
