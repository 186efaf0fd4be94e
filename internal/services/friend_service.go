package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
	"gorm.io/gorm"
)

const userSearchLimit = 20

type friendService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	events    events.EventPublisher
}

func NewFriendService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) FriendService {
	return &friendService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		events:    publisher,
	}
}

func (s *friendService) SearchUsers(ctx context.Context, actor *models.User, query string) ([]UserSearchItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}

	users, err := s.repo.User().Search(ctx, s.db, query, actor.ID, userSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	items := make([]UserSearchItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserSearchItem{
			ID:      u.ID,
			Name:    u.FullName,
			Email:   u.Email,
			Role:    u.Role,
			Profile: models.ProfileOf(u),
		})
	}
	return items, nil
}

func (s *friendService) SendRequest(ctx context.Context, actor *models.User, req *FriendRequestCreate) (*CreatedResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.ReceiverID == actor.ID {
		return nil, ErrSelfRequest
	}

	exists, err := s.repo.User().ExistsByID(ctx, s.db, req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check receiver: %w", err)
	}
	if !exists {
		return nil, ErrUnknownUser
	}

	if _, err := s.repo.Friend().GetActiveFriendship(ctx, s.db, actor.ID, req.ReceiverID); err == nil {
		return nil, ErrAlreadyFriends
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}

	pending, err := s.repo.Friend().HasPendingBetween(ctx, s.db, actor.ID, req.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending {
		return nil, ErrDuplicatePending
	}

	key := models.PairKey(actor.ID, req.ReceiverID)
	request := &models.FriendRequest{
		SenderID:   actor.ID,
		ReceiverID: req.ReceiverID,
		Status:     models.FriendRequestPending,
		Message:    trimmedPtr(req.Message),
		PendingKey: &key,
	}
	if err := s.repo.Friend().CreateRequest(ctx, s.db, request); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.logger.Info("Friend request sent", "request_id", request.ID, "sender_id", actor.ID, "receiver_id", req.ReceiverID)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.FriendRequested, actor.ID, "Sent friend request", "friend_request", request.ID).
			WithData("receiver_id", req.ReceiverID))

	return &CreatedResponse{Message: "Friend request sent", ID: request.ID, Key: "request_id"}, nil
}

func (s *friendService) SentRequests(ctx context.Context, actor *models.User) ([]FriendRequestItem, error) {
	requests, err := s.repo.Friend().ListSent(ctx, s.db, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}

	items := make([]FriendRequestItem, 0, len(requests))
	for _, r := range requests {
		item := newFriendRequestItem(r)
		item.SenderName = actor.FullName
		item.SenderRole = actor.Role
		if r.Receiver != nil {
			item.ReceiverName = r.Receiver.FullName
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *friendService) ReceivedRequests(ctx context.Context, actor *models.User) ([]FriendRequestItem, error) {
	requests, err := s.repo.Friend().ListPendingReceived(ctx, s.db, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received requests: %w", err)
	}

	items := make([]FriendRequestItem, 0, len(requests))
	for _, r := range requests {
		item := newFriendRequestItem(r)
		if r.Sender != nil {
			item.SenderName = r.Sender.FullName
			item.SenderRole = r.Sender.Role
		}
		item.ReceiverName = actor.FullName
		items = append(items, item)
	}
	return items, nil
}

// Accept marks the request accepted and creates the friendship in one
// transaction.
func (s *friendService) Accept(ctx context.Context, actor *models.User, requestID uint) error {
	var request *models.FriendRequest
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		request, err = s.repo.Friend().GetPendingForReceiver(ctx, tx, requestID, actor.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrRequestNotFound
			}
			return err
		}

		request.Status = models.FriendRequestAccepted
		request.PendingKey = nil
		if err := s.repo.Friend().UpdateRequest(ctx, tx, request); err != nil {
			return fmt.Errorf("failed to update friend request: %w", err)
		}

		friendship := &models.Friendship{
			UserLowID:  request.SenderID,
			UserHighID: request.ReceiverID,
			Status:     models.FriendshipActive,
		}
		if err := s.repo.Friend().CreateFriendship(ctx, tx, friendship); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyFriends
			}
			return fmt.Errorf("failed to create friendship: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Friend request accepted", "request_id", requestID, "user_id", actor.ID)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.FriendAccepted, actor.ID, "Accepted friend request", "friend_request", requestID).
			WithData("sender_id", request.SenderID))
	return nil
}

func (s *friendService) Reject(ctx context.Context, actor *models.User, requestID uint) error {
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		request, err := s.repo.Friend().GetPendingForReceiver(ctx, tx, requestID, actor.ID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrRequestNotFound
			}
			return err
		}

		request.Status = models.FriendRequestRejected
		request.PendingKey = nil
		return s.repo.Friend().UpdateRequest(ctx, tx, request)
	})
	if err != nil {
		return err
	}

	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.FriendRejected, actor.ID, "Rejected friend request", "friend_request", requestID))
	return nil
}

func (s *friendService) ListFriends(ctx context.Context, actor *models.User) ([]FriendItem, error) {
	friendships, err := s.repo.Friend().ListActiveFriendships(ctx, s.db, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	items := make([]FriendItem, 0, len(friendships))
	for _, f := range friendships {
		otherID, other := f.Other(actor.ID)
		if other == nil {
			s.logger.Warn("Friendship references a missing user", "friendship_id", f.ID, "user_id", otherID)
			continue
		}
		items = append(items, FriendItem{
			ID:              f.ID,
			UserID:          otherID,
			Name:            other.FullName,
			Email:           other.Email,
			Role:            other.Role,
			Profile:         models.ProfileOf(other),
			FriendshipSince: f.CreatedAt,
		})
	}
	return items, nil
}

// RemoveFriend deletes the friendship between the caller and friendID.
// Either side may remove it.
func (s *friendService) RemoveFriend(ctx context.Context, actor *models.User, friendID uint) error {
	friendship, err := s.repo.Friend().GetActiveFriendship(ctx, s.db, actor.ID, friendID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFriendshipNotFound
		}
		return fmt.Errorf("failed to load friendship: %w", err)
	}

	if err := s.repo.Friend().DeleteFriendship(ctx, s.db, friendship.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFriendshipNotFound
		}
		return fmt.Errorf("failed to delete friendship: %w", err)
	}

	s.logger.Info("Friend removed", "user_id", actor.ID, "friend_id", friendID)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.FriendRemoved, actor.ID, "Removed friend", "friendship", friendship.ID).
			WithData("friend_id", friendID))
	return nil
}

func newFriendRequestItem(r *models.FriendRequest) FriendRequestItem {
	return FriendRequestItem{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Status:     r.Status,
		Message:    r.Message,
		CreatedAt:  r.CreatedAt,
	}
}
