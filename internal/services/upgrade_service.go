package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
	"gorm.io/gorm"
)

type upgradeService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
	events    events.EventPublisher
	now       func() time.Time
}

func NewUpgradeService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator,
	cacheManager *cache.CacheManager, publisher events.EventPublisher) UpgradeService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &upgradeService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		cache:     cacheManager,
		events:    publisher,
		now:       time.Now,
	}
}

func (s *upgradeService) Submit(ctx context.Context, actor *models.User, req *UpgradeRoleRequest) (*CreatedResponse, error) {
	if actor.Role != models.RoleGuest {
		return nil, ErrNotGuest
	}

	if err := s.validator.Validate(req); err != nil {
		if validator.HasRule(err, "upgrade_role") {
			return nil, ErrInvalidTargetRole
		}
		return nil, err
	}

	request := &models.UpgradeRequest{
		UserID:     actor.ID,
		TargetRole: models.UserRole(strings.TrimSpace(req.TargetRole)),
		Reason:     trimmedPtr(req.Reason),
		Status:     models.UpgradePending,
		PendingKey: &actor.ID,
	}

	switch request.TargetRole {
	case models.RoleStudent:
		request.StudentID = trimmedPtr(req.StudentID)
		request.ClassName = trimmedPtr(req.ClassName)
	case models.RoleTeacher:
		request.TeacherID = trimmedPtr(req.TeacherID)
		request.Department = trimmedPtr(req.Department)
		request.Title = trimmedPtr(req.Title)
	default:
		return nil, ErrInvalidTargetRole
	}

	if latest, err := s.repo.Upgrade().LatestByUser(ctx, s.db, actor.ID); err == nil && latest.IsPending() {
		return nil, ErrPendingUpgradeExists
	} else if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check pending upgrade: %w", err)
	}

	if err := s.repo.Upgrade().Create(ctx, s.db, request); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrPendingUpgradeExists
		}
		return nil, fmt.Errorf("failed to create upgrade request: %w", err)
	}

	s.logger.Info("Upgrade request submitted", "request_id", request.ID, "user_id", actor.ID, "target_role", request.TargetRole)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.UpgradeSubmitted, actor.ID,
			fmt.Sprintf("Requested upgrade to %s", request.TargetRole), "upgrade_request", request.ID))

	return &CreatedResponse{Message: "Upgrade request submitted successfully", ID: request.ID, Key: "request_id"}, nil
}

// checkIdentifier requires the role-specific id and rejects one already
// held by an existing profile. It runs at approval time only.
func (s *upgradeService) checkIdentifier(ctx context.Context, db *gorm.DB, request *models.UpgradeRequest) error {
	id := request.Identifier()

	if request.TargetRole == models.RoleTeacher {
		if id == nil {
			return ErrTeacherIDRequired
		}
		taken, err := s.repo.Profile().TeacherNumberExists(ctx, db, *id)
		if err != nil {
			return fmt.Errorf("failed to check teacher id: %w", err)
		}
		if taken {
			return ErrTeacherIDTaken
		}
		return nil
	}

	if id == nil {
		return ErrStudentIDRequired
	}
	taken, err := s.repo.Profile().StudentNumberExists(ctx, db, *id)
	if err != nil {
		return fmt.Errorf("failed to check student id: %w", err)
	}
	if taken {
		return ErrStudentIDTaken
	}
	return nil
}

func (s *upgradeService) MyRequest(ctx context.Context, actor *models.User) (*MyUpgradeResponse, error) {
	if actor.Role != models.RoleGuest {
		return nil, ErrGuestOnly
	}

	request, err := s.repo.Upgrade().LatestByUser(ctx, s.db, actor.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &MyUpgradeResponse{HasRequest: false}, nil
		}
		return nil, fmt.Errorf("failed to load upgrade request: %w", err)
	}

	return &MyUpgradeResponse{HasRequest: true, Request: request}, nil
}

func (s *upgradeService) PendingRequests(ctx context.Context) ([]UpgradeRequestItem, error) {
	requests, err := s.repo.Upgrade().ListPending(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgrade requests: %w", err)
	}

	items := make([]UpgradeRequestItem, 0, len(requests))
	for _, r := range requests {
		item := UpgradeRequestItem{
			ID:         r.ID,
			UserID:     r.UserID,
			TargetRole: r.TargetRole,
			StudentID:  r.StudentID,
			ClassName:  r.ClassName,
			TeacherID:  r.TeacherID,
			Department: r.Department,
			Title:      r.Title,
			Reason:     r.Reason,
			Status:     r.Status,
			CreatedAt:  r.CreatedAt,
		}
		if r.User != nil {
			item.Username = r.User.Username
			item.FullName = r.User.FullName
			item.Email = r.User.Email
		}
		items = append(items, item)
	}
	return items, nil
}

// Approve promotes the requesting guest. The role change, the new profile
// row and the request resolution commit together.
func (s *upgradeService) Approve(ctx context.Context, admin *models.User, requestID uint) error {
	var request *models.UpgradeRequest
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		request, err = s.loadPending(ctx, tx, requestID)
		if err != nil {
			return err
		}

		user := request.User
		if user == nil {
			if user, err = s.repo.User().GetByID(ctx, tx, request.UserID); err != nil {
				return fmt.Errorf("failed to load requesting user: %w", err)
			}
		}
		if user.Role != models.RoleGuest {
			return Errorf(KindValidation, "User is no longer a guest")
		}

		if err := s.checkIdentifier(ctx, tx, request); err != nil {
			return err
		}

		if err := s.createProfile(ctx, tx, request); err != nil {
			return err
		}

		user.Role = request.TargetRole
		if err := s.repo.User().Update(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to update user role: %w", err)
		}

		s.resolve(request, admin, models.UpgradeApproved)
		if err := s.repo.Upgrade().Update(ctx, tx, request); err != nil {
			return fmt.Errorf("failed to update upgrade request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateUserCache(ctx, s.cache, request.UserID)

	s.logger.Info("Upgrade request approved", "request_id", requestID, "user_id", request.UserID, "role", request.TargetRole)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.UpgradeApproved, admin.ID,
			fmt.Sprintf("Approved upgrade request #%d to %s", request.ID, request.TargetRole), "upgrade_request", request.ID).
			WithData("user_id", request.UserID))
	return nil
}

func (s *upgradeService) Reject(ctx context.Context, admin *models.User, requestID uint, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrRejectionReason
	}

	var request *models.UpgradeRequest
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		request, err = s.loadPending(ctx, tx, requestID)
		if err != nil {
			return err
		}

		s.resolve(request, admin, models.UpgradeRejected)
		request.RejectionReason = &reason
		return s.repo.Upgrade().Update(ctx, tx, request)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Upgrade request rejected", "request_id", requestID, "user_id", request.UserID)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.UpgradeRejected, admin.ID,
			fmt.Sprintf("Rejected upgrade request #%d", request.ID), "upgrade_request", request.ID).
			WithData("user_id", request.UserID).
			WithData("reason", reason))
	return nil
}

func (s *upgradeService) loadPending(ctx context.Context, tx *gorm.DB, requestID uint) (*models.UpgradeRequest, error) {
	request, err := s.repo.Upgrade().GetByID(ctx, tx, requestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUpgradeNotFound
		}
		return nil, err
	}
	if !request.IsPending() {
		return nil, ErrAlreadyProcessed
	}
	return request, nil
}

func (s *upgradeService) resolve(request *models.UpgradeRequest, admin *models.User, status models.UpgradeStatus) {
	processedAt := s.now().UTC()
	request.Status = status
	request.PendingKey = nil
	request.ProcessedAt = &processedAt
	request.ProcessedBy = &admin.ID
}

func (s *upgradeService) createProfile(ctx context.Context, tx *gorm.DB, request *models.UpgradeRequest) error {
	if request.TargetRole == models.RoleTeacher {
		teacher := &models.Teacher{
			UserID:     request.UserID,
			TeacherID:  *request.TeacherID,
			Department: request.Department,
			Title:      request.Title,
		}
		if err := s.repo.Profile().CreateTeacher(ctx, tx, teacher); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrTeacherIDTaken
			}
			return fmt.Errorf("failed to create teacher profile: %w", err)
		}
		return nil
	}

	year := s.now().Year()
	student := &models.Student{
		UserID:         request.UserID,
		StudentID:      *request.StudentID,
		ClassName:      request.ClassName,
		EnrollmentYear: &year,
	}
	if err := s.repo.Profile().CreateStudent(ctx, tx, student); err != nil {
		if repositories.IsDuplicateError(err) {
			return ErrStudentIDTaken
		}
		return fmt.Errorf("failed to create student profile: %w", err)
	}
	return nil
}
