package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
	"gorm.io/gorm"
)

type authService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	tokens    *auth.TokenService
	cache     *cache.CacheManager
	events    events.EventPublisher
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator,
	tokens *auth.TokenService, cacheManager *cache.CacheManager, publisher events.EventPublisher) AuthService {
	return &authService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		tokens:    tokens,
		cache:     cacheManager,
		events:    publisher,
	}
}

// Register creates a guest account. A supplied role is checked for validity
// but never granted; promotion goes through the upgrade workflow.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Role != nil && !models.UserRole(*req.Role).IsValid() {
		return nil, ErrInvalidRole
	}

	exists, err := s.repo.User().ExistsByUsername(ctx, s.db, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	exists, err = s.repo.User().ExistsByEmail(ctx, s.db, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         models.RoleGuest,
		IsActive:     true,
	}
	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if repositories.IsDuplicateError(err) {
			// lost a race against a concurrent registration
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.UserRegistered, user.ID, fmt.Sprintf("Registered user %s", user.Username), "user", user.ID))

	return &RegisterResponse{Message: "User registered successfully", UserID: user.ID}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.User().GetByUsername(ctx, s.db, strings.TrimSpace(req.Username))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Failed login attempt", "username", user.Username)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.tokens.Issue(user, s.tokens.DefaultTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        models.SnapshotOf(user),
	}, nil
}

// Me returns the caller's snapshot, served from redis when cached
func (s *authService) Me(ctx context.Context, userID uint) (*models.UserSnapshot, error) {
	var snapshot models.UserSnapshot
	err := s.cache.User.CacheOrExecute(ctx, cache.UserKey(userID), &snapshot, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		user, err := s.repo.User().GetByID(ctx, s.db, userID)
		if err != nil {
			return nil, err
		}
		return models.SnapshotOf(user), nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	identity, err := s.tokens.Validate(token)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) {
			s.logger.Debug("Token validation failed", "error", err)
		}
		return nil, Errorf(KindUnauthenticated, "Could not validate credentials")
	}

	user, err := s.repo.User().GetByID(ctx, s.db, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, Errorf(KindUnauthenticated, "Could not validate credentials")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Username == "" || cfg.Password == "" {
		s.logger.Info("Admin bootstrap skipped, no credentials configured")
		return nil
	}

	role := models.RoleAdmin
	_, total, err := s.repo.User().List(ctx, s.db, repositories.UserFilters{Role: &role, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if total > 0 {
		return nil
	}

	exists, err := s.repo.User().ExistsByUsername(ctx, s.db, cfg.Username)
	if err != nil {
		return fmt.Errorf("failed to check admin username: %w", err)
	}
	if exists {
		s.logger.Warn("Admin bootstrap skipped, username taken by a non-admin", "username", cfg.Username)
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	email := cfg.Email
	if email == "" {
		email = cfg.Username + "@localhost"
	}

	admin := &models.User{
		Username:     cfg.Username,
		Email:        email,
		PasswordHash: hash,
		FullName:     "System Administrator",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.User().Create(ctx, s.db, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Bootstrap admin created", "user_id", admin.ID, "username", admin.Username)
	return nil
}
