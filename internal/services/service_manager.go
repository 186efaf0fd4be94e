package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
	"gorm.io/gorm"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Service-specific configurations
	Auth    ServiceConfig
	Upgrade ServiceConfig
	Friend  ServiceConfig
	Student ServiceConfig
	Teacher ServiceConfig
	Admin   ServiceConfig
	Export  ServiceConfig
	AI      ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Tokens *auth.TokenService
	Cache  *cache.CacheManager
	Events events.EventPublisher
	AI     config.AIConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	deps      Dependencies
	config    ServiceManagerConfig

	// Service instances
	authService    AuthService
	upgradeService UpgradeService
	friendService  FriendService
	studentService StudentService
	teacherService TeacherService
	adminService   AdminService
	exportService  ExportService
	aiService      AIService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		deps:      deps,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, deps Dependencies) ServiceManager {
	config := ServiceManagerConfig{
		Auth: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     cache.UserCacheConfig.TTL,
		},
		Upgrade: ServiceConfig{Enabled: true},
		Friend:  ServiceConfig{Enabled: true},
		Student: ServiceConfig{Enabled: true},
		Teacher: ServiceConfig{Enabled: true},
		Admin: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     cache.StatsCacheConfig.TTL,
		},
		Export: ServiceConfig{Enabled: true},
		AI:     ServiceConfig{Enabled: true},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(db, repo, logger, validator, deps, config)
}

// CreateDevelopmentServiceManager disables caching so every read hits the database
func CreateDevelopmentServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, deps Dependencies) ServiceManager {
	sm := NewDefaultServiceManager(db, repo, logger, validator, deps).(*serviceManager)
	sm.config.Auth.CacheEnabled = false
	sm.config.Admin.CacheEnabled = false
	sm.config.DefaultTimeout = 10 * time.Second
	return sm
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.config.Validate(); err != nil {
		return err
	}

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) cacheFor(cfg ServiceConfig) *cache.CacheManager {
	if cfg.CacheEnabled {
		return sm.deps.Cache
	}
	return cache.NewCacheManager(nil)
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	if sm.config.Auth.Enabled {
		if sm.deps.Tokens == nil {
			return fmt.Errorf("auth service requires a token service")
		}
		sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps.Tokens, sm.cacheFor(sm.config.Auth), sm.deps.Events)
		sm.logger.Info("Auth service initialized")
	}

	if sm.config.Upgrade.Enabled {
		sm.upgradeService = NewUpgradeService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps.Cache, sm.deps.Events)
		sm.logger.Info("Upgrade service initialized")
	}

	if sm.config.Friend.Enabled {
		sm.friendService = NewFriendService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps.Events)
		sm.logger.Info("Friend service initialized")
	}

	if sm.config.Student.Enabled {
		sm.studentService = NewStudentService(sm.repo, sm.db, sm.logger)
		sm.logger.Info("Student service initialized")
	}

	if sm.config.Teacher.Enabled {
		sm.teacherService = NewTeacherService(sm.repo, sm.db, sm.logger, sm.validator, sm.deps.Events)
		sm.logger.Info("Teacher service initialized")
	}

	if sm.config.Admin.Enabled {
		sm.adminService = NewAdminService(sm.repo, sm.db, sm.logger, sm.validator, sm.cacheFor(sm.config.Admin), sm.deps.Events)
		sm.logger.Info("Admin service initialized")
	}

	if sm.config.Export.Enabled {
		sm.exportService = NewExportService(sm.repo, sm.db, sm.logger)
		sm.logger.Info("Export service initialized")
	}

	if sm.config.AI.Enabled {
		sm.aiService = NewAIService(sm.deps.AI, sm.logger)
		sm.logger.Info("AI service initialized", "configured", sm.deps.AI.APIKey != "")
	}

	return nil
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.authService != nil {
		return sm.authService
	}
	panic("auth service not enabled or not initialized")
}

func (sm *serviceManager) Upgrade() UpgradeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.upgradeService != nil {
		return sm.upgradeService
	}
	panic("upgrade service not enabled or not initialized")
}

func (sm *serviceManager) Friend() FriendService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.friendService != nil {
		return sm.friendService
	}
	panic("friend service not enabled or not initialized")
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.studentService != nil {
		return sm.studentService
	}
	panic("student service not enabled or not initialized")
}

func (sm *serviceManager) Teacher() TeacherService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.teacherService != nil {
		return sm.teacherService
	}
	panic("teacher service not enabled or not initialized")
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.adminService != nil {
		return sm.adminService
	}
	panic("admin service not enabled or not initialized")
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.exportService != nil {
		return sm.exportService
	}
	panic("export service not enabled or not initialized")
}

func (sm *serviceManager) AI() AIService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.aiService != nil {
		return sm.aiService
	}
	panic("ai service not enabled or not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	// The cache is optional; a failing redis only degrades reads
	if err := sm.deps.Cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		sm.logger.Warn("Cache health check failed", "error", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.deps.Events != nil {
		if err := sm.deps.Events.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}

// ===== CONFIGURATION VALIDATION =====

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	var problems []string

	if config.DefaultTimeout <= 0 {
		problems = append(problems, "default timeout must be positive")
	}

	named := map[string]ServiceConfig{
		"auth":    config.Auth,
		"upgrade": config.Upgrade,
		"friend":  config.Friend,
		"student": config.Student,
		"teacher": config.Teacher,
		"admin":   config.Admin,
		"export":  config.Export,
		"ai":      config.AI,
	}
	for name, sc := range named {
		if err := sc.validate(name); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %v", problems)
	}

	return nil
}

func (sc *ServiceConfig) validate(serviceName string) error {
	if sc.CacheTTL < 0 {
		return fmt.Errorf("%s: cache TTL cannot be negative", serviceName)
	}
	return nil
}
