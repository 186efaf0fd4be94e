package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db          *gorm.DB
	redisClient *redis.Client

	// Repository instances
	user       repositories.UserRepository
	profile    repositories.ProfileRepository
	course     repositories.CourseRepository
	enrollment repositories.EnrollmentRepository
	grade      repositories.GradeRepository
	attendance repositories.AttendanceRepository
	exam       repositories.ExamRepository
	notice     repositories.NoticeRepository
	systemLog  repositories.SystemLogRepository
	friend     repositories.FriendRepository
	upgrade    repositories.UpgradeRepository
	dashboard  repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	db := config.DB
	return &PostgreSQLRepository{
		db:          db,
		redisClient: config.RedisClient,

		user:       NewUserPostgreSQL(db),
		profile:    NewProfilePostgreSQL(db),
		course:     NewCoursePostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		grade:      NewGradePostgreSQL(db),
		attendance: NewAttendancePostgreSQL(db),
		exam:       NewExamPostgreSQL(db),
		notice:     NewNoticePostgreSQL(db),
		systemLog:  NewSystemLogPostgreSQL(db),
		friend:     NewFriendPostgreSQL(db),
		upgrade:    NewUpgradePostgreSQL(db),
		dashboard:  NewDashboardRepository(db),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }
func (r *PostgreSQLRepository) Profile() repositories.ProfileRepository       { return r.profile }
func (r *PostgreSQLRepository) Course() repositories.CourseRepository         { return r.course }
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *PostgreSQLRepository) Grade() repositories.GradeRepository           { return r.grade }
func (r *PostgreSQLRepository) Attendance() repositories.AttendanceRepository { return r.attendance }
func (r *PostgreSQLRepository) Exam() repositories.ExamRepository             { return r.exam }
func (r *PostgreSQLRepository) Notice() repositories.NoticeRepository         { return r.notice }
func (r *PostgreSQLRepository) SystemLog() repositories.SystemLogRepository   { return r.systemLog }
func (r *PostgreSQLRepository) Friend() repositories.FriendRepository         { return r.friend }
func (r *PostgreSQLRepository) Upgrade() repositories.UpgradeRepository       { return r.upgrade }
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository   { return r.dashboard }

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connections and builds the repositories
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
