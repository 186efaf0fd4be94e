package repositories

import "context"

// Repository aggregates all repository interfaces
type Repository interface {
	// Identity
	User() UserRepository
	Profile() ProfileRepository

	// Course domain
	Course() CourseRepository
	Enrollment() EnrollmentRepository

	// Academic records
	Grade() GradeRepository
	Attendance() AttendanceRepository
	Exam() ExamRepository

	// Notices and audit
	Notice() NoticeRepository
	SystemLog() SystemLogRepository

	// Relationships and workflows
	Friend() FriendRepository
	Upgrade() UpgradeRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
