package services

import (
	"context"

	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Use validator types
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type UpgradeRoleRequest = validator.UpgradeRoleRequest
type RejectUpgradeRequest = validator.RejectUpgradeRequest
type FriendRequestCreate = validator.FriendRequestCreate
type GradeSubmitRequest = validator.GradeSubmitRequest
type AttendanceRecordRequest = validator.AttendanceRecordRequest
type CourseUpdateRequest = validator.CourseUpdateRequest
type NoticeCreateRequest = validator.NoticeCreateRequest
type EnrollmentCreateRequest = validator.EnrollmentCreateRequest
type ExamCreateRequest = validator.ExamCreateRequest
type ChatRequest = validator.ChatRequest

// UserListQuery filters the admin user list. Role and IsActive are optional.
type UserListQuery struct {
	Role     string
	IsActive *bool
	Page     int
	PageSize int
}

// LogQuery filters the admin log list. Dates use YYYY-MM-DD.
type LogQuery struct {
	Page      int
	PageSize  int
	Action    string
	Status    string
	StartDate string
	EndDate   string
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, userID uint) (*models.UserSnapshot, error)

	// Authenticate resolves a bearer token to the stored user. The returned
	// user carries its current role, which may differ from the token's.
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// EnsureAdmin creates the bootstrap admin when no admin exists
	EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error
}

type UpgradeService interface {
	Submit(ctx context.Context, actor *models.User, req *UpgradeRoleRequest) (*CreatedResponse, error)
	MyRequest(ctx context.Context, actor *models.User) (*MyUpgradeResponse, error)
	PendingRequests(ctx context.Context) ([]UpgradeRequestItem, error)
	Approve(ctx context.Context, admin *models.User, requestID uint) error
	Reject(ctx context.Context, admin *models.User, requestID uint, reason string) error
}

type FriendService interface {
	SearchUsers(ctx context.Context, actor *models.User, query string) ([]UserSearchItem, error)
	SendRequest(ctx context.Context, actor *models.User, req *FriendRequestCreate) (*CreatedResponse, error)
	SentRequests(ctx context.Context, actor *models.User) ([]FriendRequestItem, error)
	ReceivedRequests(ctx context.Context, actor *models.User) ([]FriendRequestItem, error)
	Accept(ctx context.Context, actor *models.User, requestID uint) error
	Reject(ctx context.Context, actor *models.User, requestID uint) error
	ListFriends(ctx context.Context, actor *models.User) ([]FriendItem, error)
	RemoveFriend(ctx context.Context, actor *models.User, friendID uint) error
}

type StudentService interface {
	Dashboard(ctx context.Context, actor *models.User) (*StudentDashboard, error)
	Courses(ctx context.Context, actor *models.User) ([]StudentCourseItem, error)
	Grades(ctx context.Context, actor *models.User, semester *string) ([]StudentGradeItem, error)
	Schedule(ctx context.Context, actor *models.User) ([]ScheduleItem, error)
	Exams(ctx context.Context, actor *models.User) ([]StudentExamItem, error)
	Profile(ctx context.Context, actor *models.User) (*StudentProfileResponse, error)
}

type TeacherService interface {
	Dashboard(ctx context.Context, actor *models.User) (*TeacherDashboard, error)
	Courses(ctx context.Context, actor *models.User) ([]TeacherCourseItem, error)
	CourseStudents(ctx context.Context, actor *models.User, courseID uint) ([]CourseStudentItem, error)
	SubmitGrade(ctx context.Context, actor *models.User, req *GradeSubmitRequest) (*GradeSubmitResponse, error)
	CourseAttendance(ctx context.Context, actor *models.User, courseID uint) ([]AttendanceItem, error)
	RecordAttendance(ctx context.Context, actor *models.User, courseID uint, req *AttendanceRecordRequest) (*CreatedResponse, error)
}

type AdminService interface {
	Dashboard(ctx context.Context) (*AdminDashboard, error)
	Users(ctx context.Context, query UserListQuery) (*UserListResponse, error)
	ToggleUserStatus(ctx context.Context, admin *models.User, userID uint) (*MessageResponse, error)
	Courses(ctx context.Context, page, pageSize int) (*CourseListResponse, error)
	UpdateCourse(ctx context.Context, admin *models.User, courseID uint, req *CourseUpdateRequest) (*MessageResponse, error)
	ToggleCourseStatus(ctx context.Context, admin *models.User, courseID uint) (*MessageResponse, error)
	Enroll(ctx context.Context, admin *models.User, courseID uint, req *EnrollmentCreateRequest) (*CreatedResponse, error)
	CreateExam(ctx context.Context, admin *models.User, courseID uint, req *ExamCreateRequest) (*CreatedResponse, error)
	CreateNotice(ctx context.Context, admin *models.User, req *NoticeCreateRequest) (*CreatedResponse, error)
	Logs(ctx context.Context, query LogQuery) (*LogListResponse, error)
}

// ExportService renders admin spreadsheets
type ExportService interface {
	ExportUsers(ctx context.Context) ([]byte, error)
	ExportGrades(ctx context.Context) ([]byte, error)
}

type AIService interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Health(ctx context.Context) *AIHealthResponse
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Auth() AuthService
	Upgrade() UpgradeService
	Friend() FriendService
	Student() StudentService
	Teacher() TeacherService
	Admin() AdminService

	// Additional service getters
	Export() ExportService
	AI() AIService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
