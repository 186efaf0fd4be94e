package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	TeacherID *uint `json:"teacher_id"`
	IsActive  *bool `json:"is_active"`
	Limit     int   `json:"limit"`
	Offset    int   `json:"offset"`
}

type SystemLogFilters struct {
	Action   *string           `json:"action"`
	Status   *models.LogStatus `json:"status"`
	DateFrom *time.Time        `json:"date_from"`
	DateTo   *time.Time        `json:"date_to"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ===== COURSE DOMAIN =====

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetOwned(ctx context.Context, tx *gorm.DB, id uint, teacherID uint) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)

	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID uint) (bool, error)
	ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID uint) (bool, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetActive(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, error)
	ListActiveByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Enrollment, error)
	ListActiveByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Enrollment, error)

	CountActive(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)
	CountActiveByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]int64, error)
}

// ===== ACADEMIC RECORDS =====

type GradeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error
	Update(ctx context.Context, tx *gorm.DB, grade *models.Grade) error
	GetByKey(ctx context.Context, tx *gorm.DB, studentID, courseID uint, semester string) (*models.Grade, error)

	ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, semester *string) ([]*models.Grade, error)
	ListRecentByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint, limit int) ([]*models.Grade, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*models.Grade, error)
	CountByTeacherAndStatus(ctx context.Context, tx *gorm.DB, teacherID uint, status models.GradeStatus) (int64, error)
}

// AttendanceSummary is a per-student roll-up of attendance for one course.
type AttendanceSummary struct {
	StudentID uint   `json:"student_id"`
	FullName  string `json:"full_name"`
	Total     int64  `json:"total"`
	Present   int64  `json:"present"`
	Absent    int64  `json:"absent"`
}

type AttendanceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error
	Update(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error
	GetByKey(ctx context.Context, tx *gorm.DB, studentID, courseID uint, date time.Time) (*models.Attendance, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Attendance, error)
	SummaryByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]AttendanceSummary, error)
}

type ExamRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	// ListForStudent returns exams of courses the student is actively
	// enrolled in. A non-nil after keeps only exams starting later.
	ListForStudent(ctx context.Context, tx *gorm.DB, studentID uint, after *time.Time) ([]*models.Exam, error)
}

// ===== NOTICES AND LOGS =====

type NoticeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notice *models.Notice) error
	ListActive(ctx context.Context, tx *gorm.DB, audiences []models.NoticeAudience, limit int) ([]*models.Notice, error)
}

type SystemLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.SystemLog) error
	List(ctx context.Context, tx *gorm.DB, filters SystemLogFilters) ([]*models.SystemLog, int64, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// ===== RELATIONSHIPS =====

type FriendRepository interface {
	CreateRequest(ctx context.Context, tx *gorm.DB, request *models.FriendRequest) error
	UpdateRequest(ctx context.Context, tx *gorm.DB, request *models.FriendRequest) error
	GetPendingForReceiver(ctx context.Context, tx *gorm.DB, id, receiverID uint) (*models.FriendRequest, error)
	HasPendingBetween(ctx context.Context, tx *gorm.DB, a, b uint) (bool, error)
	ListSent(ctx context.Context, tx *gorm.DB, senderID uint) ([]*models.FriendRequest, error)
	ListPendingReceived(ctx context.Context, tx *gorm.DB, receiverID uint) ([]*models.FriendRequest, error)

	CreateFriendship(ctx context.Context, tx *gorm.DB, friendship *models.Friendship) error
	GetActiveFriendship(ctx context.Context, tx *gorm.DB, a, b uint) (*models.Friendship, error)
	ListActiveFriendships(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Friendship, error)
	DeleteFriendship(ctx context.Context, tx *gorm.DB, id uint) error
}

type UpgradeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *models.UpgradeRequest) error
	Update(ctx context.Context, tx *gorm.DB, request *models.UpgradeRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UpgradeRequest, error)
	ListPending(ctx context.Context, tx *gorm.DB) ([]*models.UpgradeRequest, error)
	LatestByUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.UpgradeRequest, error)
}
