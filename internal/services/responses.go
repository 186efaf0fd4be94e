package services

import (
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
)

// ===== COMMON =====

type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges a write that produced a row
type CreatedResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"-"`
	// Key names the id field in the JSON body, e.g. "request_id"
	Key string `json:"-"`
}

// Body renders the response with its id under Key
func (r *CreatedResponse) Body() map[string]interface{} {
	return map[string]interface{}{"message": r.Message, r.Key: r.ID}
}

// ===== AUTH =====

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
}

type LoginResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	User        models.UserSnapshot `json:"user"`
}

// ===== UPGRADE =====

type UpgradeRequestItem struct {
	ID         uint                 `json:"id"`
	UserID     uint                 `json:"user_id"`
	Username   string               `json:"username"`
	FullName   string               `json:"full_name"`
	Email      string               `json:"email"`
	TargetRole models.UserRole      `json:"target_role"`
	StudentID  *string              `json:"student_id"`
	ClassName  *string              `json:"class_name"`
	TeacherID  *string              `json:"teacher_id"`
	Department *string              `json:"department"`
	Title      *string              `json:"title"`
	Reason     *string              `json:"reason"`
	Status     models.UpgradeStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
}

type MyUpgradeResponse struct {
	HasRequest bool                   `json:"has_request"`
	Request    *models.UpgradeRequest `json:"request,omitempty"`
}

// ===== FRIENDS =====

type UserSearchItem struct {
	ID      uint            `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Role    models.UserRole `json:"role"`
	Profile models.Profile  `json:"profile"`
}

type FriendItem struct {
	ID              uint            `json:"id"`
	UserID          uint            `json:"user_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Role            models.UserRole `json:"role"`
	Profile         models.Profile  `json:"profile"`
	FriendshipSince time.Time       `json:"friendship_since"`
}

type FriendRequestItem struct {
	ID           uint                       `json:"id"`
	SenderID     uint                       `json:"sender_id"`
	ReceiverID   uint                       `json:"receiver_id"`
	Status       models.FriendRequestStatus `json:"status"`
	Message      *string                    `json:"message"`
	CreatedAt    time.Time                  `json:"created_at"`
	SenderName   string                     `json:"sender_name"`
	SenderRole   models.UserRole            `json:"sender_role"`
	ReceiverName string                     `json:"receiver_name"`
}

// ===== STUDENT =====

type StudentDashboard struct {
	StudentInfo   StudentInfo          `json:"student_info"`
	Courses       []DashboardCourse    `json:"courses"`
	Grades        []DashboardGrade     `json:"grades"`
	UpcomingExams []DashboardExam      `json:"upcoming_exams"`
	Stats         StudentDashboardStat `json:"stats"`
}

type StudentInfo struct {
	Name      string  `json:"name"`
	StudentID string  `json:"student_id"`
	ClassName *string `json:"class_name"`
	Email     string  `json:"email"`
}

type DashboardCourse struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Teacher string  `json:"teacher"`
	Time    *string `json:"time"`
	Room    *string `json:"room"`
	Credits int     `json:"credits"`
}

type DashboardGrade struct {
	Course  string   `json:"course"`
	Midterm *float64 `json:"midterm"`
	Final   *float64 `json:"final"`
	Usual   *float64 `json:"usual"`
	Total   float64  `json:"total"`
	GPA     float64  `json:"gpa"`
}

type DashboardExam struct {
	Course string  `json:"course"`
	Date   string  `json:"date"`
	Time   string  `json:"time"`
	Room   *string `json:"room"`
}

type StudentDashboardStat struct {
	TotalCourses int     `json:"total_courses"`
	TotalCredits int     `json:"total_credits"`
	AverageGPA   float64 `json:"average_gpa"`
}

type StudentCourseItem struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Teacher        string    `json:"teacher"`
	Schedule       *string   `json:"schedule"`
	Classroom      *string   `json:"classroom"`
	Credits        int       `json:"credits"`
	Description    *string   `json:"description"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

type StudentGradeItem struct {
	ID           uint               `json:"id"`
	Course       string             `json:"course"`
	CourseCode   string             `json:"course_code"`
	MidtermScore *float64           `json:"midterm_score"`
	FinalScore   *float64           `json:"final_score"`
	UsualScore   *float64           `json:"usual_score"`
	TotalScore   float64            `json:"total_score"`
	GPA          float64            `json:"gpa"`
	Semester     string             `json:"semester"`
	AcademicYear string             `json:"academic_year"`
	GradedAt     time.Time          `json:"graded_at"`
	Status       models.GradeStatus `json:"status"`
}

type ScheduleItem struct {
	CourseID   uint    `json:"course_id"`
	CourseName string  `json:"course_name"`
	Teacher    string  `json:"teacher"`
	Schedule   *string `json:"schedule"`
	Classroom  *string `json:"classroom"`
	Credits    int     `json:"credits"`
}

type StudentExamItem struct {
	ID          uint            `json:"id"`
	Course      string          `json:"course"`
	Title       string          `json:"title"`
	ExamType    models.ExamType `json:"exam_type"`
	Date        time.Time       `json:"date"`
	Duration    int             `json:"duration"`
	Location    *string         `json:"location"`
	MaxScore    int             `json:"max_score"`
	Description *string         `json:"description"`
}

type StudentProfileResponse struct {
	ID             uint    `json:"id"`
	StudentID      string  `json:"student_id"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	ClassName      *string `json:"class_name"`
	EnrollmentYear *int    `json:"enrollment_year"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
}

// ===== TEACHER =====

type TeacherDashboard struct {
	TeacherInfo       TeacherInfo           `json:"teacher_info"`
	Courses           []TeacherDashCourse   `json:"courses"`
	RecentGrades      []RecentGrade         `json:"recent_grades"`
	TodaySchedule     []TodayClass          `json:"today_schedule"`
	StudentAttendance []AttendanceRate      `json:"student_attendance"`
	Notices           []NoticeItem          `json:"notices"`
	Stats             TeacherDashboardStats `json:"stats"`
}

type TeacherInfo struct {
	Name       string  `json:"name"`
	TeacherID  string  `json:"teacher_id"`
	Department *string `json:"department"`
	Title      *string `json:"title"`
	Email      string  `json:"email"`
}

type TeacherDashCourse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Class    string  `json:"class"`
	Students int64   `json:"students"`
	Time     *string `json:"time"`
	Room     *string `json:"room"`
	Credits  int     `json:"credits"`
}

type RecentGrade struct {
	Student string             `json:"student"`
	Course  string             `json:"course"`
	Score   float64            `json:"score"`
	Date    string             `json:"date"`
	Status  models.GradeStatus `json:"status"`
}

type TodayClass struct {
	Course string  `json:"course"`
	Time   *string `json:"time"`
	Room   *string `json:"room"`
	Class  string  `json:"class"`
}

type AttendanceRate struct {
	Student string  `json:"student"`
	Total   int64   `json:"total"`
	Present int64   `json:"present"`
	Absent  int64   `json:"absent"`
	Rate    float64 `json:"rate"`
}

type NoticeItem struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Urgent bool   `json:"urgent"`
}

type TeacherDashboardStats struct {
	TotalCourses      int     `json:"total_courses"`
	TotalStudents     int64   `json:"total_students"`
	AverageAttendance float64 `json:"average_attendance"`
	PendingGrades     int64   `json:"pending_grades"`
	TodayClasses      int     `json:"today_classes"`
}

type TeacherCourseItem struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	Description      *string   `json:"description"`
	Credits          int       `json:"credits"`
	Schedule         *string   `json:"schedule"`
	Classroom        *string   `json:"classroom"`
	MaxStudents      int       `json:"max_students"`
	EnrolledStudents int64     `json:"enrolled_students"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

type CourseStudentItem struct {
	ID             uint      `json:"id"`
	StudentID      string    `json:"student_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ClassName      *string   `json:"class_name"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

type GradeSubmitResponse struct {
	Message    string  `json:"message"`
	TotalScore float64 `json:"total_score"`
	GPA        float64 `json:"gpa"`
}

type AttendanceItem struct {
	ID        uint                    `json:"id"`
	Student   string                  `json:"student"`
	StudentID string                  `json:"student_id"`
	Date      string                  `json:"date"`
	Status    models.AttendanceStatus `json:"status"`
	Notes     *string                 `json:"notes"`
}

// ===== ADMIN =====

type AdminDashboard struct {
	SystemStats      SystemStats     `json:"system_stats"`
	RecentActivities []ActivityItem  `json:"recent_activities"`
	UserGrowthData   []GrowthPoint   `json:"user_growth_data"`
	Notices          []NoticeItem    `json:"notices"`
	CalculatedStats  CalculatedStats `json:"calculated_stats"`
}

type SystemStats struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveUsers      int64 `json:"active_users"`
	TotalStudents    int64 `json:"total_students"`
	TotalTeachers    int64 `json:"total_teachers"`
	TotalCourses     int64 `json:"total_courses"`
	TotalDepartments int64 `json:"total_departments"`
}

type ActivityItem struct {
	ID      uint             `json:"id"`
	User    string           `json:"user"`
	Action  string           `json:"action"`
	Time    string           `json:"time"`
	TimeAgo string           `json:"time_ago"`
	Role    string           `json:"role"`
	Status  models.LogStatus `json:"status"`
}

type GrowthPoint struct {
	Month    string `json:"month"`
	Students int    `json:"students"`
	Teachers int    `json:"teachers"`
}

type CalculatedStats struct {
	ActiveRate        float64 `json:"active_rate"`
	RecentNewStudents int     `json:"recent_new_students"`
	RecentNewTeachers int     `json:"recent_new_teachers"`
}

type AdminUserItem struct {
	models.UserSnapshot
	CreatedAt time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users      []AdminUserItem `json:"users"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

type AdminCourseItem struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	Teacher          string    `json:"teacher"`
	Credits          int       `json:"credits"`
	Classroom        *string   `json:"classroom"`
	Schedule         *string   `json:"schedule"`
	EnrolledStudents int64     `json:"enrolled_students"`
	MaxStudents      int       `json:"max_students"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

type CourseListResponse struct {
	Courses    []AdminCourseItem `json:"courses"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type LogItem struct {
	ID           uint             `json:"id"`
	User         string           `json:"user"`
	Action       string           `json:"action"`
	ResourceType *string          `json:"resource_type"`
	ResourceID   *string          `json:"resource_id"`
	IPAddress    *string          `json:"ip_address"`
	Status       models.LogStatus `json:"status"`
	Details      interface{}      `json:"details"`
	CreatedAt    time.Time        `json:"created_at"`
}

type LogListResponse struct {
	Logs       []LogItem `json:"logs"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// ===== AI =====

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type AIHealthResponse struct {
	Status    string `json:"status"`
	AIService string `json:"ai_service"`
	Available bool   `json:"available"`
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
