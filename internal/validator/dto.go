package validator

// ===== AUTH =====

// RegisterRequest represents a self-registration
type RegisterRequest struct {
	Username string  `json:"username" form:"username" validate:"required,username"`
	Email    string  `json:"email" form:"email" validate:"required,email,max=100"`
	Password string  `json:"password" form:"password" validate:"required,min=1,max=72"`
	FullName string  `json:"full_name" form:"full_name" validate:"required,notblank,max=100"`
	Role     *string `json:"role" form:"role"`
}

// LoginRequest accepts JSON or form-encoded credentials
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UpgradeRoleRequest represents a guest's promotion request
type UpgradeRoleRequest struct {
	TargetRole string  `json:"target_role" form:"target_role" validate:"required,upgrade_role"`
	StudentID  *string `json:"student_id" form:"student_id" validate:"omitempty,max=20"`
	ClassName  *string `json:"class_name" form:"class_name" validate:"omitempty,max=50"`
	TeacherID  *string `json:"teacher_id" form:"teacher_id" validate:"omitempty,max=20"`
	Department *string `json:"department" form:"department" validate:"omitempty,max=100"`
	Title      *string `json:"title" form:"title" validate:"omitempty,max=50"`
	Reason     *string `json:"reason" form:"reason" validate:"omitempty,max=1000"`
}

type RejectUpgradeRequest struct {
	RejectionReason string `json:"rejection_reason" form:"rejection_reason"`
}

// ===== FRIENDS =====

type FriendRequestCreate struct {
	ReceiverID uint    `json:"receiver_id" validate:"required"`
	Message    *string `json:"message" validate:"omitempty,max=500"`
}

// ===== TEACHER =====

// GradeSubmitRequest carries the optional score parts of one grade
type GradeSubmitRequest struct {
	StudentID    uint     `json:"student_id" form:"student_id" validate:"required"`
	CourseID     uint     `json:"course_id" form:"course_id" validate:"required"`
	MidtermScore *float64 `json:"midterm_score" form:"midterm_score" validate:"omitempty,score"`
	FinalScore   *float64 `json:"final_score" form:"final_score" validate:"omitempty,score"`
	UsualScore   *float64 `json:"usual_score" form:"usual_score" validate:"omitempty,score"`
	Semester     string   `json:"semester" form:"semester" validate:"omitempty,max=20"`
}

// AttendanceRecordRequest records one student's attendance on a date (YYYY-MM-DD)
type AttendanceRecordRequest struct {
	StudentID uint    `json:"student_id" validate:"required"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
}

// ===== ADMIN =====

// CourseUpdateRequest is a partial update; nil fields are left unchanged
type CourseUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Code        *string `json:"code" validate:"omitempty,notblank,max=20"`
	Credits     *int    `json:"credits"`
	TeacherID   *uint   `json:"teacher_id"`
	Classroom   *string `json:"classroom" validate:"omitempty,max=50"`
	Schedule    *string `json:"schedule" validate:"omitempty,max=200"`
	MaxStudents *int    `json:"max_students"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type NoticeCreateRequest struct {
	Title          string `json:"title" form:"title" validate:"required,notblank,max=200"`
	Content        string `json:"content" form:"content" validate:"required,notblank"`
	Priority       string `json:"priority" form:"priority" validate:"omitempty,notice_priority"`
	TargetAudience string `json:"target_audience" form:"target_audience" validate:"omitempty,notice_audience"`
}

type EnrollmentCreateRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
}

// ExamCreateRequest schedules an exam; Date is RFC3339
type ExamCreateRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=100"`
	ExamType    string  `json:"exam_type" validate:"required,exam_type"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Duration    int     `json:"duration" validate:"required,min=1,max=600"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	MaxScore    int     `json:"max_score" validate:"omitempty,min=1,max=1000"`
	Description *string `json:"description"`
}

// ===== AI =====

type ChatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}
