package models

import (
	"time"
)

type GradeStatus string

const (
	GradeDraft     GradeStatus = "draft"
	GradeSubmitted GradeStatus = "submitted"
	GradeApproved  GradeStatus = "approved"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

type ExamType string

const (
	ExamMidterm ExamType = "midterm"
	ExamFinal   ExamType = "final"
	ExamQuiz    ExamType = "quiz"
)

type Grade struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	StudentID    uint        `json:"student_id" gorm:"not null;uniqueIndex:idx_grade_student_course_semester"`
	CourseID     uint        `json:"course_id" gorm:"not null;uniqueIndex:idx_grade_student_course_semester;index"`
	MidtermScore *float64    `json:"midterm_score"`
	FinalScore   *float64    `json:"final_score"`
	UsualScore   *float64    `json:"usual_score"`
	TotalScore   float64     `json:"total_score"`
	GPA          float64     `json:"gpa"`
	Semester     string      `json:"semester" gorm:"not null;size:20;uniqueIndex:idx_grade_student_course_semester"`
	AcademicYear string      `json:"academic_year" gorm:"size:10"`
	GradedAt     time.Time   `json:"graded_at" gorm:"not null;index"`
	Status       GradeStatus `json:"status" gorm:"not null;size:20;default:draft;index"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Grade) TableName() string {
	return "grades"
}

type Attendance struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	StudentID uint             `json:"student_id" gorm:"not null;uniqueIndex:idx_attendance_student_course_date"`
	CourseID  uint             `json:"course_id" gorm:"not null;uniqueIndex:idx_attendance_student_course_date;index"`
	Date      time.Time        `json:"date" gorm:"not null;uniqueIndex:idx_attendance_student_course_date"`
	Status    AttendanceStatus `json:"status" gorm:"not null;size:20"`
	Notes     *string          `json:"notes" gorm:"type:text"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type Exam struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CourseID    uint      `json:"course_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null;size:100"`
	ExamType    ExamType  `json:"exam_type" gorm:"not null;size:20"`
	Date        time.Time `json:"date" gorm:"not null;index"`
	Duration    int       `json:"duration" gorm:"not null"` // minutes
	Location    *string   `json:"location" gorm:"size:100"`
	MaxScore    int       `json:"max_score" gorm:"not null;default:100"`
	Description *string   `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Exam) TableName() string {
	return "exams"
}

// EndsAt is the scheduled end of the exam.
func (e *Exam) EndsAt() time.Time {
	return e.Date.Add(time.Duration(e.Duration) * time.Minute)
}
