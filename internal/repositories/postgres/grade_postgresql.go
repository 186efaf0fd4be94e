package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type gradePostgreSQL struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &gradePostgreSQL{db: db}
}

func (r *gradePostgreSQL) Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Student", "Course").Create(grade).Error; err != nil {
		return handleDBError(err, "create grade")
	}
	return nil
}

func (r *gradePostgreSQL) Update(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Student", "Course").Save(grade).Error; err != nil {
		return handleDBError(err, "update grade")
	}
	return nil
}

func (r *gradePostgreSQL) GetByKey(ctx context.Context, tx *gorm.DB, studentID, courseID uint, semester string) (*models.Grade, error) {
	db := pickDB(r.db, tx)
	var grade models.Grade
	if err := db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND semester = ?", studentID, courseID, semester).
		First(&grade).Error; err != nil {
		return nil, handleDBError(err, "get grade by key")
	}
	return &grade, nil
}

func (r *gradePostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint, semester *string) ([]*models.Grade, error) {
	db := pickDB(r.db, tx)
	var grades []*models.Grade

	query := db.WithContext(ctx).Preload("Course").Where("student_id = ?", studentID)
	if semester != nil {
		query = query.Where("semester = ?", *semester)
	}

	if err := query.Order("id ASC").Find(&grades).Error; err != nil {
		return nil, handleDBError(err, "list student grades")
	}
	return grades, nil
}

func (r *gradePostgreSQL) ListRecentByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint, limit int) ([]*models.Grade, error) {
	db := pickDB(r.db, tx)
	var grades []*models.Grade

	query := db.WithContext(ctx).
		Preload("Student.User").
		Preload("Course").
		Joins("JOIN courses ON courses.id = grades.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Order("grades.graded_at DESC")

	if err := applyPagination(query, limit, 0).Find(&grades).Error; err != nil {
		return nil, handleDBError(err, "list recent grades by teacher")
	}
	return grades, nil
}

func (r *gradePostgreSQL) ListAll(ctx context.Context, tx *gorm.DB) ([]*models.Grade, error) {
	db := pickDB(r.db, tx)
	var grades []*models.Grade
	if err := db.WithContext(ctx).
		Preload("Student.User").
		Preload("Course").
		Order("id ASC").
		Find(&grades).Error; err != nil {
		return nil, handleDBError(err, "list grades")
	}
	return grades, nil
}

func (r *gradePostgreSQL) CountByTeacherAndStatus(ctx context.Context, tx *gorm.DB, teacherID uint, status models.GradeStatus) (int64, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Grade{}).
		Joins("JOIN courses ON courses.id = grades.course_id").
		Where("courses.teacher_id = ? AND grades.status = ?", teacherID, status).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count grades by status")
	}
	return count, nil
}

// ===== ATTENDANCE =====

type attendancePostgreSQL struct {
	db *gorm.DB
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &attendancePostgreSQL{db: db}
}

func (r *attendancePostgreSQL) Create(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Student", "Course").Create(attendance).Error; err != nil {
		return handleDBError(err, "create attendance")
	}
	return nil
}

func (r *attendancePostgreSQL) Update(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Student", "Course").Save(attendance).Error; err != nil {
		return handleDBError(err, "update attendance")
	}
	return nil
}

func (r *attendancePostgreSQL) GetByKey(ctx context.Context, tx *gorm.DB, studentID, courseID uint, date time.Time) (*models.Attendance, error) {
	db := pickDB(r.db, tx)
	var attendance models.Attendance
	if err := db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND date = ?", studentID, courseID, date).
		First(&attendance).Error; err != nil {
		return nil, handleDBError(err, "get attendance by key")
	}
	return &attendance, nil
}

func (r *attendancePostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Attendance, error) {
	db := pickDB(r.db, tx)
	var records []*models.Attendance
	if err := db.WithContext(ctx).
		Preload("Student.User").
		Where("course_id = ?", courseID).
		Order("date ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list course attendance")
	}
	return records, nil
}

func (r *attendancePostgreSQL) SummaryByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]repositories.AttendanceSummary, error) {
	db := pickDB(r.db, tx)
	var summaries []repositories.AttendanceSummary

	if err := db.WithContext(ctx).
		Table("attendances").
		Select(`attendances.student_id AS student_id,
			users.full_name AS full_name,
			COUNT(attendances.id) AS total,
			SUM(CASE WHEN attendances.status = ? THEN 1 ELSE 0 END) AS present,
			SUM(CASE WHEN attendances.status = ? THEN 1 ELSE 0 END) AS absent`,
			models.AttendancePresent, models.AttendanceAbsent).
		Joins("JOIN students ON students.id = attendances.student_id").
		Joins("JOIN users ON users.id = students.user_id").
		Where("attendances.course_id = ?", courseID).
		Group("attendances.student_id, users.full_name").
		Order("attendances.student_id ASC").
		Scan(&summaries).Error; err != nil {
		return nil, handleDBError(err, "summarize course attendance")
	}
	return summaries, nil
}

// ===== EXAMS =====

type examPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &examPostgreSQL{db: db}
}

func (r *examPostgreSQL) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Course").Create(exam).Error; err != nil {
		return handleDBError(err, "create exam")
	}
	return nil
}

func (r *examPostgreSQL) ListForStudent(ctx context.Context, tx *gorm.DB, studentID uint, after *time.Time) ([]*models.Exam, error) {
	db := pickDB(r.db, tx)
	var exams []*models.Exam

	query := db.WithContext(ctx).
		Preload("Course").
		Joins("JOIN enrollments ON enrollments.course_id = exams.course_id").
		Where("enrollments.student_id = ? AND enrollments.status = ?", studentID, models.EnrollmentActive)
	if after != nil {
		query = query.Where("exams.date > ?", *after)
	}

	if err := query.Order("exams.date ASC").Find(&exams).Error; err != nil {
		return nil, handleDBError(err, "list student exams")
	}
	return exams, nil
}
