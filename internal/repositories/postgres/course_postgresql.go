package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type coursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &coursePostgreSQL{db: db}
}

func (r *coursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Teacher").Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}
	return nil
}

func (r *coursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := pickDB(r.db, tx)
	var course models.Course
	if err := db.WithContext(ctx).Preload("Teacher.User").First(&course, id).Error; err != nil {
		return nil, handleDBError(err, "get course by id")
	}
	return &course, nil
}

func (r *coursePostgreSQL) GetOwned(ctx context.Context, tx *gorm.DB, id uint, teacherID uint) (*models.Course, error) {
	db := pickDB(r.db, tx)
	var course models.Course
	if err := db.WithContext(ctx).
		Preload("Teacher.User").
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&course).Error; err != nil {
		return nil, handleDBError(err, "get owned course")
	}
	return &course, nil
}

func (r *coursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Teacher").Save(course).Error; err != nil {
		return handleDBError(err, "update course")
	}
	return nil
}

func (r *coursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := pickDB(r.db, tx)
	var courses []*models.Course
	var total int64

	query := db.WithContext(ctx).Model(&models.Course{})
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	query = applyPagination(query.Order("id ASC"), filters.Limit, filters.Offset)
	if err := query.Preload("Teacher.User").Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "list courses")
	}

	return courses, total, nil
}

func (r *coursePostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID uint) (bool, error) {
	return r.existsOther(ctx, tx, "name = ?", name, excludeID)
}

func (r *coursePostgreSQL) ExistsByCode(ctx context.Context, tx *gorm.DB, code string, excludeID uint) (bool, error) {
	return r.existsOther(ctx, tx, "code = ?", code, excludeID)
}

func (r *coursePostgreSQL) existsOther(ctx context.Context, tx *gorm.DB, cond string, arg interface{}, excludeID uint) (bool, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where(cond, arg).
		Where("id <> ?", excludeID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check course exists")
	}
	return count > 0, nil
}

// ===== ENROLLMENTS =====

type enrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &enrollmentPostgreSQL{db: db}
}

func (r *enrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Student", "Course").Create(enrollment).Error; err != nil {
		return handleDBError(err, "create enrollment")
	}
	return nil
}

func (r *enrollmentPostgreSQL) GetActive(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, error) {
	db := pickDB(r.db, tx)
	var enrollment models.Enrollment
	if err := db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, models.EnrollmentActive).
		First(&enrollment).Error; err != nil {
		return nil, handleDBError(err, "get active enrollment")
	}
	return &enrollment, nil
}

func (r *enrollmentPostgreSQL) ListActiveByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Enrollment, error) {
	db := pickDB(r.db, tx)
	var enrollments []*models.Enrollment
	if err := db.WithContext(ctx).
		Preload("Course.Teacher.User").
		Where("student_id = ? AND status = ?", studentID, models.EnrollmentActive).
		Order("id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, handleDBError(err, "list student enrollments")
	}
	return enrollments, nil
}

func (r *enrollmentPostgreSQL) ListActiveByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Enrollment, error) {
	db := pickDB(r.db, tx)
	var enrollments []*models.Enrollment
	if err := db.WithContext(ctx).
		Preload("Student.User").
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentActive).
		Order("id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, handleDBError(err, "list course enrollments")
	}
	return enrollments, nil
}

func (r *enrollmentPostgreSQL) CountActive(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentActive).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count active enrollments")
	}
	return count, nil
}

func (r *enrollmentPostgreSQL) CountActiveByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	type row struct {
		CourseID uint
		Count    int64
	}
	var rows []row

	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS count").
		Where("course_id IN ? AND status = ?", courseIDs, models.EnrollmentActive).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "count enrollments by course")
	}

	for _, item := range rows {
		counts[item.CourseID] = item.Count
	}
	return counts, nil
}
