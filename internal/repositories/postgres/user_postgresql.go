package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type userPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userPostgreSQL{db: db}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *userPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := pickDB(r.db, tx)
	var user models.User

	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		First(&user, id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}

	return &user, nil
}

func (r *userPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	db := pickDB(r.db, tx)
	var user models.User

	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by username")
	}

	return &user, nil
}

func (r *userPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	db := pickDB(r.db, tx)
	var users []*models.User
	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, handleDBError(err, "get users by ids")
	}

	return users, nil
}

func (r *userPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Student", "Teacher").Save(user).Error; err != nil {
		return handleDBError(err, "update user")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *userPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := pickDB(r.db, tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPagination(query.Order("id ASC"), filters.Limit, filters.Offset)
	if err := query.Preload("Student").Preload("Teacher").Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (r *userPostgreSQL) Search(ctx context.Context, tx *gorm.DB, query string, excludeID uint, limit int) ([]*models.User, error) {
	db := pickDB(r.db, tx)
	var users []*models.User

	pattern := containsPattern(query)
	q := db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Where("id <> ?", excludeID).
		Where(
			db.Where(`LOWER(username) LIKE ? ESCAPE '\'`, pattern).
				Or(`LOWER(full_name) LIKE ? ESCAPE '\'`, pattern).
				Or(`LOWER(email) LIKE ? ESCAPE '\'`, pattern),
		).
		Order("id ASC")

	if err := applyPagination(q, limit, 0).Find(&users).Error; err != nil {
		return nil, handleDBError(err, "search users")
	}

	return users, nil
}

// ===== VALIDATION OPERATIONS =====

func (r *userPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	return r.exists(ctx, tx, "id = ?", id)
}

func (r *userPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	return r.exists(ctx, tx, "username = ?", username)
}

func (r *userPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return r.exists(ctx, tx, "email = ?", email)
}

func (r *userPostgreSQL) exists(ctx context.Context, tx *gorm.DB, cond string, arg interface{}) (bool, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where(cond, arg).Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user exists")
	}
	return count > 0, nil
}

// ===== PROFILES =====

type profilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &profilePostgreSQL{db: db}
}

func (r *profilePostgreSQL) CreateStudent(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("User").Create(student).Error; err != nil {
		return handleDBError(err, "create student profile")
	}
	return nil
}

func (r *profilePostgreSQL) CreateTeacher(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("User").Create(teacher).Error; err != nil {
		return handleDBError(err, "create teacher profile")
	}
	return nil
}

func (r *profilePostgreSQL) GetStudentByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Student, error) {
	db := pickDB(r.db, tx)
	var student models.Student
	if err := db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&student).Error; err != nil {
		return nil, handleDBError(err, "get student by user id")
	}
	return &student, nil
}

func (r *profilePostgreSQL) GetStudentByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := pickDB(r.db, tx)
	var student models.Student
	if err := db.WithContext(ctx).Preload("User").First(&student, id).Error; err != nil {
		return nil, handleDBError(err, "get student by id")
	}
	return &student, nil
}

func (r *profilePostgreSQL) GetTeacherByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Teacher, error) {
	db := pickDB(r.db, tx)
	var teacher models.Teacher
	if err := db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&teacher).Error; err != nil {
		return nil, handleDBError(err, "get teacher by user id")
	}
	return &teacher, nil
}

func (r *profilePostgreSQL) GetTeacherByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	db := pickDB(r.db, tx)
	var teacher models.Teacher
	if err := db.WithContext(ctx).Preload("User").First(&teacher, id).Error; err != nil {
		return nil, handleDBError(err, "get teacher by id")
	}
	return &teacher, nil
}

func (r *profilePostgreSQL) StudentNumberExists(ctx context.Context, tx *gorm.DB, studentID string) (bool, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Student{}).Where("student_id = ?", studentID).Count(&count).Error; err != nil {
		return false, handleDBError(err, "check student number")
	}
	return count > 0, nil
}

func (r *profilePostgreSQL) TeacherNumberExists(ctx context.Context, tx *gorm.DB, teacherID string) (bool, error) {
	db := pickDB(r.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Teacher{}).Where("teacher_id = ?", teacherID).Count(&count).Error; err != nil {
		return false, handleDBError(err, "check teacher number")
	}
	return count > 0, nil
}
