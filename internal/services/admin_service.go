package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
	"gorm.io/gorm"
)

const (
	DefaultLogPageSize = 50
	dateFilterLayout   = "2006-01-02"
)

type adminService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
	events    events.EventPublisher
	statsTTL  time.Duration
	now       func() time.Time
}

func NewAdminService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator,
	cacheManager *cache.CacheManager, publisher events.EventPublisher) AdminService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &adminService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		cache:     cacheManager,
		events:    publisher,
		statsTTL:  cache.StatsCacheConfig.TTL,
		now:       time.Now,
	}
}

// ===== USERS =====

func (s *adminService) Users(ctx context.Context, query UserListQuery) (*UserListResponse, error) {
	page, pageSize := normalizePage(query.Page, query.PageSize)

	filters := repositories.UserFilters{
		IsActive: query.IsActive,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if role := strings.TrimSpace(query.Role); role != "" {
		r := models.UserRole(role)
		if !r.IsValid() {
			return nil, ErrInvalidRole
		}
		filters.Role = &r
	}

	users, total, err := s.repo.User().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	items := make([]AdminUserItem, 0, len(users))
	for _, u := range users {
		items = append(items, AdminUserItem{UserSnapshot: models.SnapshotOf(u), CreatedAt: u.CreatedAt})
	}

	return &UserListResponse{
		Users:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// ToggleUserStatus flips is_active. Admin accounts cannot be toggled.
func (s *adminService) ToggleUserStatus(ctx context.Context, admin *models.User, userID uint) (*MessageResponse, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return nil, ErrAdminStatus
	}

	user.IsActive = !user.IsActive
	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	cache.InvalidateUserCache(ctx, s.cache, user.ID)

	verb := "deactivated"
	if user.IsActive {
		verb = "activated"
	}
	s.logger.Info("User status changed", "user_id", user.ID, "is_active", user.IsActive, "admin_id", admin.ID)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.UserStatusChanged, admin.ID,
			fmt.Sprintf("%s user %s", capitalize(verb), user.Username), "user", user.ID))

	return &MessageResponse{Message: fmt.Sprintf("User %s successfully", verb)}, nil
}

// ===== COURSES =====

func (s *adminService) Courses(ctx context.Context, page, pageSize int) (*CourseListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	courses, total, err := s.repo.Course().List(ctx, s.db, repositories.CourseFilters{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.Enrollment().CountActiveByCourses(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	items := make([]AdminCourseItem, 0, len(courses))
	for _, c := range courses {
		items = append(items, AdminCourseItem{
			ID:               c.ID,
			Name:             c.Name,
			Code:             c.Code,
			Teacher:          c.TeacherName(),
			Credits:          c.Credits,
			Classroom:        c.Classroom,
			Schedule:         c.Schedule,
			EnrolledStudents: counts[c.ID],
			MaxStudents:      c.MaxStudents,
			IsActive:         c.IsActive,
			CreatedAt:        c.CreatedAt,
		})
	}

	return &CourseListResponse{
		Courses:    items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// UpdateCourse applies a partial update. Checks run in a fixed order and the
// first failure is returned.
func (s *adminService) UpdateCourse(ctx context.Context, admin *models.User, courseID uint, req *CourseUpdateRequest) (*MessageResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.loadCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != course.Name {
			taken, err := s.repo.Course().ExistsByName(ctx, s.db, name, course.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check course name: %w", err)
			}
			if taken {
				return nil, ErrCourseNameTaken
			}
		}
		req.Name = &name
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code != course.Code {
			taken, err := s.repo.Course().ExistsByCode(ctx, s.db, code, course.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check course code: %w", err)
			}
			if taken {
				return nil, ErrCourseCodeTaken
			}
		}
		req.Code = &code
	}

	if req.Credits != nil {
		if errs := s.validator.GetBusinessValidator().ValidateCourseBounds(&CourseUpdateRequest{Credits: req.Credits}, 0); len(errs) > 0 {
			return nil, Errorf(KindValidation, "%s", errs[0].Message)
		}
	}

	if req.TeacherID != nil {
		if _, err := s.repo.Profile().GetTeacherByID(ctx, s.db, *req.TeacherID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrTeacherNotFound
			}
			return nil, fmt.Errorf("failed to load teacher: %w", err)
		}
	}

	if req.MaxStudents != nil {
		enrolled, err := s.repo.Enrollment().CountActive(ctx, s.db, course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count enrollments: %w", err)
		}
		if errs := s.validator.GetBusinessValidator().ValidateCourseBounds(&CourseUpdateRequest{MaxStudents: req.MaxStudents}, enrolled); len(errs) > 0 {
			return nil, Errorf(KindValidation, "%s", errs[0].Message)
		}
	}

	applyCourseUpdate(course, req)

	if err := s.repo.Course().Update(ctx, s.db, course); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrCourseNameTaken
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	cache.InvalidateStatsCache(ctx, s.cache)

	s.logger.Info("Course updated", "course_id", course.ID, "admin_id", admin.ID)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.CourseUpdated, admin.ID, fmt.Sprintf("Updated course: %s", course.Name), "course", course.ID))

	return &MessageResponse{Message: "Course updated successfully"}, nil
}

func applyCourseUpdate(course *models.Course, req *CourseUpdateRequest) {
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Code != nil {
		course.Code = *req.Code
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.TeacherID != nil {
		teacherID := *req.TeacherID
		course.TeacherID = &teacherID
		course.Teacher = nil
	}
	if req.Classroom != nil {
		course.Classroom = req.Classroom
	}
	if req.Schedule != nil {
		course.Schedule = req.Schedule
	}
	if req.MaxStudents != nil {
		course.MaxStudents = *req.MaxStudents
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
}

func (s *adminService) ToggleCourseStatus(ctx context.Context, admin *models.User, courseID uint) (*MessageResponse, error) {
	course, err := s.loadCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}

	course.IsActive = !course.IsActive
	if err := s.repo.Course().Update(ctx, s.db, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	cache.InvalidateStatsCache(ctx, s.cache)

	verb := "deactivated"
	if course.IsActive {
		verb = "activated"
	}
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.CourseStatusChanged, admin.ID,
			fmt.Sprintf("%s course: %s", capitalize(verb), course.Name), "course", course.ID))

	return &MessageResponse{Message: fmt.Sprintf("Course %s successfully", verb)}, nil
}

// Enroll adds a student to a course. The capacity check and the insert run
// in one transaction.
func (s *adminService) Enroll(ctx context.Context, admin *models.User, courseID uint, req *EnrollmentCreateRequest) (*CreatedResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var enrollment *models.Enrollment
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		course, err := s.loadCourse(ctx, tx, courseID)
		if err != nil {
			return err
		}

		if _, err := s.repo.Profile().GetStudentByID(ctx, tx, req.StudentID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to load student: %w", err)
		}

		if _, err := s.repo.Enrollment().GetActive(ctx, tx, req.StudentID, course.ID); err == nil {
			return ErrAlreadyEnrolled
		} else if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}

		enrolled, err := s.repo.Enrollment().CountActive(ctx, tx, course.ID)
		if err != nil {
			return fmt.Errorf("failed to count enrollments: %w", err)
		}
		if errs := s.validator.GetBusinessValidator().ValidateEnrollment(course, enrolled); len(errs) > 0 {
			return Errorf(KindValidation, "%s", errs[0].Message)
		}

		enrollment = &models.Enrollment{
			StudentID:      req.StudentID,
			CourseID:       course.ID,
			EnrollmentDate: s.now().UTC(),
			Status:         models.EnrollmentActive,
		}
		if err := s.repo.Enrollment().Create(ctx, tx, enrollment); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student enrolled", "enrollment_id", enrollment.ID, "course_id", courseID, "student_id", req.StudentID)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.EnrollmentCreated, admin.ID,
			fmt.Sprintf("Enrolled student #%d in course #%d", req.StudentID, courseID), "enrollment", enrollment.ID))

	return &CreatedResponse{Message: "Student enrolled successfully", ID: enrollment.ID, Key: "enrollment_id"}, nil
}

func (s *adminService) CreateExam(ctx context.Context, admin *models.User, courseID uint, req *ExamCreateRequest) (*CreatedResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, Errorf(KindValidation, "Exam date must be an RFC3339 timestamp")
	}

	course, err := s.loadCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, err
	}

	exam := &models.Exam{
		CourseID:    course.ID,
		Title:       strings.TrimSpace(req.Title),
		ExamType:    models.ExamType(req.ExamType),
		Date:        date.UTC(),
		Duration:    req.Duration,
		Location:    trimmedPtr(req.Location),
		MaxScore:    req.MaxScore,
		Description: req.Description,
	}
	if exam.MaxScore == 0 {
		exam.MaxScore = 100
	}

	if err := s.repo.Exam().Create(ctx, s.db, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.ExamCreated, admin.ID,
			fmt.Sprintf("Scheduled exam %s for course: %s", exam.Title, course.Name), "exam", exam.ID))

	return &CreatedResponse{Message: "Exam created successfully", ID: exam.ID, Key: "exam_id"}, nil
}

func (s *adminService) loadCourse(ctx context.Context, db *gorm.DB, courseID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, db, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	return course, nil
}

// ===== NOTICES =====

func (s *adminService) CreateNotice(ctx context.Context, admin *models.User, req *NoticeCreateRequest) (*CreatedResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	notice := &models.Notice{
		Title:          strings.TrimSpace(req.Title),
		Content:        req.Content,
		Priority:       models.NoticePriority(req.Priority),
		TargetAudience: models.NoticeAudience(req.TargetAudience),
		AuthorID:       admin.ID,
		IsActive:       true,
	}
	if notice.Priority == "" {
		notice.Priority = models.PriorityNormal
	}
	if notice.TargetAudience == "" {
		notice.TargetAudience = models.AudienceAll
	}

	if err := s.repo.Notice().Create(ctx, s.db, notice); err != nil {
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}

	cache.InvalidateStatsCache(ctx, s.cache)

	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.NoticeCreated, admin.ID, fmt.Sprintf("Published notice: %s", notice.Title), "notice", notice.ID).
			WithData("target_audience", notice.TargetAudience))

	return &CreatedResponse{Message: "Notice created successfully", ID: notice.ID, Key: "notice_id"}, nil
}

// ===== LOGS =====

func (s *adminService) Logs(ctx context.Context, query LogQuery) (*LogListResponse, error) {
	if query.PageSize < 1 {
		query.PageSize = DefaultLogPageSize
	}
	page, pageSize := normalizePage(query.Page, query.PageSize)

	filters := repositories.SystemLogFilters{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}

	if action := strings.TrimSpace(query.Action); action != "" {
		filters.Action = &action
	}

	if status := strings.TrimSpace(query.Status); status != "" {
		st := models.LogStatus(status)
		switch st {
		case models.LogSuccess, models.LogFailed, models.LogWarning:
			filters.Status = &st
		default:
			return nil, ErrInvalidLogStatus
		}
	}

	if query.StartDate != "" {
		from, err := time.Parse(dateFilterLayout, query.StartDate)
		if err != nil {
			return nil, ErrInvalidDateFilter
		}
		filters.DateFrom = &from
	}
	if query.EndDate != "" {
		end, err := time.Parse(dateFilterLayout, query.EndDate)
		if err != nil {
			return nil, ErrInvalidDateFilter
		}
		// inclusive of the whole end day
		to := end.Add(24*time.Hour - time.Nanosecond)
		filters.DateTo = &to
	}

	logs, total, err := s.repo.SystemLog().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	items := make([]LogItem, 0, len(logs))
	for _, l := range logs {
		item := LogItem{
			ID:           l.ID,
			User:         systemActor,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			IPAddress:    l.IPAddress,
			Status:       l.Status,
			CreatedAt:    l.CreatedAt,
		}
		if l.User != nil {
			item.User = l.User.FullName
		}
		if len(l.Details) > 0 {
			var details interface{}
			if err := json.Unmarshal(l.Details, &details); err != nil {
				s.logger.Warn("Skipping malformed log details", "log_id", l.ID, "error", err)
			} else {
				item.Details = details
			}
		}
		items = append(items, item)
	}

	return &LogListResponse{
		Logs:       items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
