package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/validator"
	"gorm.io/gorm"
)

const (
	DefaultSemester = "2024-1"

	recentGradesLimit      = 10
	dashboardNoticeLimit   = 5
	attendancePreviewLimit = 4
)

// Score weights of the grade parts
const (
	midtermWeight = 0.3
	finalWeight   = 0.5
	usualWeight   = 0.2
)

var gpaBands = []struct {
	min float64
	gpa float64
}{
	{90, 4.0},
	{85, 3.7},
	{82, 3.3},
	{78, 3.0},
	{75, 2.7},
	{72, 2.3},
	{68, 2.0},
	{64, 1.5},
	{60, 1.0},
}

// TotalScore weights the present parts; missing parts contribute nothing
func TotalScore(midterm, final, usual *float64) float64 {
	var total float64
	if midterm != nil {
		total += *midterm * midtermWeight
	}
	if final != nil {
		total += *final * finalWeight
	}
	if usual != nil {
		total += *usual * usualWeight
	}
	return roundFloat(total, 2)
}

// CalculateGPA maps a total score onto the 4.0 scale
func CalculateGPA(total float64) float64 {
	for _, band := range gpaBands {
		if total >= band.min {
			return band.gpa
		}
	}
	return 0
}

// academicYear is the year prefix of a semester such as "2024-1"
func academicYear(semester string) string {
	return strings.SplitN(semester, "-", 2)[0]
}

type teacherService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	events    events.EventPublisher
	now       func() time.Time
}

func NewTeacherService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) TeacherService {
	return &teacherService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		events:    publisher,
		now:       time.Now,
	}
}

func (s *teacherService) Dashboard(ctx context.Context, actor *models.User) (*TeacherDashboard, error) {
	teacher, err := teacherOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	courses, counts, err := s.coursesWithCounts(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}

	dashboard := &TeacherDashboard{
		TeacherInfo: TeacherInfo{
			Name:       actor.FullName,
			TeacherID:  teacher.TeacherID,
			Department: teacher.Department,
			Title:      teacher.Title,
			Email:      actor.Email,
		},
		Courses:           make([]TeacherDashCourse, 0, len(courses)),
		RecentGrades:      []RecentGrade{},
		TodaySchedule:     []TodayClass{},
		StudentAttendance: []AttendanceRate{},
		Notices:           []NoticeItem{},
	}

	today := s.now().Weekday().String()
	for _, c := range courses {
		className := c.Name + " class"
		dashboard.Courses = append(dashboard.Courses, TeacherDashCourse{
			ID:       c.ID,
			Name:     c.Name,
			Class:    className,
			Students: counts[c.ID],
			Time:     c.Schedule,
			Room:     c.Classroom,
			Credits:  c.Credits,
		})
		dashboard.Stats.TotalStudents += counts[c.ID]

		if strings.Contains(stringValue(c.Schedule), today) {
			dashboard.TodaySchedule = append(dashboard.TodaySchedule, TodayClass{
				Course: c.Name,
				Time:   c.Schedule,
				Room:   c.Classroom,
				Class:  className,
			})
		}
	}

	grades, err := s.repo.Grade().ListRecentByTeacher(ctx, s.db, teacher.ID, recentGradesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent grades: %w", err)
	}
	for _, g := range grades {
		item := RecentGrade{
			Course: courseName(g.Course),
			Score:  g.TotalScore,
			Date:   g.GradedAt.Format("2006-01-02"),
			Status: g.Status,
		}
		if g.Student != nil && g.Student.User != nil {
			item.Student = g.Student.User.FullName
		}
		dashboard.RecentGrades = append(dashboard.RecentGrades, item)
	}

	// a short preview: stop after the course that reaches the cap
	var rateSum float64
	for _, c := range courses {
		summaries, err := s.repo.Attendance().SummaryByCourse(ctx, s.db, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize attendance: %w", err)
		}
		for _, sum := range summaries {
			if sum.Total == 0 {
				continue
			}
			rate := roundFloat(float64(sum.Present)/float64(sum.Total)*100, 1)
			dashboard.StudentAttendance = append(dashboard.StudentAttendance, AttendanceRate{
				Student: sum.FullName,
				Total:   sum.Total,
				Present: sum.Present,
				Absent:  sum.Absent,
				Rate:    rate,
			})
			rateSum += rate
		}
		if len(dashboard.StudentAttendance) >= attendancePreviewLimit {
			break
		}
	}

	notices, err := s.repo.Notice().ListActive(ctx, s.db,
		[]models.NoticeAudience{models.AudienceAll, models.AudienceTeachers}, dashboardNoticeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	for _, n := range notices {
		dashboard.Notices = append(dashboard.Notices, NoticeItem{
			ID:     n.ID,
			Title:  n.Title,
			Date:   n.CreatedAt.Format("2006-01-02"),
			Urgent: n.Priority == models.PriorityUrgent,
		})
	}

	pending, err := s.repo.Grade().CountByTeacherAndStatus(ctx, s.db, teacher.ID, models.GradeDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending grades: %w", err)
	}

	dashboard.Stats.TotalCourses = len(courses)
	dashboard.Stats.PendingGrades = pending
	dashboard.Stats.TodayClasses = len(dashboard.TodaySchedule)
	if n := len(dashboard.StudentAttendance); n > 0 {
		dashboard.Stats.AverageAttendance = roundFloat(rateSum/float64(n), 1)
	}

	return dashboard, nil
}

func (s *teacherService) Courses(ctx context.Context, actor *models.User) ([]TeacherCourseItem, error) {
	teacher, err := teacherOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	courses, counts, err := s.coursesWithCounts(ctx, teacher.ID)
	if err != nil {
		return nil, err
	}

	items := make([]TeacherCourseItem, 0, len(courses))
	for _, c := range courses {
		items = append(items, TeacherCourseItem{
			ID:               c.ID,
			Name:             c.Name,
			Code:             c.Code,
			Description:      c.Description,
			Credits:          c.Credits,
			Schedule:         c.Schedule,
			Classroom:        c.Classroom,
			MaxStudents:      c.MaxStudents,
			EnrolledStudents: counts[c.ID],
			IsActive:         c.IsActive,
			CreatedAt:        c.CreatedAt,
		})
	}
	return items, nil
}

func (s *teacherService) CourseStudents(ctx context.Context, actor *models.User, courseID uint) ([]CourseStudentItem, error) {
	teacher, err := teacherOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedCourse(ctx, s.db, courseID, teacher.ID); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment().ListActiveByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course students: %w", err)
	}

	items := make([]CourseStudentItem, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Student == nil {
			continue
		}
		item := CourseStudentItem{
			ID:             e.Student.ID,
			StudentID:      e.Student.StudentID,
			ClassName:      e.Student.ClassName,
			EnrollmentDate: e.EnrollmentDate,
		}
		if e.Student.User != nil {
			item.Name = e.Student.User.FullName
			item.Email = e.Student.User.Email
		}
		items = append(items, item)
	}
	return items, nil
}

// SubmitGrade upserts the grade keyed by (student, course, semester).
// Omitted parts keep their stored value and the total is recomputed from
// the parts present after the merge.
func (s *teacherService) SubmitGrade(ctx context.Context, actor *models.User, req *GradeSubmitRequest) (*GradeSubmitResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	semester := strings.TrimSpace(req.Semester)
	if semester == "" {
		semester = DefaultSemester
	}

	teacher, err := teacherOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	var grade *models.Grade
	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.ownedCourse(ctx, tx, req.CourseID, teacher.ID); err != nil {
			return err
		}
		if err := s.requireEnrollment(ctx, tx, req.StudentID, req.CourseID); err != nil {
			return err
		}

		existing, err := s.repo.Grade().GetByKey(ctx, tx, req.StudentID, req.CourseID, semester)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to load grade: %w", err)
		}

		grade = existing
		if grade == nil {
			grade = &models.Grade{
				StudentID:    req.StudentID,
				CourseID:     req.CourseID,
				Semester:     semester,
				AcademicYear: academicYear(semester),
			}
		}
		if req.MidtermScore != nil {
			grade.MidtermScore = req.MidtermScore
		}
		if req.FinalScore != nil {
			grade.FinalScore = req.FinalScore
		}
		if req.UsualScore != nil {
			grade.UsualScore = req.UsualScore
		}
		grade.TotalScore = TotalScore(grade.MidtermScore, grade.FinalScore, grade.UsualScore)
		grade.GPA = CalculateGPA(grade.TotalScore)
		grade.GradedAt = s.now().UTC()
		grade.Status = models.GradeSubmitted

		if existing != nil {
			err = s.repo.Grade().Update(ctx, tx, grade)
		} else {
			err = s.repo.Grade().Create(ctx, tx, grade)
		}
		if err != nil {
			if repositories.IsDuplicateError(err) {
				return Errorf(KindConflict, "Grade was submitted concurrently, please retry")
			}
			return fmt.Errorf("failed to save grade: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Grade submitted", "grade_id", grade.ID, "teacher_id", teacher.ID, "total", grade.TotalScore)
	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.GradeSubmitted, actor.ID, "Submitted grade", "grade", grade.ID).
			WithData("student_id", grade.StudentID).
			WithData("course_id", grade.CourseID).
			WithData("semester", grade.Semester))

	return &GradeSubmitResponse{
		Message:    "Grade submitted successfully",
		TotalScore: grade.TotalScore,
		GPA:        grade.GPA,
	}, nil
}

func (s *teacherService) CourseAttendance(ctx context.Context, actor *models.User, courseID uint) ([]AttendanceItem, error) {
	teacher, err := teacherOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedCourse(ctx, s.db, courseID, teacher.ID); err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance().ListByCourse(ctx, s.db, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	items := make([]AttendanceItem, 0, len(records))
	for _, a := range records {
		item := AttendanceItem{
			ID:     a.ID,
			Date:   a.Date.Format("2006-01-02"),
			Status: a.Status,
			Notes:  a.Notes,
		}
		if a.Student != nil {
			item.StudentID = a.Student.StudentID
			if a.Student.User != nil {
				item.Student = a.Student.User.FullName
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// RecordAttendance upserts one attendance row keyed by (student, course, date)
func (s *teacherService) RecordAttendance(ctx context.Context, actor *models.User, courseID uint, req *AttendanceRecordRequest) (*CreatedResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, Errorf(KindValidation, "Date must use the YYYY-MM-DD format")
	}

	teacher, err := teacherOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	var record *models.Attendance
	err = withTx(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.ownedCourse(ctx, tx, courseID, teacher.ID); err != nil {
			return err
		}
		if err := s.requireEnrollment(ctx, tx, req.StudentID, courseID); err != nil {
			return err
		}

		existing, err := s.repo.Attendance().GetByKey(ctx, tx, req.StudentID, courseID, date)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to load attendance: %w", err)
		}

		if existing != nil {
			existing.Status = models.AttendanceStatus(req.Status)
			existing.Notes = trimmedPtr(req.Notes)
			record = existing
			return s.repo.Attendance().Update(ctx, tx, record)
		}

		record = &models.Attendance{
			StudentID: req.StudentID,
			CourseID:  courseID,
			Date:      date,
			Status:    models.AttendanceStatus(req.Status),
			Notes:     trimmedPtr(req.Notes),
		}
		return s.repo.Attendance().Create(ctx, tx, record)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, Errorf(KindConflict, "Attendance was recorded concurrently, please retry")
		}
		return nil, err
	}

	publishEvent(ctx, s.events, s.logger,
		events.NewEvent(events.AttendanceRecorded, actor.ID, "Recorded attendance", "attendance", record.ID).
			WithData("course_id", courseID).
			WithData("date", req.Date))

	return &CreatedResponse{Message: "Attendance recorded successfully", ID: record.ID, Key: "attendance_id"}, nil
}

func (s *teacherService) coursesWithCounts(ctx context.Context, teacherID uint) ([]*models.Course, map[uint]int64, error) {
	courses, _, err := s.repo.Course().List(ctx, s.db, repositories.CourseFilters{TeacherID: &teacherID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list courses: %w", err)
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	counts, err := s.repo.Enrollment().CountActiveByCourses(ctx, s.db, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return courses, counts, nil
}

func (s *teacherService) ownedCourse(ctx context.Context, db *gorm.DB, courseID, teacherID uint) (*models.Course, error) {
	course, err := s.repo.Course().GetOwned(ctx, db, courseID, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotOwned
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	return course, nil
}

func (s *teacherService) requireEnrollment(ctx context.Context, db *gorm.DB, studentID, courseID uint) error {
	if _, err := s.repo.Enrollment().GetActive(ctx, db, studentID, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotEnrolled
		}
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	return nil
}
