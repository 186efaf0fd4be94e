package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"gorm.io/gorm"
)

type studentService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) StudentService {
	return &studentService{
		repo:   repo,
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Dashboard aggregates the caller's courses, grades and upcoming exams
func (s *studentService) Dashboard(ctx context.Context, actor *models.User) (*StudentDashboard, error) {
	student, err := studentOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment().ListActiveByStudent(ctx, s.db, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	grades, err := s.repo.Grade().ListByStudent(ctx, s.db, student.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	now := s.now().UTC()
	exams, err := s.repo.Exam().ListForStudent(ctx, s.db, student.ID, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	dashboard := &StudentDashboard{
		StudentInfo: StudentInfo{
			Name:      actor.FullName,
			StudentID: student.StudentID,
			ClassName: student.ClassName,
			Email:     actor.Email,
		},
		Courses:       make([]DashboardCourse, 0, len(enrollments)),
		Grades:        make([]DashboardGrade, 0, len(grades)),
		UpcomingExams: make([]DashboardExam, 0, len(exams)),
	}

	for _, e := range enrollments {
		if e.Course == nil {
			continue
		}
		dashboard.Courses = append(dashboard.Courses, DashboardCourse{
			ID:      e.Course.ID,
			Name:    e.Course.Name,
			Teacher: e.Course.TeacherName(),
			Time:    e.Course.Schedule,
			Room:    e.Course.Classroom,
			Credits: e.Course.Credits,
		})
		dashboard.Stats.TotalCredits += e.Course.Credits
	}
	dashboard.Stats.TotalCourses = len(dashboard.Courses)

	var gpaSum float64
	for _, g := range grades {
		dashboard.Grades = append(dashboard.Grades, DashboardGrade{
			Course:  courseName(g.Course),
			Midterm: g.MidtermScore,
			Final:   g.FinalScore,
			Usual:   g.UsualScore,
			Total:   g.TotalScore,
			GPA:     g.GPA,
		})
		gpaSum += g.GPA
	}
	if len(grades) > 0 {
		dashboard.Stats.AverageGPA = roundFloat(gpaSum/float64(len(grades)), 2)
	}

	for _, exam := range exams {
		dashboard.UpcomingExams = append(dashboard.UpcomingExams, DashboardExam{
			Course: courseName(exam.Course),
			Date:   exam.Date.Format("2006-01-02"),
			Time:   exam.Date.Format("15:04") + "-" + exam.EndsAt().Format("15:04"),
			Room:   exam.Location,
		})
	}

	return dashboard, nil
}

func (s *studentService) Courses(ctx context.Context, actor *models.User) ([]StudentCourseItem, error) {
	student, err := studentOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment().ListActiveByStudent(ctx, s.db, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	items := make([]StudentCourseItem, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course == nil {
			continue
		}
		items = append(items, StudentCourseItem{
			ID:             e.Course.ID,
			Name:           e.Course.Name,
			Code:           e.Course.Code,
			Teacher:        e.Course.TeacherName(),
			Schedule:       e.Course.Schedule,
			Classroom:      e.Course.Classroom,
			Credits:        e.Course.Credits,
			Description:    e.Course.Description,
			EnrollmentDate: e.EnrollmentDate,
		})
	}
	return items, nil
}

// Grades lists the caller's grades, optionally for one semester
func (s *studentService) Grades(ctx context.Context, actor *models.User, semester *string) ([]StudentGradeItem, error) {
	student, err := studentOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	grades, err := s.repo.Grade().ListByStudent(ctx, s.db, student.ID, trimmedPtr(semester))
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	items := make([]StudentGradeItem, 0, len(grades))
	for _, g := range grades {
		item := StudentGradeItem{
			ID:           g.ID,
			Course:       courseName(g.Course),
			MidtermScore: g.MidtermScore,
			FinalScore:   g.FinalScore,
			UsualScore:   g.UsualScore,
			TotalScore:   g.TotalScore,
			GPA:          g.GPA,
			Semester:     g.Semester,
			AcademicYear: g.AcademicYear,
			GradedAt:     g.GradedAt,
			Status:       g.Status,
		}
		if g.Course != nil {
			item.CourseCode = g.Course.Code
		}
		items = append(items, item)
	}
	return items, nil
}

// Schedule lists enrolled courses that have a schedule set
func (s *studentService) Schedule(ctx context.Context, actor *models.User) ([]ScheduleItem, error) {
	student, err := studentOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment().ListActiveByStudent(ctx, s.db, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	items := make([]ScheduleItem, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course == nil || stringValue(e.Course.Schedule) == "" {
			continue
		}
		items = append(items, ScheduleItem{
			CourseID:   e.Course.ID,
			CourseName: e.Course.Name,
			Teacher:    e.Course.TeacherName(),
			Schedule:   e.Course.Schedule,
			Classroom:  e.Course.Classroom,
			Credits:    e.Course.Credits,
		})
	}
	return items, nil
}

func (s *studentService) Exams(ctx context.Context, actor *models.User) ([]StudentExamItem, error) {
	student, err := studentOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	exams, err := s.repo.Exam().ListForStudent(ctx, s.db, student.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	items := make([]StudentExamItem, 0, len(exams))
	for _, exam := range exams {
		items = append(items, StudentExamItem{
			ID:          exam.ID,
			Course:      courseName(exam.Course),
			Title:       exam.Title,
			ExamType:    exam.ExamType,
			Date:        exam.Date,
			Duration:    exam.Duration,
			Location:    exam.Location,
			MaxScore:    exam.MaxScore,
			Description: exam.Description,
		})
	}
	return items, nil
}

func (s *studentService) Profile(ctx context.Context, actor *models.User) (*StudentProfileResponse, error) {
	student, err := studentOf(ctx, s.repo, s.db, actor)
	if err != nil {
		return nil, err
	}

	return &StudentProfileResponse{
		ID:             student.ID,
		StudentID:      student.StudentID,
		FullName:       actor.FullName,
		Email:          actor.Email,
		ClassName:      student.ClassName,
		EnrollmentYear: student.EnrollmentYear,
		Phone:          student.Phone,
		Address:        student.Address,
	}, nil
}

func courseName(c *models.Course) string {
	if c == nil {
		return ""
	}
	return c.Name
}
