package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	usersSheet  = "Users"
	gradesSheet = "Grades"
)

var (
	userExportHeader  = []interface{}{"ID", "Username", "Full Name", "Email", "Role", "Active", "Student ID", "Teacher ID", "Created At"}
	gradeExportHeader = []interface{}{"ID", "Student ID", "Student", "Course Code", "Course", "Midterm", "Final", "Usual", "Total", "GPA", "Semester", "Status"}
)

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ExportUsers renders every account into a single-sheet xlsx workbook
func (s *exportService) ExportUsers(ctx context.Context) ([]byte, error) {
	users, _, err := s.repo.User().List(ctx, s.db, repositories.UserFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		var studentID, teacherID string
		if u.Student != nil {
			studentID = u.Student.StudentID
		}
		if u.Teacher != nil {
			teacherID = u.Teacher.TeacherID
		}
		rows = append(rows, []interface{}{
			u.ID, u.Username, u.FullName, u.Email, string(u.Role), u.IsActive,
			studentID, teacherID, u.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	s.logger.Info("Exporting users", "count", len(rows))
	return writeWorkbook(usersSheet, userExportHeader, rows)
}

func (s *exportService) ExportGrades(ctx context.Context) ([]byte, error) {
	grades, err := s.repo.Grade().ListAll(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}

	rows := make([][]interface{}, 0, len(grades))
	for _, g := range grades {
		var studentNumber, studentName, courseCode string
		if g.Student != nil {
			studentNumber = g.Student.StudentID
			if g.Student.User != nil {
				studentName = g.Student.User.FullName
			}
		}
		if g.Course != nil {
			courseCode = g.Course.Code
		}
		rows = append(rows, []interface{}{
			g.ID, studentNumber, studentName, courseCode, courseName(g.Course),
			scoreCell(g.MidtermScore), scoreCell(g.FinalScore), scoreCell(g.UsualScore),
			g.TotalScore, g.GPA, g.Semester, string(g.Status),
		})
	}

	s.logger.Info("Exporting grades", "count", len(rows))
	return writeWorkbook(gradesSheet, gradeExportHeader, rows)
}

// scoreCell leaves missing grade parts as empty cells
func scoreCell(score *float64) interface{} {
	if score == nil {
		return nil
	}
	return *score
}

func writeWorkbook(sheet string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
