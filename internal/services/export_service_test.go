package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/testutil"
)

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportService_Users(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExportService(env.repo, env.db, env.logger)
	ctx := context.Background()

	testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	testutil.CreateStudent(t, env.db, "sam", "S001")
	testutil.CreateTeacher(t, env.db, "tina", "T001")

	data, err := svc.ExportUsers(ctx)
	require.NoError(t, err)

	rows := readSheet(t, data, usersSheet)
	require.Len(t, rows, 4)
	assert.Equal(t, "Username", rows[0][1])
	assert.Equal(t, "sam", rows[2][1])
	assert.Equal(t, "student", rows[2][4])
	assert.Equal(t, "S001", rows[2][6])
	assert.Equal(t, "T001", rows[3][7])
}

func TestExportService_Grades(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExportService(env.repo, env.db, env.logger)
	ctx := context.Background()

	course := testutil.CreateCourse(t, env.db, "Algorithms", "CS201", nil, "")
	_, student := testutil.CreateStudent(t, env.db, "sam", "S001")
	require.NoError(t, env.repo.Grade().Create(ctx, nil, &models.Grade{
		StudentID:  student.ID,
		CourseID:   course.ID,
		FinalScore: ptr(90.0),
		TotalScore: 45,
		Semester:   "2024-1",
		GradedAt:   time.Now().UTC(),
		Status:     models.GradeSubmitted,
	}))

	data, err := svc.ExportGrades(ctx)
	require.NoError(t, err)

	rows := readSheet(t, data, gradesSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "S001", rows[1][1])
	assert.Equal(t, "Sam", rows[1][2])
	assert.Equal(t, "CS201", rows[1][3])
	assert.Equal(t, "", rows[1][5], "missing midterm stays empty")
	assert.Equal(t, "90", rows[1][6])
	assert.Equal(t, "2024-1", rows[1][10])
}
