package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/testutil"
)

func TestCalculateGPA(t *testing.T) {
	tests := []struct {
		total float64
		want  float64
	}{
		{100, 4.0},
		{90, 4.0},
		{89.99, 3.7},
		{85, 3.7},
		{82, 3.3},
		{78, 3.0},
		{75, 2.7},
		{72, 2.3},
		{68, 2.0},
		{64, 1.5},
		{60, 1.0},
		{59.99, 0},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateGPA(tt.total), "total %.2f", tt.total)
	}
}

func TestTotalScore(t *testing.T) {
	assert.Equal(t, 87.4, TotalScore(ptr(80.0), ptr(90.0), ptr(92.0)))
	assert.Equal(t, 45.0, TotalScore(nil, ptr(90.0), nil))
	assert.Equal(t, 0.0, TotalScore(nil, nil, nil))
	assert.Equal(t, 100.0, TotalScore(ptr(100.0), ptr(100.0), ptr(100.0)))
}

type teacherFixture struct {
	env         *testEnv
	svc         *teacherService
	teacherUser *models.User
	teacher     *models.Teacher
	course      *models.Course
	student     *models.Student
}

func newTeacherFixture(t *testing.T) *teacherFixture {
	t.Helper()
	env := newTestEnv(t)

	teacherUser, teacher := testutil.CreateTeacher(t, env.db, "tina", "T001")
	course := testutil.CreateCourse(t, env.db, "Algorithms", "CS201", &teacher.ID, "Monday 08:00-09:40")
	_, student := testutil.CreateStudent(t, env.db, "sam", "S001")
	testutil.Enroll(t, env.db, student.ID, course.ID)

	svc := NewTeacherService(env.repo, env.db, env.logger, env.validator, env.events).(*teacherService)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) } // a Monday

	return &teacherFixture{env: env, svc: svc, teacherUser: teacherUser, teacher: teacher, course: course, student: student}
}

func TestTeacherService_SubmitGradeMergesParts(t *testing.T) {
	f := newTeacherFixture(t)
	ctx := context.Background()

	resp, err := f.svc.SubmitGrade(ctx, f.teacherUser, &GradeSubmitRequest{
		StudentID:    f.student.ID,
		CourseID:     f.course.ID,
		MidtermScore: ptr(80.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Grade submitted successfully", resp.Message)
	assert.Equal(t, 24.0, resp.TotalScore)
	assert.Equal(t, 0.0, resp.GPA)

	resp, err = f.svc.SubmitGrade(ctx, f.teacherUser, &GradeSubmitRequest{
		StudentID:  f.student.ID,
		CourseID:   f.course.ID,
		FinalScore: ptr(90.0),
		UsualScore: ptr(92.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 87.4, resp.TotalScore)
	assert.Equal(t, 3.7, resp.GPA)

	grade, err := f.env.repo.Grade().GetByKey(ctx, nil, f.student.ID, f.course.ID, DefaultSemester)
	require.NoError(t, err)
	assert.Equal(t, 80.0, *grade.MidtermScore, "earlier part is kept")
	assert.Equal(t, "2024", grade.AcademicYear)
	assert.Equal(t, models.GradeSubmitted, grade.Status)

	var count int64
	require.NoError(t, f.env.db.Model(&models.Grade{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, []events.EventType{events.GradeSubmitted, events.GradeSubmitted}, f.env.events.Types())
}

func TestTeacherService_SubmitGradeRejects(t *testing.T) {
	f := newTeacherFixture(t)
	ctx := context.Background()

	otherUser, otherTeacher := testutil.CreateTeacher(t, f.env.db, "olga", "T002")
	foreign := testutil.CreateCourse(t, f.env.db, "Databases", "CS301", &otherTeacher.ID, "")
	_, outsider := testutil.CreateStudent(t, f.env.db, "otto", "S002")

	_, err := f.svc.SubmitGrade(ctx, f.teacherUser, &GradeSubmitRequest{StudentID: f.student.ID, CourseID: foreign.ID, FinalScore: ptr(70.0)})
	requireKind(t, err, KindNotFound, "Course not found or not authorized")

	_, err = f.svc.SubmitGrade(ctx, f.teacherUser, &GradeSubmitRequest{StudentID: outsider.ID, CourseID: f.course.ID, FinalScore: ptr(70.0)})
	requireKind(t, err, KindNotFound, "Student not enrolled in this course")

	_, err = f.svc.SubmitGrade(ctx, f.teacherUser, &GradeSubmitRequest{StudentID: f.student.ID, CourseID: f.course.ID, FinalScore: ptr(101.0)})
	require.Error(t, err)

	guest := testutil.CreateUser(t, f.env.db, "gus", models.RoleTeacher)
	_, err = f.svc.SubmitGrade(ctx, guest, &GradeSubmitRequest{StudentID: f.student.ID, CourseID: f.course.ID})
	requireKind(t, err, KindNotFound, "Teacher profile not found")

	_, err = f.svc.CourseStudents(ctx, otherUser, f.course.ID)
	requireKind(t, err, KindNotFound, "Course not found or not authorized")
}

func TestTeacherService_RecordAttendanceUpserts(t *testing.T) {
	f := newTeacherFixture(t)
	ctx := context.Background()

	first, err := f.svc.RecordAttendance(ctx, f.teacherUser, f.course.ID, &AttendanceRecordRequest{
		StudentID: f.student.ID,
		Date:      "2025-03-10",
		Status:    "absent",
	})
	require.NoError(t, err)
	assert.Equal(t, "attendance_id", first.Key)

	second, err := f.svc.RecordAttendance(ctx, f.teacherUser, f.course.ID, &AttendanceRecordRequest{
		StudentID: f.student.ID,
		Date:      "2025-03-10",
		Status:    "present",
		Notes:     ptr("arrived late"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	records, err := f.svc.CourseAttendance(ctx, f.teacherUser, f.course.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-03-10", records[0].Date)
	assert.Equal(t, models.AttendancePresent, records[0].Status)
	assert.Equal(t, "S001", records[0].StudentID)
	assert.Equal(t, "Sam", records[0].Student)

	_, err = f.svc.RecordAttendance(ctx, f.teacherUser, f.course.ID, &AttendanceRecordRequest{
		StudentID: f.student.ID,
		Date:      "10/03/2025",
		Status:    "present",
	})
	require.Error(t, err)
}

func TestTeacherService_Dashboard(t *testing.T) {
	f := newTeacherFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitGrade(ctx, f.teacherUser, &GradeSubmitRequest{
		StudentID: f.student.ID, CourseID: f.course.ID, MidtermScore: ptr(90.0), FinalScore: ptr(90.0), UsualScore: ptr(90.0),
	})
	require.NoError(t, err)

	for _, rec := range []struct{ date, status string }{{"2025-03-03", "present"}, {"2025-03-10", "absent"}} {
		_, err := f.svc.RecordAttendance(ctx, f.teacherUser, f.course.ID, &AttendanceRecordRequest{
			StudentID: f.student.ID, Date: rec.date, Status: rec.status,
		})
		require.NoError(t, err)
	}

	dashboard, err := f.svc.Dashboard(ctx, f.teacherUser)
	require.NoError(t, err)

	assert.Equal(t, "T001", dashboard.TeacherInfo.TeacherID)
	require.Len(t, dashboard.Courses, 1)
	assert.Equal(t, "Algorithms class", dashboard.Courses[0].Class)
	assert.Equal(t, int64(1), dashboard.Courses[0].Students)

	require.Len(t, dashboard.TodaySchedule, 1)
	assert.Equal(t, "Algorithms", dashboard.TodaySchedule[0].Course)

	require.Len(t, dashboard.RecentGrades, 1)
	assert.Equal(t, 90.0, dashboard.RecentGrades[0].Score)
	assert.Equal(t, "Sam", dashboard.RecentGrades[0].Student)

	require.Len(t, dashboard.StudentAttendance, 1)
	assert.Equal(t, 50.0, dashboard.StudentAttendance[0].Rate)

	assert.Equal(t, 1, dashboard.Stats.TotalCourses)
	assert.Equal(t, int64(1), dashboard.Stats.TotalStudents)
	assert.Equal(t, 1, dashboard.Stats.TodayClasses)
	assert.Equal(t, 50.0, dashboard.Stats.AverageAttendance)
	assert.Zero(t, dashboard.Stats.PendingGrades)
}

func TestTeacherService_CoursesAndStudents(t *testing.T) {
	f := newTeacherFixture(t)
	ctx := context.Background()

	courses, err := f.svc.Courses(ctx, f.teacherUser)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS201", courses[0].Code)
	assert.Equal(t, int64(1), courses[0].EnrolledStudents)

	students, err := f.svc.CourseStudents(ctx, f.teacherUser, f.course.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "S001", students[0].StudentID)
	assert.Equal(t, "sam@school.edu", students[0].Email)
}
