package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/testutil"
)

var adminNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newAdminService(env *testEnv, cm *cache.CacheManager) *adminService {
	svc := NewAdminService(env.repo, env.db, env.logger, env.validator, cm, env.events).(*adminService)
	svc.now = func() time.Time { return adminNow }
	return svc
}

func TestAdminService_ToggleUserStatus(t *testing.T) {
	env := newTestEnv(t)
	cm, mr := newTestCache(t)
	svc := newAdminService(env, cm)
	ctx := context.Background()

	admin := testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	user := testutil.CreateUser(t, env.db, "guest", models.RoleGuest)
	require.NoError(t, cm.User.Set(ctx, cache.UserKey(user.ID), models.SnapshotOf(user), time.Minute))

	resp, err := svc.ToggleUserStatus(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "User deactivated successfully", resp.Message)
	assert.False(t, mr.Exists("user:"+cache.UserKey(user.ID)))

	stored, err := env.repo.User().GetByID(ctx, nil, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	resp, err = svc.ToggleUserStatus(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "User activated successfully", resp.Message)

	_, err = svc.ToggleUserStatus(ctx, admin, admin.ID)
	requireKind(t, err, KindValidation, "Cannot change admin status")

	_, err = svc.ToggleUserStatus(ctx, admin, 9999)
	requireKind(t, err, KindNotFound, "User not found")

	published := env.events.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.UserStatusChanged, published[0].Type)
	assert.Equal(t, "Deactivated user guest", published[0].Action)
	assert.Equal(t, "Activated user guest", published[1].Action)
}

func TestAdminService_Users(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env, nil)
	ctx := context.Background()

	testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	for _, name := range []string{"sam", "sue", "sid"} {
		testutil.CreateStudent(t, env.db, name, "S-"+name)
	}
	inactive := testutil.CreateUser(t, env.db, "gone", models.RoleGuest)
	testutil.Deactivate(t, env.db, inactive)

	list, err := svc.Users(ctx, UserListQuery{Role: "student", PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Users, 2)
	require.NotNil(t, list.Users[0].Profile.Student)

	list, err = svc.Users(ctx, UserListQuery{Role: "student", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, list.Users, 1)

	active := false
	list, err = svc.Users(ctx, UserListQuery{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, "gone", list.Users[0].Username)
	assert.Equal(t, DefaultPageSize, list.PageSize)

	_, err = svc.Users(ctx, UserListQuery{Role: "wizard"})
	requireKind(t, err, KindValidation, "Invalid role")
}

func TestAdminService_UpdateCourse(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env, nil)
	ctx := context.Background()

	admin := testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	_, teacher := testutil.CreateTeacher(t, env.db, "tina", "T001")
	course := testutil.CreateCourse(t, env.db, "Algorithms", "CS201", nil, "")
	testutil.CreateCourse(t, env.db, "Databases", "CS301", nil, "")
	for i, name := range []string{"sam", "sue"} {
		_, student := testutil.CreateStudent(t, env.db, name, "S00"+string(rune('1'+i)))
		testutil.Enroll(t, env.db, student.ID, course.ID)
	}

	tests := []struct {
		name    string
		req     *CourseUpdateRequest
		kind    ErrorKind
		message string
	}{
		{"duplicate name", &CourseUpdateRequest{Name: ptr("Databases")}, KindConflict, "Course name already exists"},
		{"duplicate code", &CourseUpdateRequest{Code: ptr("CS301")}, KindConflict, "Course code already exists"},
		{"credits too high", &CourseUpdateRequest{Credits: ptr(11)}, KindValidation, "Credits must be between 1 and 10"},
		{"credits too low", &CourseUpdateRequest{Credits: ptr(0)}, KindValidation, "Credits must be between 1 and 10"},
		{"unknown teacher", &CourseUpdateRequest{TeacherID: ptr(uint(9999))}, KindValidation, "Teacher not found"},
		{"max students out of range", &CourseUpdateRequest{MaxStudents: ptr(501)}, KindValidation, "Max students must be between 1 and 500"},
		{"below enrollment", &CourseUpdateRequest{MaxStudents: ptr(1)}, KindValidation, "Cannot reduce max students below current enrollment count (2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateCourse(ctx, admin, course.ID, tt.req)
			requireKind(t, err, tt.kind, tt.message)
		})
	}

	_, err := svc.UpdateCourse(ctx, admin, 9999, &CourseUpdateRequest{Credits: ptr(2)})
	requireKind(t, err, KindNotFound, "Course not found")

	resp, err := svc.UpdateCourse(ctx, admin, course.ID, &CourseUpdateRequest{
		Name:        ptr("Advanced Algorithms"),
		Code:        ptr("CS201"),
		Credits:     ptr(4),
		TeacherID:   &teacher.ID,
		MaxStudents: ptr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "Course updated successfully", resp.Message)

	stored, err := env.repo.Course().GetByID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Advanced Algorithms", stored.Name)
	assert.Equal(t, 4, stored.Credits)
	assert.Equal(t, 2, stored.MaxStudents)
	require.NotNil(t, stored.TeacherID)
	assert.Equal(t, teacher.ID, *stored.TeacherID)

	assert.Equal(t, []events.EventType{events.CourseUpdated}, env.events.Types())
}

func TestAdminService_EnrollRespectsCapacity(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env, nil)
	ctx := context.Background()

	admin := testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	course := testutil.CreateCourse(t, env.db, "Algorithms", "CS201", nil, "")
	require.NoError(t, env.db.Model(course).Update("max_students", 1).Error)
	_, first := testutil.CreateStudent(t, env.db, "sam", "S001")
	_, second := testutil.CreateStudent(t, env.db, "sue", "S002")

	created, err := svc.Enroll(ctx, admin, course.ID, &EnrollmentCreateRequest{StudentID: first.ID})
	require.NoError(t, err)
	assert.Equal(t, "enrollment_id", created.Key)

	_, err = svc.Enroll(ctx, admin, course.ID, &EnrollmentCreateRequest{StudentID: first.ID})
	requireKind(t, err, KindConflict, "Student already enrolled in this course")

	_, err = svc.Enroll(ctx, admin, course.ID, &EnrollmentCreateRequest{StudentID: second.ID})
	requireKind(t, err, KindValidation, "Course is full")

	_, err = svc.Enroll(ctx, admin, course.ID, &EnrollmentCreateRequest{StudentID: 9999})
	requireKind(t, err, KindNotFound, "Student not found")

	resp, err := svc.ToggleCourseStatus(ctx, admin, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Course deactivated successfully", resp.Message)

	require.NoError(t, env.db.Model(course).Update("max_students", 10).Error)
	_, err = svc.Enroll(ctx, admin, course.ID, &EnrollmentCreateRequest{StudentID: second.ID})
	requireKind(t, err, KindValidation, "Course is not active")
}

func TestAdminService_CreateExamAndNotice(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env, nil)
	ctx := context.Background()

	admin := testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	course := testutil.CreateCourse(t, env.db, "Algorithms", "CS201", nil, "")

	exam, err := svc.CreateExam(ctx, admin, course.ID, &ExamCreateRequest{
		Title:    "Final",
		ExamType: "final",
		Date:     "2025-07-01T09:00:00Z",
		Duration: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, "exam_id", exam.Key)

	var stored models.Exam
	require.NoError(t, env.db.First(&stored, exam.ID).Error)
	assert.Equal(t, 100, stored.MaxScore)

	_, err = svc.CreateExam(ctx, admin, 9999, &ExamCreateRequest{Title: "X", ExamType: "quiz", Date: "2025-07-01T09:00:00Z", Duration: 10})
	requireKind(t, err, KindNotFound, "Course not found")

	notice, err := svc.CreateNotice(ctx, admin, &NoticeCreateRequest{Title: "Holiday", Content: "No classes on Friday"})
	require.NoError(t, err)
	assert.Equal(t, "Notice created successfully", notice.Message)

	var storedNotice models.Notice
	require.NoError(t, env.db.First(&storedNotice, notice.ID).Error)
	assert.Equal(t, models.PriorityNormal, storedNotice.Priority)
	assert.Equal(t, models.AudienceAll, storedNotice.TargetAudience)
	assert.Equal(t, admin.ID, storedNotice.AuthorID)
}

func TestAdminService_Logs(t *testing.T) {
	env := newTestEnv(t)
	svc := newAdminService(env, nil)
	ctx := context.Background()

	admin := testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	details, err := json.Marshal(map[string]interface{}{"course_id": 7})
	require.NoError(t, err)

	entries := []*models.SystemLog{
		{UserID: &admin.ID, Action: "Updated course: Algorithms", Status: models.LogSuccess, Details: datatypes.JSON(details), CreatedAt: adminNow.Add(-72 * time.Hour)},
		{Action: "Purged system logs", Status: models.LogWarning, CreatedAt: adminNow.Add(-24 * time.Hour)},
		{UserID: &admin.ID, Action: "Updated course: Databases", Status: models.LogFailed, CreatedAt: adminNow},
	}
	for _, e := range entries {
		require.NoError(t, env.repo.SystemLog().Create(ctx, nil, e))
	}

	all, err := svc.Logs(ctx, LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, DefaultLogPageSize, all.PageSize)
	require.Len(t, all.Logs, 3)
	assert.Equal(t, "Updated course: Databases", all.Logs[0].Action, "newest first")
	assert.Equal(t, "System", all.Logs[1].User)
	assert.Equal(t, map[string]interface{}{"course_id": float64(7)}, all.Logs[2].Details)

	filtered, err := svc.Logs(ctx, LogQuery{Action: "UPDATED COURSE", Status: "success"})
	require.NoError(t, err)
	require.Len(t, filtered.Logs, 1)
	assert.Equal(t, "Updated course: Algorithms", filtered.Logs[0].Action)

	byDate, err := svc.Logs(ctx, LogQuery{StartDate: "2025-06-14", EndDate: "2025-06-14"})
	require.NoError(t, err)
	require.Len(t, byDate.Logs, 1)
	assert.Equal(t, "Purged system logs", byDate.Logs[0].Action)

	_, err = svc.Logs(ctx, LogQuery{Status: "exploded"})
	requireKind(t, err, KindValidation, "Invalid log status")

	_, err = svc.Logs(ctx, LogQuery{StartDate: "14/06/2025"})
	requireKind(t, err, KindValidation, "Dates must use the YYYY-MM-DD format")
}

func TestAdminService_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	cm, mr := newTestCache(t)
	svc := newAdminService(env, cm)
	ctx := context.Background()

	admin := testutil.CreateUser(t, env.db, "root", models.RoleAdmin)
	lastMonth := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	samUser, _ := testutil.CreateStudent(t, env.db, "sam", "S001")
	require.NoError(t, env.db.Model(samUser).Update("created_at", lastMonth).Error)
	testutil.CreateStudent(t, env.db, "sue", "S002")
	tinaUser, _ := testutil.CreateTeacher(t, env.db, "tina", "T001")
	require.NoError(t, env.db.Model(tinaUser).Update("created_at", lastMonth).Error)
	gone := testutil.CreateUser(t, env.db, "gone", models.RoleGuest)
	testutil.Deactivate(t, env.db, gone)
	testutil.CreateCourse(t, env.db, "Algorithms", "CS201", nil, "")

	require.NoError(t, env.repo.SystemLog().Create(ctx, nil, &models.SystemLog{
		UserID: &admin.ID, Action: "Activated user sam", Status: models.LogSuccess, CreatedAt: adminNow.Add(-2 * time.Hour),
	}))
	require.NoError(t, env.repo.Notice().Create(ctx, nil, &models.Notice{
		Title: "Exam week", Content: "Good luck", Priority: models.PriorityUrgent, TargetAudience: models.AudienceAll, AuthorID: admin.ID, IsActive: true,
	}))

	dashboard, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), dashboard.SystemStats.TotalUsers)
	assert.Equal(t, int64(4), dashboard.SystemStats.ActiveUsers)
	assert.Equal(t, int64(2), dashboard.SystemStats.TotalStudents)
	assert.Equal(t, int64(1), dashboard.SystemStats.TotalTeachers)
	assert.Equal(t, int64(1), dashboard.SystemStats.TotalCourses)
	assert.Equal(t, int64(1), dashboard.SystemStats.TotalDepartments)
	assert.Equal(t, 80.0, dashboard.CalculatedStats.ActiveRate)

	require.Len(t, dashboard.RecentActivities, 1)
	assert.Equal(t, "Root", dashboard.RecentActivities[0].User)
	assert.Equal(t, "admin", dashboard.RecentActivities[0].Role)
	assert.Equal(t, "2 hours ago", dashboard.RecentActivities[0].TimeAgo)

	require.Len(t, dashboard.UserGrowthData, growthMonths)
	assert.Equal(t, "2025-01", dashboard.UserGrowthData[0].Month)
	assert.Equal(t, "2025-05", dashboard.UserGrowthData[4].Month)
	assert.Equal(t, 1, dashboard.UserGrowthData[4].Students)
	assert.Equal(t, 1, dashboard.UserGrowthData[4].Teachers)
	assert.Equal(t, 1, dashboard.CalculatedStats.RecentNewStudents)
	assert.Equal(t, 1, dashboard.CalculatedStats.RecentNewTeachers)

	require.Len(t, dashboard.Notices, 1)
	assert.True(t, dashboard.Notices[0].Urgent)

	assert.True(t, mr.Exists("stats:"+adminDashboardKey))

	// cached until a mutation invalidates it
	testutil.CreateUser(t, env.db, "late", models.RoleGuest)
	cached, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cached.SystemStats.TotalUsers)

	cache.InvalidateStatsCache(ctx, cm)
	fresh, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), fresh.SystemStats.TotalUsers)
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "30 seconds ago", formatTimeAgo(30*time.Second))
	assert.Equal(t, "5 minutes ago", formatTimeAgo(5*time.Minute))
	assert.Equal(t, "3 days ago", formatTimeAgo(72*time.Hour))
	assert.Equal(t, "2 weeks ago", formatTimeAgo(15*24*time.Hour))
	assert.Equal(t, "0 seconds ago", formatTimeAgo(-time.Minute))
}
