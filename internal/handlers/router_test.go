package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/testutil"
	"github.com/SAP-F-2025/student-service/internal/utils"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("handler-secret", 30*time.Minute)
	require.NoError(t, err)

	sm := services.NewDefaultServiceManager(db, repo, slogger, validator.New(), services.Dependencies{
		Tokens: tokens,
		Events: events.NewMockEventPublisher(slogger),
		AI:     config.AIConfig{},
	})
	require.NoError(t, sm.Initialize(context.Background()))

	logger := utils.NewSlogLogger(slogger)
	router := gin.New()
	SetupMiddleware(router, logger, []string{"http://localhost:5173"})
	NewHandlerManager(sm, logger).SetupRoutes(router)

	return &testServer{t: t, db: db, router: router, tokens: tokens}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var resp services.LoginResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRouter_UpgradeScenario(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "root", models.RoleAdmin)

	w := s.do(http.MethodPost, "/auth/register", "", map[string]interface{}{
		"username": "u1", "email": "u1@school.edu", "password": "pw1", "full_name": "User One",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "User registered successfully", decode(t, w)["message"])

	guestToken := s.login("u1", "pw1")

	w = s.do(http.MethodGet, "/auth/me", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest", decode(t, w)["role"])

	w = s.do(http.MethodPost, "/auth/upgrade-role", guestToken, map[string]interface{}{
		"target_role": "student", "student_id": "S1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	requestID := decode(t, w)["request_id"]
	require.NotNil(t, requestID)

	w = s.do(http.MethodGet, "/auth/upgrade-requests", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := s.login("root", "pw")
	w = s.do(http.MethodPost, "/auth/approve-upgrade/1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/approve-upgrade/1", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Upgrade request already processed", decode(t, w)["message"])

	// the old token still resolves to the current role
	w = s.do(http.MethodGet, "/students/profile", guestToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "S1", decode(t, w)["student_id"])

	studentToken := s.login("u1", "pw1")
	w = s.do(http.MethodGet, "/auth/me", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "student", me["role"])
	profile := me["profile"].(map[string]interface{})
	assert.Equal(t, "S1", profile["student"].(map[string]interface{})["student_id"])
}

func TestRouter_FriendScenario(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "alice", models.RoleGuest)
	bob := testutil.CreateUser(t, s.db, "bob", models.RoleGuest)

	aliceToken := s.login("alice", "pw")
	bobToken := s.login("bob", "pw")

	w := s.do(http.MethodPost, "/friends/request", aliceToken, map[string]interface{}{
		"receiver_id": bob.ID, "message": "hi",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/friends/request", bobToken, map[string]interface{}{"receiver_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/friends/requests/received", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var received []services.FriendRequestItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &received))
	require.Len(t, received, 1)
	require.NotNil(t, received[0].Message)
	assert.Equal(t, "hi", *received[0].Message)

	w = s.do(http.MethodPost, "/friends/requests/1/accept", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/friends/list", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends []services.FriendItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].UserID)

	w = s.do(http.MethodDelete, "/friends/remove/2", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/friends/remove/2", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/friends/search?q=%20", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthGuard(t *testing.T) {
	s := newTestServer(t)
	student, _ := testutil.CreateStudent(t, s.db, "sam", "S001")
	testutil.CreateUser(t, s.db, "root", models.RoleAdmin)
	inactive := testutil.CreateUser(t, s.db, "ivy", models.RoleStudent)

	zeroTTL, err := s.tokens.Issue(student, 0)
	require.NoError(t, err)
	inactiveToken, err := s.tokens.Issue(inactive, time.Hour)
	require.NoError(t, err)
	testutil.Deactivate(t, s.db, inactive)

	expired, err := s.tokens.Issue(student, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	tests := []struct {
		name   string
		header string
		path   string
		status int
		error  string
	}{
		{name: "missing header", path: "/auth/me", status: http.StatusUnauthorized, error: "unauthorized"},
		{name: "malformed header", header: "Token abc", path: "/auth/me", status: http.StatusUnauthorized, error: "unauthorized"},
		{name: "garbage token", header: "Bearer abc", path: "/auth/me", status: http.StatusUnauthorized, error: "unauthorized"},
		{name: "expired token", header: "Bearer " + expired, path: "/auth/me", status: http.StatusUnauthorized, error: "unauthorized"},
		{name: "inactive user", header: "Bearer " + inactiveToken, path: "/auth/me", status: http.StatusForbidden, error: "forbidden"},
		{name: "wrong role", header: "Bearer " + s.login("sam", "pw"), path: "/teachers/dashboard", status: http.StatusForbidden, error: "forbidden"},
		{name: "zero ttl token", header: "Bearer " + zeroTTL, path: "/auth/me", status: http.StatusUnauthorized, error: "unauthorized"},
		{name: "admin has no implicit access", header: "Bearer " + s.login("root", "pw"), path: "/students/dashboard", status: http.StatusForbidden, error: "forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.error, decode(t, w)["error"])
		})
	}

	w := s.do(http.MethodGet, "/students/dashboard", s.login("sam", "pw"), nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRouter_LoginFailures(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "gus", models.RoleGuest)

	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "gus", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Incorrect username or password", decode(t, w)["message"])

	testutil.Deactivate(t, s.db, user)
	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{"username": "gus", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Inactive user", decode(t, w)["message"])
}

func TestRouter_AdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "root", models.RoleAdmin)
	testutil.CreateStudent(t, s.db, "sam", "S001")
	course := testutil.CreateCourse(t, s.db, "Algorithms", "CS201", nil, "")
	token := s.login("root", "pw")

	w := s.do(http.MethodGet, "/admin/users?role=wizard", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid role", decode(t, w)["message"])

	w = s.do(http.MethodGet, "/admin/users?role=student&is_active=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = s.do(http.MethodPost, "/admin/users/1/toggle-status", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot change admin status", decode(t, w)["message"])

	w = s.do(http.MethodPut, "/admin/courses/999", token, map[string]interface{}{"credits": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/admin/courses/abc", token, map[string]interface{}{"credits": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/admin/courses/1", token, map[string]interface{}{"credits": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Credits must be between 1 and 10", decode(t, w)["message"])

	w = s.do(http.MethodPost, "/admin/courses/1/enrollments", token, map[string]interface{}{"student_id": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode(t, w)["enrollment_id"])

	w = s.do(http.MethodPost, "/admin/notices", token, map[string]interface{}{"title": "Exam week", "content": "Good luck"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode(t, w)["notice_id"])

	w = s.do(http.MethodGet, "/admin/logs?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/admin/export/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "users_")
	assert.NotZero(t, w.Body.Len())

	w = s.do(http.MethodGet, "/admin/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w), "system_stats")

	w = s.do(http.MethodGet, "/admin/courses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	courses := decode(t, w)["courses"].([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, course.Code, courses[0].(map[string]interface{})["code"])
}

func TestRouter_AIAndHealth(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "gus", models.RoleGuest)
	token := s.login("gus", "pw")

	w := s.do(http.MethodPost, "/ai/chat", token, map[string]string{"message": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/ai/chat", token, map[string]string{"message": "help", "session_id": "abc"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "abc", body["session_id"])
	assert.NotEmpty(t, body["response"])

	w = s.do(http.MethodGet, "/ai/health", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["available"])

	w = s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
