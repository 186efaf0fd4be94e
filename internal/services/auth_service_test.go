package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/testutil"
	"github.com/SAP-F-2025/student-service/internal/validator"
)

func newAuthService(t *testing.T, env *testEnv, cm *cache.CacheManager) (AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret", 30*time.Minute)
	require.NoError(t, err)
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return NewAuthService(env.repo, env.db, env.logger, env.validator, tokens, cm, env.events), tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc, tokens := newAuthService(t, env, nil)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{
		Username: "  alice ",
		Email:    "alice@school.edu",
		Password: "secret",
		FullName: "Alice",
		Role:     ptr("teacher"),
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotZero(t, resp.UserID)

	stored, err := env.repo.User().GetByID(ctx, nil, resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, models.RoleGuest, stored.Role, "requested role is never granted")
	assert.True(t, stored.IsActive)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.Equal(t, []events.EventType{events.UserRegistered}, env.events.Types())

	login, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, models.RoleGuest, login.User.Role)

	identity, err := tokens.Validate(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, identity.UserID)

	user, err := svc.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, user.ID)
}

func TestAuthService_RegisterRejects(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(t, env, nil)
	ctx := context.Background()
	testutil.CreateUser(t, env.db, "bob", models.RoleStudent)

	tests := []struct {
		name    string
		req     *RegisterRequest
		kind    ErrorKind
		message string
	}{
		{
			name:    "duplicate username",
			req:     &RegisterRequest{Username: "bob", Email: "other@school.edu", Password: "pw", FullName: "Bob"},
			kind:    KindConflict,
			message: "Username already registered",
		},
		{
			name:    "duplicate email",
			req:     &RegisterRequest{Username: "bobby", Email: "bob@school.edu", Password: "pw", FullName: "Bob"},
			kind:    KindConflict,
			message: "Email already registered",
		},
		{
			name:    "invalid role",
			req:     &RegisterRequest{Username: "carol", Email: "carol@school.edu", Password: "pw", FullName: "Carol", Role: ptr("superuser")},
			kind:    KindValidation,
			message: "Invalid role",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			requireKind(t, err, tt.kind, tt.message)
		})
	}

	_, err := svc.Register(ctx, &RegisterRequest{Username: "x", Email: "not-an-email", Password: "pw", FullName: "X"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestAuthService_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(t, env, nil)
	ctx := context.Background()

	inactive := testutil.CreateUser(t, env.db, "dave", models.RoleStudent)
	testutil.Deactivate(t, env.db, inactive)
	testutil.CreateUser(t, env.db, "erin", models.RoleStudent)

	_, err := svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "pw"})
	requireKind(t, err, KindUnauthenticated, "Incorrect username or password")

	_, err = svc.Login(ctx, &LoginRequest{Username: "erin", Password: "wrong"})
	requireKind(t, err, KindUnauthenticated, "Incorrect username or password")

	_, err = svc.Login(ctx, &LoginRequest{Username: "dave", Password: "pw"})
	requireKind(t, err, KindValidation, "Inactive user")
}

func TestAuthService_AuthenticateUsesStoredRole(t *testing.T) {
	env := newTestEnv(t)
	svc, tokens := newAuthService(t, env, nil)
	ctx := context.Background()

	user := testutil.CreateUser(t, env.db, "frank", models.RoleGuest)
	token, err := tokens.Issue(user, time.Hour)
	require.NoError(t, err)

	require.NoError(t, env.db.Model(user).Update("role", models.RoleStudent).Error)

	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, got.Role)

	_, err = svc.Authenticate(ctx, "garbage")
	requireKind(t, err, KindUnauthenticated, "Could not validate credentials")

	require.NoError(t, env.db.Delete(user).Error)
	_, err = svc.Authenticate(ctx, token)
	requireKind(t, err, KindUnauthenticated, "Could not validate credentials")
}

func TestAuthService_MeIsCached(t *testing.T) {
	env := newTestEnv(t)
	cm, mr := newTestCache(t)
	svc, _ := newAuthService(t, env, cm)
	ctx := context.Background()

	_, student := testutil.CreateStudent(t, env.db, "gina", "S001")

	snapshot, err := svc.Me(ctx, student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "gina", snapshot.Username)
	require.NotNil(t, snapshot.Profile.Student)
	assert.Equal(t, "S001", snapshot.Profile.Student.StudentID)
	assert.True(t, mr.Exists("user:"+cache.UserKey(student.UserID)))

	_, err = svc.Me(ctx, 9999)
	requireKind(t, err, KindNotFound, "User not found")
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newAuthService(t, env, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, config.AdminConfig{}))
	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Zero(t, count)

	cfg := config.AdminConfig{Username: "root", Password: "rootpw"}
	require.NoError(t, svc.EnsureAdmin(ctx, cfg))
	require.NoError(t, svc.EnsureAdmin(ctx, cfg))

	require.NoError(t, env.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	login, err := svc.Login(ctx, &LoginRequest{Username: "root", Password: "rootpw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, login.User.Role)
	assert.Equal(t, "root@localhost", login.User.Email)
}
