package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/testutil"
)

func newFriendService(env *testEnv) FriendService {
	return NewFriendService(env.repo, env.db, env.logger, env.validator, env.events)
}

func TestFriendService_RequestAcceptRemove(t *testing.T) {
	env := newTestEnv(t)
	svc := newFriendService(env)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, "alice", models.RoleGuest)
	bobUser, _ := testutil.CreateStudent(t, env.db, "bob", "S100")

	created, err := svc.SendRequest(ctx, alice, &FriendRequestCreate{ReceiverID: bobUser.ID, Message: ptr(" hi ")})
	require.NoError(t, err)
	assert.Equal(t, "Friend request sent", created.Message)
	assert.Equal(t, "request_id", created.Key)

	sent, err := svc.SentRequests(ctx, alice)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Bob", sent[0].ReceiverName)
	assert.Equal(t, "hi", *sent[0].Message)

	received, err := svc.ReceivedRequests(ctx, bobUser)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Alice", received[0].SenderName)
	assert.Equal(t, models.RoleGuest, received[0].SenderRole)

	err = svc.Accept(ctx, alice, created.ID)
	requireKind(t, err, KindNotFound, "friend request not found or already processed")

	require.NoError(t, svc.Accept(ctx, bobUser, created.ID))

	received, err = svc.ReceivedRequests(ctx, bobUser)
	require.NoError(t, err)
	assert.Empty(t, received)

	aliceFriends, err := svc.ListFriends(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bobUser.ID, aliceFriends[0].UserID)
	require.NotNil(t, aliceFriends[0].Profile.Student)
	assert.Equal(t, "S100", aliceFriends[0].Profile.Student.StudentID)

	bobFriends, err := svc.ListFriends(ctx, bobUser)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, alice.ID, bobFriends[0].UserID)

	_, err = svc.SendRequest(ctx, bobUser, &FriendRequestCreate{ReceiverID: alice.ID})
	requireKind(t, err, KindConflict, "already friends")

	require.NoError(t, svc.RemoveFriend(ctx, bobUser, alice.ID))
	err = svc.RemoveFriend(ctx, alice, bobUser.ID)
	requireKind(t, err, KindNotFound, "friendship not found")

	aliceFriends, err = svc.ListFriends(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, aliceFriends)

	// a fresh request is allowed once the friendship is gone
	_, err = svc.SendRequest(ctx, bobUser, &FriendRequestCreate{ReceiverID: alice.ID})
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.FriendRequested,
		events.FriendAccepted,
		events.FriendRemoved,
		events.FriendRequested,
	}, env.events.Types())
}

func TestFriendService_SendRequestRejects(t *testing.T) {
	env := newTestEnv(t)
	svc := newFriendService(env)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, "alice", models.RoleGuest)
	bob := testutil.CreateUser(t, env.db, "bob", models.RoleGuest)

	_, err := svc.SendRequest(ctx, alice, &FriendRequestCreate{ReceiverID: alice.ID})
	requireKind(t, err, KindValidation, "cannot add yourself")

	_, err = svc.SendRequest(ctx, alice, &FriendRequestCreate{ReceiverID: 9999})
	requireKind(t, err, KindNotFound, "user not found")

	_, err = svc.SendRequest(ctx, alice, &FriendRequestCreate{ReceiverID: bob.ID})
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, alice, &FriendRequestCreate{ReceiverID: bob.ID})
	requireKind(t, err, KindConflict, "a pending friend request already exists")

	// the reverse direction counts as the same pair
	_, err = svc.SendRequest(ctx, bob, &FriendRequestCreate{ReceiverID: alice.ID})
	requireKind(t, err, KindConflict, "a pending friend request already exists")
}

func TestFriendService_RejectAllowsResend(t *testing.T) {
	env := newTestEnv(t)
	svc := newFriendService(env)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, "alice", models.RoleGuest)
	bob := testutil.CreateUser(t, env.db, "bob", models.RoleGuest)

	created, err := svc.SendRequest(ctx, alice, &FriendRequestCreate{ReceiverID: bob.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, bob, created.ID))
	err = svc.Reject(ctx, bob, created.ID)
	requireKind(t, err, KindNotFound, "")

	sent, err := svc.SentRequests(ctx, alice)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, models.FriendRequestRejected, sent[0].Status)

	_, err = svc.SendRequest(ctx, alice, &FriendRequestCreate{ReceiverID: bob.ID})
	require.NoError(t, err)

	friends, err := svc.ListFriends(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestFriendService_SearchUsers(t *testing.T) {
	env := newTestEnv(t)
	svc := newFriendService(env)
	ctx := context.Background()

	alice := testutil.CreateUser(t, env.db, "alice", models.RoleGuest)
	testutil.CreateUser(t, env.db, "alicia", models.RoleGuest)
	testutil.CreateTeacher(t, env.db, "albert", "T001")
	testutil.CreateUser(t, env.db, "zed", models.RoleGuest)

	_, err := svc.SearchUsers(ctx, alice, "   ")
	requireKind(t, err, KindValidation, "search query must not be empty")

	results, err := svc.SearchUsers(ctx, alice, "al")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, alice.ID, r.ID)
		if r.Role == models.RoleTeacher {
			require.NotNil(t, r.Profile.Teacher)
			assert.Equal(t, "T001", r.Profile.Teacher.TeacherID)
		}
	}
}
