package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/student-service/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus, err := NewBus(config.EventConfig{TopicPrefix: "test"}, discardLogger())
	require.NoError(t, err)
	defer bus.Close()

	assert.Equal(t, "test.domain-events", bus.Topic())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	event := NewEvent(FriendAccepted, 7, "Accepted friend request", "friend_request", 3).WithData("friend_id", 9)
	require.NoError(t, bus.Publish(WithClientIP(ctx, "10.0.0.1"), event))

	select {
	case msg := <-messages:
		got, err := DecodeEvent(msg)
		require.NoError(t, err)
		msg.Ack()

		assert.Equal(t, FriendAccepted, got.Type)
		assert.Equal(t, "3", got.ResourceID)
		require.NotNil(t, got.ActorID)
		assert.Equal(t, uint(7), *got.ActorID)
		require.NotNil(t, got.IPAddress)
		assert.Equal(t, "10.0.0.1", *got.IPAddress)
		assert.Equal(t, string(FriendAccepted), msg.Metadata.Get("event_type"))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestAuditSubscriber_PersistsEvents(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	logs := postgres.NewSystemLogPostgreSQL(db)

	bus, err := NewBus(config.EventConfig{}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriber := NewAuditSubscriber(bus, logs, discardLogger())
	require.NoError(t, subscriber.Start(ctx))

	event := NewEvent(UserStatusChanged, admin.ID, "Deactivated user u1", "user", 42).WithData("is_active", false)
	require.NoError(t, bus.Publish(ctx, event))

	assert.Eventually(t, func() bool {
		found, _, listErr := logs.List(ctx, nil, repositories.SystemLogFilters{Limit: 10})
		return listErr == nil && len(found) == 1
	}, 2*time.Second, 20*time.Millisecond)

	rows, total, err := logs.List(ctx, nil, repositories.SystemLogFilters{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Deactivated user u1", rows[0].Action)
	assert.Equal(t, models.LogSuccess, rows[0].Status)
	require.NotNil(t, rows[0].ResourceID)
	assert.Equal(t, "42", *rows[0].ResourceID)
	require.NotNil(t, rows[0].User)
	assert.Equal(t, "admin", rows[0].User.Username)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(rows[0].Details, &details))
	assert.Equal(t, "user.status_changed", details["event_type"])
	assert.Equal(t, false, details["is_active"])

	require.NoError(t, bus.Close())
	select {
	case <-subscriber.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after bus close")
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())
	ctx := context.Background()

	require.NoError(t, mock.Publish(ctx, NewEvent(UpgradeApproved, 1, "a", "upgrade_request", 1)))
	require.NoError(t, mock.Publish(ctx, NewEvent(UpgradeRejected, 1, "b", "upgrade_request", 2)))

	assert.Equal(t, []EventType{UpgradeApproved, UpgradeRejected}, mock.Types())
	assert.Len(t, mock.GetPublishedEvents(), 2)

	mock.Reset()
	assert.Empty(t, mock.GetPublishedEvents())
}
