package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
	"github.com/SAP-F-2025/student-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/student-service/internal/testutil"
)

func TestLogRetentionJob_Run(t *testing.T) {
	db := testutil.NewDB(t)
	logs := postgres.NewSystemLogPostgreSQL(db)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, age := range []time.Duration{100 * 24 * time.Hour, 91 * 24 * time.Hour, 10 * 24 * time.Hour, time.Hour} {
		require.NoError(t, logs.Create(ctx, nil, &models.SystemLog{
			Action:    "entry",
			Status:    models.LogSuccess,
			CreatedAt: now.Add(-age),
		}))
	}

	job := NewLogRetentionJob(logs, 90, slog.New(slog.NewTextHandler(io.Discard, nil)))
	job.now = func() time.Time { return now }

	deleted, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, total, err := logs.List(ctx, nil, repositories.SystemLogFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestLogRetentionJob_Disabled(t *testing.T) {
	job := NewLogRetentionJob(nil, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	deleted, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	job := NewLogRetentionJob(nil, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Error(t, s.AddLogRetention("not a spec", job))
	require.NoError(t, s.AddLogRetention(DefaultRetentionSchedule, job))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
