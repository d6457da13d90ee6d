package db

import (
	"context"
	"testing"
	"time"

	"github.com/blockwarden/backend/internal/domain"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, RunMigrations(gdb))
	return gdb
}

func TestCommandRepositoryPendingOrder(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewCommandRepository(gdb, logger.NewNop())
	ctx := context.Background()

	hostID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	// Inserted out of creation order on purpose.
	for i, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		cmd := &domain.Command{
			HostID:    hostID,
			Type:      domain.CmdNodeStart,
			CreatedAt: base.Add(offset),
		}
		require.NoError(t, repo.Insert(ctx, cmd), "insert %d", i)
	}

	// A row for another host must not leak into the scan.
	require.NoError(t, repo.Insert(ctx, &domain.Command{
		HostID: "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb",
		Type:   domain.CmdNodeStart,
	}))

	pending, err := repo.PendingForHost(ctx, hostID, nil)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i := 1; i < len(pending); i++ {
		assert.True(t, !pending[i].CreatedAt.Before(pending[i-1].CreatedAt),
			"pending commands out of order at %d", i)
	}
}

func TestCommandRepositoryPendingFilter(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewCommandRepository(gdb, logger.NewNop())
	ctx := context.Background()

	hostID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	require.NoError(t, repo.Insert(ctx, &domain.Command{HostID: hostID, Type: domain.CmdNodeStart}))
	require.NoError(t, repo.Insert(ctx, &domain.Command{HostID: hostID, Type: domain.CmdNodeStop}))

	filter := domain.CmdNodeStop
	pending, err := repo.PendingForHost(ctx, hostID, &filter)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.CmdNodeStop, pending[0].Type)
}

func TestCommandRepositoryUpdateOutcomeCAS(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewCommandRepository(gdb, logger.NewNop())
	ctx := context.Background()

	cmd := &domain.Command{HostID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", Type: domain.CmdNodeStart}
	require.NoError(t, repo.Insert(ctx, cmd))

	msg := "done"
	ackedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rows, err := repo.UpdateOutcome(ctx, cmd.ID, domain.ExitOk, &msg, nil, ackedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// A second write is rejected by the acked_at guard.
	other := "different"
	rows, err = repo.UpdateOutcome(ctx, cmd.ID, domain.ExitInternalError, &other, nil, ackedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	stored, err := repo.GetByID(ctx, cmd.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExitCode)
	assert.Equal(t, domain.ExitOk, *stored.ExitCode)
	require.NotNil(t, stored.ExitMessage)
	assert.Equal(t, "done", *stored.ExitMessage)
	require.NotNil(t, stored.AckedAt)
	assert.WithinDuration(t, ackedAt, *stored.AckedAt, time.Second)

	// Acked rows fall out of the pending scan.
	pending, err := repo.PendingForHost(ctx, cmd.HostID, nil)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCommandRepositoryGetByIDForUpdate(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewCommandRepository(gdb, logger.NewNop())
	ctx := context.Background()

	cmd := &domain.Command{HostID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", Type: domain.CmdNodeStart}
	require.NoError(t, repo.Insert(ctx, cmd))

	got, err := repo.GetByIDForUpdate(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, cmd.ID, got.ID)

	_, err = repo.GetByIDForUpdate(ctx, "99999999-9999-9999-9999-999999999999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
