package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/atelier-store/atelier/internal/inventory"
)

type memoryLogStore struct {
	entries []inventory.LogEntry
	fail    bool
}

func (m *memoryLogStore) InsertLog(_ context.Context, entry inventory.LogEntry) error {
	if m.fail {
		return errors.New("insert failed")
	}
	m.entries = append(m.entries, entry)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogRetryReplaysEntry(t *testing.T) {
	entry := inventory.LogEntry{
		ID:             uuid.New(),
		ProductID:      uuid.New(),
		ChangeType:     inventory.ChangeAdjustment,
		QuantityChange: -3,
		StockBefore:    10,
		StockAfter:     7,
	}
	task, err := NewLogRetryTask(entry)
	require.NoError(t, err)

	store := &memoryLogStore{}
	handler := NewLogRetryHandler(store, discardLogger(), nil)
	require.NoError(t, handler.Handle(context.Background(), task))
	require.Len(t, store.entries, 1)
	require.Equal(t, entry.ID, store.entries[0].ID)
	require.Equal(t, -3, store.entries[0].QuantityChange)
}

func TestLogRetryBadPayloadIsDropped(t *testing.T) {
	store := &memoryLogStore{}
	handler := NewLogRetryHandler(store, discardLogger(), nil)

	err := handler.Handle(context.Background(), asynq.NewTask(TaskTypeLogRetry, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, store.entries)
}

func TestLogRetryStoreFailureIsRetried(t *testing.T) {
	entry := inventory.LogEntry{ID: uuid.New(), ProductID: uuid.New()}
	task, err := NewLogRetryTask(entry)
	require.NoError(t, err)

	handler := NewLogRetryHandler(&memoryLogStore{fail: true}, discardLogger(), nil)
	err = handler.Handle(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}
