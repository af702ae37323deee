package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/atelier-store/atelier/internal/inventory"
	"github.com/atelier-store/atelier/internal/observability"
)

// LogStore persists replayed inventory log entries.
type LogStore interface {
	InsertLog(ctx context.Context, entry inventory.LogEntry) error
}

// LogRetryHandler replays log appends that failed during the request.
type LogRetryHandler struct {
	store   LogStore
	logger  *slog.Logger
	metrics *observability.LedgerMetrics
}

// NewLogRetryHandler constructs LogRetryHandler.
func NewLogRetryHandler(store LogStore, logger *slog.Logger, metrics *observability.LedgerMetrics) *LogRetryHandler {
	return &LogRetryHandler{store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeLogRetry tasks.
func (h *LogRetryHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var entry inventory.LogEntry
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		h.logger.Error("log retry payload unreadable", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if err := h.store.InsertLog(ctx, entry); err != nil {
		h.logger.Warn("log retry failed",
			slog.String("log_id", entry.ID.String()),
			slog.Any("error", err))
		return err
	}
	h.metrics.LogRetryReplayed()
	h.logger.Info("log entry replayed", slog.String("log_id", entry.ID.String()))
	return nil
}
