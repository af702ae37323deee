package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/atelier-store/atelier/internal/inventory"
)

// StatsSource computes the inventory snapshot, filling the cache as a side effect.
type StatsSource interface {
	Stats(ctx context.Context) (inventory.Stats, error)
}

// StatsWarmupHandler refreshes the cached snapshot on a schedule so the first
// dashboard request after a quiet period does not pay the aggregation cost.
type StatsWarmupHandler struct {
	source StatsSource
	logger *slog.Logger
}

// NewStatsWarmupHandler constructs StatsWarmupHandler.
func NewStatsWarmupHandler(source StatsSource, logger *slog.Logger) *StatsWarmupHandler {
	return &StatsWarmupHandler{source: source, logger: logger}
}

// Handle processes TaskTypeStatsWarmup tasks.
func (h *StatsWarmupHandler) Handle(ctx context.Context, _ *asynq.Task) error {
	stats, err := h.source.Stats(ctx)
	if err != nil {
		h.logger.Warn("stats warmup failed", slog.Any("error", err))
		return err
	}
	h.logger.Info("stats warmup complete",
		slog.Int("products", stats.TotalProducts),
		slog.Int("low_stock", stats.LowStock))
	return nil
}
