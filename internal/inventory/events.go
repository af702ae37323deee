package inventory

import (
	"context"
	"log/slog"
)

// StockDroppedEvent is emitted when a mutation pushes a counter down into a
// worse classification bucket.
type StockDroppedEvent struct {
	Target      StockTarget
	Status      StockStatus
	StockBefore int
	StockAfter  int
}

// AlertHandler receives stock-drop events, e.g. to notify purchasing.
type AlertHandler interface {
	HandleStockDropped(ctx context.Context, evt StockDroppedEvent) error
}

// LogAlertHandler is the default AlertHandler: it writes a structured warning.
type LogAlertHandler struct {
	Logger *slog.Logger
}

// HandleStockDropped logs the drop.
func (h LogAlertHandler) HandleStockDropped(_ context.Context, evt StockDroppedEvent) error {
	if h.Logger == nil {
		return nil
	}
	h.Logger.Warn("stock dropped",
		slog.String("product_id", evt.Target.ProductID.String()),
		slog.String("target", evt.Target.Kind()),
		slog.String("status", string(evt.Status)),
		slog.Int("stock_before", evt.StockBefore),
		slog.Int("stock_after", evt.StockAfter))
	return nil
}
