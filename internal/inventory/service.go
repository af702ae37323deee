package inventory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/atelier-store/atelier/internal/observability"
	"github.com/atelier-store/atelier/internal/shared"
)

// LogQueue hands failed audit appends to a background retry queue.
type LogQueue interface {
	EnqueueLogRetry(ctx context.Context, entry LogEntry) error
}

// VariantLookup resolves a size variant's display label.
type VariantLookup interface {
	VariantLabel(ctx context.Context, variantID uuid.UUID) (string, error)
}

// ActorLookup resolves display names for acting users.
type ActorLookup interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	LowStockThreshold int
}

// ServiceDeps collects collaborators for NewService. Repo and Logger are
// required; everything else degrades gracefully when nil.
type ServiceDeps struct {
	Repo     RepositoryPort
	Logger   *slog.Logger
	Cache    *StatsCache
	Queue    LogQueue
	Variants VariantLookup
	Actors   ActorLookup
	Alerts   AlertHandler
	Metrics  *observability.LedgerMetrics
}

// Service coordinates stock mutations, the audit ledger, history queries and
// the fleet-wide snapshot.
type Service struct {
	repo     RepositoryPort
	logger   *slog.Logger
	cache    *StatsCache
	queue    LogQueue
	variants VariantLookup
	actors   ActorLookup
	alerts   AlertHandler
	metrics  *observability.LedgerMetrics
	cfg      ServiceConfig

	statsGroup singleflight.Group
}

// NewService builds Service.
func NewService(deps ServiceDeps, cfg ServiceConfig) *Service {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{
		repo:     deps.Repo,
		logger:   deps.Logger,
		cache:    deps.Cache,
		queue:    deps.Queue,
		variants: deps.Variants,
		actors:   deps.Actors,
		alerts:   deps.Alerts,
		metrics:  deps.Metrics,
		cfg:      cfg,
	}
}

// ApplyAdjustment applies one signed delta to exactly one stock counter and
// appends an audit entry. The stock write and the audit append are deliberate
// separate steps: the write must succeed, the append is best-effort and goes
// to the retry queue on failure (Logged=false on the result).
func (s *Service) ApplyAdjustment(ctx context.Context, input AdjustmentInput) (AdjustmentResult, error) {
	if err := s.validateInput(&input); err != nil {
		return AdjustmentResult{}, err
	}

	var before, after int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetStockForUpdate(ctx, input.Target)
		if err != nil {
			return err
		}
		before = current
		after = before + input.QuantityChange
		if after < 0 {
			after = 0
		}
		return tx.UpdateStock(ctx, input.Target, after)
	})
	if err != nil {
		return AdjustmentResult{}, mapTxError(err, input.Target)
	}

	s.metrics.AdjustmentApplied(string(input.ChangeType))
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate stats cache", slog.Any("error", err))
	}

	entry := s.buildLogEntry(input, before, after)
	logged := true
	if err := s.repo.InsertLog(ctx, entry); err != nil {
		// The mutation committed; losing it now would be worse than a gap in
		// the ledger. Queue the entry for replay and report degraded success.
		logged = false
		s.metrics.LogAppendFailed()
		s.logger.Warn("inventory log append failed after stock write",
			slog.String("product_id", input.Target.ProductID.String()),
			slog.Any("error", shared.LogWriteError(err)))
		if s.queue != nil {
			if qErr := s.queue.EnqueueLogRetry(ctx, entry); qErr != nil {
				s.logger.Error("enqueue log retry", slog.Any("error", qErr))
			}
		}
	}

	s.notifyDrop(ctx, input.Target, before, after)

	return AdjustmentResult{StockBefore: before, StockAfter: after, Logged: logged}, nil
}

// ApplyBulk drives ApplyAdjustment over the batch sequentially. One item's
// failure never aborts the rest; the returned ledger preserves request order.
func (s *Service) ApplyBulk(ctx context.Context, requests []AdjustmentInput) BulkResult {
	out := BulkResult{Results: make([]ItemResult, 0, len(requests))}
	for _, req := range requests {
		if req.ReferenceType == "" {
			req.ReferenceType = ReferenceBulkImport
		}
		res, err := s.ApplyAdjustment(ctx, req)
		if err != nil {
			out.Results = append(out.Results, ItemResult{Request: req, Err: err})
			out.FailCount++
			s.metrics.BulkItem("failed")
			continue
		}
		out.Results = append(out.Results, ItemResult{
			Request:     req,
			Success:     true,
			StockBefore: res.StockBefore,
			StockAfter:  res.StockAfter,
			Logged:      res.Logged,
		})
		out.SuccessCount++
		s.metrics.BulkItem("ok")
	}
	return out
}

// History returns the product's ledger newest-first, decorated with size
// labels and actor names. Lookups are display enrichment only, so their
// failures degrade to empty fields instead of failing the query.
func (s *Service) History(ctx context.Context, productID uuid.UUID, filter HistoryFilter) ([]EnrichedLogEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.ValidationError("product id required")
	}
	if filter.ChangeType != "" && !filter.ChangeType.Valid() {
		return nil, shared.ValidationError("unknown change type %q", filter.ChangeType)
	}

	entries, err := s.repo.QueryLogs(ctx, productID, filter)
	if err != nil {
		return nil, err
	}

	labels := make(map[uuid.UUID]string)
	actorIDs := make([]uuid.UUID, 0, len(entries))
	seenActors := make(map[uuid.UUID]struct{})
	for _, e := range entries {
		if e.VariantID.Valid {
			labels[e.VariantID.UUID] = ""
		}
		if e.CreatedBy != uuid.Nil {
			if _, ok := seenActors[e.CreatedBy]; !ok {
				seenActors[e.CreatedBy] = struct{}{}
				actorIDs = append(actorIDs, e.CreatedBy)
			}
		}
	}

	if s.variants != nil {
		for id := range labels {
			label, err := s.variants.VariantLabel(ctx, id)
			if err != nil {
				s.logger.Warn("variant label lookup", slog.String("variant_id", id.String()), slog.Any("error", err))
				continue
			}
			labels[id] = label
		}
	}

	names := map[uuid.UUID]string{}
	if s.actors != nil && len(actorIDs) > 0 {
		names, err = s.actors.DisplayNames(ctx, actorIDs)
		if err != nil {
			s.logger.Warn("actor name lookup", slog.Any("error", err))
			names = map[uuid.UUID]string{}
		}
	}

	enriched := make([]EnrichedLogEntry, 0, len(entries))
	for _, e := range entries {
		item := EnrichedLogEntry{LogEntry: e}
		if e.VariantID.Valid {
			item.SizeLabel = labels[e.VariantID.UUID]
		}
		if e.CreatedBy != uuid.Nil {
			item.ActorName = names[e.CreatedBy]
		}
		enriched = append(enriched, item)
	}
	return enriched, nil
}

// Stats computes the fleet-wide snapshot over active products. Aggregate
// product stock only; variant counters are not summed here.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if stats, ok := s.cache.Get(ctx); ok {
		return stats, nil
	}

	v, err, _ := s.statsGroup.Do("stats", func() (any, error) {
		products, err := s.repo.ActiveProductStocks(ctx)
		if err != nil {
			return Stats{}, err
		}
		stats := Stats{TotalProducts: len(products), GeneratedAt: time.Now().UTC()}
		for _, p := range products {
			stats.TotalUnits += p.Stock
			stats.TotalStockValue += float64(p.Stock) * p.Price
			switch Classify(p.Stock, s.cfg.LowStockThreshold) {
			case StatusOutOfStock:
				stats.OutOfStock++
			case StatusLowStock:
				stats.LowStock++
			default:
				stats.InStock++
			}
		}
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn("cache stats snapshot", slog.Any("error", err))
		}
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

// Threshold exposes the configured low-stock threshold.
func (s *Service) Threshold() int {
	return s.cfg.LowStockThreshold
}

func (s *Service) validateInput(input *AdjustmentInput) error {
	if input.QuantityChange == 0 {
		return shared.ValidationError("quantity change must not be zero")
	}
	if err := input.Target.Validate(); err != nil {
		return err
	}
	if !input.ChangeType.Valid() {
		return shared.ValidationError("unknown change type %q", input.ChangeType)
	}
	if input.ReferenceType == "" {
		input.ReferenceType = ReferenceManual
	}
	if input.ReferenceType == ReferenceManual && strings.TrimSpace(input.Reason) == "" {
		return shared.ValidationError("reason is required for manual adjustments")
	}
	if input.ActorID == uuid.Nil {
		return shared.ErrUnauthenticated
	}
	return nil
}

func (s *Service) buildLogEntry(input AdjustmentInput, before, after int) LogEntry {
	meta := input.Meta
	meta.UpdateTarget = input.Target.Kind()
	return LogEntry{
		ID:             uuid.New(),
		ProductID:      input.Target.ProductID,
		VariantID:      input.Target.VariantID,
		ChangeType:     input.ChangeType,
		QuantityChange: input.QuantityChange,
		StockBefore:    before,
		StockAfter:     after,
		Reason:         input.Reason,
		ReferenceType:  input.ReferenceType,
		ReferenceID:    input.ReferenceID,
		CreatedBy:      input.ActorID,
		Meta:           meta,
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *Service) notifyDrop(ctx context.Context, target StockTarget, before, after int) {
	if s.alerts == nil || after >= before {
		return
	}
	statusBefore := Classify(before, s.cfg.LowStockThreshold)
	statusAfter := Classify(after, s.cfg.LowStockThreshold)
	if statusAfter == statusBefore || statusAfter == StatusInStock {
		return
	}
	evt := StockDroppedEvent{Target: target, Status: statusAfter, StockBefore: before, StockAfter: after}
	if err := s.alerts.HandleStockDropped(ctx, evt); err != nil {
		s.logger.Warn("stock drop alert", slog.Any("error", err))
	}
}
