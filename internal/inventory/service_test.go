package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/atelier-store/atelier/internal/shared"
)

type memProduct struct {
	stock  int
	price  float64
	active bool
}

type memVariant struct {
	productID uuid.UUID
	stock     int
}

type memoryRepo struct {
	products      map[uuid.UUID]*memProduct
	variants      map[uuid.UUID]*memVariant
	logs          []LogEntry
	txCalls       int
	failLogAppend bool
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[uuid.UUID]*memProduct),
		variants: make(map[uuid.UUID]*memVariant),
	}
}

func (r *memoryRepo) addProduct(stock int, price float64) uuid.UUID {
	id := uuid.New()
	r.products[id] = &memProduct{stock: stock, price: price, active: true}
	return id
}

func (r *memoryRepo) addVariant(productID uuid.UUID, stock int) uuid.UUID {
	id := uuid.New()
	r.variants[id] = &memVariant{productID: productID, stock: stock}
	return id
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.txCalls++
	return fn(ctx, &memoryTx{repo: r})
}

func (tx *memoryTx) GetStockForUpdate(_ context.Context, target StockTarget) (int, error) {
	if target.VariantID.Valid {
		v, ok := tx.repo.variants[target.VariantID.UUID]
		if !ok || v.productID != target.ProductID {
			return 0, ErrTargetNotFound
		}
		return v.stock, nil
	}
	p, ok := tx.repo.products[target.ProductID]
	if !ok {
		return 0, ErrTargetNotFound
	}
	return p.stock, nil
}

func (tx *memoryTx) UpdateStock(_ context.Context, target StockTarget, newValue int) error {
	if target.VariantID.Valid {
		v, ok := tx.repo.variants[target.VariantID.UUID]
		if !ok || v.productID != target.ProductID {
			return ErrTargetNotFound
		}
		v.stock = newValue
		return nil
	}
	p, ok := tx.repo.products[target.ProductID]
	if !ok {
		return ErrTargetNotFound
	}
	p.stock = newValue
	return nil
}

func (r *memoryRepo) InsertLog(_ context.Context, entry LogEntry) error {
	if r.failLogAppend {
		return errors.New("append refused")
	}
	r.logs = append(r.logs, entry)
	return nil
}

func (r *memoryRepo) QueryLogs(_ context.Context, productID uuid.UUID, filter HistoryFilter) ([]LogEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	var entries []LogEntry
	for i := len(r.logs) - 1; i >= 0 && len(entries) < limit; i-- {
		e := r.logs[i]
		if e.ProductID != productID {
			continue
		}
		if filter.ChangeType != "" && e.ChangeType != filter.ChangeType {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *memoryRepo) ActiveProductStocks(_ context.Context) ([]ProductStock, error) {
	var stocks []ProductStock
	for id, p := range r.products {
		if !p.active {
			continue
		}
		stocks = append(stocks, ProductStock{ID: id, Stock: p.stock, Price: p.price})
	}
	return stocks, nil
}

type memoryQueue struct {
	entries []LogEntry
}

func (q *memoryQueue) EnqueueLogRetry(_ context.Context, entry LogEntry) error {
	q.entries = append(q.entries, entry)
	return nil
}

type staticVariantLookup map[uuid.UUID]string

func (l staticVariantLookup) VariantLabel(_ context.Context, id uuid.UUID) (string, error) {
	label, ok := l[id]
	if !ok {
		return "", errors.New("variant not found")
	}
	return label, nil
}

type staticActorLookup map[uuid.UUID]string

func (l staticActorLookup) DisplayNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if name, ok := l[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(ServiceDeps{Repo: repo, Logger: testLogger()}, ServiceConfig{})
}

func manualInput(productID uuid.UUID, delta int) AdjustmentInput {
	return AdjustmentInput{
		Target:         StockTarget{ProductID: productID},
		QuantityChange: delta,
		ChangeType:     ChangeAdjustment,
		Reason:         "cycle count",
		ActorID:        uuid.New(),
	}
}

func TestApplyAdjustmentClampsAtZero(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(3, 100)
	svc := newTestService(repo)

	input := manualInput(productID, -5)
	result, err := svc.ApplyAdjustment(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 3, result.StockBefore)
	require.Equal(t, 0, result.StockAfter)
	require.True(t, result.Logged)
	require.Equal(t, 0, repo.products[productID].stock)

	require.Len(t, repo.logs, 1)
	entry := repo.logs[0]
	require.Equal(t, -5, entry.QuantityChange)
	require.Equal(t, 3, entry.StockBefore)
	require.Equal(t, 0, entry.StockAfter)
	require.Equal(t, "product", entry.Meta.UpdateTarget)
}

func TestZeroDeltaRejectedBeforeStorage(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(7, 100)
	svc := newTestService(repo)

	_, err := svc.ApplyAdjustment(context.Background(), manualInput(productID, 0))
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Zero(t, repo.txCalls)
	require.Empty(t, repo.logs)
	require.Equal(t, 7, repo.products[productID].stock)
}

func TestTargetNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.ApplyAdjustment(context.Background(), manualInput(uuid.New(), 5))
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, repo.logs)
}

func TestManualAdjustmentRequiresReason(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(5, 100)
	svc := newTestService(repo)

	input := manualInput(productID, 2)
	input.Reason = "  "
	_, err := svc.ApplyAdjustment(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Zero(t, repo.txCalls)
}

func TestRoundTripRestoresOriginalStock(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(20, 100)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.ApplyAdjustment(ctx, manualInput(productID, 8))
	require.NoError(t, err)
	_, err = svc.ApplyAdjustment(ctx, manualInput(productID, -8))
	require.NoError(t, err)

	require.Equal(t, 20, repo.products[productID].stock)
	require.Len(t, repo.logs, 2)
}

func TestVariantAdjustmentLeavesAggregateAlone(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(50, 100)
	variantID := repo.addVariant(productID, 4)
	svc := newTestService(repo)

	input := manualInput(productID, 3)
	input.Target.VariantID = uuid.NullUUID{UUID: variantID, Valid: true}
	result, err := svc.ApplyAdjustment(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 4, result.StockBefore)
	require.Equal(t, 7, result.StockAfter)
	require.Equal(t, 50, repo.products[productID].stock)
	require.Equal(t, 7, repo.variants[variantID].stock)

	require.Len(t, repo.logs, 1)
	require.True(t, repo.logs[0].VariantID.Valid)
	require.Equal(t, variantID, repo.logs[0].VariantID.UUID)
	require.Equal(t, "variant", repo.logs[0].Meta.UpdateTarget)
}

func TestVariantMustBelongToProduct(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(50, 100)
	otherProduct := repo.addProduct(10, 100)
	variantID := repo.addVariant(otherProduct, 4)
	svc := newTestService(repo)

	input := manualInput(productID, 3)
	input.Target.VariantID = uuid.NullUUID{UUID: variantID, Valid: true}
	_, err := svc.ApplyAdjustment(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBulkIsolation(t *testing.T) {
	repo := newMemoryRepo()
	first := repo.addProduct(10, 100)
	third := repo.addProduct(10, 100)
	svc := newTestService(repo)

	requests := []AdjustmentInput{
		manualInput(first, 5),
		manualInput(uuid.New(), 5),
		manualInput(third, -2),
	}
	result := svc.ApplyBulk(context.Background(), requests)

	require.Equal(t, 2, result.SuccessCount)
	require.Equal(t, 1, result.FailCount)
	require.Len(t, result.Results, 3)

	require.True(t, result.Results[0].Success)
	require.Equal(t, 15, result.Results[0].StockAfter)
	require.False(t, result.Results[1].Success)
	require.ErrorIs(t, result.Results[1].Err, shared.ErrNotFound)
	require.True(t, result.Results[2].Success)
	require.Equal(t, 8, result.Results[2].StockAfter)

	require.Equal(t, 15, repo.products[first].stock)
	require.Equal(t, 8, repo.products[third].stock)
}

func TestLogAppendFailureReportsDegradedSuccess(t *testing.T) {
	repo := newMemoryRepo()
	repo.failLogAppend = true
	productID := repo.addProduct(5, 100)
	queue := &memoryQueue{}
	svc := NewService(ServiceDeps{Repo: repo, Logger: testLogger(), Queue: queue}, ServiceConfig{})

	result, err := svc.ApplyAdjustment(context.Background(), manualInput(productID, 2))
	require.NoError(t, err)
	require.False(t, result.Logged)
	require.Equal(t, 7, repo.products[productID].stock)

	require.Len(t, queue.entries, 1)
	require.Equal(t, 5, queue.entries[0].StockBefore)
	require.Equal(t, 7, queue.entries[0].StockAfter)
}

func TestHistoryNewestFirstWithEnrichment(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(5, 100)
	variantID := repo.addVariant(productID, 2)
	actorID := uuid.New()

	variants := staticVariantLookup{variantID: "M"}
	actors := staticActorLookup{actorID: "An Nguyen"}
	svc := NewService(ServiceDeps{
		Repo: repo, Logger: testLogger(), Variants: variants, Actors: actors,
	}, ServiceConfig{})
	ctx := context.Background()

	for _, delta := range []int{4, -2, 1} {
		input := manualInput(productID, delta)
		input.ActorID = actorID
		_, err := svc.ApplyAdjustment(ctx, input)
		require.NoError(t, err)
	}
	variantInput := manualInput(productID, 6)
	variantInput.ActorID = actorID
	variantInput.Target.VariantID = uuid.NullUUID{UUID: variantID, Valid: true}
	_, err := svc.ApplyAdjustment(ctx, variantInput)
	require.NoError(t, err)

	entries, err := svc.History(ctx, productID, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Newest first: variant +6, then +1, -2, +4.
	require.Equal(t, 6, entries[0].QuantityChange)
	require.Equal(t, "M", entries[0].SizeLabel)
	require.Equal(t, 1, entries[1].QuantityChange)
	require.Equal(t, -2, entries[2].QuantityChange)
	require.Equal(t, 4, entries[3].QuantityChange)
	for _, e := range entries {
		require.Equal(t, "An Nguyen", e.ActorName)
	}

	// Before/after chains match each mutation.
	require.Equal(t, 5, entries[3].StockBefore)
	require.Equal(t, 9, entries[3].StockAfter)
	require.Equal(t, 9, entries[2].StockBefore)
	require.Equal(t, 7, entries[2].StockAfter)
	require.Equal(t, 7, entries[1].StockBefore)
	require.Equal(t, 8, entries[1].StockAfter)
}

func TestHistoryEmptyIsNotAnError(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(5, 100)
	svc := newTestService(repo)

	entries, err := svc.History(context.Background(), productID, HistoryFilter{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestHistoryFilterByChangeType(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(5, 100)
	svc := newTestService(repo)
	ctx := context.Background()

	importInput := manualInput(productID, 10)
	importInput.ChangeType = ChangeImport
	_, err := svc.ApplyAdjustment(ctx, importInput)
	require.NoError(t, err)
	_, err = svc.ApplyAdjustment(ctx, manualInput(productID, -1))
	require.NoError(t, err)

	entries, err := svc.History(ctx, productID, HistoryFilter{ChangeType: ChangeImport})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ChangeImport, entries[0].ChangeType)
}

func TestStatsBucketsAndTotals(t *testing.T) {
	repo := newMemoryRepo()
	repo.addProduct(0, 250)
	repo.addProduct(10, 100)
	repo.addProduct(11, 50)
	inactive := repo.addProduct(99, 10)
	repo.products[inactive].active = false
	svc := newTestService(repo)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalProducts)
	require.Equal(t, 21, stats.TotalUnits)
	require.InDelta(t, 10*100.0+11*50.0, stats.TotalStockValue, 0.001)
	require.Equal(t, 1, stats.OutOfStock)
	require.Equal(t, 1, stats.LowStock)
	require.Equal(t, 1, stats.InStock)
}

func TestMonthlyImportScenario(t *testing.T) {
	repo := newMemoryRepo()
	productID := repo.addProduct(5, 100)
	svc := newTestService(repo)
	ctx := context.Background()

	input := AdjustmentInput{
		Target:         StockTarget{ProductID: productID},
		QuantityChange: 10,
		ChangeType:     ChangeImport,
		Reason:         "Nhập hàng tháng 6",
		ActorID:        uuid.New(),
	}
	result, err := svc.ApplyAdjustment(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 5, result.StockBefore)
	require.Equal(t, 15, result.StockAfter)

	entries, err := svc.History(ctx, productID, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 10, entries[0].QuantityChange)
	require.Equal(t, "Nhập hàng tháng 6", entries[0].Reason)
}
