package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelier-store/atelier/internal/shared"
)

// ChangeType enumerates supported stock movements.
type ChangeType string

const (
	// ChangeImport represents goods received from a supplier.
	ChangeImport ChangeType = "import"
	// ChangeAdjustment indicates a manual correction.
	ChangeAdjustment ChangeType = "adjustment"
	// ChangeDamaged writes off damaged goods.
	ChangeDamaged ChangeType = "damaged"
	// ChangeLost writes off missing goods.
	ChangeLost ChangeType = "lost"
	// ChangeFound records goods recovered during a recount.
	ChangeFound ChangeType = "found"
	// ChangeReturn records a customer return.
	ChangeReturn ChangeType = "return"
	// ChangeOrder records stock consumed by an order.
	ChangeOrder ChangeType = "order"
)

// Valid reports whether the change type is a known movement.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeImport, ChangeAdjustment, ChangeDamaged, ChangeLost, ChangeFound, ChangeReturn, ChangeOrder:
		return true
	}
	return false
}

// ReferenceType classifies what triggered a movement.
type ReferenceType string

const (
	// ReferenceManual marks an operator-initiated adjustment.
	ReferenceManual ReferenceType = "manual"
	// ReferenceOrder links a movement to an order.
	ReferenceOrder ReferenceType = "order"
	// ReferenceBulkImport marks a row from a bulk import batch.
	ReferenceBulkImport ReferenceType = "bulk_import"
)

// StockTarget selects which counter a mutation applies to: the product's
// aggregate stock, or one size variant's stock when VariantID is set.
type StockTarget struct {
	ProductID uuid.UUID
	VariantID uuid.NullUUID
}

// Validate checks the target identifies a product.
func (t StockTarget) Validate() error {
	if t.ProductID == uuid.Nil {
		return shared.ValidationError("stock target requires a product id")
	}
	if t.VariantID.Valid && t.VariantID.UUID == uuid.Nil {
		return shared.ValidationError("variant id must not be empty when set")
	}
	return nil
}

// Kind reports which counter the target addresses.
func (t StockTarget) Kind() string {
	if t.VariantID.Valid {
		return "variant"
	}
	return "product"
}

// LogMeta carries the known optional fields of a log entry. Extra is the
// escape hatch for values outside the closed set.
type LogMeta struct {
	UpdateTarget string            `json:"update_target,omitempty"`
	Source       string            `json:"source,omitempty"`
	ImportDate   string            `json:"import_date,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// LogEntry is one immutable record in the stock ledger. Entries are only ever
// appended; nothing updates or deletes them.
type LogEntry struct {
	ID             uuid.UUID     `json:"id"`
	ProductID      uuid.UUID     `json:"product_id"`
	VariantID      uuid.NullUUID `json:"variant_id"`
	ChangeType     ChangeType    `json:"change_type"`
	QuantityChange int           `json:"quantity_change"`
	StockBefore    int           `json:"stock_before"`
	StockAfter     int           `json:"stock_after"`
	Reason         string        `json:"reason"`
	ReferenceType  ReferenceType `json:"reference_type"`
	ReferenceID    string        `json:"reference_id,omitempty"`
	CreatedBy      uuid.UUID     `json:"created_by"`
	Meta           LogMeta       `json:"metadata"`
	CreatedAt      time.Time     `json:"created_at"`
}

// EnrichedLogEntry decorates a ledger record with display lookups.
type EnrichedLogEntry struct {
	LogEntry
	SizeLabel string `json:"size_label,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
}

// AdjustmentInput describes one requested stock mutation.
type AdjustmentInput struct {
	Target         StockTarget
	QuantityChange int
	ChangeType     ChangeType
	Reason         string
	ReferenceType  ReferenceType
	ReferenceID    string
	ActorID        uuid.UUID
	Meta           LogMeta
}

// AdjustmentResult reports the before/after pair for an applied mutation.
// Logged is false when the stock write committed but the audit append failed
// and was handed to the retry queue.
type AdjustmentResult struct {
	StockBefore int  `json:"stock_before"`
	StockAfter  int  `json:"stock_after"`
	Logged      bool `json:"logged"`
}

// ItemResult records the outcome of one request within a bulk batch.
type ItemResult struct {
	Request     AdjustmentInput `json:"-"`
	Success     bool            `json:"success"`
	StockBefore int             `json:"stock_before,omitempty"`
	StockAfter  int             `json:"stock_after,omitempty"`
	Logged      bool            `json:"logged,omitempty"`
	Err         error           `json:"-"`
}

// BulkResult is the full per-item ledger of a bulk run plus aggregate counts.
type BulkResult struct {
	Results      []ItemResult
	SuccessCount int
	FailCount    int
}

// HistoryFilter narrows a history query.
type HistoryFilter struct {
	ChangeType ChangeType
	Limit      int
}

// ProductStock is the slice of product state the snapshot aggregator reads.
type ProductStock struct {
	ID    uuid.UUID
	Stock int
	Price float64
}

// Stats summarises fleet-wide stock health across active products.
type Stats struct {
	TotalProducts   int       `json:"total_products"`
	TotalUnits      int       `json:"total_units"`
	TotalStockValue float64   `json:"total_stock_value"`
	OutOfStock      int       `json:"out_of_stock"`
	LowStock        int       `json:"low_stock"`
	InStock         int       `json:"in_stock"`
	GeneratedAt     time.Time `json:"generated_at"`
}
