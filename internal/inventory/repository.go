package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-store/atelier/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	InsertLog(ctx context.Context, entry LogEntry) error
	QueryLogs(ctx context.Context, productID uuid.UUID, filter HistoryFilter) ([]LogEntry, error)
	ActiveProductStocks(ctx context.Context) ([]ProductStock, error)
}

// TxRepository exposes the operations available inside a mutation transaction.
// GetStockForUpdate takes a row lock on the target, so two concurrent
// mutations of the same counter serialize instead of losing an update.
type TxRepository interface {
	GetStockForUpdate(ctx context.Context, target StockTarget) (int, error)
	UpdateStock(ctx context.Context, target StockTarget, newValue int) error
}

// ErrTargetNotFound indicates the mutation target does not exist.
var ErrTargetNotFound = errors.New("inventory: stock target not found")

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *txRepo) GetStockForUpdate(ctx context.Context, target StockTarget) (int, error) {
	var (
		stock int
		err   error
	)
	if target.VariantID.Valid {
		err = r.tx.QueryRow(ctx,
			`SELECT stock FROM product_sizes WHERE id = $1 AND product_id = $2 FOR UPDATE`,
			target.VariantID.UUID, target.ProductID).Scan(&stock)
	} else {
		err = r.tx.QueryRow(ctx,
			`SELECT stock FROM products WHERE id = $1 FOR UPDATE`,
			target.ProductID).Scan(&stock)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrTargetNotFound
		}
		return 0, err
	}
	return stock, nil
}

func (r *txRepo) UpdateStock(ctx context.Context, target StockTarget, newValue int) error {
	var tag string
	var args []any
	if target.VariantID.Valid {
		tag = `UPDATE product_sizes SET stock = $1 WHERE id = $2 AND product_id = $3`
		args = []any{newValue, target.VariantID.UUID, target.ProductID}
	} else {
		tag = `UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`
		args = []any{newValue, target.ProductID}
	}
	ct, err := r.tx.Exec(ctx, tag, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// InsertLog appends one immutable entry to the ledger.
func (r *Repository) InsertLog(ctx context.Context, entry LogEntry) error {
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	var variantID any
	if entry.VariantID.Valid {
		variantID = entry.VariantID.UUID
	}
	var createdBy any
	if entry.CreatedBy != uuid.Nil {
		createdBy = entry.CreatedBy
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO inventory_logs
			(id, product_id, product_size_id, change_type, quantity_change,
			 stock_before, stock_after, reason, reference_type, reference_id,
			 created_by, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13)`,
		entry.ID, entry.ProductID, variantID, string(entry.ChangeType), entry.QuantityChange,
		entry.StockBefore, entry.StockAfter, entry.Reason, string(entry.ReferenceType), entry.ReferenceID,
		createdBy, metaJSON, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("inventory: insert log: %w", err)
	}
	return nil
}

// QueryLogs returns ledger entries for one product, newest first.
func (r *Repository) QueryLogs(ctx context.Context, productID uuid.UUID, filter HistoryFilter) ([]LogEntry, error) {
	query := `
		SELECT id, product_id, product_size_id, change_type, quantity_change,
		       stock_before, stock_after, reason, reference_type, COALESCE(reference_id, ''),
		       created_by, metadata, created_at
		FROM inventory_logs
		WHERE product_id = $1`
	args := []any{productID}
	if filter.ChangeType != "" {
		query += ` AND change_type = $2`
		args = append(args, string(filter.ChangeType))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var (
			e         LogEntry
			variantID *uuid.UUID
			createdBy *uuid.UUID
			metaJSON  []byte
		)
		err := rows.Scan(&e.ID, &e.ProductID, &variantID, &e.ChangeType, &e.QuantityChange,
			&e.StockBefore, &e.StockAfter, &e.Reason, &e.ReferenceType, &e.ReferenceID,
			&createdBy, &metaJSON, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		if variantID != nil {
			e.VariantID = uuid.NullUUID{UUID: *variantID, Valid: true}
		}
		if createdBy != nil {
			e.CreatedBy = *createdBy
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
				return nil, fmt.Errorf("inventory: decode log metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ActiveProductStocks scans aggregate stock and price for every active product.
func (r *Repository) ActiveProductStocks(ctx context.Context) ([]ProductStock, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, stock, price FROM products WHERE is_active = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []ProductStock
	for rows.Next() {
		var p ProductStock
		if err := rows.Scan(&p.ID, &p.Stock, &p.Price); err != nil {
			return nil, err
		}
		stocks = append(stocks, p)
	}
	return stocks, rows.Err()
}

// mapTxError converts repository sentinels into the shared taxonomy.
func mapTxError(err error, target StockTarget) error {
	if errors.Is(err, ErrTargetNotFound) {
		if target.VariantID.Valid {
			return shared.NotFoundError("variant %s of product %s", target.VariantID.UUID, target.ProductID)
		}
		return shared.NotFoundError("product %s", target.ProductID)
	}
	return shared.PersistenceError(err)
}
