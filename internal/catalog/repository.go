package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-store/atelier/internal/inventory"
	"github.com/atelier-store/atelier/internal/shared"
)

// Repository reads catalog data from PostgreSQL.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	SizesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]SizeVariant, error)
	VariantLabel(ctx context.Context, variantID uuid.UUID) (string, error)
	InventoryRows(ctx context.Context) ([]inventory.ExportRow, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, slug, COALESCE(brand_name, ''), price, COALESCE(original_price, 0), stock, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	threshold := filters.Threshold
	if threshold <= 0 {
		threshold = inventory.DefaultLowStockThreshold
	}

	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	switch filters.Status {
	case inventory.StatusOutOfStock:
		where += ` AND stock = 0`
	case inventory.StatusLowStock:
		argCount++
		where += ` AND stock > 0 AND stock <= $` + strconv.Itoa(argCount)
		args = append(args, threshold)
	case inventory.StatusInStock:
		argCount++
		where += ` AND stock > $` + strconv.Itoa(argCount)
		args = append(args, threshold)
	}

	if filters.Search != "" {
		argCount++
		where += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name`
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, perPage)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (page-1)*perPage)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.NotFoundError("product %s", id)
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) SizesFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]SizeVariant, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID][]SizeVariant{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, size, stock FROM product_sizes WHERE product_id = ANY($1) ORDER BY size`,
		productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sizes := make(map[uuid.UUID][]SizeVariant)
	for rows.Next() {
		var v SizeVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Stock); err != nil {
			return nil, err
		}
		sizes[v.ProductID] = append(sizes[v.ProductID], v)
	}
	return sizes, rows.Err()
}

// VariantLabel resolves the size label shown next to variant-level ledger
// entries.
func (r *repository) VariantLabel(ctx context.Context, variantID uuid.UUID) (string, error) {
	var label string
	err := r.db.QueryRow(ctx, `SELECT size FROM product_sizes WHERE id = $1`, variantID).Scan(&label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.NotFoundError("variant %s", variantID)
		}
		return "", err
	}
	return label, nil
}

// InventoryRows flattens the catalog for CSV export: one row per size variant,
// or a single "One Size" row for products without variants.
func (r *repository) InventoryRows(ctx context.Context) ([]inventory.ExportRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, COALESCE(p.brand_name, ''),
		       COALESCE(s.size, 'One Size'),
		       COALESCE(s.stock, p.stock),
		       p.price, p.is_active
		FROM products p
		LEFT JOIN product_sizes s ON s.product_id = p.id
		ORDER BY p.name, s.size`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.ExportRow
	for rows.Next() {
		var row inventory.ExportRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Brand, &row.Size, &row.Stock, &row.Price, &row.Active); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Brand, &p.Price, &p.OriginalPrice,
		&p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
