package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/atelier-store/atelier/internal/inventory"
	"github.com/atelier-store/atelier/internal/shared"
)

// Service exposes the read-only catalog views used by the back office.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the inventory dashboard listing: products matching the filters,
// classified against the threshold and joined with their size variants.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]ProductSummary, shared.Pagination, error) {
	threshold := filters.Threshold
	if threshold <= 0 {
		threshold = inventory.DefaultLowStockThreshold
		filters.Threshold = threshold
	}

	products, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	sizes, err := s.repo.SizesFor(ctx, ids)
	if err != nil {
		return nil, shared.Pagination{}, err
	}

	summaries := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		summaries = append(summaries, ProductSummary{
			Product:     p,
			StockStatus: inventory.Classify(p.Stock, threshold),
			HasVariants: len(sizes[p.ID]) > 0,
			Sizes:       sizes[p.ID],
		})
	}
	return summaries, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// Get returns one product with classification.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (ProductSummary, error) {
	if id == uuid.Nil {
		return ProductSummary{}, shared.ValidationError("product id required")
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductSummary{}, err
	}
	sizes, err := s.repo.SizesFor(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return ProductSummary{}, err
	}
	return ProductSummary{
		Product:     p,
		StockStatus: inventory.Classify(p.Stock, inventory.DefaultLowStockThreshold),
		HasVariants: len(sizes[p.ID]) > 0,
		Sizes:       sizes[p.ID],
	}, nil
}
