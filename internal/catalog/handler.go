package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atelier-store/atelier/internal/inventory"
	"github.com/atelier-store/atelier/internal/platform/httpx"
	"github.com/atelier-store/atelier/internal/shared"
)

// Handler wires HTTP endpoints for catalog reads.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/products", h.handleList)
		r.Get("/products/{productID}", h.handleGet)
	})
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := shared.ActorID(r.Context()); err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type listResponse struct {
	Products   []ProductSummary  `json:"products"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Status: inventory.StockStatus(q.Get("status")),
		Search: q.Get("search"),
	}
	switch filters.Status {
	case "", inventory.StatusOutOfStock, inventory.StatusLowStock, inventory.StatusInStock:
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status filter")
		return
	}
	if pageStr := q.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			filters.Page = page
		}
	}
	if perStr := q.Get("per_page"); perStr != "" {
		if per, err := strconv.Atoi(perStr); err == nil && per <= 100 {
			filters.PerPage = per
		}
	}
	if thStr := q.Get("threshold"); thStr != "" {
		if th, err := strconv.Atoi(thStr); err == nil {
			filters.Threshold = th
		}
	}

	products, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if products == nil {
		products = []ProductSummary{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Products: products, Pagination: pagination})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	summary, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
