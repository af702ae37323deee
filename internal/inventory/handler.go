package inventory

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/atelier-store/atelier/internal/platform/httpx"
	"github.com/atelier-store/atelier/internal/shared"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter *Exporter
	validate *validator.Validate
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service, exporter *Exporter) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		exporter: exporter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers inventory routes. All routes require a signed-in user.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/adjustments", h.handleAdjustment)
		r.Post("/adjustments/bulk", h.handleBulk)
		r.Get("/products/{productID}/history", h.handleHistory)
		r.Get("/stats", h.handleStats)
		r.Get("/export.csv", h.handleExport)
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

type adjustmentRequest struct {
	ProductID      string            `json:"product_id" validate:"required,uuid"`
	VariantID      string            `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	QuantityChange int               `json:"quantity_change" validate:"required"`
	ChangeType     string            `json:"change_type" validate:"required"`
	Reason         string            `json:"reason"`
	ReferenceType  string            `json:"reference_type"`
	ReferenceID    string            `json:"reference_id"`
	ImportDate     string            `json:"import_date" validate:"omitempty,datetime=2006-01-02"`
	Extra          map[string]string `json:"extra"`
}

type bulkRequest struct {
	Adjustments []adjustmentRequest `json:"adjustments" validate:"required,min=1,max=500,dive"`
}

type bulkItemResponse struct {
	Index       int    `json:"index"`
	Success     bool   `json:"success"`
	StockBefore int    `json:"stock_before,omitempty"`
	StockAfter  int    `json:"stock_after,omitempty"`
	Logged      bool   `json:"logged,omitempty"`
	Error       string `json:"error,omitempty"`
}

type bulkResponse struct {
	SuccessCount int                `json:"success_count"`
	FailCount    int                `json:"fail_count"`
	Results      []bulkItemResponse `json:"results"`
}

type statsResponse struct {
	Stats
	LowStockThreshold int `json:"low_stock_threshold"`
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := h.toInput(r, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.ApplyAdjustment(r.Context(), input)
	if err != nil {
		h.logger.Error("apply adjustment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inputs := make([]AdjustmentInput, 0, len(req.Adjustments))
	for _, item := range req.Adjustments {
		input, err := h.toInput(r, item)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		inputs = append(inputs, input)
	}
	result := h.service.ApplyBulk(r.Context(), inputs)

	resp := bulkResponse{SuccessCount: result.SuccessCount, FailCount: result.FailCount}
	for i, item := range result.Results {
		out := bulkItemResponse{
			Index:       i,
			Success:     item.Success,
			StockBefore: item.StockBefore,
			StockAfter:  item.StockAfter,
			Logged:      item.Logged,
		}
		if item.Err != nil {
			out.Error = shared.UserSafeMessage(item.Err)
		}
		resp.Results = append(resp.Results, out)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	filter := HistoryFilter{ChangeType: ChangeType(r.URL.Query().Get("change_type"))}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 500 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be between 1 and 500")
			return
		}
		filter.Limit = limit
	}
	entries, err := h.service.History(r.Context(), productID, filter)
	if err != nil {
		h.logger.Error("query history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []EnrichedLogEntry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("inventory stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statsResponse{Stats: stats, LowStockThreshold: h.service.Threshold()})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filename := "inventory_" + time.Now().UTC().Format("2006-01-02T15-04-05") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := h.exporter.WriteCSV(r.Context(), w); err != nil {
		h.logger.Error("inventory export", slog.Any("error", err))
	}
}

func (h *Handler) toInput(r *http.Request, req adjustmentRequest) (AdjustmentInput, error) {
	actorID, err := shared.ActorID(r.Context())
	if err != nil {
		return AdjustmentInput{}, err
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return AdjustmentInput{}, shared.ValidationError("invalid product id")
	}
	target := StockTarget{ProductID: productID}
	if req.VariantID != "" {
		variantID, err := uuid.Parse(req.VariantID)
		if err != nil {
			return AdjustmentInput{}, shared.ValidationError("invalid variant id")
		}
		target.VariantID = uuid.NullUUID{UUID: variantID, Valid: true}
	}
	return AdjustmentInput{
		Target:         target,
		QuantityChange: req.QuantityChange,
		ChangeType:     ChangeType(req.ChangeType),
		Reason:         req.Reason,
		ReferenceType:  ReferenceType(req.ReferenceType),
		ReferenceID:    req.ReferenceID,
		ActorID:        actorID,
		Meta: LogMeta{
			Source:     "admin_api",
			ImportDate: req.ImportDate,
			Extra:      req.Extra,
		},
	}, nil
}
