package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/Shreyas-sv10/Shopperplex2/internal/common"
	"github.com/Shreyas-sv10/Shopperplex2/internal/obs"
)

// Handler exposes catalog endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type addItemRequest struct {
	Name        string   `json:"name" validate:"required"`
	PriceKg     *float64 `json:"priceKg" validate:"omitempty,gt=0"`
	PriceManual *float64 `json:"priceManual" validate:"omitempty,gt=0"`
	ImageSrc    *string  `json:"imageSrc"`
}

type updatePriceRequest struct {
	PriceKg     *float64 `json:"priceKg" validate:"omitempty,gt=0"`
	PriceManual *float64 `json:"priceManual" validate:"omitempty,gt=0"`
}

// List handles GET /api/v1/items.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	items := h.Service.List(r.Context())
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// Create handles POST /api/v1/admin/items.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("request body must be valid JSON", nil))
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.WriteError(w, common.ValidationErrorFrom(err))
			return
		}
	}
	item, err := h.Service.AddItem(r.Context(), AddItemParams{
		Name:        req.Name,
		PriceKg:     req.PriceKg,
		PriceManual: req.PriceManual,
		ImageSrc:    req.ImageSrc,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if obs.ItemsAddedTotal != nil {
		obs.ItemsAddedTotal.Inc()
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

// UpdatePrice handles PUT /api/v1/admin/items/{id}/price.
func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	itemID := chi.URLParam(r, "id")
	var req updatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.ValidationError("request body must be valid JSON", nil))
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.WriteError(w, common.ValidationErrorFrom(err))
			return
		}
	}
	if err := h.Service.UpdatePrice(r.Context(), itemID, req.PriceKg, req.PriceManual); err != nil {
		common.WriteError(w, err)
		return
	}
	if obs.PriceUpdatesTotal != nil {
		obs.PriceUpdatesTotal.Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"status": "updated"}})
}
