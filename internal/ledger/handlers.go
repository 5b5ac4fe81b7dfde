package ledger

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/Shreyas-sv10/Shopperplex2/internal/common"
	"github.com/Shreyas-sv10/Shopperplex2/internal/obs"
)

// Handler exposes billing and history endpoints.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type billItemRequest struct {
	ItemID string  `json:"itemId" validate:"required"`
	Qty    float64 `json:"qty" validate:"required,gt=0"`
}

type createBillRequest struct {
	CustomerName string            `json:"customerName" validate:"required"`
	Items        []billItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount     float64           `json:"discount" validate:"omitempty,gte=0"`
}

// Create handles POST /api/v1/bills. The discount field is ignored here;
// customers cannot grant themselves one.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

// AdminCreate handles POST /api/v1/admin/bills and honours the discount.
func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, allowDiscount bool) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "ledger service not configured", nil)
		return
	}
	var req createBillRequest
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
	selections := make([]Selection, 0, len(req.Items))
	for _, it := range req.Items {
		selections = append(selections, Selection{ItemID: it.ItemID, Qty: it.Qty})
	}
	discount := 0.0
	if allowDiscount {
		discount = req.Discount
	}
	bill, err := h.Service.ComputeAndRecordBill(r.Context(), req.CustomerName, selections, discount)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if obs.BillsRecordedTotal != nil {
		kind := "customer"
		if allowDiscount {
			kind = "admin"
		}
		obs.BillsRecordedTotal.WithLabelValues(kind).Inc()
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": bill})
}

// History handles GET /api/v1/customers/{name}/history. An unknown customer
// yields an empty list with a 200, not a 404.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "ledger service not configured", nil)
		return
	}
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		common.WriteError(w, common.ValidationError("customer name is required", nil))
		return
	}
	records := h.Service.LookupHistory(r.Context(), name)
	w.Header().Set("X-Total-Count", strconv.Itoa(len(records)))
	common.JSON(w, http.StatusOK, map[string]any{"data": records})
}
