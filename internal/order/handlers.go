package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mascotienda/backend-tienda/internal/common"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

// Getter loads persisted orders; Store satisfies it.
type Getter interface {
	GetByID(ctx context.Context, id string) (Order, error)
}

// Handler serves order readback.
type Handler struct {
	Store  Getter
	Policy pricing.RoundingPolicy
}

// Get returns the persisted order together with the total derived from the
// stored fields, so clients can verify the record against the invoice.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	o, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{
		"order":          o,
		"discountAmount": o.DiscountAmount(),
		"derivedTotal":   o.DerivedTotal(h.Policy),
	})
}
