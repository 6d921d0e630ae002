package cart

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/common"
	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

// Handler wires cart sessions to HTTP.
type Handler struct {
	Svc      *Service
	Coupons  CouponResolver
	Resolver delivery.Resolver
	Policy   pricing.RoundingPolicy
}

// CouponResolver resolves an entered code into a discount percent.
type CouponResolver interface {
	ResolvePercent(ctx context.Context, code string) decimal.Decimal
}

// Create starts a cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, map[string]any{"cartId": c.ID})
}

// Get returns cart contents plus a pricing preview.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

// AddItem appends a line to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProductID string          `json:"productId"`
		Title     string          `json:"title"`
		SizeLabel string          `json:"sizeLabel"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
		Qty       int             `json:"qty"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item payload", nil)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), Line{
		ProductID: payload.ProductID,
		Title:     payload.Title,
		SizeLabel: payload.SizeLabel,
		UnitPrice: payload.UnitPrice,
		Qty:       payload.Qty,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

// UpdateItem changes a line quantity.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProductID string `json:"productId"`
		SizeLabel string `json:"sizeLabel"`
		Qty       int    `json:"qty"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item payload", nil)
		return
	}
	c, err := h.Svc.UpdateItem(r.Context(), chi.URLParam(r, "id"), payload.ProductID, payload.SizeLabel, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

// RemoveItem drops a line. The line is addressed by query parameters since
// DELETE bodies are unreliable across proxies.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("productId")
	sizeLabel := r.URL.Query().Get("sizeLabel")
	c, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), productID, sizeLabel)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

// ApplyCoupon records the entered code and reports the resolved percent.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code string `json:"code"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid coupon payload", nil)
		return
	}
	c, err := h.Svc.ApplyCoupon(r.Context(), chi.URLParam(r, "id"), payload.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

// RemoveCoupon clears the applied code.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.RemoveCoupon(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

// SetDestination stores the delivery destination chosen on the map or the
// agency form.
func (h *Handler) SetDestination(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unable to read body", nil)
		return
	}
	dest, err := delivery.UnmarshalDestination(body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	c, err := h.Svc.SetDestination(r.Context(), chi.URLParam(r, "id"), dest)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

// QuoteDelivery returns the current pricing preview including the delivery
// quote for the stored destination.
func (h *Handler) QuoteDelivery(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	h.respondWithPreview(w, r, http.StatusOK, c)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Cart, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return Cart{}, false
	}
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return Cart{}, false
	}
	return c, true
}

func (h *Handler) respondWithPreview(w http.ResponseWriter, r *http.Request, status int, c Cart) {
	dest, err := c.Dest()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	discountPercent := decimal.Zero
	if h.Coupons != nil && c.CouponCode != "" {
		discountPercent = h.Coupons.ResolvePercent(r.Context(), c.CouponCode)
	}
	subtotal := Subtotal(c.Lines)
	result, quote, err := pricing.Compute(subtotal, discountPercent, h.Resolver, dest, h.Policy)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSONData(w, status, map[string]any{
		"cartId":      c.ID,
		"items":       Normalize(c.Lines),
		"couponCode":  c.CouponCode,
		"destination": c.Destination,
		"pricing":     result,
		"delivery":    quote,
		"submittable": quote.Submittable() && len(c.Lines) > 0,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart line not found", nil)
	case errors.Is(err, ErrInvalidQty), errors.Is(err, ErrInvalidPrice), errors.Is(err, delivery.ErrInvalidPoint), errors.Is(err, delivery.ErrUnknownRegion):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
