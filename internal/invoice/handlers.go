package invoice

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mascotienda/backend-tienda/internal/common"
	"github.com/mascotienda/backend-tienda/internal/order"
)

// Handler serves invoice generation for persisted orders.
type Handler struct {
	Store    order.Getter
	Renderer Renderer
}

// Get builds the invoice from the stored order. format=html returns the
// server-rendered document; the default JSON body carries the same document
// for browser-side assembly.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	o, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	doc := h.Renderer.Build(o)
	if r.URL.Query().Get("format") == "html" {
		rendered, err := h.Renderer.HTML(doc)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(rendered)
		return
	}
	common.JSONData(w, http.StatusOK, doc)
}
