package checkout

import (
	"net/http"

	"github.com/mascotienda/backend-tienda/internal/common"
)

// Handler exposes the order-submission endpoint.
type Handler struct {
	Svc *Service
}

// Submit handles POST /api/v1/checkout.
func (h Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, common.BadRequest("invalid request body", err.Error()))
		return
	}
	out, err := h.Svc.Submit(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, out)
}
