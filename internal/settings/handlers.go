package settings

import (
	"net/http"

	"github.com/mascotienda/backend-tienda/internal/common"
)

// Handler serves the settings/coupon-registry endpoint with conditional
// fetch support.
type Handler struct {
	Cache *Cache
}

// Get returns the current settings snapshot. A matching If-None-Match header
// short-circuits to 304.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Cache == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "settings cache not configured", nil)
		return
	}
	force := r.URL.Query().Get("refresh") == "true"
	snap, err := h.Cache.GetOrRefresh(r.Context(), force)
	if err != nil {
		common.JSONError(w, http.StatusServiceUnavailable, "SETTINGS_UNAVAILABLE", "settings are temporarily unavailable", nil)
		return
	}
	etag := `"` + snap.Metadata.ETag + `"`
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	common.JSON(w, http.StatusOK, snap)
}
