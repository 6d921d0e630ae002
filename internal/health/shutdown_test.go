package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mascotienda/backend-tienda/internal/health"
)

func readyStatus(h health.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	return rr
}

func TestReadyGateClosesDuringShutdown(t *testing.T) {
	handler := health.Handler{Checker: stubChecker{}, DBTimeout: 50 * time.Millisecond, RedisTimeout: 50 * time.Millisecond}
	t.Cleanup(func() { health.SetReady(true) })

	require.Equal(t, http.StatusOK, readyStatus(handler).Code)

	// Shutdown flips the gate before the listener drains; the balancer must
	// see unready even though the dependencies still answer.
	health.SetReady(false)
	rr := readyStatus(handler)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Contains(t, rr.Body.String(), "shutting down")

	health.SetReady(true)
	require.Equal(t, http.StatusOK, readyStatus(handler).Code)
}
