package security

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/mascotienda/backend-tienda/internal/common"
)

// BodyLimit caps request payload size. Checkout and cart payloads are small,
// so anything past the cap is rejected up front with the API's JSON error
// envelope instead of letting a handler buffer it.
type BodyLimit struct {
	Max int64
}

// Middleware rejects oversized requests with 413 and replaces the body with
// an in-memory copy so downstream decoders can re-read it.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			writeTooLarge(w)
			return
		}

		body, fits, err := readCapped(r.Body, b.Max)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unable to read request body", nil)
			return
		}
		if !fits {
			writeTooLarge(w)
			return
		}

		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

func writeTooLarge(w http.ResponseWriter) {
	common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body exceeds limit", nil)
}

// readCapped reads at most max bytes and reports whether the body fit.
func readCapped(body io.Reader, max int64) ([]byte, bool, error) {
	buf, err := io.ReadAll(io.LimitReader(body, max+1))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, false, err
	}
	if int64(len(buf)) > max {
		return nil, false, nil
	}
	return buf, true, nil
}
