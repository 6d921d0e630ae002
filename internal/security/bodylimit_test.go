package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func echoBody(t *testing.T, captured *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("unexpected read error: %v", err)
		}
		*captured = string(data)
		w.WriteHeader(http.StatusOK)
	})
}

func TestBodyLimitPassesSmallPayloadThrough(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 16}.Middleware(echoBody(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"qty":1}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured != `{"qty":1}` {
		t.Fatalf("expected body to survive the copy, got %q", captured)
	}
}

func TestBodyLimitRejectsOversizedWithEnvelope(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 4}.Middleware(echoBody(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader("excessive payload"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "PAYLOAD_TOO_LARGE") {
		t.Fatalf("expected JSON error envelope, got %q", rr.Body.String())
	}
	if captured != "" {
		t.Fatal("handler must not run for an oversized body")
	}
}

func TestBodyLimitRejectsDeclaredLength(t *testing.T) {
	handler := BodyLimit{Max: 4}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader("tiny"))
	req.ContentLength = 4096
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for the declared length, got %d", rr.Code)
	}
}

func TestBodyLimitDisabledWhenZero(t *testing.T) {
	var captured string
	handler := BodyLimit{}.Middleware(echoBody(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader("anything goes"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured != "anything goes" {
		t.Fatalf("expected passthrough, got %q", captured)
	}
}
