package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthReportsOK(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	Health(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}

	resp := decodeJSON[healthResponse](t, rec)
	if resp.Status != "ok" {
		t.Fatalf("status field = %q, want ok", resp.Status)
	}
	if time.Since(resp.Time) > time.Minute {
		t.Fatalf("stale timestamp: %s", resp.Time)
	}
}
