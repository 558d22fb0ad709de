package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(allowed ...string) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return CORS(set, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_PreflightAllowed(t *testing.T) {
	h := corsHandler("https://dhozzi.app")
	req := httptest.NewRequest(http.MethodOptions, "/v1/history", nil)
	req.Header.Set("Origin", "https://dhozzi.app")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dhozzi.app" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestCORS_PreflightDenied(t *testing.T) {
	h := corsHandler("https://dhozzi.app")
	req := httptest.NewRequest(http.MethodOptions, "/v1/history", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORS_NonPreflightOnlyDecoratesAllowlisted(t *testing.T) {
	h := corsHandler("https://dhozzi.app")

	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req.Header.Set("Origin", "https://dhozzi.app")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dhozzi.app" {
		t.Errorf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("request blocked: %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unlisted origin decorated")
	}
}
