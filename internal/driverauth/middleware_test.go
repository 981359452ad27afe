package driverauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	rl := RateLimiter(3)
	handled := 0
	h := rl(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handled++; w.WriteHeader(200) }))
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "http://example.test/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if i < 3 && rec.Code != 200 {
			t.Fatalf("request %d: expected 200 before limit, got %d", i, rec.Code)
		}
		if i >= 3 && rec.Code != 429 {
			t.Fatalf("request %d: expected 429 after limit, got %d", i, rec.Code)
		}
	}
	if handled != 3 {
		t.Fatalf("handled = %d, want 3", handled)
	}
}

func TestRequireRoleRejectsMissingAndWrongToken(t *testing.T) {
	h := RequireRole("s3cr3t", "admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) }))

	req := httptest.NewRequest("POST", "http://example.test/run", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", rec.Code)
	}

	viewerTok := GenerateToken("viewer", time.Hour, "s3cr3t")
	req = httptest.NewRequest("POST", "http://example.test/run", nil)
	req.Header.Set("Authorization", "Bearer "+viewerTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("viewer token on admin route: status = %d, want 403", rec.Code)
	}

	adminTok := GenerateToken("admin", time.Hour, "s3cr3t")
	req = httptest.NewRequest("POST", "http://example.test/run", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin token: status = %d, want 200", rec.Code)
	}
}
