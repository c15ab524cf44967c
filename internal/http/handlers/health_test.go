package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/reviewhub/internal/http/handlers"
)

func TestReadyz(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		checks         map[string]handlers.Check
		wantStatusCode int
		wantInBody     string
	}{
		{"all_ok", map[string]handlers.Check{"postgres": ok, "redis": ok}, http.StatusOK, `"status":"ready"`},
		{"no_checks", nil, http.StatusOK, `"status":"ready"`},
		{"one_down", map[string]handlers.Check{"postgres": ok, "redis": down}, http.StatusServiceUnavailable, "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.checks)
			r := setupRouter(http.MethodGet, "/readyz", h.Readyz)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatusCode)
			}
			if !strings.Contains(w.Body.String(), tt.wantInBody) {
				t.Fatalf("body %s missing %q", w.Body.String(), tt.wantInBody)
			}
		})
	}
}
