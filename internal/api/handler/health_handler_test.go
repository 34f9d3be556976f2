package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name   string
		checks map[string]DependencyCheck
		code   int
		status string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"all healthy", map[string]DependencyCheck{
			"mongodb": func(context.Context) error { return nil },
		}, http.StatusOK, "ok"},
		{"one down", map[string]DependencyCheck{
			"mongodb": func(context.Context) error { return nil },
			"redis":   func(context.Context) error { return errors.New("connection refused") },
		}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			if err := NewReadinessHandler(tc.checks).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tc.status {
				t.Fatalf("expected status %q, got %q", tc.status, resp.Status)
			}
			if len(resp.Dependencies) != len(tc.checks) {
				t.Fatalf("expected %d dependencies, got %d", len(tc.checks), len(resp.Dependencies))
			}
		})
	}
}
