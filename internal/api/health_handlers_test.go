package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockHealthChecker is a mock implementation of HealthChecker.
type mockHealthChecker struct {
	shouldFail bool
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.shouldFail {
		return errors.New("dependency unavailable")
	}
	return nil
}

func decodeHealthResponse(t *testing.T, rr *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestHealth_AlwaysHealthy(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handlers.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeHealthResponse(t, rr)
	if resp.Status != "healthy" {
		t.Errorf("got status %q, want healthy", resp.Status)
	}
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rr := httptest.NewRecorder()
	handlers.Health(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestReady_AllChecksPass(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{
		DBChecker:    &mockHealthChecker{},
		RedisChecker: &mockHealthChecker{},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rr := httptest.NewRecorder()
	handlers.Ready(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeHealthResponse(t, rr)
	if resp.Status != "healthy" {
		t.Errorf("got status %q, want healthy", resp.Status)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["redis"] != "ok" {
		t.Errorf("unexpected checks: %v", resp.Checks)
	}
}

func TestReady_FailingDependency(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{
		DBChecker:    &mockHealthChecker{},
		RedisChecker: &mockHealthChecker{shouldFail: true},
	})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rr := httptest.NewRecorder()
	handlers.Ready(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	resp := decodeHealthResponse(t, rr)
	if resp.Status != "unhealthy" {
		t.Errorf("got status %q, want unhealthy", resp.Status)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("database check should pass, got %q", resp.Checks["database"])
	}
	if resp.Checks["redis"] != "error" {
		t.Errorf("redis check should fail, got %q", resp.Checks["redis"])
	}
}

func TestReady_NilCheckersAreHealthy(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rr := httptest.NewRecorder()
	handlers.Ready(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
	}
}
