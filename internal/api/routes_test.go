package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/telemetry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthEndpoint(t *testing.T) {
	hub := telemetry.NewHub()
	go hub.Run()
	r := SetupRouter(nil, hub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

// TestCreateRunStraightLineScenario checks that the straight-line demo
// scenario is reachable over HTTP and answers 200 OK, with no auth token
// configured (dev mode).
func TestCreateRunStraightLineScenario(t *testing.T) {
	hub := telemetry.NewHub()
	go hub.Run()
	r := SetupRouter(nil, hub)

	body := `{"scenario":"straight-line","numNodes":4,"epochs":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// TestCreateRunRejectsOversizedNodeCount checks the numNodes guard.
func TestCreateRunRejectsOversizedNodeCount(t *testing.T) {
	hub := telemetry.NewHub()
	go hub.Run()
	r := SetupRouter(nil, hub)

	body := `{"scenario":"straight-line","numNodes":9999}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized numNodes, got %d", w.Code)
	}
}

// TestGetRunWithoutStoreReturnsServiceUnavailable checks the no-persistence
// configuration path.
func TestGetRunWithoutStoreReturnsServiceUnavailable(t *testing.T) {
	hub := telemetry.NewHub()
	go hub.Run()
	r := SetupRouter(nil, hub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/does-not-exist", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when no run store is configured, got %d", w.Code)
	}
}
