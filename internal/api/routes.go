package api

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/demo"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/logging"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/store"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/telemetry"
	"github.com/Electric-Coin-Company/simtfl-sim/pkg/models"
)

// defaultNetworkDelay is the default virtual-time delay applied to
// every message when a request does not specify one.
const defaultNetworkDelay int64 = 1

// maxRunNodes caps the node count for a single run request to prevent
// runaway resource exhaustion from unconstrained requests.
const maxRunNodes = 64

// APIHandler holds the dependencies every route handler needs.
type APIHandler struct {
	runStore *store.RunStore
	hub      *telemetry.Hub
}

// SetupRouter builds the Gin engine serving the control surface: health,
// live log streaming, and demo-run execution/retrieval.
func SetupRouter(runStore *store.RunStore, hub *telemetry.Hub) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var.
	// Production: ALLOWED_ORIGINS=https://sim.example.com
	// Development: leave empty for *.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{runStore: runStore, hub: hub}

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", hub.Subscribe)
	}

	// ── Protected endpoints (require bearer token if API_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	auth.Use(NewRateLimiter(30, 5).Middleware())
	{
		auth.POST("/runs", handler.handleCreateRun)
		auth.GET("/runs/:id", handler.handleGetRun)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "operational",
		"engine":      "adapted-Streamlet simulator",
		"dbConnected": h.runStore != nil,
	})
}

type createRunRequest struct {
	Scenario string `json:"scenario"` // "straight-line", "equivocating-fork", "ledger"
	NumNodes int    `json:"numNodes"`
	Epochs   int    `json:"epochs"`
	Delay    int64  `json:"delay"`
}

// handleCreateRun runs one of the built-in demo scenarios to completion
// in-process and returns its summary, persisting it if a run store is
// configured.
// POST /api/v1/runs { "scenario": "straight-line", "numNodes": 4, "epochs": 6 }
func (h *APIHandler) handleCreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.NumNodes <= 0 {
		req.NumNodes = 4
	}
	if req.NumNodes > maxRunNodes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numNodes too large", "max": maxRunNodes})
		return
	}
	if req.Epochs <= 0 {
		req.Epochs = 6
	}
	if req.Delay <= 0 {
		req.Delay = defaultNetworkDelay
	}

	logger := logging.NewMultiLogger(h.hub)

	var summary models.RunSummary
	switch req.Scenario {
	case "", "straight-line":
		summary = demo.RunStraightLine(req.NumNodes, req.Epochs, req.Delay, logger).Summary
	case "equivocating-fork":
		summary = demo.RunEquivocatingFork(req.NumNodes, logger).Summary
	case "ledger":
		summary = demo.RunLedger().Summary
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scenario", "scenario": req.Scenario})
		return
	}

	if h.runStore != nil {
		runID, err := h.runStore.SaveRun(c.Request.Context(), summary)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist run", "details": err.Error()})
			return
		}
		summary.RunID = runID
	}

	c.JSON(http.StatusOK, summary)
}

// handleGetRun fetches a previously persisted run summary.
// GET /api/v1/runs/:id
func (h *APIHandler) handleGetRun(c *gin.Context) {
	if h.runStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run store not connected"})
		return
	}
	summary, err := h.runStore.GetRun(context.Background(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
