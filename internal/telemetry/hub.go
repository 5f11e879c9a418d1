// Package telemetry broadcasts simulation log lines and run summaries to
// subscribed WebSocket clients, so a dashboard can watch a run live.
// Adapted from the teacher's alert-broadcast Hub: same client-set /
// buffered-channel / write-deadline shape, generalized to carry
// logging.Logger lines instead of CoinJoin alerts.
package telemetry

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard only
	},
}

// LogEvent is the JSON shape pushed to subscribers for every simulation
// log line.
type LogEvent struct {
	Time   int64  `json:"time"`
	NodeID int    `json:"nodeId"`
	Event  string `json:"event"`
	Detail string `json:"detail"`
	Line   string `json:"line"`
}

// Hub maintains the set of active websocket clients and fans simulation
// log lines out to all of them. It also implements logging.Logger so it
// can be registered directly as (one of) a Network's loggers.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

// Run drains the broadcast channel and fans each message out to every
// connected client, dropping clients whose write fails or times out.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("telemetry: websocket write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades an HTTP request to a WebSocket connection and
// registers it as a broadcast recipient.
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("telemetry: failed to upgrade websocket: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// Broadcast sends raw JSON bytes to every connected client.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}

// Header satisfies logging.Logger; the hub has no header line.
func (h *Hub) Header() {}

// Log satisfies logging.Logger by broadcasting a LogEvent as JSON.
func (h *Hub) Log(now int64, nodeID int, event, detail string) {
	data, err := json.Marshal(LogEvent{
		Time:   now,
		NodeID: nodeID,
		Event:  event,
		Detail: detail,
		Line:   logging.Line(now, nodeID, event, detail),
	})
	if err != nil {
		return
	}
	h.Broadcast(data)
}
