// Package stream broadcasts frames of a running simulation to websocket
// clients.
package stream

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/rdsim/internal/sim"
)

// Hello is sent once to every client on connect.
type Hello struct {
	Type          string  `json:"type"`
	N             int     `json:"n"`
	StepsPerFrame int     `json:"steps_per_frame"`
	Frames        int     `json:"frames"`
	F             float64 `json:"f"`
	K             float64 `json:"k"`
}

// FrameMessage carries one frame as 8-bit min-max scaled cells,
// base64 encoded by encoding/json.
type FrameMessage struct {
	Type  string  `json:"type"`
	Index int     `json:"index"`
	Step  int     `json:"step"`
	N     int     `json:"n"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Pixel []byte  `json:"pixels"`
}

// Hub tracks connected clients. It satisfies sim.Observer so it can be
// attached straight to a Simulator.
type Hub struct {
	upgrader websocket.Upgrader
	hello    Hello
	logger   *log.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

func NewHub(hello Hello, logger *log.Logger) *Hub {
	hello.Type = "hello"
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		hello:   hello,
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	connMu.Lock()
	h.mu.Lock()
	h.clients[conn] = connMu
	h.mu.Unlock()
	err = conn.WriteJSON(h.hello)
	connMu.Unlock()
	if err != nil {
		h.remove(conn)
		return
	}
	h.logger.Info("client connected", "remote", r.RemoteAddr, "clients", h.Clients())

	defer func() {
		h.remove(conn)
		h.logger.Info("client disconnected", "remote", r.RemoteAddr)
	}()

	// clients only talk to close the connection
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Broadcast sends msg to every client, dropping those that fail.
func (h *Hub) Broadcast(msg any) {
	h.mu.RLock()
	failed := []*websocket.Conn{}
	for conn, connMu := range h.clients {
		connMu.Lock()
		err := conn.WriteJSON(msg)
		connMu.Unlock()
		if err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
		h.logger.Debug("dropped clients", "count", len(failed))
	}
}

func (h *Hub) OnStep(int) {}

func (h *Hub) OnFrame(f *sim.Frame) {
	lo, hi := f.MinMax()
	h.Broadcast(FrameMessage{
		Type:  "frame",
		Index: f.Index,
		Step:  f.Step,
		N:     f.N(),
		Min:   lo,
		Max:   hi,
		Pixel: f.Bytes(),
	})
}
