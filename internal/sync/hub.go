package sync

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 2 * time.Second

// Hub fans library events out to every attached client so open frontends see
// imports land without polling. Events go out as one JSON object per line on
// TCP and one text frame per event on WebSocket.
type Hub struct {
	mu  sync.Mutex
	tcp map[net.Conn]struct{}
	ws  map[*websocket.Conn]struct{}
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{
		tcp: make(map[net.Conn]struct{}),
		ws:  make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.tcp[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcp, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	h.ws[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.ws, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastJSON sends one event to every client. A client that fails its
// write is evicted on the spot; a dead consumer must not be able to stall
// the ingest path behind it.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	line := append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.tcp {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.Write(line); err != nil {
			_ = c.Close()
			delete(h.tcp, c)
		}
	}
	for ws := range h.ws {
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.ws, ws)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tcp)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcp),
		WSClients:  len(h.ws),
	}
}

// Welcome greets a freshly attached TCP client with the hub's current state.
func (h *Hub) Welcome(conn net.Conn) {
	b, err := json.Marshal(WelcomeEvent{Type: "sync.welcome", Transport: "tcp", Clients: h.Stats()})
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, _ = conn.Write(append(b, '\n'))
}

// WelcomeWS is the WebSocket counterpart of Welcome.
func (h *Hub) WelcomeWS(ws *websocket.Conn) {
	b, err := json.Marshal(WelcomeEvent{Type: "sync.welcome", Transport: "websocket", Clients: h.Stats()})
	if err != nil {
		return
	}
	_ = ws.WriteMessage(websocket.TextMessage, b)
}
