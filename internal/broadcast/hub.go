package broadcast

import (
    "encoding/json"
    "log"
    "sync"

    "golang.org/x/net/websocket"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// Hub tracks the websocket viewers of each project and writes every
// snapshot payload to all of them.  A viewer whose write fails is
// dropped from the registry and its connection closed.  The Hub also
// implements Sink, so a single-instance deployment can plug it straight
// into the engine without Redis in between.
type Hub struct {
    mu      sync.Mutex
    viewers map[uint64]map[*websocket.Conn]bool
}

// NewHub returns an empty viewer registry.
func NewHub() *Hub {
    return &Hub{viewers: make(map[uint64]map[*websocket.Conn]bool)}
}

// Register adds a viewer connection for the project.
func (h *Hub) Register(projectID uint64, ws *websocket.Conn) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if h.viewers[projectID] == nil {
        h.viewers[projectID] = make(map[*websocket.Conn]bool)
    }
    h.viewers[projectID][ws] = true
}

// Unregister removes a viewer connection for the project.
func (h *Hub) Unregister(projectID uint64, ws *websocket.Conn) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if conns := h.viewers[projectID]; conns != nil {
        delete(conns, ws)
        if len(conns) == 0 {
            delete(h.viewers, projectID)
        }
    }
}

// Forward writes a raw snapshot payload to every viewer of the project.
func (h *Hub) Forward(projectID uint64, payload []byte) {
    h.mu.Lock()
    conns := make([]*websocket.Conn, 0, len(h.viewers[projectID]))
    for ws := range h.viewers[projectID] {
        conns = append(conns, ws)
    }
    h.mu.Unlock()

    for _, ws := range conns {
        if err := websocket.Message.Send(ws, string(payload)); err != nil {
            log.Printf("broadcast: viewer write failed, dropping connection: %v", err)
            h.Unregister(projectID, ws)
            _ = ws.Close()
        }
    }
}

// Publish implements Sink by marshaling the snapshot and forwarding it
// to local viewers.
func (h *Hub) Publish(projectID uint64, snapshot *model.Project) {
    payload, err := json.Marshal(snapshot)
    if err != nil {
        log.Printf("broadcast: marshal project %d: %v", projectID, err)
        return
    }
    h.Forward(projectID, payload)
}
