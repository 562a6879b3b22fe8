package handler

import (
    "encoding/json"
    "log"
    "net/http"

    "github.com/labstack/echo/v4"
    "golang.org/x/net/websocket"

    "github.com/iliyamo/venue-ticketing/internal/broadcast"
    "github.com/iliyamo/venue-ticketing/internal/engine"
    "github.com/iliyamo/venue-ticketing/internal/utils"
)

// WSHandler upgrades viewer connections and ties their lifetime to the
// reservation core: on connect the viewer receives a hello frame with
// its freshly generated holder identity and the full project snapshot,
// then every subsequent mutation of the project as broadcast frames.
// When the socket closes, every lock held by that identity is released
// best-effort.
type WSHandler struct {
    Engine *engine.Engine
    Hub    *broadcast.Hub
}

// NewWSHandler constructs a WSHandler.  Both dependencies must be
// non-nil.
func NewWSHandler(e *engine.Engine, hub *broadcast.Hub) *WSHandler {
    if e == nil || hub == nil {
        panic("nil dependency passed to NewWSHandler")
    }
    return &WSHandler{Engine: e, Hub: hub}
}

// hello is the first frame sent on every viewer connection.
type hello struct {
    Type     string      `json:"type"`
    HolderID string      `json:"holder_id"`
    Project  interface{} `json:"project"`
}

// Serve handles GET /v1/projects/:id/ws.
func (h *WSHandler) Serve(c echo.Context) error {
    id, err := projectID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if _, err := h.Engine.Project(id); err != nil {
        return engineError(c, err)
    }

    websocket.Handler(func(ws *websocket.Conn) {
        defer ws.Close()

        holder, err := utils.NewHolderID()
        if err != nil {
            log.Printf("ws: generate holder id: %v", err)
            return
        }

        // Register before taking the snapshot.  A mutation landing
        // between the two then reaches the viewer as a regular frame
        // instead of falling into a gap it would never see.  The
        // websocket write path serializes, so a frame racing the hello
        // cannot corrupt either.
        h.Hub.Register(id, ws)
        defer func() {
            h.Hub.Unregister(id, ws)
            // The connection is gone; whatever it still holds goes back
            // to the pool.  Safe to race a sweep or an explicit unlock.
            h.Engine.ReleaseHolder(holder)
        }()

        snap, err := h.Engine.Project(id)
        if err != nil {
            return
        }
        first, err := json.Marshal(hello{Type: "hello", HolderID: holder, Project: snap})
        if err != nil {
            log.Printf("ws: marshal hello: %v", err)
            return
        }
        if err := websocket.Message.Send(ws, string(first)); err != nil {
            return
        }

        // Viewers only listen; the read loop exists to detect the close.
        for {
            var discard string
            if err := websocket.Message.Receive(ws, &discard); err != nil {
                return
            }
        }
    }).ServeHTTP(c.Response(), c.Request())
    return nil
}
