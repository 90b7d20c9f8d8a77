// File: events/handler.go
package events

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-meet-stake/logger"
	"go-meet-stake/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the event feed is read-only and carries no credentials
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS returns a gin handler that upgrades the connection and streams
// events. An optional meeting_id query parameter narrows the feed.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		meetingID := models.NoMeeting
		if raw := c.Query("meeting_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting_id"})
				return
			}
			meetingID = id
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error.Printf("[ServeWS] upgrade failed: %v", err)
			return
		}

		cl := &client{hub: hub, send: make(chan []byte, 16), meetingID: meetingID}
		hub.register <- cl

		go cl.writePump(conn)
		go cl.readPump(conn)
	}
}

// writePump forwards queued events to the socket and keeps it alive with pings.
func (c *client) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug.Printf("[writePump] write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (the feed is one-way) and unregisters the
// client when the peer goes away.
func (c *client) readPump(conn *websocket.Conn) {
	defer func() {
		c.hub.unregister <- c
		conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
