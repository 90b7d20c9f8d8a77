// File: events/hub.go
package events

import (
	"encoding/json"

	"go-meet-stake/logger"
	"go-meet-stake/models"
)

// client is one live WebSocket observer. meetingID narrows the feed to a
// single meeting; models.NoMeeting subscribes to everything.
type client struct {
	hub       *Hub
	send      chan []byte
	meetingID int64
}

// Hub fans marshalled events out to every connected observer.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan models.Event
	register   chan *client
	unregister chan *client
}

// NewHub creates an empty hub. Run must be started on its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan models.Event, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run listens for events on the broadcast channel and distributes them to
// connected clients.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			logger.Debug.Printf("[Hub.Run] observer connected (total=%d)", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			logger.Debug.Printf("[Hub.Run] observer disconnected (total=%d)", len(h.clients))
		case event := <-h.broadcast:
			msg, err := json.Marshal(event)
			if err != nil {
				logger.Error.Printf("[Hub.Run] error marshalling event: %v", err)
				continue
			}
			for c := range h.clients {
				// honour per-meeting subscriptions
				if c.meetingID != models.NoMeeting && c.meetingID != event.MeetingID {
					continue
				}
				select {
				case c.send <- msg:
				default:
					logger.Warn.Printf("[Hub.Run] dropping %s event for slow observer", event.Type)
				}
			}
		}
	}
}

// BroadcastEvent queues an event for delivery to all matching observers. The
// queue is bounded; when observers cannot keep up the event is dropped rather
// than blocking the ledger.
func (h *Hub) BroadcastEvent(event models.Event) {
	select {
	case h.broadcast <- event:
	default:
		logger.Warn.Printf("[Hub.BroadcastEvent] broadcast backlog full, dropping %s event", event.Type)
	}
}
