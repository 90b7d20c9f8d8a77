// Package events handles the booking ledger's notification side-channel: an
// append-only event log, a WebSocket fan-out to live observers, and optional
// CloudWatch metrics.
// File: events/recorder.go
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-meet-stake/logger"
	"go-meet-stake/models"
	"go-meet-stake/storage"
)

// Recorder is the single entry point for emitting events. Emission is a
// notification, never control flow: the ledger state has already changed by
// the time Record is called, and a failed journal write or a slow observer
// cannot undo it.
type Recorder struct {
	mu    sync.Mutex
	store storage.Store
	hub   *Hub
	log   []models.Event
}

// NewRecorder creates a Recorder. Both store and hub may be nil: tests
// typically pass neither and assert on the in-memory log.
func NewRecorder(store storage.Store, hub *Hub) *Recorder {
	return &Recorder{store: store, hub: hub}
}

// Record stamps the event with an id and timestamp (when missing), appends it
// to the in-memory log, journals it, and broadcasts it to live observers.
func (r *Recorder) Record(ctx context.Context, event models.Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.At == 0 {
		event.At = time.Now().Unix()
	}

	r.mu.Lock()
	r.log = append(r.log, event)
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.AppendEvent(ctx, &event); err != nil {
			logger.Warn.Printf("[Recorder.Record] failed to journal %s event: %v", event.Type, err)
		}
	}

	if r.hub != nil {
		r.hub.BroadcastEvent(event)
	}
}

// Events returns a copy of the full event log in emission order.
func (r *Recorder) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Event, len(r.log))
	copy(out, r.log)
	return out
}

// MeetingEvents returns the events for one meeting, in emission order.
func (r *Recorder) MeetingEvents(meetingID int64) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.log {
		if e.MeetingID == meetingID {
			out = append(out, e)
		}
	}
	return out
}
