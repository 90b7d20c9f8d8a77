// file: heartbeat.go
package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"go-meet-stake/logger"
	"go-meet-stake/middleware"
)

var (
	participantSessions = make(map[string]time.Time)
	sessionLock         = sync.Mutex{}
)

// HeartbeatHandler updates the last seen timestamp of a participant. The
// front-end pings this while a meeting room page is open so operators can see
// who is actually around a meeting's start time.
func HeartbeatHandler(c *gin.Context) {
	address := middleware.CurrentUser(c)
	if address == "" {
		address = c.Query("address")
	}
	if address == "" {
		logger.Warn.Println("[HeartbeatHandler] Missing participant address")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing participant address"})
		return
	}

	sessionLock.Lock()
	participantSessions[address] = time.Now()
	sessionLock.Unlock()

	logger.Debug.Printf("[HeartbeatHandler] Updated heartbeat for participant=%s", address)
	c.JSON(http.StatusOK, gin.H{"status": "heartbeat received"})
}

// ActiveParticipants returns the addresses seen within the given window.
func ActiveParticipants(window time.Duration) []string {
	sessionLock.Lock()
	defer sessionLock.Unlock()

	var active []string
	for addr, lastSeen := range participantSessions {
		if time.Since(lastSeen) <= window {
			active = append(active, addr)
		}
	}
	return active
}

// CleanupRoutine removes participants that have been inactive for 30 minutes.
func CleanupRoutine() {
	ticker := time.NewTicker(10 * time.Second)
	for range ticker.C {
		sessionLock.Lock()
		for addr, lastSeen := range participantSessions {
			if time.Since(lastSeen) > 30*time.Minute {
				logger.Info.Printf("[CleanupRoutine] Removing inactive participant=%s", addr)
				delete(participantSessions, addr)
			}
		}
		sessionLock.Unlock()
	}
}
