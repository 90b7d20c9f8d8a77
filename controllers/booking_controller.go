// Package controllers file: controllers/booking_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-meet-stake/logger"
	"go-meet-stake/middleware"
	"go-meet-stake/services"
)

// BookingController exposes the booking ledger over the JSON API: registry,
// booking, check-in, deadline resolution, and the read-only queries the
// front-end consumes.
type BookingController struct {
	Booking  services.BookingServiceInterface
	Registry services.RegistryServiceInterface
}

// NewBookingController creates a BookingController.
func NewBookingController(booking services.BookingServiceInterface, registry services.RegistryServiceInterface) *BookingController {
	return &BookingController{Booking: booking, Registry: registry}
}

// Register marks the authenticated caller as registered.
func (bc *BookingController) Register(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if err := bc.Registry.Register(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": user, "registered": true})
}

// IsRegistered reports whether an address has registered.
func (bc *BookingController) IsRegistered(c *gin.Context) {
	address := c.Param("address")
	registered, err := bc.Registry.IsRegistered(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "registered": registered})
}

type bookMeetingRequest struct {
	Invitee   string `json:"invitee" binding:"required"`
	StartTime int64  `json:"start_time" binding:"required"` // unix seconds
	Stake     int64  `json:"stake" binding:"required"`
}

// BookMeeting creates a meeting with the caller as booker, staking from the
// caller's balance.
func (bc *BookingController) BookMeeting(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req bookMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invitee, start_time and stake are required"})
		return
	}

	meeting, err := bc.Booking.BookMeeting(c.Request.Context(), user, req.Invitee, time.Unix(req.StartTime, 0), req.Stake)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meeting)
}

// CheckIn confirms the caller's attendance for the meeting.
func (bc *BookingController) CheckIn(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, err := bc.Booking.CheckIn(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

// Resolve settles a meeting whose grace deadline has passed. Deliberately open
// to any authenticated caller: whoever benefits from the payout is expected
// to trigger it.
func (bc *BookingController) Resolve(c *gin.Context) {
	id, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, err := bc.Booking.HandleEndedMeeting(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

// GetMeeting returns the full meeting record.
func (bc *BookingController) GetMeeting(c *gin.Context) {
	id, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, err := bc.Booking.GetMeeting(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

// GetUserMeetings returns the ids of every meeting an address is party to, in
// creation order.
func (bc *BookingController) GetUserMeetings(c *gin.Context) {
	address := c.Param("address")
	ids, err := bc.Booking.UserMeetings(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "meeting_ids": ids})
}

// GetMeetingQRCode renders a QR code PNG linking to the meeting room page.
func (bc *BookingController) GetMeetingQRCode(c *gin.Context) {
	id, ok := meetingID(c)
	if !ok {
		return
	}

	// only mint codes for meetings that exist
	if _, err := bc.Booking.GetMeeting(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	png, err := services.GenerateMeetingQRCode(id, 256)
	if err != nil {
		logger.Error.Printf("[GetMeetingQRCode] failed to generate QR code for meeting=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// meetingID parses the :id path parameter, writing the error response itself
// when the value is malformed.
func meetingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meeting id"})
		return 0, false
	}
	return id, true
}

// respondError maps the service error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidMeeting):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrBookerNotRegistered),
		errors.Is(err, services.ErrInviteeNotRegistered),
		errors.Is(err, services.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyRegistered),
		errors.Is(err, services.ErrAlreadyCheckedIn),
		errors.Is(err, services.ErrMeetingCompleted),
		errors.Is(err, services.ErrMeetingNotStarted),
		errors.Is(err, services.ErrMeetingStillPending):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrStartTimeNotFuture),
		errors.Is(err, services.ErrInvalidStake),
		errors.Is(err, services.ErrSelfBooking):
		status = http.StatusBadRequest
	default:
		logger.Error.Printf("[respondError] unexpected error: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
