// File: services/booking_service.go
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-meet-stake/events"
	"go-meet-stake/logger"
	"go-meet-stake/models"
	"go-meet-stake/storage"
)

// DefaultGraceWindow is how long after a meeting's start time both parties
// keep exclusive control before anyone may force resolution.
const DefaultGraceWindow = time.Hour

// BookingServiceInterface is the public surface of the booking/check-in state
// machine. All funds custody routes through it.
type BookingServiceInterface interface {
	BookMeeting(ctx context.Context, booker, invitee string, startTime time.Time, stake int64) (*models.Meeting, error)
	CheckIn(ctx context.Context, caller string, meetingID int64) (*models.Meeting, error)
	HandleEndedMeeting(ctx context.Context, meetingID int64) (*models.Meeting, error)
	GetMeeting(ctx context.Context, meetingID int64) (*models.Meeting, error)
	UserMeetings(ctx context.Context, identity string) ([]int64, error)
}

// BookingService orchestrates the lifecycle of a meeting: creation with
// custodied funds, attendance confirmation, completion, and deadline
// resolution. It is the single writer for meeting and escrow state; every
// mutating operation holds the ledger lock so operations apply sequentially
// and in isolation.
type BookingService struct {
	ledger   *sync.Mutex
	store    storage.Store
	registry RegistryServiceInterface
	escrow   *EscrowService
	recorder *events.Recorder

	// Now is the ambient clock; tests pin it. Time gating is a precondition
	// checked at call time, never a sleep.
	Now func() time.Time

	// GraceWindow is added to a meeting's start time to form the resolution
	// deadline for HandleEndedMeeting.
	GraceWindow time.Duration

	// RequireInviteeRegistration controls whether booking also checks the
	// invitee's registration. The booker's is always checked.
	RequireInviteeRegistration bool
}

// NewBookingService creates a BookingService sharing the given ledger lock
// with the registry.
func NewBookingService(ledger *sync.Mutex, store storage.Store, registry RegistryServiceInterface, escrow *EscrowService, recorder *events.Recorder) *BookingService {
	return &BookingService{
		ledger:                     ledger,
		store:                      store,
		registry:                   registry,
		escrow:                     escrow,
		recorder:                   recorder,
		Now:                        time.Now,
		GraceWindow:                DefaultGraceWindow,
		RequireInviteeRegistration: true,
	}
}

// BookMeeting creates a meeting with the stake custodied in escrow. The
// booker must be registered (and the invitee too, when configured), the start
// time must be strictly in the future, and the stake positive and covered by
// the booker's balance.
func (s *BookingService) BookMeeting(ctx context.Context, booker, invitee string, startTime time.Time, stake int64) (*models.Meeting, error) {
	s.ledger.Lock()
	defer s.ledger.Unlock()

	registered, err := s.registry.IsRegistered(ctx, booker)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, ErrBookerNotRegistered
	}

	if s.RequireInviteeRegistration {
		registered, err := s.registry.IsRegistered(ctx, invitee)
		if err != nil {
			return nil, err
		}
		if !registered {
			return nil, ErrInviteeNotRegistered
		}
	} else {
		// even without registration the payout must be routable
		if _, err := s.store.GetAccount(ctx, invitee); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, ErrInviteeNotRegistered
			}
			return nil, err
		}
	}

	if invitee == booker {
		return nil, ErrSelfBooking
	}
	if stake <= 0 {
		return nil, ErrInvalidStake
	}
	now := s.Now()
	if !startTime.After(now) {
		return nil, ErrStartTimeNotFuture
	}

	meeting := &models.Meeting{
		Booker:       booker,
		Invitee:      invitee,
		StartTime:    startTime.Unix(),
		StakedAmount: stake,
		CreatedAt:    now.Unix(),
	}
	if err := s.escrow.Reserve(ctx, meeting); err != nil {
		if errors.Is(err, storage.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	logger.Info.Printf("[BookingService.BookMeeting] meeting=%d booker=%s invitee=%s start=%d stake=%d",
		meeting.ID, booker, invitee, meeting.StartTime, stake)
	s.recorder.Record(ctx, models.Event{
		Type:      models.EventMeetingBooked,
		MeetingID: meeting.ID,
		Actor:     booker,
		Recipient: invitee,
		Amount:    stake,
		StartTime: meeting.StartTime,
	})
	events.PublishMeetingBooked(stake)
	return meeting, nil
}

// CheckIn confirms the caller's attendance. Only a party to the meeting may
// check in, only once, and only at or after the scheduled start. When the
// second party checks in the meeting completes and the stake returns in full
// to the booker, who advanced the capital.
func (s *BookingService) CheckIn(ctx context.Context, caller string, meetingID int64) (*models.Meeting, error) {
	s.ledger.Lock()
	defer s.ledger.Unlock()

	meeting, err := s.loadMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Completed {
		return nil, ErrMeetingCompleted
	}
	if !meeting.IsParticipant(caller) {
		return nil, ErrNotParticipant
	}
	if meeting.CheckedIn(caller) {
		return nil, ErrAlreadyCheckedIn
	}
	if s.Now().Unix() < meeting.StartTime {
		return nil, ErrMeetingNotStarted
	}

	isBooker := caller == meeting.Booker
	if err := s.store.SetCheckIn(ctx, meetingID, isBooker); err != nil {
		return nil, err
	}
	if isBooker {
		meeting.BookerCheckedIn = true
	} else {
		meeting.InviteeCheckedIn = true
	}

	logger.Info.Printf("[BookingService.CheckIn] meeting=%d user=%s checked in", meetingID, caller)
	s.recorder.Record(ctx, models.Event{
		Type:      models.EventUserCheckedIn,
		MeetingID: meetingID,
		Actor:     caller,
	})
	events.PublishCheckIn()

	if meeting.BothCheckedIn() {
		if err := s.settle(ctx, meeting, meeting.Booker); err != nil {
			return nil, err
		}
	}
	return meeting, nil
}

// HandleEndedMeeting resolves a meeting that was never mutually confirmed.
// Any caller may invoke it once the grace window after the start time has
// elapsed; until then both parties keep exclusive control of the outcome.
//
// Payout policy: the party that checked in receives the stake; with neither
// checked in it goes to the invitee, whose time the absent booker forfeited.
func (s *BookingService) HandleEndedMeeting(ctx context.Context, meetingID int64) (*models.Meeting, error) {
	s.ledger.Lock()
	defer s.ledger.Unlock()

	meeting, err := s.loadMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Completed {
		return nil, ErrMeetingCompleted
	}

	deadline := meeting.StartTime + int64(s.GraceWindow/time.Second)
	if s.Now().Unix() < deadline {
		return nil, ErrMeetingStillPending
	}

	recipient := s.resolveRecipient(meeting)
	if err := s.settle(ctx, meeting, recipient); err != nil {
		return nil, err
	}
	return meeting, nil
}

// GetMeeting returns the full meeting record.
func (s *BookingService) GetMeeting(ctx context.Context, meetingID int64) (*models.Meeting, error) {
	return s.loadMeeting(ctx, meetingID)
}

// UserMeetings returns the ids of every meeting the identity is party to, in
// creation order.
func (s *BookingService) UserMeetings(ctx context.Context, identity string) ([]int64, error) {
	return s.store.UserMeetings(ctx, identity)
}

// resolveRecipient is total over all four check-in combinations. Both-true is
// unreachable here because the second check-in settles immediately, but the
// booker (who advanced the capital) would be paid if it ever were.
func (s *BookingService) resolveRecipient(meeting *models.Meeting) string {
	switch {
	case meeting.BookerCheckedIn && meeting.InviteeCheckedIn:
		return meeting.Booker
	case meeting.BookerCheckedIn:
		return meeting.Booker
	case meeting.InviteeCheckedIn:
		return meeting.Invitee
	default:
		return meeting.Invitee
	}
}

// settle completes the meeting and releases the escrowed stake to the
// recipient, then emits MeetingCompleted and StakeReturned. The payout is the
// last effect of the settlement transaction, after the completed flag flips.
func (s *BookingService) settle(ctx context.Context, meeting *models.Meeting, recipient string) error {
	amount, err := s.escrow.Release(ctx, meeting.ID, recipient)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadySettled) {
			return ErrMeetingCompleted
		}
		return err
	}
	meeting.Completed = true

	logger.Info.Printf("[BookingService.settle] meeting=%d completed, %d returned to %s",
		meeting.ID, amount, recipient)
	s.recorder.Record(ctx, models.Event{
		Type:      models.EventMeetingCompleted,
		MeetingID: meeting.ID,
	})
	s.recorder.Record(ctx, models.Event{
		Type:      models.EventStakeReturned,
		MeetingID: meeting.ID,
		Recipient: recipient,
		Amount:    amount,
	})
	events.PublishSettlement(amount)
	return nil
}

// loadMeeting fetches a meeting, translating the store's not-found error.
func (s *BookingService) loadMeeting(ctx context.Context, meetingID int64) (*models.Meeting, error) {
	meeting, err := s.store.GetMeeting(ctx, meetingID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidMeeting
	}
	if err != nil {
		return nil, err
	}
	return meeting, nil
}
