// file: services/booking_service_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-meet-stake/models"
	"go-meet-stake/services"
)

func TestBookMeeting(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 1000)
	tl.signup(t, "invitee", 0)

	start := baseTime.Add(time.Hour)
	meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", start, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(0), meeting.ID, "first meeting id is zero")
	assert.Equal(t, "booker", meeting.Booker)
	assert.Equal(t, "invitee", meeting.Invitee)
	assert.Equal(t, start.Unix(), meeting.StartTime)
	assert.Equal(t, int64(100), meeting.StakedAmount)
	assert.False(t, meeting.BookerCheckedIn)
	assert.False(t, meeting.InviteeCheckedIn)
	assert.False(t, meeting.Completed)

	// stake moved to escrow
	assert.Equal(t, int64(900), tl.balance(t, "booker"))
	held, err := tl.escrow.Balance(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), held)

	// both parties can discover the meeting
	for _, addr := range []string{"booker", "invitee"} {
		ids, err := tl.booking.UserMeetings(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, []int64{0}, ids)
	}

	// booking emitted MeetingBooked
	evts := tl.recorder.MeetingEvents(meeting.ID)
	require.Len(t, evts, 1)
	assert.Equal(t, models.EventMeetingBooked, evts[0].Type)
	assert.Equal(t, "booker", evts[0].Actor)
	assert.Equal(t, "invitee", evts[0].Recipient)
	assert.Equal(t, int64(100), evts[0].Amount)

	// a second meeting gets the next sequential id
	second, err := tl.booking.BookMeeting(ctx, "booker", "invitee", start, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.ID)
}

func TestBookMeetingPreconditions(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 1000)
	tl.signup(t, "invitee", 0)
	start := baseTime.Add(time.Hour)

	t.Run("unregistered booker", func(t *testing.T) {
		// an account alone is not registration
		require.NoError(t, tl.store.CreateAccount(ctx, &models.Account{Address: "ghost", PasswordHash: "x", Balance: 1000}))
		_, err := tl.booking.BookMeeting(ctx, "ghost", "invitee", start, 100)
		assert.ErrorIs(t, err, services.ErrBookerNotRegistered)
	})

	t.Run("unregistered invitee", func(t *testing.T) {
		require.NoError(t, tl.store.CreateAccount(ctx, &models.Account{Address: "stranger", PasswordHash: "x"}))
		_, err := tl.booking.BookMeeting(ctx, "booker", "stranger", start, 100)
		assert.ErrorIs(t, err, services.ErrInviteeNotRegistered)
	})

	t.Run("self booking", func(t *testing.T) {
		_, err := tl.booking.BookMeeting(ctx, "booker", "booker", start, 100)
		assert.ErrorIs(t, err, services.ErrSelfBooking)
	})

	t.Run("non-positive stake", func(t *testing.T) {
		_, err := tl.booking.BookMeeting(ctx, "booker", "invitee", start, 0)
		assert.ErrorIs(t, err, services.ErrInvalidStake)
		_, err = tl.booking.BookMeeting(ctx, "booker", "invitee", start, -5)
		assert.ErrorIs(t, err, services.ErrInvalidStake)
	})

	t.Run("start time not in the future", func(t *testing.T) {
		_, err := tl.booking.BookMeeting(ctx, "booker", "invitee", baseTime, 100)
		assert.ErrorIs(t, err, services.ErrStartTimeNotFuture)
		_, err = tl.booking.BookMeeting(ctx, "booker", "invitee", baseTime.Add(-time.Minute), 100)
		assert.ErrorIs(t, err, services.ErrStartTimeNotFuture)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := tl.booking.BookMeeting(ctx, "booker", "invitee", start, 5000)
		assert.ErrorIs(t, err, services.ErrInsufficientFunds)
		assert.Equal(t, int64(1000), tl.balance(t, "booker"), "failed booking must not touch the balance")
	})
}

func TestBookMeetingInviteeRegistrationOptional(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.booking.RequireInviteeRegistration = false
	tl.signup(t, "booker", 1000)

	// invitee has a wallet but never registered
	require.NoError(t, tl.store.CreateAccount(ctx, &models.Account{Address: "casual", PasswordHash: "x"}))

	meeting, err := tl.booking.BookMeeting(ctx, "booker", "casual", baseTime.Add(time.Hour), 100)
	require.NoError(t, err)
	assert.Equal(t, "casual", meeting.Invitee)

	// an invitee with no wallet at all is still rejected: payouts need a destination
	_, err = tl.booking.BookMeeting(ctx, "booker", "nowhere", baseTime.Add(time.Hour), 100)
	assert.ErrorIs(t, err, services.ErrInviteeNotRegistered)
}

func TestCheckInMutualCompletion(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 1000)
	tl.signup(t, "invitee", 0)

	start := baseTime.Add(time.Hour)
	meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", start, 100)
	require.NoError(t, err)

	// reach the scheduled start
	tl.advance(time.Hour)

	meeting, err = tl.booking.CheckIn(ctx, "booker", meeting.ID)
	require.NoError(t, err)
	assert.True(t, meeting.BookerCheckedIn)
	assert.False(t, meeting.Completed, "one check-in is not completion")

	meeting, err = tl.booking.CheckIn(ctx, "invitee", meeting.ID)
	require.NoError(t, err)
	assert.True(t, meeting.InviteeCheckedIn)
	assert.True(t, meeting.Completed)

	// the full stake returned to the booker, escrow zeroed
	assert.Equal(t, int64(1000), tl.balance(t, "booker"))
	assert.Equal(t, int64(0), tl.balance(t, "invitee"))
	held, err := tl.escrow.Balance(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Zero(t, held)

	// event order: booked, two check-ins, completed, stake returned
	evts := tl.recorder.MeetingEvents(meeting.ID)
	require.Len(t, evts, 5)
	assert.Equal(t, models.EventMeetingBooked, evts[0].Type)
	assert.Equal(t, models.EventUserCheckedIn, evts[1].Type)
	assert.Equal(t, "booker", evts[1].Actor)
	assert.Equal(t, models.EventUserCheckedIn, evts[2].Type)
	assert.Equal(t, "invitee", evts[2].Actor)
	assert.Equal(t, models.EventMeetingCompleted, evts[3].Type)
	assert.Equal(t, models.EventStakeReturned, evts[4].Type)
	assert.Equal(t, "booker", evts[4].Recipient)
	assert.Equal(t, int64(100), evts[4].Amount)

	// no further mutation succeeds on a completed meeting
	_, err = tl.booking.CheckIn(ctx, "booker", meeting.ID)
	assert.ErrorIs(t, err, services.ErrMeetingCompleted)
	_, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, services.ErrMeetingCompleted)
}

func TestCheckInPreconditions(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 1000)
	tl.signup(t, "invitee", 0)
	tl.signup(t, "outsider", 0)

	meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", baseTime.Add(time.Hour), 100)
	require.NoError(t, err)

	t.Run("before start time", func(t *testing.T) {
		_, err := tl.booking.CheckIn(ctx, "booker", meeting.ID)
		assert.ErrorIs(t, err, services.ErrMeetingNotStarted)
	})

	t.Run("unknown meeting", func(t *testing.T) {
		_, err := tl.booking.CheckIn(ctx, "booker", 42)
		assert.ErrorIs(t, err, services.ErrInvalidMeeting)
	})

	t.Run("non-participant", func(t *testing.T) {
		_, err := tl.booking.CheckIn(ctx, "outsider", meeting.ID)
		assert.ErrorIs(t, err, services.ErrNotParticipant)
	})

	t.Run("double check-in", func(t *testing.T) {
		tl.advance(time.Hour) // reach start
		_, err := tl.booking.CheckIn(ctx, "booker", meeting.ID)
		require.NoError(t, err)
		_, err = tl.booking.CheckIn(ctx, "booker", meeting.ID)
		assert.ErrorIs(t, err, services.ErrAlreadyCheckedIn)
	})
}

func TestCheckInAtExactStartTime(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 100)
	tl.signup(t, "invitee", 0)

	start := baseTime.Add(time.Hour)
	meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", start, 100)
	require.NoError(t, err)

	// check-in is allowed at the scheduled second, not before
	tl.now = start
	_, err = tl.booking.CheckIn(ctx, "booker", meeting.ID)
	assert.NoError(t, err)
}

func TestHandleEndedMeetingNeitherCheckedIn(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 1000)
	tl.signup(t, "invitee", 0)

	start := baseTime.Add(time.Hour)
	meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", start, 100)
	require.NoError(t, err)

	// before the grace deadline any resolution attempt is premature
	tl.advance(90 * time.Minute) // start + 30m
	_, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, services.ErrMeetingStillPending)

	// at start + 1h the stake is forfeited to the invitee
	tl.advance(30 * time.Minute)
	meeting, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.True(t, meeting.Completed)

	assert.Equal(t, int64(900), tl.balance(t, "booker"))
	assert.Equal(t, int64(100), tl.balance(t, "invitee"))

	evts := tl.recorder.MeetingEvents(meeting.ID)
	require.Len(t, evts, 3)
	assert.Equal(t, models.EventMeetingCompleted, evts[1].Type)
	assert.Equal(t, models.EventStakeReturned, evts[2].Type)
	assert.Equal(t, "invitee", evts[2].Recipient)

	// resolution is exactly-once
	_, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, services.ErrMeetingCompleted)
}

func TestHandleEndedMeetingPartialCheckIns(t *testing.T) {
	cases := []struct {
		name      string
		checksIn  string
		recipient string
	}{
		{"only booker checked in", "booker", "booker"},
		{"only invitee checked in", "invitee", "invitee"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tl := newTestLedger(t)
			ctx := context.Background()
			tl.signup(t, "booker", 500)
			tl.signup(t, "invitee", 0)

			meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", baseTime.Add(time.Hour), 200)
			require.NoError(t, err)

			tl.advance(time.Hour)
			_, err = tl.booking.CheckIn(ctx, tc.checksIn, meeting.ID)
			require.NoError(t, err)

			tl.advance(time.Hour)
			_, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
			require.NoError(t, err)

			// the party that showed up gets the stake
			wantBooker := int64(300)
			wantInvitee := int64(0)
			if tc.recipient == "booker" {
				wantBooker += 200
			} else {
				wantInvitee += 200
			}
			assert.Equal(t, wantBooker, tl.balance(t, "booker"))
			assert.Equal(t, wantInvitee, tl.balance(t, "invitee"))
		})
	}
}

func TestHandleEndedMeetingAnyCaller(t *testing.T) {
	// HandleEndedMeeting takes no caller identity at all: resolution is a
	// public trigger once the deadline passes, mirroring the scenario where a
	// third party settles a dead meeting.
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 1000)
	tl.signup(t, "invitee", 0)

	meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", baseTime.Add(time.Hour), 100)
	require.NoError(t, err)

	_, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, services.ErrMeetingStillPending)

	tl.advance(2 * time.Hour)
	meeting, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.True(t, meeting.Completed)
	assert.Equal(t, int64(100), tl.balance(t, "invitee"))
}

func TestGraceWindowConfigurable(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.booking.GraceWindow = 10 * time.Minute
	tl.signup(t, "booker", 100)
	tl.signup(t, "invitee", 0)

	meeting, err := tl.booking.BookMeeting(ctx, "booker", "invitee", baseTime.Add(time.Hour), 100)
	require.NoError(t, err)

	tl.advance(time.Hour + 9*time.Minute)
	_, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	assert.ErrorIs(t, err, services.ErrMeetingStillPending)

	tl.advance(time.Minute)
	_, err = tl.booking.HandleEndedMeeting(ctx, meeting.ID)
	assert.NoError(t, err)
}

func TestFundsConservation(t *testing.T) {
	// account balances plus escrow always sum to the deposits that entered
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.signup(t, "booker", 1000)
	tl.signup(t, "invitee", 500)

	total := func() int64 {
		sum := tl.balance(t, "booker") + tl.balance(t, "invitee")
		for id := int64(0); ; id++ {
			held, err := tl.escrow.Balance(ctx, id)
			if err != nil {
				break
			}
			sum += held
		}
		return sum
	}

	require.Equal(t, int64(1500), total())

	m1, err := tl.booking.BookMeeting(ctx, "booker", "invitee", baseTime.Add(time.Hour), 300)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total())

	m2, err := tl.booking.BookMeeting(ctx, "invitee", "booker", baseTime.Add(2*time.Hour), 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total())

	tl.advance(time.Hour)
	_, err = tl.booking.CheckIn(ctx, "booker", m1.ID)
	require.NoError(t, err)
	_, err = tl.booking.CheckIn(ctx, "invitee", m1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total())

	tl.advance(3 * time.Hour)
	_, err = tl.booking.HandleEndedMeeting(ctx, m2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total())
}

func TestGetMeetingUnknown(t *testing.T) {
	tl := newTestLedger(t)
	_, err := tl.booking.GetMeeting(context.Background(), 7)
	assert.ErrorIs(t, err, services.ErrInvalidMeeting)
}
