// File: models/event.go
package models

// Event types mirror the notifications the booking ledger emits. They are a
// side-channel for observers, never a control-flow mechanism.
const (
	EventUserRegistered   = "UserRegistered"
	EventMeetingBooked    = "MeetingBooked"
	EventUserCheckedIn    = "UserCheckedIn"
	EventMeetingCompleted = "MeetingCompleted"
	EventStakeReturned    = "StakeReturned"
)

// NoMeeting marks events that are not tied to a meeting record. Meeting ids
// are zero-based, so zero cannot double as the sentinel.
const NoMeeting int64 = -1

// Event is one entry in the append-only notification log.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	MeetingID int64  `json:"meeting_id"` // NoMeeting when not applicable
	Actor     string `json:"actor,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	StartTime int64  `json:"start_time,omitempty"`
	At        int64  `json:"at"`
}
