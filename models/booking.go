// Package models defines data structures used across the application.
// File: models/booking.go
package models

// ----------------------- account model -----------------------

// Account represents a funded wallet that can take part in meetings.
// The address is an opaque, caller-chosen key; the balance is held in
// native units (no fractional currency, no conversion).
type Account struct {
	Address      string `json:"address"`
	PasswordHash string `json:"-"`
	Balance      int64  `json:"balance"`
	CreatedAt    int64  `json:"created_at"`
}

// ----------------------- meeting model -----------------------

// Meeting is a single record in the append-only meeting ledger. Ids are
// sequential and zero-based; records are never physically deleted.
type Meeting struct {
	ID               int64  `json:"id"`
	Booker           string `json:"booker"`
	Invitee          string `json:"invitee"`
	StartTime        int64  `json:"start_time"` // unix seconds
	StakedAmount     int64  `json:"staked_amount"`
	BookerCheckedIn  bool   `json:"booker_checked_in"`
	InviteeCheckedIn bool   `json:"invitee_checked_in"`
	Completed        bool   `json:"completed"`
	// Deleted is reserved for a future cancellation flow. Nothing sets it
	// today; it is persisted and surfaced so the record layout is stable.
	Deleted   bool  `json:"deleted"`
	CreatedAt int64 `json:"created_at"`
}

// IsParticipant reports whether addr is the booker or the invitee.
func (m *Meeting) IsParticipant(addr string) bool {
	return addr == m.Booker || addr == m.Invitee
}

// CheckedIn reports whether the given participant has already checked in.
func (m *Meeting) CheckedIn(addr string) bool {
	if addr == m.Booker {
		return m.BookerCheckedIn
	}
	if addr == m.Invitee {
		return m.InviteeCheckedIn
	}
	return false
}

// BothCheckedIn reports whether both parties have confirmed attendance.
func (m *Meeting) BothCheckedIn() bool {
	return m.BookerCheckedIn && m.InviteeCheckedIn
}
