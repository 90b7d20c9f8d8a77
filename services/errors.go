// Package services implements the booking ledger: registry, escrow
// accounting, and the booking/check-in state machine.
// File: services/errors.go
package services

import "errors"

// Every operation checks its preconditions before touching state; these are
// the failures a caller can observe. Nothing is retried internally and no
// operation partially applies.
var (
	ErrAlreadyRegistered    = errors.New("user already registered")
	ErrBookerNotRegistered  = errors.New("booker not registered")
	ErrInviteeNotRegistered = errors.New("invitee not registered")
	ErrNotParticipant       = errors.New("not a meeting participant")
	ErrAlreadyCheckedIn     = errors.New("already checked in")
	ErrMeetingNotStarted    = errors.New("meeting has not started yet")
	ErrMeetingCompleted     = errors.New("meeting already completed")
	ErrMeetingStillPending  = errors.New("meeting is still within its grace window")
	ErrInvalidMeeting       = errors.New("meeting does not exist")
	ErrStartTimeNotFuture   = errors.New("start time must be in the future")
	ErrInvalidStake         = errors.New("stake must be a positive amount")
	ErrInsufficientFunds    = errors.New("insufficient balance to cover the stake")
	ErrSelfBooking          = errors.New("booker and invitee must be different users")
)
