// Package storage provides abstractions for the persistent booking ledger.
package storage

import (
	"context"
	"errors"

	"go-meet-stake/models"
)

// Sentinel errors surfaced by Store implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientFunds is returned when a balance debit would go negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadySettled is returned when a settlement targets a completed meeting.
	ErrAlreadySettled = errors.New("meeting already settled")
	// ErrDuplicate is returned when a unique key is inserted twice.
	ErrDuplicate = errors.New("record already exists")
)

// Store defines the persistence surface for the booking ledger. The booking
// state machine is the only writer for meeting and escrow rows; the interface
// exists so the service layer does not care which backend holds the data.
type Store interface {
	// CreateAccount persists a new account. Fails with ErrDuplicate when the
	// address is taken.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount retrieves an account by address, or ErrNotFound.
	GetAccount(ctx context.Context, address string) (*models.Account, error)

	// Credit adds amount to the account balance.
	Credit(ctx context.Context, address string, amount int64) error

	// RegisterUser marks an address as registered. Registration is one-way;
	// a second call fails with ErrDuplicate.
	RegisterUser(ctx context.Context, address string, at int64) error

	// IsRegistered reports whether the address has registered.
	IsRegistered(ctx context.Context, address string) (bool, error)

	// CreateMeeting atomically assigns the next sequential id, debits the
	// booker's balance by the staked amount, opens the escrow row, stores the
	// meeting, and appends both parties to the user meeting index. The
	// meeting's ID and CreatedAt fields are populated on return. Fails with
	// ErrInsufficientFunds when the booker cannot cover the stake.
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error

	// GetMeeting retrieves a meeting by id, or ErrNotFound.
	GetMeeting(ctx context.Context, id int64) (*models.Meeting, error)

	// SetCheckIn records a one-way check-in flag for the booker or invitee.
	SetCheckIn(ctx context.Context, id int64, booker bool) error

	// SettleMeeting atomically marks the meeting completed, zeroes its escrow
	// row, and credits the recipient with the full custodied amount, in that
	// order, so the funds transfer is the final effect. Returns the released
	// amount. Fails with ErrAlreadySettled if the meeting is completed.
	SettleMeeting(ctx context.Context, id int64, recipient string) (int64, error)

	// EscrowBalance returns the amount currently custodied for a meeting.
	EscrowBalance(ctx context.Context, id int64) (int64, error)

	// UserMeetings returns the ids of every meeting the address is party to,
	// in creation order.
	UserMeetings(ctx context.Context, address string) ([]int64, error)

	// AppendEvent journals a notification event.
	AppendEvent(ctx context.Context, event *models.Event) error

	// Close releases any resources held by the store.
	Close() error
}
