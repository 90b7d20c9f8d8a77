// File: services/escrow_service.go
package services

import (
	"context"

	"go-meet-stake/logger"
	"go-meet-stake/models"
	"go-meet-stake/storage"
)

// EscrowService holds, per meeting, exactly the deposited stake until a
// single release zeroes it. It is consumed only by the booking state machine,
// which guarantees Release is invoked at most once per meeting (the completed
// flag flips atomically with the payout inside the store transaction).
type EscrowService struct {
	store storage.Store
}

// NewEscrowService creates an EscrowService over the given store.
func NewEscrowService(store storage.Store) *EscrowService {
	return &EscrowService{store: store}
}

// Reserve custodies the meeting's stake at creation: the booker's balance is
// debited and the escrow row opened in the same transaction that creates the
// meeting record.
func (s *EscrowService) Reserve(ctx context.Context, meeting *models.Meeting) error {
	if err := s.store.CreateMeeting(ctx, meeting); err != nil {
		return err
	}
	logger.Info.Printf("[EscrowService.Reserve] meeting=%d custodying %d from %s",
		meeting.ID, meeting.StakedAmount, meeting.Booker)
	return nil
}

// Release pays the full custodied amount to the recipient and reports how
// much was released. The completed flag, the escrow zeroing, and the credit
// happen in one transaction, funds last.
func (s *EscrowService) Release(ctx context.Context, meetingID int64, recipient string) (int64, error) {
	amount, err := s.store.SettleMeeting(ctx, meetingID, recipient)
	if err != nil {
		return 0, err
	}
	logger.Info.Printf("[EscrowService.Release] meeting=%d released %d to %s",
		meetingID, amount, recipient)
	return amount, nil
}

// Balance returns the amount currently custodied for a meeting.
func (s *EscrowService) Balance(ctx context.Context, meetingID int64) (int64, error) {
	return s.store.EscrowBalance(ctx, meetingID)
}
