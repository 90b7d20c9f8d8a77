package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-meet-stake/models"
	"go-meet-stake/storage"
)

// CreateMeeting assigns the next sequential id and persists the meeting, its
// escrow row, the balance debit, and both user-index rows in one transaction.
func (s *SQLiteStore) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	if meeting.CreatedAt == 0 {
		meeting.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// next zero-based sequential id
	var id int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(id) + 1, 0) FROM meetings",
	).Scan(&id); err != nil {
		return fmt.Errorf("failed to assign meeting id: %w", err)
	}

	// debit the stake from the booker; the balance guard keeps it atomic
	res, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance = balance - ? WHERE address = ? AND balance >= ?",
		meeting.StakedAmount, meeting.Booker, meeting.StakedAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to debit stake: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to debit stake: %w", err)
	}
	if rows == 0 {
		return storage.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meetings (id, booker, invitee, start_time, staked_amount,
		    booker_checked_in, invitee_checked_in, completed, deleted, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, 0, 0, ?)`,
		id, meeting.Booker, meeting.Invitee, meeting.StartTime, meeting.StakedAmount, meeting.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO escrow (meeting_id, amount) VALUES (?, ?)",
		id, meeting.StakedAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to open escrow: %w", err)
	}

	for _, addr := range []string{meeting.Booker, meeting.Invitee} {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO user_meetings (address, meeting_id) VALUES (?, ?)",
			addr, id,
		)
		if err != nil {
			return fmt.Errorf("failed to index meeting for %s: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	meeting.ID = id
	return nil
}

// GetMeeting retrieves a meeting by id.
func (s *SQLiteStore) GetMeeting(ctx context.Context, id int64) (*models.Meeting, error) {
	meeting := &models.Meeting{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, booker, invitee, start_time, staked_amount,
		    booker_checked_in, invitee_checked_in, completed, deleted, created_at
		 FROM meetings WHERE id = ?`,
		id,
	).Scan(&meeting.ID, &meeting.Booker, &meeting.Invitee, &meeting.StartTime,
		&meeting.StakedAmount, &meeting.BookerCheckedIn, &meeting.InviteeCheckedIn,
		&meeting.Completed, &meeting.Deleted, &meeting.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

// SetCheckIn records a check-in flag for the booker or the invitee.
func (s *SQLiteStore) SetCheckIn(ctx context.Context, id int64, booker bool) error {
	column := "invitee_checked_in"
	if booker {
		column = "booker_checked_in"
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE meetings SET "+column+" = 1 WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to record check-in: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to record check-in: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SettleMeeting marks the meeting completed, zeroes the escrow row, and
// credits the recipient, in that order, so the funds transfer is the last
// effect of the settlement.
func (s *SQLiteStore) SettleMeeting(ctx context.Context, id int64, recipient string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// the completed guard makes settlement exactly-once
	res, err := tx.ExecContext(ctx,
		"UPDATE meetings SET completed = 1 WHERE id = ? AND completed = 0",
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to complete meeting: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to complete meeting: %w", err)
	}
	if rows == 0 {
		var exists int
		if scanErr := tx.QueryRowContext(ctx, "SELECT 1 FROM meetings WHERE id = ?", id).Scan(&exists); errors.Is(scanErr, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, storage.ErrAlreadySettled
	}

	var amount int64
	if err := tx.QueryRowContext(ctx,
		"SELECT amount FROM escrow WHERE meeting_id = ?", id,
	).Scan(&amount); err != nil {
		return 0, fmt.Errorf("failed to read escrow: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE escrow SET amount = 0 WHERE meeting_id = ?", id,
	); err != nil {
		return 0, fmt.Errorf("failed to zero escrow: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE accounts SET balance = balance + ? WHERE address = ?",
		amount, recipient,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to pay out stake: %w", err)
	}
	rows, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to pay out stake: %w", err)
	}
	if rows == 0 {
		// roll the whole settlement back rather than burn the stake
		return 0, fmt.Errorf("failed to pay out stake: recipient %s has no account", recipient)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return amount, nil
}

// EscrowBalance returns the amount currently custodied for a meeting.
func (s *SQLiteStore) EscrowBalance(ctx context.Context, id int64) (int64, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx,
		"SELECT amount FROM escrow WHERE meeting_id = ?", id,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read escrow: %w", err)
	}
	return amount, nil
}

// UserMeetings returns the ids of every meeting the address is party to, in
// creation order. The index is append-only and never pruned.
func (s *SQLiteStore) UserMeetings(ctx context.Context, address string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT meeting_id FROM user_meetings WHERE address = ? ORDER BY meeting_id",
		address,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user meetings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan meeting id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user meetings: %w", err)
	}
	return ids, nil
}

// AppendEvent journals a notification event.
func (s *SQLiteStore) AppendEvent(ctx context.Context, event *models.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, type, meeting_id, actor, recipient, amount, start_time, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Type, event.MeetingID, event.Actor, event.Recipient,
		event.Amount, event.StartTime, event.At,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}
