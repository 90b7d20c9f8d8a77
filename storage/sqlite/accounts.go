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

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (address, password_hash, balance, created_at) VALUES (?, ?, ?, ?)",
		account.Address, account.PasswordHash, account.Balance, account.CreatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by address.
func (s *SQLiteStore) GetAccount(ctx context.Context, address string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx,
		"SELECT address, password_hash, balance, created_at FROM accounts WHERE address = ?",
		address,
	).Scan(&account.Address, &account.PasswordHash, &account.Balance, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Credit adds amount to an account balance.
func (s *SQLiteStore) Credit(ctx context.Context, address string, amount int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET balance = balance + ? WHERE address = ?",
		amount, address,
	)
	if err != nil {
		return fmt.Errorf("failed to credit account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to credit account: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RegisterUser marks an address as registered. The flag is one-way: inserting
// a second row for the same address violates the primary key.
func (s *SQLiteStore) RegisterUser(ctx context.Context, address string, at int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO registered_users (address, registered_at) VALUES (?, ?)",
		address, at,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// IsRegistered reports whether the address has registered.
func (s *SQLiteStore) IsRegistered(ctx context.Context, address string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM registered_users WHERE address = ?",
		address,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return true, nil
}
