package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database. These run on
// startup to ensure tables exist. Meeting ids are assigned by the store, not
// by AUTOINCREMENT, so they stay sequential and zero-based.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    address TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    balance INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS registered_users (
    address TEXT PRIMARY KEY,
    registered_at INTEGER NOT NULL,
    FOREIGN KEY (address) REFERENCES accounts(address)
);

CREATE TABLE IF NOT EXISTS meetings (
    id INTEGER PRIMARY KEY,
    booker TEXT NOT NULL,
    invitee TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    staked_amount INTEGER NOT NULL,
    booker_checked_in INTEGER NOT NULL DEFAULT 0,
    invitee_checked_in INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0,
    deleted INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS escrow (
    meeting_id INTEGER PRIMARY KEY,
    amount INTEGER NOT NULL,
    FOREIGN KEY (meeting_id) REFERENCES meetings(id)
);

CREATE TABLE IF NOT EXISTS user_meetings (
    address TEXT NOT NULL,
    meeting_id INTEGER NOT NULL,
    PRIMARY KEY (address, meeting_id),
    FOREIGN KEY (meeting_id) REFERENCES meetings(id)
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    meeting_id INTEGER NOT NULL,
    actor TEXT NOT NULL DEFAULT '',
    recipient TEXT NOT NULL DEFAULT '',
    amount INTEGER NOT NULL DEFAULT 0,
    start_time INTEGER NOT NULL DEFAULT 0,
    at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_user_meetings_address ON user_meetings(address);
CREATE INDEX IF NOT EXISTS idx_events_meeting_id ON events(meeting_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
