package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Money columns store decimal strings,
// never floats.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'buyer' CHECK (role IN ('admin', 'seller', 'buyer')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS listings (
    id              INTEGER PRIMARY KEY,
    seller_id       INTEGER NOT NULL REFERENCES users(id),
    title           TEXT NOT NULL,
    description     TEXT,
    price           TEXT NOT NULL,
    mileage         INTEGER NOT NULL DEFAULT 0,
    year            INTEGER NOT NULL,
    region          TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'sold')),
    approval_status TEXT NOT NULL DEFAULT 'unreviewed' CHECK (approval_status IN ('unreviewed', 'approved', 'rejected')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at      DATETIME
);

CREATE TABLE IF NOT EXISTS listing_images (
    id         INTEGER PRIMARY KEY,
    listing_id INTEGER NOT NULL REFERENCES listings(id),
    position   INTEGER NOT NULL,
    image      BLOB NOT NULL,
    mime       TEXT NOT NULL,
    UNIQUE (listing_id, position)
);

CREATE TABLE IF NOT EXISTS approval_decisions (
    id         INTEGER PRIMARY KEY,
    listing_id INTEGER NOT NULL REFERENCES listings(id),
    admin_id   INTEGER NOT NULL REFERENCES users(id),
    decision   TEXT NOT NULL CHECK (decision IN ('approved', 'rejected')),
    note       TEXT,
    decided_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sales (
    id         INTEGER PRIMARY KEY,
    listing_id INTEGER NOT NULL UNIQUE REFERENCES listings(id),
    buyer_id   INTEGER NOT NULL REFERENCES users(id),
    seller_id  INTEGER NOT NULL REFERENCES users(id),
    amount     TEXT NOT NULL,
    sold_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS commissions (
    sale_id       INTEGER PRIMARY KEY REFERENCES sales(id),
    sale_amount   TEXT NOT NULL,
    amount        TEXT NOT NULL,
    buyer_name    TEXT NOT NULL,
    seller_name   TEXT NOT NULL,
    listing_title TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS payment_intents (
    id         TEXT PRIMARY KEY,
    listing_id INTEGER NOT NULL REFERENCES listings(id),
    buyer_id   INTEGER NOT NULL REFERENCES users(id),
    amount     TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
