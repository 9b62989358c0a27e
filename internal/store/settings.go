package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// getSecret retrieves a named secret from the settings table, generating and
// persisting one on first use. Uses INSERT OR IGNORE + re-SELECT to avoid a
// TOCTOU race on concurrent startup.
func getSecret(ctx context.Context, db *sql.DB, key string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating %s: %w", key, err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		key, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}

	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", key, err)
	}

	return secret, nil
}

// GetJWTSecret returns the JWT signing key, generated on first run.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	return getSecret(ctx, db, "jwt_secret")
}

// GetWebhookSecret returns the shared key used to verify payment provider
// webhook signatures, generated on first run.
func GetWebhookSecret(ctx context.Context, db *sql.DB) (string, error) {
	return getSecret(ctx, db, "webhook_secret")
}
