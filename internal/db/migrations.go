package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at the
// end.
var migrations = []string{
	// Migration 1: index for the buyer-facing projector, which always filters
	// on status + approval_status and orders newest-first.
	`CREATE INDEX IF NOT EXISTS idx_listings_visible
	     ON listings(status, approval_status, created_at DESC) WHERE deleted_at IS NULL`,
	// Migration 2: index for seller dashboards.
	`CREATE INDEX IF NOT EXISTS idx_listings_seller ON listings(seller_id)`,
	// Migration 3: audit trail is always read per listing, newest-first.
	`CREATE INDEX IF NOT EXISTS idx_decisions_listing
	     ON approval_decisions(listing_id, decided_at DESC)`,
}

// Migrate ensures the schema exists and runs all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
