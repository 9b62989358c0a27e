package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkralj/avtotrg/internal/model"
)

// RecordDecision appends an immutable approval decision and moves the
// listing's current approval status in the same transaction. Prior decisions
// are never overwritten; a rejected listing can still be approved by a later
// decision.
func RecordDecision(ctx context.Context, db *sql.DB, listingID, adminID int64, decision, note string) (*model.ApprovalDecision, error) {
	if decision != model.ApprovalApproved && decision != model.ApprovalRejected {
		return nil, validationErr("decision", "must be 'approved' or 'rejected'")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// The status update doubles as the existence check.
	result, err := tx.ExecContext(ctx,
		`UPDATE listings SET approval_status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		decision, listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating approval status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO approval_decisions (listing_id, admin_id, decision, note)
		 VALUES (?, ?, ?, ?)`,
		listingID, adminID, decision, note,
	)
	if err != nil {
		return nil, fmt.Errorf("recording decision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing decision: %w", err)
	}

	decisionID, _ := result.LastInsertId()
	return getDecision(ctx, db, decisionID)
}

func getDecision(ctx context.Context, db *sql.DB, id int64) (*model.ApprovalDecision, error) {
	d := &model.ApprovalDecision{}
	var note sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT d.id, d.listing_id, d.admin_id, d.decision, d.note, d.decided_at,
		        u.username AS admin_name
		 FROM approval_decisions d
		 JOIN users u ON u.id = d.admin_id
		 WHERE d.id = ?`, id,
	).Scan(&d.ID, &d.ListingID, &d.AdminID, &d.Decision, &note, &d.DecidedAt, &d.AdminName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting decision: %w", err)
	}
	d.Note = note.String
	return d, nil
}

// ListDecisions returns the audit trail for a listing, newest-first.
func ListDecisions(ctx context.Context, db *sql.DB, listingID int64) ([]model.ApprovalDecision, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT d.id, d.listing_id, d.admin_id, d.decision, d.note, d.decided_at,
		        u.username AS admin_name
		 FROM approval_decisions d
		 JOIN users u ON u.id = d.admin_id
		 WHERE d.listing_id = ?
		 ORDER BY d.decided_at DESC, d.id DESC`, listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	var decisions []model.ApprovalDecision
	for rows.Next() {
		var d model.ApprovalDecision
		var note sql.NullString
		if err := rows.Scan(&d.ID, &d.ListingID, &d.AdminID, &d.Decision, &note, &d.DecidedAt, &d.AdminName); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		d.Note = note.String
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// ListUnreviewed returns the admin review queue: listings awaiting a first
// decision, oldest-first so the queue drains fairly.
func ListUnreviewed(ctx context.Context, db *sql.DB) ([]model.Listing, error) {
	return queryListings(ctx, db,
		`WHERE l.approval_status = ? AND l.deleted_at IS NULL
		 ORDER BY l.created_at ASC, l.id ASC`,
		model.ApprovalUnreviewed,
	)
}
