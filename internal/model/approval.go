package model

import "time"

// ApprovalDecision is one immutable admin review record. The listing's
// approval_status field holds the current decision; these rows are the
// append-only audit trail behind it.
type ApprovalDecision struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	AdminID   int64     `json:"admin_id"`
	Decision  string    `json:"decision"`
	Note      string    `json:"note,omitempty"`
	DecidedAt time.Time `json:"decided_at"`

	// Joined fields (not always populated).
	AdminName string `json:"admin_name,omitempty"`
}
