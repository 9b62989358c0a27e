package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing represents one car for sale.
type Listing struct {
	ID             int64           `json:"id"`
	SellerID       int64           `json:"seller_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Mileage        int             `json:"mileage"`
	Year           int             `json:"year"`
	Region         string          `json:"region"`
	Status         string          `json:"status"`
	ApprovalStatus string          `json:"approval_status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	SellerName string             `json:"seller_name,omitempty"`
	Images     []ListingImageMeta `json:"images,omitempty"`
}

// Listing statuses. The only legal transition is available → sold, performed
// exclusively by the purchase path.
const (
	ListingStatusAvailable = "available"
	ListingStatusSold      = "sold"
)

// Approval statuses. This is the current decision; the full history lives in
// the approval_decisions audit table.
const (
	ApprovalUnreviewed = "unreviewed"
	ApprovalApproved   = "approved"
	ApprovalRejected   = "rejected"
)

// Model year bounds considered plausible for a listed car.
const (
	MinModelYear = 1950
	MaxModelYear = 2100
)

// ListingImageMeta describes one stored listing photo without its blob.
type ListingImageMeta struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	MIME     string `json:"mime"`
}

// ListingImage is an image payload supplied when creating a listing.
type ListingImage struct {
	Data []byte
	MIME string
}
