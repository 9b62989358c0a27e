package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntent tracks a buyer checkout awaiting provider confirmation.
// The purchase itself only runs once the provider webhook confirms payment;
// the client never triggers it directly.
type PaymentIntent struct {
	ID        string          `json:"id"`
	ListingID int64           `json:"listing_id"`
	BuyerID   int64           `json:"buyer_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Payment intent statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)
