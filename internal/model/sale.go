package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the record of one completed transaction. At most one exists per
// listing; it is immutable once written.
type Sale struct {
	ID        int64           `json:"id"`
	ListingID int64           `json:"listing_id"`
	BuyerID   int64           `json:"buyer_id"`
	SellerID  int64           `json:"seller_id"`
	Amount    decimal.Decimal `json:"amount"`
	SoldAt    time.Time       `json:"sold_at"`

	// Joined fields (not always populated).
	ListingTitle string `json:"listing_title,omitempty"`
	BuyerName    string `json:"buyer_name,omitempty"`
	SellerName   string `json:"seller_name,omitempty"`
}
