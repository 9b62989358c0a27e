package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission is the platform's cut of one sale. Buyer, seller, and listing
// fields are snapshotted at sale time so the ledger stays historically
// accurate even if a profile changes later.
type Commission struct {
	SaleID       int64           `json:"sale_id"`
	SaleAmount   decimal.Decimal `json:"sale_amount"`
	Amount       decimal.Decimal `json:"amount"`
	BuyerName    string          `json:"buyer_name"`
	SellerName   string          `json:"seller_name"`
	ListingTitle string          `json:"listing_title"`
	CreatedAt    time.Time       `json:"created_at"`
}
