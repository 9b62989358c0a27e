package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkralj/avtotrg/internal/model"
)

// The buyer-facing read path. Visibility is fail-closed: a listing with no
// approval decision yet is excluded, not included.

const listingSelect = `
	SELECT l.id, l.seller_id, l.title, l.description, l.price, l.mileage, l.year,
	       l.region, l.status, l.approval_status, l.created_at, l.updated_at, l.deleted_at,
	       u.username AS seller_name
	FROM listings l
	JOIN users u ON u.id = l.seller_id `

// queryListings runs the shared listing select with the given tail clause.
func queryListings(ctx context.Context, db *sql.DB, tail string, args ...any) ([]model.Listing, error) {
	rows, err := db.QueryContext(ctx, listingSelect+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		var l model.Listing
		var description sql.NullString
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Title, &description, &l.Price, &l.Mileage,
			&l.Year, &l.Region, &l.Status, &l.ApprovalStatus, &l.CreatedAt, &l.UpdatedAt,
			&l.DeletedAt, &l.SellerName); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		l.Description = description.String
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ListAvailable returns what a buyer may currently see: available listings
// whose current approval decision is approved, newest-first.
func ListAvailable(ctx context.Context, db *sql.DB) ([]model.Listing, error) {
	return queryListings(ctx, db,
		`WHERE l.status = ? AND l.approval_status = ? AND l.deleted_at IS NULL
		 ORDER BY l.created_at DESC, l.id DESC`,
		model.ListingStatusAvailable, model.ApprovalApproved,
	)
}

// ListForSeller returns all of a seller's listings regardless of approval or
// sale status, so sellers see their own pending, rejected, and sold cars.
func ListForSeller(ctx context.Context, db *sql.DB, sellerID int64) ([]model.Listing, error) {
	return queryListings(ctx, db,
		`WHERE l.seller_id = ? AND l.deleted_at IS NULL
		 ORDER BY l.created_at DESC, l.id DESC`,
		sellerID,
	)
}

// VisibleTo reports whether a listing may be shown to the given principal:
// sellers always see their own listings, admins see everything, and buyers
// only see what the projector would include.
func VisibleTo(listing *model.Listing, p model.Principal) bool {
	if listing.SellerID == p.ID || p.IsAdmin() {
		return true
	}
	return listing.Status == model.ListingStatusAvailable &&
		listing.ApprovalStatus == model.ApprovalApproved &&
		listing.DeletedAt == nil
}
