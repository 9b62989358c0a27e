package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkralj/avtotrg/internal/model"
)

// ListingFields is the seller-editable content of a listing.
type ListingFields struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Mileage     int
	Year        int
	Region      string
}

func validateListingFields(f ListingFields) error {
	if f.Title == "" {
		return validationErr("title", "required")
	}
	if !f.Price.IsPositive() {
		return validationErr("price", "must be greater than zero")
	}
	if f.Year < model.MinModelYear || f.Year > model.MaxModelYear {
		return validationErr("year", fmt.Sprintf("must be between %d and %d", model.MinModelYear, model.MaxModelYear))
	}
	if f.Mileage < 0 {
		return validationErr("mileage", "must not be negative")
	}
	return nil
}

// CreateListing creates a listing with its images in a single transaction.
// New listings start available and unreviewed, so they are not buyer-visible
// until an admin approves them. At least one image is required.
func CreateListing(ctx context.Context, db *sql.DB, sellerID int64, f ListingFields, images []model.ListingImage) (*model.Listing, error) {
	if err := validateListingFields(f); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, validationErr("images", "at least one image required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO listings (seller_id, title, description, price, mileage, year, region)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sellerID, f.Title, f.Description, f.Price.String(), f.Mileage, f.Year, f.Region,
	)
	if err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting listing id: %w", err)
	}

	for i, img := range images {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO listing_images (listing_id, position, image, mime) VALUES (?, ?, ?, ?)`,
			id, i, img.Data, img.MIME,
		)
		if err != nil {
			return nil, fmt.Errorf("storing listing image %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing listing: %w", err)
	}

	return GetListing(ctx, db, id)
}

// GetListing returns a listing by ID with its image metadata, or nil if it
// does not exist.
func GetListing(ctx context.Context, db *sql.DB, id int64) (*model.Listing, error) {
	l := &model.Listing{}
	var description sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT l.id, l.seller_id, l.title, l.description, l.price, l.mileage, l.year,
		        l.region, l.status, l.approval_status, l.created_at, l.updated_at, l.deleted_at,
		        u.username AS seller_name
		 FROM listings l
		 JOIN users u ON u.id = l.seller_id
		 WHERE l.id = ?`, id,
	).Scan(&l.ID, &l.SellerID, &l.Title, &description, &l.Price, &l.Mileage, &l.Year,
		&l.Region, &l.Status, &l.ApprovalStatus, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
		&l.SellerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	l.Description = description.String

	l.Images, err = ListListingImages(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateListing replaces a listing's content fields. Only the owning seller
// or an admin may edit, and only while the listing is still available: a
// sold listing is immutable history.
func UpdateListing(ctx context.Context, db *sql.DB, id int64, editor model.Principal, f ListingFields) (*model.Listing, error) {
	if err := validateListingFields(f); err != nil {
		return nil, err
	}

	listing, err := GetListing(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.DeletedAt != nil {
		return nil, ErrNotFound
	}
	if listing.SellerID != editor.ID && !editor.IsAdmin() {
		return nil, ErrNotAllowed
	}

	// Conditional on status so an edit can never race past a concurrent sale.
	result, err := db.ExecContext(ctx,
		`UPDATE listings
		 SET title = ?, description = ?, price = ?, mileage = ?, year = ?, region = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		f.Title, f.Description, f.Price.String(), f.Mileage, f.Year, f.Region,
		id, model.ListingStatusAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("updating listing: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrInvalidState
	}

	return GetListing(ctx, db, id)
}

// DeleteListing soft-deletes a listing. Allowed only for the owning seller or
// an admin, and only before a sale: sold listings must stay queryable.
func DeleteListing(ctx context.Context, db *sql.DB, id int64, editor model.Principal) error {
	listing, err := GetListing(ctx, db, id)
	if err != nil {
		return err
	}
	if listing == nil || listing.DeletedAt != nil {
		return ErrNotFound
	}
	if listing.SellerID != editor.ID && !editor.IsAdmin() {
		return ErrNotAllowed
	}

	result, err := db.ExecContext(ctx,
		`UPDATE listings SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		id, model.ListingStatusAvailable,
	)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrInvalidState
	}
	return nil
}

// ListListingImages returns the ordered image metadata for a listing.
func ListListingImages(ctx context.Context, db *sql.DB, listingID int64) ([]model.ListingImageMeta, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, position, mime FROM listing_images WHERE listing_id = ? ORDER BY position`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var images []model.ListingImageMeta
	for rows.Next() {
		var m model.ListingImageMeta
		if err := rows.Scan(&m.ID, &m.Position, &m.MIME); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		images = append(images, m)
	}
	return images, rows.Err()
}

// GetListingImage returns one stored image's data and MIME type.
func GetListingImage(ctx context.Context, db *sql.DB, listingID, imageID int64) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT image, mime FROM listing_images WHERE id = ? AND listing_id = ?`,
		imageID, listingID,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting listing image: %w", err)
	}
	return data, mime, nil
}
