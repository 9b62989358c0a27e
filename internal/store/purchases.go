package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkralj/avtotrg/internal/model"
)

// PurchaseListing executes a purchase as one atomic unit: the status flip,
// the sale record, and the commission derivation either all commit or none
// do. The listing's status column is the sole arbitration point; a
// conditional update on it decides the winner, so two concurrent buyers can
// never both produce a sale.
func PurchaseListing(ctx context.Context, db *sql.DB, listingID, buyerID int64) (*model.Sale, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	saleID, err := purchaseTx(ctx, tx, listingID, buyerID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing purchase: %w", err)
	}

	return GetSale(ctx, db, saleID)
}

// purchaseTx runs the purchase inside an existing transaction so callers
// (the payment confirmation path) can tie it to their own writes. The
// compare-and-swap update runs first: it both arbitrates between concurrent
// buyers and takes the write lock before any read.
func purchaseTx(ctx context.Context, tx *sql.Tx, listingID, buyerID int64) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE listings SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		model.ListingStatusSold, listingID, model.ListingStatusAvailable,
	)
	if err != nil {
		return 0, fmt.Errorf("flipping listing status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Lost the swap: distinguish a missing listing from a sold one.
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM listings WHERE id = ? AND deleted_at IS NULL`, listingID,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("checking listing: %w", err)
		}
		return 0, ErrAlreadySold
	}

	var sellerID int64
	var price string
	err = tx.QueryRowContext(ctx,
		`SELECT seller_id, price FROM listings WHERE id = ?`, listingID,
	).Scan(&sellerID, &price)
	if err != nil {
		return 0, fmt.Errorf("loading listing for sale: %w", err)
	}

	// Rolling back undoes the status flip, so this check can follow the swap.
	if sellerID == buyerID {
		return 0, ErrSelfPurchase
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO sales (listing_id, buyer_id, seller_id, amount) VALUES (?, ?, ?, ?)`,
		listingID, buyerID, sellerID, price,
	)
	if err != nil {
		return 0, fmt.Errorf("recording sale: %w", err)
	}

	saleID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting sale id: %w", err)
	}

	if err := recordCommissionTx(ctx, tx, saleID); err != nil {
		return 0, err
	}

	return saleID, nil
}

// GetSale returns a sale by ID with display names joined, or nil if absent.
func GetSale(ctx context.Context, db *sql.DB, id int64) (*model.Sale, error) {
	s := &model.Sale{}
	err := db.QueryRowContext(ctx,
		`SELECT s.id, s.listing_id, s.buyer_id, s.seller_id, s.amount, s.sold_at,
		        l.title AS listing_title, b.username AS buyer_name, se.username AS seller_name
		 FROM sales s
		 JOIN listings l ON l.id = s.listing_id
		 JOIN users b ON b.id = s.buyer_id
		 JOIN users se ON se.id = s.seller_id
		 WHERE s.id = ?`, id,
	).Scan(&s.ID, &s.ListingID, &s.BuyerID, &s.SellerID, &s.Amount, &s.SoldAt,
		&s.ListingTitle, &s.BuyerName, &s.SellerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting sale: %w", err)
	}
	return s, nil
}

// GetSaleForListing returns the sale for a listing, or nil if it has none.
func GetSaleForListing(ctx context.Context, db *sql.DB, listingID int64) (*model.Sale, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM sales WHERE listing_id = ?`, listingID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting sale for listing: %w", err)
	}
	return GetSale(ctx, db, id)
}

// ListSalesForBuyer returns a buyer's purchase history, newest-first.
func ListSalesForBuyer(ctx context.Context, db *sql.DB, buyerID int64) ([]model.Sale, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT s.id, s.listing_id, s.buyer_id, s.seller_id, s.amount, s.sold_at,
		        l.title AS listing_title, b.username AS buyer_name, se.username AS seller_name
		 FROM sales s
		 JOIN listings l ON l.id = s.listing_id
		 JOIN users b ON b.id = s.buyer_id
		 JOIN users se ON se.id = s.seller_id
		 WHERE s.buyer_id = ?
		 ORDER BY s.sold_at DESC, s.id DESC`, buyerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		var s model.Sale
		if err := rows.Scan(&s.ID, &s.ListingID, &s.BuyerID, &s.SellerID, &s.Amount, &s.SoldAt,
			&s.ListingTitle, &s.BuyerName, &s.SellerName); err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
