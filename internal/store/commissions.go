package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkralj/avtotrg/internal/model"
)

// CommissionRate is the platform's fixed cut of every sale.
var CommissionRate = decimal.RequireFromString("0.10")

// CommissionFor returns the commission on a sale amount, rounded to currency
// precision. Pure function of the amount.
func CommissionFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(CommissionRate).Round(2)
}

// recordCommissionTx derives the commission row for a sale inside an
// existing transaction. Keyed by sale id with a do-nothing conflict clause,
// so re-deriving for the same sale never produces a duplicate.
func recordCommissionTx(ctx context.Context, tx *sql.Tx, saleID int64) error {
	var amount decimal.Decimal
	var buyerName, sellerName, listingTitle string
	err := tx.QueryRowContext(ctx,
		`SELECT s.amount, b.username, se.username, l.title
		 FROM sales s
		 JOIN users b ON b.id = s.buyer_id
		 JOIN users se ON se.id = s.seller_id
		 JOIN listings l ON l.id = s.listing_id
		 WHERE s.id = ?`, saleID,
	).Scan(&amount, &buyerName, &sellerName, &listingTitle)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading sale for commission: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO commissions (sale_id, sale_amount, amount, buyer_name, seller_name, listing_title)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (sale_id) DO NOTHING`,
		saleID, amount.String(), CommissionFor(amount).String(), buyerName, sellerName, listingTitle,
	)
	if err != nil {
		return fmt.Errorf("recording commission: %w", err)
	}
	return nil
}

// RecordCommission derives (or re-derives) the commission for a sale.
// Idempotent: a second call for the same sale leaves the existing row
// untouched.
func RecordCommission(ctx context.Context, db *sql.DB, saleID int64) (*model.Commission, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := recordCommissionTx(ctx, tx, saleID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing commission: %w", err)
	}

	return GetCommission(ctx, db, saleID)
}

// GetCommission returns the commission for a sale, or nil if absent.
func GetCommission(ctx context.Context, db *sql.DB, saleID int64) (*model.Commission, error) {
	c := &model.Commission{}
	err := db.QueryRowContext(ctx,
		`SELECT sale_id, sale_amount, amount, buyer_name, seller_name, listing_title, created_at
		 FROM commissions WHERE sale_id = ?`, saleID,
	).Scan(&c.SaleID, &c.SaleAmount, &c.Amount, &c.BuyerName, &c.SellerName, &c.ListingTitle, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting commission: %w", err)
	}
	return c, nil
}

// ListCommissions returns the full ledger, newest-first.
func ListCommissions(ctx context.Context, db *sql.DB) ([]model.Commission, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT sale_id, sale_amount, amount, buyer_name, seller_name, listing_title, created_at
		 FROM commissions ORDER BY created_at DESC, sale_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing commissions: %w", err)
	}
	defer rows.Close()

	var commissions []model.Commission
	for rows.Next() {
		var c model.Commission
		if err := rows.Scan(&c.SaleID, &c.SaleAmount, &c.Amount, &c.BuyerName, &c.SellerName,
			&c.ListingTitle, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning commission: %w", err)
		}
		commissions = append(commissions, c)
	}
	return commissions, rows.Err()
}

// TotalCommission sums commission amounts, optionally bounded by an
// inclusive-from, exclusive-to date range. Amounts are summed as decimals in
// Go rather than with SQL SUM so no float arithmetic touches money.
func TotalCommission(ctx context.Context, db *sql.DB, from, to *time.Time) (decimal.Decimal, error) {
	query := `SELECT amount FROM commissions WHERE 1=1`
	var args []any

	// created_at is written by CURRENT_TIMESTAMP, i.e. UTC text, so the
	// bounds are formatted the same way for a plain text comparison.
	const layout = "2006-01-02 15:04:05"
	if from != nil {
		query += ` AND created_at >= ?`
		args = append(args, from.UTC().Format(layout))
	}
	if to != nil {
		query += ` AND created_at < ?`
		args = append(args, to.UTC().Format(layout))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("totalling commissions: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scanning commission amount: %w", err)
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}
