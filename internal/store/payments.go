package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkralj/avtotrg/internal/model"
)

// CreatePaymentIntent starts a checkout: it snapshots the listing price into
// a pending intent identified by a UUID, which the payment provider echoes
// back on confirmation. The purchase itself does not happen here.
func CreatePaymentIntent(ctx context.Context, db *sql.DB, listingID, buyerID int64) (*model.PaymentIntent, error) {
	listing, err := GetListing(ctx, db, listingID)
	if err != nil {
		return nil, err
	}
	// Fail closed: a listing the buyer cannot see does not exist for them.
	if listing == nil || listing.DeletedAt != nil ||
		listing.ApprovalStatus != model.ApprovalApproved {
		return nil, ErrNotFound
	}
	if listing.Status != model.ListingStatusAvailable {
		return nil, ErrAlreadySold
	}
	if listing.SellerID == buyerID {
		return nil, ErrSelfPurchase
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO payment_intents (id, listing_id, buyer_id, amount) VALUES (?, ?, ?, ?)`,
		id, listingID, buyerID, listing.Price.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}

	return GetPaymentIntent(ctx, db, id)
}

// GetPaymentIntent returns a payment intent by ID, or nil if absent.
func GetPaymentIntent(ctx context.Context, db *sql.DB, id string) (*model.PaymentIntent, error) {
	p := &model.PaymentIntent{}
	err := db.QueryRowContext(ctx,
		`SELECT id, listing_id, buyer_id, amount, status, created_at, updated_at
		 FROM payment_intents WHERE id = ?`, id,
	).Scan(&p.ID, &p.ListingID, &p.BuyerID, &p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting payment intent: %w", err)
	}
	return p, nil
}

// ConfirmPayment completes a pending intent and executes the purchase in the
// same transaction, so the intent can never read "completed" without a sale
// behind it. If the purchase fails (the listing was sold to someone else in
// the meantime), the whole transaction rolls back and the intent is marked
// failed so the provider can refund.
func ConfirmPayment(ctx context.Context, db *sql.DB, intentID string) (*model.Sale, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payment_intents SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.PaymentCompleted, intentID, model.PaymentPending,
	)
	if err != nil {
		return nil, fmt.Errorf("completing payment intent: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM payment_intents WHERE id = ?`, intentID,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("checking payment intent: %w", err)
		}
		return nil, ErrInvalidState
	}

	var listingID, buyerID int64
	err = tx.QueryRowContext(ctx,
		`SELECT listing_id, buyer_id FROM payment_intents WHERE id = ?`, intentID,
	).Scan(&listingID, &buyerID)
	if err != nil {
		return nil, fmt.Errorf("loading payment intent: %w", err)
	}

	saleID, err := purchaseTx(ctx, tx, listingID, buyerID)
	if err != nil {
		tx.Rollback()
		// Best effort: leave a failed intent behind for refund handling.
		markPaymentFailed(ctx, db, intentID)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment: %w", err)
	}

	return GetSale(ctx, db, saleID)
}

// FailPayment marks a pending intent as failed (provider reported an
// unsuccessful payment). Completed intents are left alone.
func FailPayment(ctx context.Context, db *sql.DB, intentID string) error {
	intent, err := GetPaymentIntent(ctx, db, intentID)
	if err != nil {
		return err
	}
	if intent == nil {
		return ErrNotFound
	}
	if intent.Status != model.PaymentPending {
		return ErrInvalidState
	}
	markPaymentFailed(ctx, db, intentID)
	return nil
}

func markPaymentFailed(ctx context.Context, db *sql.DB, intentID string) {
	db.ExecContext(ctx,
		`UPDATE payment_intents SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.PaymentFailed, intentID, model.PaymentPending,
	)
}
