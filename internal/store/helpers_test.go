package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkralj/avtotrg/internal/model"
)

func testUser(t *testing.T, db *sql.DB, username, role string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), db, username, "x", role)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return user
}

func testFields(price string) ListingFields {
	return ListingFields{
		Title:   "Renault Clio 1.2",
		Price:   decimal.RequireFromString(price),
		Mileage: 125000,
		Year:    2014,
		Region:  "ljubljana",
	}
}

func testImages(n int) []model.ListingImage {
	images := make([]model.ListingImage, n)
	for i := range images {
		images[i] = model.ListingImage{Data: []byte("jpeg bytes"), MIME: "image/jpeg"}
	}
	return images
}

func testListing(t *testing.T, db *sql.DB, sellerID int64, price string) *model.Listing {
	t.Helper()
	listing, err := CreateListing(context.Background(), db, sellerID, testFields(price), testImages(1))
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	return listing
}

func approve(t *testing.T, db *sql.DB, listingID, adminID int64) {
	t.Helper()
	if _, err := RecordDecision(context.Background(), db, listingID, adminID, model.ApprovalApproved, ""); err != nil {
		t.Fatalf("RecordDecision: %v", err)
	}
}
