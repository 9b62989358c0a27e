package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mkralj/avtotrg/internal/db"
	"github.com/mkralj/avtotrg/internal/model"
)

func TestCreateListingDefaults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	listing, err := CreateListing(ctx, database, seller.ID, testFields("5000"), testImages(1))
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	if listing.Status != model.ListingStatusAvailable {
		t.Errorf("expected status 'available', got %q", listing.Status)
	}
	if listing.ApprovalStatus != model.ApprovalUnreviewed {
		t.Errorf("expected approval 'unreviewed', got %q", listing.ApprovalStatus)
	}
	if !listing.Price.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("expected price 5000, got %s", listing.Price)
	}
	if listing.SellerName != "seller" {
		t.Errorf("expected seller_name 'seller', got %q", listing.SellerName)
	}
	if len(listing.Images) != 1 {
		t.Errorf("expected 1 image, got %d", len(listing.Images))
	}
}

func TestCreateListingValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := testUser(t, database, "seller", model.RoleSeller)

	cases := []struct {
		name   string
		fields ListingFields
		images []model.ListingImage
	}{
		{"zero price", ListingFields{Title: "Clio", Price: decimal.Zero, Year: 2014}, testImages(1)},
		{"negative price", ListingFields{Title: "Clio", Price: decimal.RequireFromString("-1"), Year: 2014}, testImages(1)},
		{"implausible year", ListingFields{Title: "Clio", Price: decimal.NewFromInt(100), Year: 1800}, testImages(1)},
		{"missing title", ListingFields{Price: decimal.NewFromInt(100), Year: 2014}, testImages(1)},
		{"negative mileage", ListingFields{Title: "Clio", Price: decimal.NewFromInt(100), Year: 2014, Mileage: -5}, testImages(1)},
		{"no images", testFields("100"), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateListing(ctx, database, seller.ID, tc.fields, tc.images)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUpdateListingAuthorization(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	other := testUser(t, database, "other", model.RoleSeller)
	admin := testUser(t, database, "admin", model.RoleAdmin)
	listing := testListing(t, database, seller.ID, "5000")

	fields := testFields("4500")

	// A different seller must not edit.
	_, err := UpdateListing(ctx, database, listing.ID, model.Principal{ID: other.ID, Role: model.RoleSeller}, fields)
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed for foreign seller, got %v", err)
	}

	// The owner may edit.
	updated, err := UpdateListing(ctx, database, listing.ID, model.Principal{ID: seller.ID, Role: model.RoleSeller}, fields)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if !updated.Price.Equal(decimal.RequireFromString("4500")) {
		t.Errorf("expected price 4500, got %s", updated.Price)
	}

	// Admins may edit too.
	if _, err := UpdateListing(ctx, database, listing.ID, model.Principal{ID: admin.ID, Role: model.RoleAdmin}, fields); err != nil {
		t.Errorf("admin update: %v", err)
	}
}

func TestUpdateSoldListingRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	buyer := testUser(t, database, "buyer", model.RoleBuyer)
	listing := testListing(t, database, seller.ID, "5000")

	if _, err := PurchaseListing(ctx, database, listing.ID, buyer.ID); err != nil {
		t.Fatalf("PurchaseListing: %v", err)
	}

	_, err := UpdateListing(ctx, database, listing.ID, model.Principal{ID: seller.ID, Role: model.RoleSeller}, testFields("1"))
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState editing sold listing, got %v", err)
	}

	// No field changed.
	got, _ := GetListing(ctx, database, listing.ID)
	if !got.Price.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("sold listing price changed: %s", got.Price)
	}
}

func TestDeleteListingRules(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	other := testUser(t, database, "other", model.RoleSeller)
	buyer := testUser(t, database, "buyer", model.RoleBuyer)

	// Non-owner cannot delete.
	listing := testListing(t, database, seller.ID, "5000")
	err := DeleteListing(ctx, database, listing.ID, model.Principal{ID: other.ID, Role: model.RoleSeller})
	if !errors.Is(err, ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed, got %v", err)
	}

	// Owner can delete while available.
	if err := DeleteListing(ctx, database, listing.ID, model.Principal{ID: seller.ID, Role: model.RoleSeller}); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	// Deleting again reports not found.
	err = DeleteListing(ctx, database, listing.ID, model.Principal{ID: seller.ID, Role: model.RoleSeller})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted listing, got %v", err)
	}

	// Sold listings are immutable history.
	sold := testListing(t, database, seller.ID, "7000")
	if _, err := PurchaseListing(ctx, database, sold.ID, buyer.ID); err != nil {
		t.Fatalf("PurchaseListing: %v", err)
	}
	err = DeleteListing(ctx, database, sold.ID, model.Principal{ID: seller.ID, Role: model.RoleSeller})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState deleting sold listing, got %v", err)
	}
}

func TestListingImagesOrdered(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	listing, err := CreateListing(ctx, database, seller.ID, testFields("5000"), testImages(3))
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	images, err := ListListingImages(ctx, database, listing.ID)
	if err != nil {
		t.Fatalf("ListListingImages: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
	for i, img := range images {
		if img.Position != i {
			t.Errorf("image %d has position %d", i, img.Position)
		}
	}

	data, mime, err := GetListingImage(ctx, database, listing.ID, images[0].ID)
	if err != nil {
		t.Fatalf("GetListingImage: %v", err)
	}
	if len(data) == 0 || mime != "image/jpeg" {
		t.Errorf("unexpected image payload: %d bytes, mime %q", len(data), mime)
	}
}
