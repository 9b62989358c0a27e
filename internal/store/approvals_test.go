package store

import (
	"context"
	"errors"
	"testing"

	"github.com/mkralj/avtotrg/internal/db"
	"github.com/mkralj/avtotrg/internal/model"
)

func TestRecordDecisionUpdatesStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	admin := testUser(t, database, "admin", model.RoleAdmin)
	listing := testListing(t, database, seller.ID, "5000")

	decision, err := RecordDecision(ctx, database, listing.ID, admin.ID, model.ApprovalApproved, "looks fine")
	if err != nil {
		t.Fatalf("RecordDecision: %v", err)
	}
	if decision.AdminName != "admin" {
		t.Errorf("expected admin_name 'admin', got %q", decision.AdminName)
	}
	if decision.Note != "looks fine" {
		t.Errorf("expected note to be stored, got %q", decision.Note)
	}

	got, _ := GetListing(ctx, database, listing.ID)
	if got.ApprovalStatus != model.ApprovalApproved {
		t.Errorf("expected approval 'approved', got %q", got.ApprovalStatus)
	}
}

func TestRejectThenApprove(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	admin := testUser(t, database, "admin", model.RoleAdmin)
	listing := testListing(t, database, seller.ID, "5000")

	RecordDecision(ctx, database, listing.ID, admin.ID, model.ApprovalRejected, "blurry photos")

	visible, _ := ListAvailable(ctx, database)
	if len(visible) != 0 {
		t.Errorf("rejected listing must not be visible, got %d", len(visible))
	}

	// A later approval decision lifts the rejection.
	RecordDecision(ctx, database, listing.ID, admin.ID, model.ApprovalApproved, "photos fixed")

	visible, _ = ListAvailable(ctx, database)
	if len(visible) != 1 {
		t.Errorf("expected re-approved listing to be visible, got %d", len(visible))
	}
}

func TestDecisionValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	admin := testUser(t, database, "admin", model.RoleAdmin)
	listing := testListing(t, database, seller.ID, "5000")

	_, err := RecordDecision(ctx, database, listing.ID, admin.ID, "maybe", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for bad decision, got %v", err)
	}

	_, err = RecordDecision(ctx, database, 9999, admin.ID, model.ApprovalApproved, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing listing, got %v", err)
	}
}

func TestDecisionAuditTrailAppendOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	admin := testUser(t, database, "admin", model.RoleAdmin)
	listing := testListing(t, database, seller.ID, "5000")

	RecordDecision(ctx, database, listing.ID, admin.ID, model.ApprovalRejected, "")
	RecordDecision(ctx, database, listing.ID, admin.ID, model.ApprovalApproved, "")

	decisions, err := ListDecisions(ctx, database, listing.ID)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(decisions) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(decisions))
	}
	// Newest first: the approval.
	if decisions[0].Decision != model.ApprovalApproved {
		t.Errorf("expected latest decision first, got %q", decisions[0].Decision)
	}
}

func TestListUnreviewedQueue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seller := testUser(t, database, "seller", model.RoleSeller)
	admin := testUser(t, database, "admin", model.RoleAdmin)

	first := testListing(t, database, seller.ID, "5000")
	second := testListing(t, database, seller.ID, "6000")
	reviewed := testListing(t, database, seller.ID, "7000")
	approve(t, database, reviewed.ID, admin.ID)

	queue, err := ListUnreviewed(ctx, database)
	if err != nil {
		t.Fatalf("ListUnreviewed: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("expected 2 unreviewed listings, got %d", len(queue))
	}
	// Oldest first so the queue drains fairly.
	if queue[0].ID != first.ID || queue[1].ID != second.ID {
		t.Errorf("unexpected queue order: %d, %d", queue[0].ID, queue[1].ID)
	}
}
