package store

import (
	"context"
	"testing"

	"github.com/mkralj/avtotrg/internal/db"
	"github.com/mkralj/avtotrg/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := testUser(t, database, "miha", model.RoleSeller)

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "miha" || got.Role != model.RoleSeller {
		t.Errorf("unexpected user: %+v", got)
	}

	byName, _ := GetUserByUsername(ctx, database, "miha")
	if byName == nil || byName.ID != user.ID {
		t.Errorf("GetUserByUsername mismatch: %+v", byName)
	}

	missing, err := GetUser(ctx, database, 9999)
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for missing user, got (%v, %v)", missing, err)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	database := db.NewTestDB(t)

	testUser(t, database, "miha", model.RoleSeller)
	_, err := CreateUser(context.Background(), database, "miha", "x", model.RoleBuyer)
	if err == nil {
		t.Error("expected error creating duplicate username")
	}
}

func TestDeleteUserSoft(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := testUser(t, database, "miha", model.RoleBuyer)
	testUser(t, database, "ana", model.RoleBuyer)

	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 1 || users[0].Username != "ana" {
		t.Errorf("expected only 'ana' listed, got %+v", users)
	}

	// The row survives for history, flagged as deleted.
	got, _ := GetUser(ctx, database, user.ID)
	if got == nil || got.DeletedAt == nil {
		t.Errorf("expected soft-deleted user to remain, got %+v", got)
	}
}
