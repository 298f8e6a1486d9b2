package store

import (
	"context"
	"testing"

	"github.com/morskmorsk/personal-item-tracker/internal/db"
	"github.com/morskmorsk/personal-item-tracker/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "alice" || user.Role != model.RoleUser {
		t.Errorf("unexpected user: %+v", user)
	}

	got, _ := GetUserByUsername(ctx, database, "alice")
	if got == nil || got.ID != user.ID {
		t.Errorf("expected user by username, got %+v", got)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	_, err := CreateUser(ctx, database, "alice", "hash2", model.RoleUser)
	if err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestUpdateUserRoleAndPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)

	if err := UpdateUserRole(ctx, database, user.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.Role != model.RoleAdmin || got.PasswordHash != "newhash" {
		t.Errorf("expected updated user, got %+v", got)
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got != nil {
		t.Errorf("expected user gone, got %+v", got)
	}
}
