package auth

import (
	"testing"
	"time"

	"github.com/mkralj/avtotrg/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"
	user := &model.User{ID: 7, Username: "marija", Role: model.RoleSeller}

	token, err := GenerateToken(secret, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 7 {
		t.Errorf("expected user_id 7, got %d", claims.UserID)
	}
	if claims.Username != "marija" {
		t.Errorf("expected username 'marija', got %q", claims.Username)
	}
	if claims.Role != model.RoleSeller {
		t.Errorf("expected role 'seller', got %q", claims.Role)
	}

	p := claims.Principal()
	if p.ID != 7 || p.Role != model.RoleSeller {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	user := &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
	token, _ := GenerateToken("secret1", user)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	user := &model.User{ID: 1, Username: "test", Role: model.RoleBuyer}
	token, _ := GenerateToken(secret, user)
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(TokenExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
