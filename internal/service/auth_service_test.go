package service

import (
	"errors"
	"testing"

	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"gorm.io/gorm"
)

func newTestAuthService(db *gorm.DB, policy config.PasswordPolicyConfig) *AuthService {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:          "test-secret-key-with-enough-entropy",
			ExpireHours:        1,
			RefreshExpireHours: 24,
		},
	}
	cfg.Security.PasswordPolicy = policy
	return NewAuthService(cfg, repository.NewUserRepository(db))
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	user, pair, err := svc.Register("Wanjiku@Example.co.KE", "hakuna-matata", "Wanjiku", "Kamau", "0712345678")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "wanjiku@example.co.ke" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.PasswordHash == "hakuna-matata" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("register should issue a token pair")
	}

	loggedIn, _, err := svc.Login("wanjiku@example.co.ke", "hakuna-matata")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}
	if loggedIn.LastLoginAt == nil {
		t.Fatalf("last_login_at should be set")
	}

	claims, err := svc.ParseToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.TokenType != tokenTypeAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterRejectsDuplicateAndBadEmail(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	if _, _, err := svc.Register("buyer@example.co.ke", "hakuna-matata", "A", "B", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := svc.Register("BUYER@example.co.ke", "hakuna-matata", "A", "B", ""); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}
	if _, _, err := svc.Register("not-an-email", "hakuna-matata", "A", "B", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email want ErrInvalidEmail got %v", err)
	}
}

func TestRegisterEnforcesPasswordPolicy(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{
		MinLength:     8,
		RequireNumber: true,
	})

	if _, _, err := svc.Register("buyer@example.co.ke", "short", "A", "B", ""); err == nil {
		t.Fatalf("short password should be rejected")
	}
	if _, _, err := svc.Register("buyer@example.co.ke", "longenough", "A", "B", ""); err == nil {
		t.Fatalf("password without digit should be rejected")
	}
	if _, _, err := svc.Register("buyer@example.co.ke", "longenough1", "A", "B", ""); err != nil {
		t.Fatalf("conforming password failed: %v", err)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	if _, _, err := svc.Register("buyer@example.co.ke", "hakuna-matata", "A", "B", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.Login("buyer@example.co.ke", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, err := svc.Login("nobody@example.co.ke", "hakuna-matata"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	user, _, err := svc.Register("buyer@example.co.ke", "hakuna-matata", "A", "B", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", constants.UserStatusDisabled)

	if _, _, err := svc.Login("buyer@example.co.ke", "hakuna-matata"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("want ErrUserDisabled got %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	_, pair, err := svc.Register("buyer@example.co.ke", "hakuna-matata", "A", "B", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.Refresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token as refresh want ErrInvalidToken got %v", err)
	}

	_, fresh, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Fatalf("refresh should issue a new pair")
	}
}

func TestChangePasswordInvalidatesRefreshTokens(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	user, pair, err := svc.Register("buyer@example.co.ke", "hakuna-matata", "A", "B", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrong-old", "jambo-kenya"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password want ErrInvalidPassword got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "hakuna-matata", "jambo-kenya"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := svc.Refresh(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("stale refresh token want ErrInvalidToken got %v", err)
	}
	if _, _, err := svc.Login("buyer@example.co.ke", "hakuna-matata"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should stop working, got %v", err)
	}
	if _, _, err := svc.Login("buyer@example.co.ke", "jambo-kenya"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAdminLoginRequiresAdmin(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	user, _, err := svc.Register("staff@example.co.ke", "hakuna-matata", "A", "B", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.AdminLogin("staff@example.co.ke", "hakuna-matata"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("non-admin want ErrInvalidCredentials got %v", err)
	}

	db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_admin", true)
	admin, pair, err := svc.AdminLogin("staff@example.co.ke", "hakuna-matata")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if !admin.IsAdmin || pair == nil {
		t.Fatalf("admin login should return admin user and tokens")
	}

	claims, err := svc.ParseToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatalf("admin claim should be set")
	}
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	db := setupServiceDB(t)
	svc := newTestAuthService(db, config.PasswordPolicyConfig{})

	_, pair, err := svc.Register("buyer@example.co.ke", "hakuna-matata", "A", "B", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	other := newTestAuthService(db, config.PasswordPolicyConfig{})
	other.cfg.JWT.SecretKey = "a-completely-different-signing-key"
	if _, err := other.ParseToken(pair.AccessToken); err == nil {
		t.Fatalf("token signed with another key must not parse")
	}
}
