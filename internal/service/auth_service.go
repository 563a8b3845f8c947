package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/fixmore/mall/internal/cache"
	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AuthService handles registration, login and token issuance.
type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewAuthService creates an auth service.
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// JWTClaims are the signed token claims.
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	TokenVersion uint64 `json:"token_version"`
	TokenType    string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is an access token plus its refresh companion.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HashPassword hashes a password with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a password against its hash.
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword checks a password against the configured policy.
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

func (s *AuthService) generateToken(user *models.User, tokenType string, expireHours int) (string, time.Time, error) {
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)
	claims := JWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin,
		TokenVersion: user.TokenVersion,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// GenerateTokenPair issues an access token plus a refresh token.
func (s *AuthService) GenerateTokenPair(user *models.User) (*TokenPair, error) {
	access, expiresAt, err := s.generateToken(user, tokenTypeAccess, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.generateToken(user, tokenTypeRefresh, s.cfg.JWT.RefreshExpireHours)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken parses and validates a signed token.
func (s *AuthService) ParseToken(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Register creates an account and issues tokens.
func (s *AuthService) Register(email, password, firstName, lastName, phone string) (*models.User, *TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ValidatePassword(password); err != nil {
		return nil, nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if exist != nil {
		return nil, nil, ErrEmailExists
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        normalized,
		PasswordHash: hashedPassword,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Phone:        strings.TrimSpace(phone),
		Status:       constants.UserStatusActive,
		LastLoginAt:  &now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	pair, err := s.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, pair, nil
}

// Login verifies credentials and issues tokens.
func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, nil, ErrUserDisabled
	}
	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, pair, nil
}

// AdminLogin is Login restricted to admin accounts.
func (s *AuthService) AdminLogin(email, password string) (*models.User, *TokenPair, error) {
	user, pair, err := s.Login(email, password)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsAdmin {
		return nil, nil, ErrInvalidCredentials
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := s.ParseToken(refreshToken)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidToken
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, nil, ErrUserDisabled
	}
	// Credential changes bump the version and orphan older refresh tokens.
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, ErrInvalidToken
	}

	pair, err := s.GenerateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ChangePassword rotates the password and invalidates issued tokens.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := s.VerifyPassword(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.TokenVersion++
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// UpdateProfile updates profile fields that were provided.
func (s *AuthService) UpdateProfile(userID uint, firstName, lastName, phone *string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if firstName != nil {
		user.FirstName = strings.TrimSpace(*firstName)
	}
	if lastName != nil {
		user.LastName = strings.TrimSpace(*lastName)
	}
	if phone != nil {
		user.Phone = strings.TrimSpace(*phone)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID fetches a user.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
