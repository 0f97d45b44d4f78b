package auth

import (
	"fmt"
	"strings"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the resolved caller of an authenticated request
type Identity struct {
	UserID string
	Role   models.Role
}

// Claims is the JWT payload issued at login
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles account creation and token-based authentication
type AuthService struct {
	repo   repository.Ledger
	secret []byte
	ttl    time.Duration
}

// NewAuthService creates a new AuthService instance
func NewAuthService(repo repository.Ledger, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Signup registers a new account with a zero balance
func (s *AuthService) Signup(name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" {
		return models.User{}, fmt.Errorf("auth: %w - name and email are required", auctionerrors.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return models.User{}, fmt.Errorf("auth: %w - malformed email", auctionerrors.ErrInvalidInput)
	}
	if len(password) < 8 {
		return models.User{}, fmt.Errorf("auth: %w - password must be at least 8 characters", auctionerrors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       utils.GenerateID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Balance:      0,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(user); err != nil {
		return models.User{}, fmt.Errorf("auth: failed to create user %s: %w", email, err)
	}
	return user, nil
}

// Login verifies the credentials and issues a signed token
func (s *AuthService) Login(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		// do not reveal whether the account exists
		return "", fmt.Errorf("auth: %w", auctionerrors.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("auth: %w", auctionerrors.ErrInvalidCredentials)
	}

	now := time.Now()
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses a token and returns the identity it carries
func (s *AuthService) Verify(token string) (Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("auth: %w", auctionerrors.ErrUnauthorized)
	}

	return Identity{UserID: claims.Subject, Role: models.Role(claims.Role)}, nil
}
