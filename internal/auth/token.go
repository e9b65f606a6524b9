package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/pkg/models"
)

const (
	MinTokenTTL = 24 * time.Hour
	MaxTokenTTL = 7 * 24 * time.Hour
)

// Claims represents JWT claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager clamps ttl to [MinTokenTTL, MaxTokenTTL]
func NewTokenManager(secret string, ttl time.Duration, issuer string) *TokenManager {
	switch {
	case ttl < MinTokenTTL:
		ttl = MinTokenTTL
	case ttl > MaxTokenTTL:
		ttl = MaxTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// TTL returns the effective token lifetime
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for user
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify validates signature, algorithm, issuer and expiry
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, app.Unauthorized("Invalid token")
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil || claims.UserID == 0 {
		return Identity{}, app.Unauthorized("Invalid token")
	}
	return Identity{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}
