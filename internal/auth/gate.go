package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jubairbh/storefront/internal/hash"
	"github.com/jubairbh/storefront/internal/models"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Handlers must never distinguish the two cases in a response.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSession means the token is missing, malformed or carries a
	// bad signature (401). ErrUnauthorized means the session is fine but
	// the role is insufficient (403); ErrSessionExpired only means the
	// expiry passed.
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")
	ErrUnauthorized   = errors.New("unauthorized")
)

// Gate validates credentials against the store and issues self-contained
// signed session tokens. Tokens carry everything Authorize needs, so any
// process holding the signing key can validate a session another process
// issued.
type Gate struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration
}

type Session struct {
	Token     string      `json:"token"`
	UserID    uint        `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type Claims struct {
	UserID uint
	Email  string
	Role   models.Role
}

// Authenticate looks the user up by case-insensitive email, verifies the
// password and issues a fresh session with a fixed expiry window. No
// renewal on use. The unknown-email path burns a bcrypt comparison so both
// failure modes take the same time.
func (g *Gate) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := g.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash.BurnPassword(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return g.issue(&user)
}

func (g *Gate) issue(user *models.User) (*Session, error) {
	now := time.Now()
	exp := now.Add(g.TTL)
	claims := jwt.MapClaims{
		"sub":   float64(user.ID),
		"email": user.Email,
		"role":  string(user.Role),
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Session{
		Token:     signed,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// Authorize verifies the token and checks its role against required.
// An expired token fails with ErrSessionExpired; a live token with an
// insufficient role fails with ErrUnauthorized.
func (g *Gate) Authorize(rawToken string, required models.Role) (*Claims, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return g.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidSession
	}
	if !token.Valid {
		return nil, ErrInvalidSession
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	sub, ok := mapClaims["sub"].(float64)
	if !ok {
		return nil, ErrInvalidSession
	}
	email, _ := mapClaims["email"].(string)
	roleStr, ok := mapClaims["role"].(string)
	if !ok {
		return nil, ErrInvalidSession
	}
	role := models.Role(roleStr)
	if !role.Valid() {
		return nil, ErrInvalidSession
	}

	if !role.Satisfies(required) {
		return nil, ErrUnauthorized
	}

	return &Claims{UserID: uint(sub), Email: email, Role: role}, nil
}
