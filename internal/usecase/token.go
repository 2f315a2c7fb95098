package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Principal is what a verified access token says about its bearer.
type Principal struct {
	UserID    string
	SessionID string
	Email     string
}

// newOpaqueToken returns a random hex token and the SHA-256 hex of it.
// Only the hash is ever stored.
func newOpaqueToken() (raw, hash string, err error) {
	b := make([]byte, 32)
	if _, err = io.ReadFull(rand.Reader, b); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	raw = hex.EncodeToString(b)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}

func signAccessToken(key []byte, user *domain.User, sessionID string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"sid":   sessionID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, exp, nil
}

func parseAccessToken(key []byte, raw string, now time.Time) (*Principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || sid == "" {
		return nil, domain.ErrTokenInvalid
	}
	return &Principal{UserID: sub, SessionID: sid, Email: email}, nil
}
