package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("user already registered")
	ErrInvalidCredentials   = errors.New("invalid login credentials")
	ErrTokenInvalid         = errors.New("token is invalid or expired")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionRevoked       = errors.New("session has been revoked")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidRole          = errors.New("invalid role")
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", ErrInvalidRole
	}
}

// User is the stored identity. PasswordHash never leaves the usecase layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the public view of a user.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Session is the credential pair handed to a signed-in caller.
type Session struct {
	ID           string    `json:"-"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	Recovery     bool      `json:"recovery,omitempty"`
	User         Identity  `json:"user"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionRecord is the server-side row backing a refresh token.
type SessionRecord struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
	RefreshedAt      *time.Time
}

func (s *SessionRecord) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type RoleAssignment struct {
	ID        string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

type TokenPurpose string

const TokenPurposeRecovery TokenPurpose = "recovery"

// OneTimeToken is a hashed single-use token, e.g. a password recovery link.
type OneTimeToken struct {
	ID        string
	UserID    string
	Purpose   TokenPurpose
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
