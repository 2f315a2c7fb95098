package domain

import (
	"errors"
	"time"
)

var (
	ErrInviteCodeNotFound      = errors.New("invite code not found")
	ErrInviteCodeInvalid       = errors.New("invalid or expired invite code")
	ErrInviteCodeNoLongerValid = errors.New("invite code is no longer valid")
	ErrInviteCodeConflict      = errors.New("invite code already exists")
	ErrInvalidInviteExpiry     = errors.New("expiry must be between 1 and 365 days")
	ErrAdminActivationFailed   = errors.New("failed to activate admin privileges")
)

type InviteStatus string

const (
	InviteStatusActive   InviteStatus = "active"
	InviteStatusUsed     InviteStatus = "used"
	InviteStatusExpired  InviteStatus = "expired"
	InviteStatusInactive InviteStatus = "inactive"
)

type InviteCode struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy *string    `json:"created_by"` // nil for operator-seeded codes
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `json:"is_active"`
	UsedBy    *string    `json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
}

// Redeemable reports whether the code may still be consumed at now.
func (c *InviteCode) Redeemable(now time.Time) bool {
	if !c.IsActive || c.UsedBy != nil {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.After(now)
}

// Status is the display state. Used wins over expired, expired over inactive.
func (c *InviteCode) Status(now time.Time) InviteStatus {
	switch {
	case c.UsedBy != nil:
		return InviteStatusUsed
	case c.ExpiresAt != nil && !c.ExpiresAt.After(now):
		return InviteStatusExpired
	case c.IsActive:
		return InviteStatusActive
	default:
		return InviteStatusInactive
	}
}
