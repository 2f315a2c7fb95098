package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ErlanBelekov/portfolio/internal/domain"
)

// Invite is an invite code as listed by the admin API.
type Invite struct {
	domain.InviteCode
	Status domain.InviteStatus `json:"status"`
}

func (c *Client) ListInvites(ctx context.Context) ([]Invite, error) {
	var invites []Invite
	if err := c.authed(ctx, http.MethodGet, "/admin/invite-codes", nil, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// CreateInvite issues a code. days of 0 lets the server pick its default.
func (c *Client) CreateInvite(ctx context.Context, days int) (*Invite, error) {
	var body any
	if days != 0 {
		body = map[string]int{"expires_in_days": days}
	}
	var invite Invite
	if err := c.authed(ctx, http.MethodPost, "/admin/invite-codes", body, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (c *Client) RevokeInvite(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, "/admin/invite-codes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListMessages(ctx context.Context) ([]domain.ContactSubmission, error) {
	var msgs []domain.ContactSubmission
	if err := c.authed(ctx, http.MethodGet, "/admin/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
