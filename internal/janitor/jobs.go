package janitor

import (
	"context"
	"time"
)

type expiredInviteSweeper interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type stalePurger interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// InviteSweep deactivates invite codes that expired without being redeemed.
func InviteSweep(spec string, invites expiredInviteSweeper) Job {
	return Job{
		Name: "invite_sweep",
		Spec: spec,
		Run:  invites.DeactivateExpired,
	}
}

// SessionPurge deletes sessions that expired or were revoked more than
// retention ago.
func SessionPurge(spec string, sessions stalePurger, retention time.Duration) Job {
	return purge("session_purge", spec, sessions, retention)
}

// TokenPurge deletes one-time tokens that expired or were used more than
// retention ago.
func TokenPurge(spec string, tokens stalePurger, retention time.Duration) Job {
	return purge("token_purge", spec, tokens, retention)
}

func purge(name, spec string, repo stalePurger, retention time.Duration) Job {
	return Job{
		Name: name,
		Spec: spec,
		Run: func(ctx context.Context, now time.Time) (int64, error) {
			return repo.DeleteStale(ctx, now.Add(-retention))
		},
	}
}
