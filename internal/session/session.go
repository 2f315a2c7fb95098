// Package session tracks who is signed in and whether they are an admin.
//
// A Resolver listens to session changes from a Backend. Identity updates
// are applied inside the notification; the admin role lookup is handed to
// the resolver's own goroutine because backends deliver notifications while
// holding their session lock and cannot be called back from inside one.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/invitecode"
	"github.com/ErlanBelekov/portfolio/internal/validation"
)

var ErrClosed = errors.New("session: resolver closed")

type EventType string

const (
	EventSignedIn         EventType = "SIGNED_IN"
	EventSignedOut        EventType = "SIGNED_OUT"
	EventTokenRefreshed   EventType = "TOKEN_REFRESHED"
	EventUserUpdated      EventType = "USER_UPDATED"
	EventPasswordRecovery EventType = "PASSWORD_RECOVERY"
)

// Event is a session change. Session is nil after sign-out.
type Event struct {
	Type    EventType
	Session *domain.Session
}

// Backend is the auth service as seen by the resolver.
type Backend interface {
	// OnAuthStateChange registers fn. fn may run with the backend's session
	// lock held, so it must not call back into the backend.
	OnAuthStateChange(fn func(Event)) (unsubscribe func())
	CurrentSession(ctx context.Context) (*domain.Session, error)
	HasRole(ctx context.Context, userID string, role domain.Role) (bool, error)

	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password, inviteCode string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, newPassword string) error
}

type State int

const (
	StateUnauthenticated State = iota
	StateUnresolved
	StateAdmin
	StateNonAdmin
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateUnresolved:
		return "authenticated-unresolved"
	case StateAdmin:
		return "authenticated-admin"
	case StateNonAdmin:
		return "authenticated-non-admin"
	}
	panic(fmt.Sprintf("session: invalid state %d", int(s)))
}

// Snapshot is a consistent view of the resolver's observed fields.
type Snapshot struct {
	Identity *domain.Identity
	IsAdmin  bool
	Loading  bool
	State    State
}

type lookup struct {
	gen    uint64
	userID string
}

type Resolver struct {
	backend Backend
	logger  *slog.Logger

	mu       sync.Mutex
	identity *domain.Identity
	isAdmin  bool
	loading  bool
	gen      uint64
	closed   bool
	changed  chan struct{}
	pending  *lookup

	wake        chan struct{}
	quit        chan struct{}
	done        chan struct{}
	cancel      context.CancelFunc
	unsubscribe func()

	startOnce sync.Once
	closeOnce sync.Once
}

func NewResolver(backend Backend, logger *slog.Logger) *Resolver {
	return &Resolver{
		backend: backend,
		logger:  logger.With("component", "session_resolver"),
		loading: true,
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start subscribes to session changes, then loads the current session.
// Subscribing first means a change between the two steps is not lost.
func (r *Resolver) Start(ctx context.Context) error {
	started := false
	r.startOnce.Do(func() {
		started = true
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		r.cancel = cancel
		r.unsubscribe = r.backend.OnAuthStateChange(r.handleEvent)
		go r.run(runCtx)
	})
	if !started {
		return errors.New("session: resolver already started")
	}

	gen := r.generation()
	sess, err := r.backend.CurrentSession(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "load current session", "error", err)
		sess = nil
	}
	// An event that arrived meanwhile is newer than what we just loaded.
	if r.generation() == gen {
		r.apply(sess)
	}
	return nil
}

// Close stops listening and waits for the lookup goroutine. Lookups that
// finish after Close are dropped.
func (r *Resolver) Close() {
	r.closeOnce.Do(func() {
		if r.unsubscribe != nil {
			r.unsubscribe()
		}
		r.mu.Lock()
		r.closed = true
		r.gen++
		r.pending = nil
		r.notifyLocked()
		r.mu.Unlock()

		if r.cancel == nil {
			return
		}
		r.cancel()
		close(r.quit)
		<-r.done
	})
}

func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Wait blocks until the role is resolved or ctx is done.
func (r *Resolver) Wait(ctx context.Context) (Snapshot, error) {
	for {
		r.mu.Lock()
		if !r.loading {
			s := r.snapshotLocked()
			r.mu.Unlock()
			return s, nil
		}
		if r.closed {
			s := r.snapshotLocked()
			r.mu.Unlock()
			return s, ErrClosed
		}
		ch := r.changed
		r.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return r.Snapshot(), ctx.Err()
		}
	}
}

func (r *Resolver) SignIn(ctx context.Context, email, password string) error {
	var v domain.ValidationError
	email = validation.Email(&v, "email", email)
	if password == "" {
		v.Add("password", "Password is required")
	}
	if err := v.Err(); err != nil {
		return err
	}
	_, err := r.backend.SignIn(ctx, email, password)
	return err
}

// SignUp checks the form locally; nothing is sent when a field is invalid.
func (r *Resolver) SignUp(ctx context.Context, email, password, inviteCode string) error {
	var v domain.ValidationError
	email = validation.Email(&v, "email", email)
	validation.Password(&v, "password", password)
	code := invitecode.Normalize(inviteCode)
	switch {
	case code == "":
		v.Add("invite_code", validation.MsgInviteCodeRequired)
	case !invitecode.Valid(code):
		v.Add("invite_code", validation.MsgInviteCodeFormat)
	}
	if err := v.Err(); err != nil {
		return err
	}
	_, err := r.backend.SignUp(ctx, email, password, code)
	return err
}

func (r *Resolver) SignOut(ctx context.Context) error {
	return r.backend.SignOut(ctx)
}

func (r *Resolver) ResetPassword(ctx context.Context, email, redirectTo string) error {
	var v domain.ValidationError
	email = validation.Email(&v, "email", email)
	if err := v.Err(); err != nil {
		return err
	}
	return r.backend.ResetPassword(ctx, email, strings.TrimSpace(redirectTo))
}

func (r *Resolver) UpdatePassword(ctx context.Context, newPassword string) error {
	var v domain.ValidationError
	validation.Password(&v, "password", newPassword)
	if err := v.Err(); err != nil {
		return err
	}
	return r.backend.UpdatePassword(ctx, newPassword)
}

func (r *Resolver) handleEvent(ev Event) {
	r.logger.Debug("auth state change", "event", ev.Type)
	r.apply(ev.Session)
}

// apply records the identity and queues a role lookup. It never blocks.
func (r *Resolver) apply(sess *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.gen++

	if sess == nil {
		r.identity = nil
		r.isAdmin = false
		r.loading = false
		r.pending = nil
		r.notifyLocked()
		return
	}

	id := sess.User
	if r.identity == nil || r.identity.ID != id.ID {
		r.isAdmin = false
		r.loading = true
	}
	r.identity = &id
	r.pending = &lookup{gen: r.gen, userID: id.ID}
	r.notifyLocked()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Resolver) run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-r.quit:
			return
		case <-r.wake:
		}

		r.mu.Lock()
		task := r.pending
		r.pending = nil
		r.mu.Unlock()
		if task == nil {
			continue
		}

		ok, err := r.backend.HasRole(ctx, task.userID, domain.RoleAdmin)
		if err != nil {
			r.logger.WarnContext(ctx, "role lookup failed, treating as non-admin", "user_id", task.userID, "error", err)
		}

		r.mu.Lock()
		if r.closed || task.gen != r.gen {
			r.mu.Unlock()
			r.logger.Debug("discarding stale role lookup", "user_id", task.userID)
			continue
		}
		r.isAdmin = err == nil && ok
		r.loading = false
		r.notifyLocked()
		r.mu.Unlock()
	}
}

func (r *Resolver) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

func (r *Resolver) notifyLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}

func (r *Resolver) snapshotLocked() Snapshot {
	s := Snapshot{IsAdmin: r.isAdmin, Loading: r.loading}
	if r.identity != nil {
		id := *r.identity
		s.Identity = &id
	}
	switch {
	case s.Identity == nil:
		s.State = StateUnauthenticated
	case s.Loading:
		s.State = StateUnresolved
	case s.IsAdmin:
		s.State = StateAdmin
	default:
		s.State = StateNonAdmin
	}
	return s
}
