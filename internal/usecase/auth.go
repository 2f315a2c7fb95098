package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/email"
	"github.com/ErlanBelekov/portfolio/internal/invitecode"
	"github.com/ErlanBelekov/portfolio/internal/metrics"
	"github.com/ErlanBelekov/portfolio/internal/repository"
	"github.com/ErlanBelekov/portfolio/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeBearer = "bearer"

type AuthConfig struct {
	JWTKey      []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RecoveryTTL time.Duration
	BcryptCost  int
	// SiteURL is where recovery links land unless a redirect under it is given.
	SiteURL string
}

type AuthUsecase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   repository.TokenRepository
	roles    repository.RoleRepository
	invites  repository.InviteRepository
	email    email.Sender
	cfg      AuthConfig
	logger   *slog.Logger
	now      func() time.Time

	// dummyHash is compared against when the email is unknown so sign-in
	// takes the same time either way.
	dummyHash []byte
}

func NewAuthUsecase(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens repository.TokenRepository,
	roles repository.RoleRepository,
	invites repository.InviteRepository,
	sender email.Sender,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthUsecase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	return &AuthUsecase{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		roles:     roles,
		invites:   invites,
		email:     sender,
		cfg:       cfg,
		logger:    logger.With("component", "auth_usecase"),
		now:       time.Now,
		dummyHash: dummy,
	}
}

// WithClock replaces time.Now, for tests.
func (u *AuthUsecase) WithClock(now func() time.Time) *AuthUsecase {
	u.now = now
	return u
}

type SignUpInput struct {
	Email      string
	Password   string
	InviteCode string
}

// SignUp creates an admin identity gated by an invite code. Steps run in a
// fixed order: validate, check the code, create the identity, redeem the
// code. A failed redemption leaves the identity in place without a role.
func (u *AuthUsecase) SignUp(ctx context.Context, in SignUpInput) (*domain.Session, error) {
	var v domain.ValidationError
	emailAddr := validation.Email(&v, "email", in.Email)
	validation.Password(&v, "password", in.Password)
	code := invitecode.Normalize(in.InviteCode)
	switch {
	case code == "":
		v.Add("invite_code", validation.MsgInviteCodeRequired)
	case !invitecode.Valid(code):
		v.Add("invite_code", validation.MsgInviteCodeFormat)
	}
	if err := v.Err(); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	now := u.now()

	invite, err := u.invites.FindByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrInviteCodeNotFound) {
			u.logger.ErrorContext(ctx, "invite lookup failed", "error", err)
		}
		metrics.SignupsTotal.WithLabelValues("invite_invalid").Inc()
		return nil, domain.ErrInviteCodeInvalid
	}
	if !invite.Redeemable(now) {
		metrics.SignupsTotal.WithLabelValues("invite_invalid").Inc()
		return nil, domain.ErrInviteCodeInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, emailAddr, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.SignupsTotal.WithLabelValues("email_taken").Inc()
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Expiry is re-checked against the clock at redemption.
	ok, err := u.invites.Redeem(ctx, code, user.ID, u.now())
	if err != nil {
		u.logger.ErrorContext(ctx, "invite redemption failed", "user_id", user.ID, "error", err)
		metrics.InviteRedemptionsTotal.WithLabelValues("error").Inc()
		metrics.SignupsTotal.WithLabelValues("activation_failed").Inc()
		return nil, domain.ErrAdminActivationFailed
	}
	if !ok {
		metrics.InviteRedemptionsTotal.WithLabelValues("lost").Inc()
		metrics.SignupsTotal.WithLabelValues("invite_consumed").Inc()
		return nil, domain.ErrInviteCodeNoLongerValid
	}
	metrics.InviteRedemptionsTotal.WithLabelValues("redeemed").Inc()
	metrics.SignupsTotal.WithLabelValues("success").Inc()

	u.logger.InfoContext(ctx, "admin signed up", "user_id", user.ID)
	return u.issueSession(ctx, user, false)
}

// SignIn checks email and password. Unknown email and wrong password are
// indistinguishable to the caller.
func (u *AuthUsecase) SignIn(ctx context.Context, emailAddr, password string) (*domain.Session, error) {
	user, err := u.users.FindByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(u.dummyHash, []byte(password))
			metrics.SignInsTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.SignInsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.SignInsTotal.WithLabelValues("success").Inc()
	return u.issueSession(ctx, user, false)
}

// Refresh rotates the refresh token and returns a new access token for the
// same session. A refresh token works once.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrTokenInvalid
	}
	raw, newHash, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := u.now()
	rec, err := u.sessions.Rotate(ctx, hashToken(refreshToken), newHash, now.Add(u.cfg.RefreshTTL))
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	user, err := u.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u.sessionFor(user, rec.ID, raw, now, false)
}

func (u *AuthUsecase) SignOut(ctx context.Context, sessionID string) error {
	if err := u.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RequestRecovery emails a single-use reset link. Unknown addresses are not
// reported so the endpoint cannot be used to probe for accounts.
func (u *AuthUsecase) RequestRecovery(ctx context.Context, emailAddr, redirectTo string) error {
	user, err := u.users.FindByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw, hash, err := newOpaqueToken()
	if err != nil {
		return err
	}
	if err := u.tokens.Create(ctx, user.ID, domain.TokenPurposeRecovery, hash, u.now().Add(u.cfg.RecoveryTTL)); err != nil {
		return fmt.Errorf("store recovery token: %w", err)
	}

	body, err := email.RenderRecovery(email.RecoveryData{
		Email: user.Email,
		Link:  u.recoveryLink(redirectTo, raw),
		TTL:   u.cfg.RecoveryTTL.String(),
	})
	if err != nil {
		return err
	}
	if _, err := u.email.Send(ctx, user.Email, email.RecoverySubject, body); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("recovery", "error").Inc()
		return fmt.Errorf("send recovery email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("recovery", "sent").Inc()
	return nil
}

// recoveryLink puts the token in the fragment so it never reaches server logs.
// Redirects outside SiteURL fall back to SiteURL/admin.
func (u *AuthUsecase) recoveryLink(redirectTo, raw string) string {
	base := strings.TrimRight(u.cfg.SiteURL, "/") + "/admin"
	if redirectTo != "" {
		if r, err := url.Parse(redirectTo); err == nil && strings.HasPrefix(redirectTo, strings.TrimRight(u.cfg.SiteURL, "/")+"/") {
			r.Fragment = ""
			base = r.String()
		}
	}
	return base + "#type=recovery&token=" + raw
}

// VerifyRecovery claims a reset token and opens a session flagged as a
// recovery session.
func (u *AuthUsecase) VerifyRecovery(ctx context.Context, rawToken string) (*domain.Session, error) {
	if rawToken == "" {
		return nil, domain.ErrTokenInvalid
	}
	tok, err := u.tokens.Claim(ctx, hashToken(rawToken), domain.TokenPurposeRecovery)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("claim token: %w", err)
	}

	user, err := u.users.FindByID(ctx, tok.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u.issueSession(ctx, user, true)
}

// UpdatePassword sets a new password. When currentPassword is given it must
// match. Every other session of the user is revoked.
func (u *AuthUsecase) UpdatePassword(ctx context.Context, p *Principal, newPassword string, currentPassword *string) error {
	var v domain.ValidationError
	validation.Password(&v, "password", newPassword)
	if err := v.Err(); err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if currentPassword != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*currentPassword)); err != nil {
			return domain.ErrCurrentPasswordWrong
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	n, err := u.sessions.RevokeAllForUser(ctx, user.ID, p.SessionID)
	if err != nil {
		return fmt.Errorf("revoke other sessions: %w", err)
	}
	u.logger.InfoContext(ctx, "password updated", "user_id", user.ID, "sessions_revoked", n)
	return nil
}

// Authenticate verifies an access token and that its session is still live.
func (u *AuthUsecase) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	now := u.now()
	p, err := parseAccessToken(u.cfg.JWTKey, accessToken, now)
	if err != nil {
		return nil, err
	}

	rec, err := u.sessions.FindByID(ctx, p.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if rec.UserID != p.UserID {
		return nil, domain.ErrTokenInvalid
	}
	if !rec.Active(now) {
		return nil, domain.ErrSessionRevoked
	}
	return p, nil
}

func (u *AuthUsecase) CurrentUser(ctx context.Context, userID string) (domain.Identity, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	return user.Identity(), nil
}

// HasRole reports whether userID holds role. Errors are returned as-is; the
// caller decides how to fail.
func (u *AuthUsecase) HasRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	ok, err := u.roles.HasRole(ctx, userID, role)
	if err != nil {
		return false, fmt.Errorf("has role: %w", err)
	}
	return ok, nil
}

func (u *AuthUsecase) issueSession(ctx context.Context, user *domain.User, recovery bool) (*domain.Session, error) {
	raw, hash, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}
	now := u.now()
	rec, err := u.sessions.Create(ctx, user.ID, hash, now.Add(u.cfg.RefreshTTL))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return u.sessionFor(user, rec.ID, raw, now, recovery)
}

func (u *AuthUsecase) sessionFor(user *domain.User, sessionID, refreshToken string, now time.Time, recovery bool) (*domain.Session, error) {
	access, exp, err := signAccessToken(u.cfg.JWTKey, user, sessionID, now, u.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		ID:           sessionID,
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresAt:    exp,
		Recovery:     recovery,
		User:         user.Identity(),
	}, nil
}
