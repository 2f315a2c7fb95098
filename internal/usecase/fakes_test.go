package usecase_test

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
)

// ---- fakes ----

type fakeUserRepo struct {
	create         func(ctx context.Context, email, passwordHash string) (*domain.User, error)
	findByID       func(ctx context.Context, id string) (*domain.User, error)
	findByEmail    func(ctx context.Context, email string) (*domain.User, error)
	updatePassword func(ctx context.Context, id, passwordHash string) error
}

func (r *fakeUserRepo) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	return r.create(ctx, email, passwordHash)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updatePassword(ctx, id, passwordHash)
}

type fakeSessionRepo struct {
	create           func(ctx context.Context, userID, hash string, expiresAt time.Time) (*domain.SessionRecord, error)
	findByID         func(ctx context.Context, id string) (*domain.SessionRecord, error)
	rotate           func(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (*domain.SessionRecord, error)
	revoke           func(ctx context.Context, id string) error
	revokeAllForUser func(ctx context.Context, userID, exceptID string) (int64, error)
	deleteStale      func(ctx context.Context, before time.Time) (int64, error)
}

func (r *fakeSessionRepo) Create(ctx context.Context, userID, hash string, expiresAt time.Time) (*domain.SessionRecord, error) {
	return r.create(ctx, userID, hash, expiresAt)
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id string) (*domain.SessionRecord, error) {
	return r.findByID(ctx, id)
}

func (r *fakeSessionRepo) Rotate(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (*domain.SessionRecord, error) {
	return r.rotate(ctx, oldHash, newHash, expiresAt)
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, id string) error {
	return r.revoke(ctx, id)
}

func (r *fakeSessionRepo) RevokeAllForUser(ctx context.Context, userID, exceptID string) (int64, error) {
	return r.revokeAllForUser(ctx, userID, exceptID)
}

func (r *fakeSessionRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	return r.deleteStale(ctx, before)
}

type fakeTokenRepo struct {
	create      func(ctx context.Context, userID string, purpose domain.TokenPurpose, hash string, expiresAt time.Time) error
	claim       func(ctx context.Context, hash string, purpose domain.TokenPurpose) (*domain.OneTimeToken, error)
	deleteStale func(ctx context.Context, before time.Time) (int64, error)
}

func (r *fakeTokenRepo) Create(ctx context.Context, userID string, purpose domain.TokenPurpose, hash string, expiresAt time.Time) error {
	return r.create(ctx, userID, purpose, hash, expiresAt)
}

func (r *fakeTokenRepo) Claim(ctx context.Context, hash string, purpose domain.TokenPurpose) (*domain.OneTimeToken, error) {
	return r.claim(ctx, hash, purpose)
}

func (r *fakeTokenRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	return r.deleteStale(ctx, before)
}

type fakeRoleRepo struct {
	hasRole     func(ctx context.Context, userID string, role domain.Role) (bool, error)
	listForUser func(ctx context.Context, userID string) ([]domain.Role, error)
}

func (r *fakeRoleRepo) HasRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	return r.hasRole(ctx, userID, role)
}

func (r *fakeRoleRepo) ListForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	return r.listForUser(ctx, userID)
}

type fakeInviteRepo struct {
	create            func(ctx context.Context, code *domain.InviteCode) (*domain.InviteCode, error)
	findByCode        func(ctx context.Context, code string) (*domain.InviteCode, error)
	list              func(ctx context.Context) ([]*domain.InviteCode, error)
	delete            func(ctx context.Context, id string) error
	redeem            func(ctx context.Context, code, userID string, now time.Time) (bool, error)
	deactivateExpired func(ctx context.Context, now time.Time) (int64, error)
}

func (r *fakeInviteRepo) Create(ctx context.Context, code *domain.InviteCode) (*domain.InviteCode, error) {
	return r.create(ctx, code)
}

func (r *fakeInviteRepo) FindByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	return r.findByCode(ctx, code)
}

func (r *fakeInviteRepo) List(ctx context.Context) ([]*domain.InviteCode, error) {
	return r.list(ctx)
}

func (r *fakeInviteRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

func (r *fakeInviteRepo) Redeem(ctx context.Context, code, userID string, now time.Time) (bool, error) {
	return r.redeem(ctx, code, userID, now)
}

func (r *fakeInviteRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.deactivateExpired(ctx, now)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) (string, error)
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) (string, error) {
	return s.send(ctx, to, subject, body)
}

func sha256Sum(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}
