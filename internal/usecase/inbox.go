package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/email"
	"github.com/ErlanBelekov/portfolio/internal/metrics"
	"github.com/ErlanBelekov/portfolio/internal/repository"
	"github.com/ErlanBelekov/portfolio/internal/validation"
)

const (
	maxContactName    = 100
	maxContactMessage = 1000
)

type ContactUsecase struct {
	repo   repository.ContactRepository
	logger *slog.Logger
}

func NewContactUsecase(repo repository.ContactRepository, logger *slog.Logger) *ContactUsecase {
	return &ContactUsecase{repo: repo, logger: logger.With("component", "contact_usecase")}
}

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// Submit validates and stores a contact form message. Nothing is stored
// when any field fails.
func (u *ContactUsecase) Submit(ctx context.Context, in ContactInput) (*domain.ContactSubmission, error) {
	var v domain.ValidationError
	name := validation.Text(&v, "name", in.Name, maxContactName, "Name is required", "Name too long")
	addr := validation.Email(&v, "email", in.Email)
	msg := validation.Text(&v, "message", in.Message, maxContactMessage, "Message is required", "Message too long")
	if err := v.Err(); err != nil {
		return nil, err
	}

	saved, err := u.repo.Create(ctx, &domain.ContactSubmission{Name: name, Email: addr, Message: msg})
	if err != nil {
		return nil, fmt.Errorf("save contact submission: %w", err)
	}
	u.logger.InfoContext(ctx, "contact message received", "message_id", saved.ID)
	return saved, nil
}

func (u *ContactUsecase) List(ctx context.Context) ([]*domain.ContactSubmission, error) {
	return u.repo.List(ctx)
}

func (u *ContactUsecase) SetRead(ctx context.Context, id string, read bool) error {
	return u.repo.SetRead(ctx, id, read)
}

func (u *ContactUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}

type NewsletterUsecase struct {
	repo    repository.SubscriberRepository
	email   email.Sender
	siteURL string
	owner   string
	logger  *slog.Logger
}

func NewNewsletterUsecase(repo repository.SubscriberRepository, sender email.Sender, siteURL, owner string, logger *slog.Logger) *NewsletterUsecase {
	return &NewsletterUsecase{
		repo:    repo,
		email:   sender,
		siteURL: siteURL,
		owner:   owner,
		logger:  logger.With("component", "newsletter_usecase"),
	}
}

// Subscribe records the address and then sends the welcome email. A failed
// email does not undo the subscription.
func (u *NewsletterUsecase) Subscribe(ctx context.Context, rawEmail string) (*domain.Subscriber, error) {
	var v domain.ValidationError
	addr := validation.Email(&v, "email", rawEmail)
	if err := v.Err(); err != nil {
		return nil, err
	}

	sub, err := u.repo.Subscribe(ctx, strings.ToLower(addr))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySubscribed) {
			return nil, err
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	if _, err := u.SendWelcome(ctx, sub.Email); err != nil {
		u.logger.WarnContext(ctx, "welcome email failed, subscription kept", "subscriber_id", sub.ID, "error", err)
	}
	return sub, nil
}

// SendWelcome renders and sends the welcome template, returning the
// provider's message ID.
func (u *NewsletterUsecase) SendWelcome(ctx context.Context, rawEmail string) (string, error) {
	var v domain.ValidationError
	addr := validation.Email(&v, "email", rawEmail)
	if err := v.Err(); err != nil {
		return "", err
	}

	body, err := email.RenderWelcome(email.WelcomeData{SiteURL: u.siteURL, Owner: u.owner})
	if err != nil {
		return "", err
	}
	id, err := u.email.Send(ctx, addr, email.WelcomeSubject, body)
	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues("welcome", "error").Inc()
		return "", fmt.Errorf("send welcome email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("welcome", "sent").Inc()
	return id, nil
}

func (u *NewsletterUsecase) List(ctx context.Context, search string) ([]*domain.Subscriber, error) {
	return u.repo.List(ctx, strings.TrimSpace(search))
}

func (u *NewsletterUsecase) SetActive(ctx context.Context, id string, active bool) error {
	return u.repo.SetActive(ctx, id, active)
}

func (u *NewsletterUsecase) Delete(ctx context.Context, id string) error {
	return u.repo.Delete(ctx, id)
}

// ExportCSV writes every subscriber matching search as CSV with the header
// Email, Subscribed At, Status.
func (u *NewsletterUsecase) ExportCSV(ctx context.Context, search string, w io.Writer) error {
	subs, err := u.List(ctx, search)
	if err != nil {
		return err
	}
	return WriteSubscribersCSV(w, subs)
}

func WriteSubscribersCSV(w io.Writer, subs []*domain.Subscriber) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Email", "Subscribed At", "Status"}); err != nil {
		return err
	}
	for _, s := range subs {
		status := "Inactive"
		if s.IsActive {
			status = "Active"
		}
		if err := cw.Write([]string{s.Email, s.SubscribedAt.Format(time.DateOnly), status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type SettingsUsecase struct {
	repo repository.SettingRepository
}

func NewSettingsUsecase(repo repository.SettingRepository) *SettingsUsecase {
	return &SettingsUsecase{repo: repo}
}

const maxSettingKey = 100

func (u *SettingsUsecase) List(ctx context.Context) ([]*domain.Setting, error) {
	return u.repo.List(ctx)
}

// Upsert writes all values in one transaction.
func (u *SettingsUsecase) Upsert(ctx context.Context, values map[string]string) error {
	var v domain.ValidationError
	clean := make(map[string]string, len(values))
	for k, val := range values {
		key := strings.TrimSpace(k)
		if key == "" || len(key) > maxSettingKey {
			v.Add("key", "Setting keys must be 1 to 100 characters")
			continue
		}
		clean[key] = val
	}
	if len(clean) == 0 {
		v.Add("settings", "No settings given")
	}
	if err := v.Err(); err != nil {
		return err
	}
	return u.repo.Upsert(ctx, clean)
}

func (u *SettingsUsecase) Delete(ctx context.Context, key string) error {
	return u.repo.Delete(ctx, key)
}

type StatsUsecase struct {
	repo repository.StatsRepository
}

func NewStatsUsecase(repo repository.StatsRepository) *StatsUsecase {
	return &StatsUsecase{repo: repo}
}

func (u *StatsUsecase) Counts(ctx context.Context) (*domain.Stats, error) {
	return u.repo.Counts(ctx)
}
