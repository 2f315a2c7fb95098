package janitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- fakes ----

type fakeInvites struct {
	calledWith time.Time
	rows       int64
	err        error
}

func (f *fakeInvites) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	f.calledWith = now
	return f.rows, f.err
}

type fakePurger struct {
	before time.Time
	rows   int64
	err    error
}

func (f *fakePurger) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.rows, f.err
}

// ---- tests ----

func TestRunAll_PassesCutoffs(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	invites := &fakeInvites{rows: 3}
	sessions := &fakePurger{rows: 10}
	tokens := &fakePurger{}

	j, err := New(discardLogger(),
		InviteSweep("@hourly", invites),
		SessionPurge("@every 6h", sessions, 24*time.Hour),
		TokenPurge("@every 6h", tokens, 24*time.Hour),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j.now = func() time.Time { return now }

	if err := j.RunAll(context.Background()); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if !invites.calledWith.Equal(now) {
		t.Errorf("invite sweep now = %v, want %v", invites.calledWith, now)
	}
	wantCutoff := now.Add(-24 * time.Hour)
	if !sessions.before.Equal(wantCutoff) {
		t.Errorf("session cutoff = %v, want %v", sessions.before, wantCutoff)
	}
	if !tokens.before.Equal(wantCutoff) {
		t.Errorf("token cutoff = %v, want %v", tokens.before, wantCutoff)
	}
}

func TestRunAll_ContinuesAfterFailure(t *testing.T) {
	invites := &fakeInvites{err: errors.New("db down")}
	sessions := &fakePurger{}

	j, err := New(discardLogger(),
		InviteSweep("@hourly", invites),
		SessionPurge("@hourly", sessions, time.Hour),
	)
	if err != nil {
		t.Fatal(err)
	}

	err = j.RunAll(context.Background())
	if err == nil || !errors.Is(err, invites.err) {
		t.Errorf("err = %v, want wrapped db error", err)
	}
	if sessions.before.IsZero() {
		t.Error("session purge should still run")
	}
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New(discardLogger(), InviteSweep("every tuesday", &fakeInvites{}))
	if err == nil {
		t.Fatal("want error for invalid cron spec")
	}
}

func TestStart_ReturnsOnCancel(t *testing.T) {
	j, err := New(discardLogger(), InviteSweep("@hourly", &fakeInvites{}))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
