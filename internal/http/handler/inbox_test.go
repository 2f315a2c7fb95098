package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/http/handler"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
	"github.com/gin-gonic/gin"
)

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list %q: %v", w.Body.String(), err)
	}
	return out
}

// ---- fakes ----

type fakeContact struct {
	submit  func(ctx context.Context, in usecase.ContactInput) (*domain.ContactSubmission, error)
	setRead func(ctx context.Context, id string, read bool) error
}

func (f *fakeContact) Submit(ctx context.Context, in usecase.ContactInput) (*domain.ContactSubmission, error) {
	return f.submit(ctx, in)
}
func (f *fakeContact) List(context.Context) ([]*domain.ContactSubmission, error) { return nil, nil }
func (f *fakeContact) SetRead(ctx context.Context, id string, read bool) error {
	return f.setRead(ctx, id, read)
}
func (f *fakeContact) Delete(context.Context, string) error { return nil }

type fakeNewsletter struct {
	subscribe func(ctx context.Context, email string) (*domain.Subscriber, error)
	subs      []*domain.Subscriber
}

func (f *fakeNewsletter) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	return f.subscribe(ctx, email)
}
func (f *fakeNewsletter) List(context.Context, string) ([]*domain.Subscriber, error) {
	return f.subs, nil
}
func (f *fakeNewsletter) SetActive(context.Context, string, bool) error { return nil }
func (f *fakeNewsletter) Delete(context.Context, string) error          { return domain.ErrSubscriberNotFound }
func (f *fakeNewsletter) ExportCSV(_ context.Context, _ string, w io.Writer) error {
	return usecase.WriteSubscribersCSV(w, f.subs)
}

type fakeInvites struct {
	create func(ctx context.Context, creatorID string, days int) (*usecase.InviteView, error)
	revoke func(ctx context.Context, id string) error
}

func (f *fakeInvites) Create(ctx context.Context, creatorID string, days int) (*usecase.InviteView, error) {
	return f.create(ctx, creatorID, days)
}
func (f *fakeInvites) List(context.Context) ([]usecase.InviteView, error) { return nil, nil }
func (f *fakeInvites) Revoke(ctx context.Context, id string) error        { return f.revoke(ctx, id) }

// ---- contact ----

func TestContactSubmit_EmptyMessage_ReturnsFieldError(t *testing.T) {
	uc := &fakeContact{
		submit: func(context.Context, usecase.ContactInput) (*domain.ContactSubmission, error) {
			var v domain.ValidationError
			v.Add("message", "Message is required")
			return nil, v.Err()
		},
	}
	r := gin.New()
	r.POST("/api/contact", handler.NewContactHandler(uc, discardLogger()).Submit)

	w := doJSON(r, http.MethodPost, "/api/contact", `{"name":"Ann","email":"a@b.co","message":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	fields, _ := decodeBody(t, w)["fields"].(map[string]any)
	if fields["message"] != "Message is required" {
		t.Errorf("fields = %v", fields)
	}
}

func TestContactSetRead(t *testing.T) {
	uc := &fakeContact{
		setRead: func(_ context.Context, id string, _ bool) error {
			if id != "m1" {
				return domain.ErrMessageNotFound
			}
			return nil
		},
	}
	r := gin.New()
	r.PATCH("/admin/messages/:id", handler.NewContactHandler(uc, discardLogger()).SetRead)

	if w := doJSON(r, http.MethodPatch, "/admin/messages/m1", `{"is_read":true}`); w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w := doJSON(r, http.MethodPatch, "/admin/messages/m2", `{"is_read":true}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}
	if w := doJSON(r, http.MethodPatch, "/admin/messages/m1", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing is_read: status = %d, want 400", w.Code)
	}
}

// ---- newsletter ----

func TestNewsletterSubscribe(t *testing.T) {
	uc := &fakeNewsletter{
		subscribe: func(_ context.Context, email string) (*domain.Subscriber, error) {
			if email == "dup@b.co" {
				return nil, domain.ErrAlreadySubscribed
			}
			return &domain.Subscriber{ID: "s1", Email: email, IsActive: true}, nil
		},
	}
	r := gin.New()
	r.POST("/api/newsletter", handler.NewNewsletterHandler(uc, discardLogger()).Subscribe)

	if w := doJSON(r, http.MethodPost, "/api/newsletter", `{"email":"new@b.co"}`); w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	w := doJSON(r, http.MethodPost, "/api/newsletter", `{"email":"dup@b.co"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", w.Code)
	}
	if decodeBody(t, w)["error"] != "Already subscribed" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSubscribersExport_CSV(t *testing.T) {
	uc := &fakeNewsletter{subs: []*domain.Subscriber{
		{Email: "a@b.co", IsActive: true, SubscribedAt: time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)},
		{Email: "c@d.co", IsActive: false, SubscribedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
	}}
	r := gin.New()
	r.GET("/admin/subscribers/export", handler.NewNewsletterHandler(uc, discardLogger()).Export)

	w := doJSON(r, http.MethodGet, "/admin/subscribers/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	want := "Email,Subscribed At,Status\na@b.co,2025-04-02,Active\nc@d.co,2025-05-01,Inactive\n"
	if w.Body.String() != want {
		t.Errorf("body =\n%s\nwant\n%s", w.Body.String(), want)
	}
}

func TestSubscriberDelete_Unknown_Returns404(t *testing.T) {
	r := gin.New()
	r.DELETE("/admin/subscribers/:id", handler.NewNewsletterHandler(&fakeNewsletter{}, discardLogger()).Delete)
	if w := doJSON(r, http.MethodDelete, "/admin/subscribers/x", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---- invite codes ----

func newInviteEngine(f *fakeInvites) *gin.Engine {
	h := handler.NewInviteHandler(f, discardLogger())
	r := gin.New()
	setUser := func(c *gin.Context) { c.Set("userID", "admin-1") }
	r.POST("/admin/invite-codes", setUser, h.Create)
	r.DELETE("/admin/invite-codes/:id", h.Revoke)
	return r
}

func TestInviteCreate(t *testing.T) {
	var gotCreator string
	var gotDays int
	f := &fakeInvites{
		create: func(_ context.Context, creatorID string, days int) (*usecase.InviteView, error) {
			gotCreator, gotDays = creatorID, days
			if days > 365 {
				return nil, domain.ErrInvalidInviteExpiry
			}
			return &usecase.InviteView{
				InviteCode: &domain.InviteCode{ID: "i1", Code: "ABCD-1234-WXYZ", IsActive: true},
				Status:     domain.InviteStatusActive,
			}, nil
		},
	}
	r := newInviteEngine(f)

	w := doJSON(r, http.MethodPost, "/admin/invite-codes", `{"expires_in_days":7}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	if gotCreator != "admin-1" || gotDays != 7 {
		t.Errorf("Create(%q, %d), want (admin-1, 7)", gotCreator, gotDays)
	}
	body := decodeBody(t, w)
	if body["code"] != "ABCD-1234-WXYZ" || body["status"] != "active" {
		t.Errorf("body = %v", body)
	}

	if w := doJSON(r, http.MethodPost, "/admin/invite-codes", `{"expires_in_days":400}`); w.Code != http.StatusBadRequest {
		t.Errorf("out of range: status = %d, want 400", w.Code)
	}
}

func TestInviteCreate_EmptyBodyUsesDefault(t *testing.T) {
	gotDays := -1
	f := &fakeInvites{
		create: func(_ context.Context, _ string, days int) (*usecase.InviteView, error) {
			gotDays = days
			return &usecase.InviteView{InviteCode: &domain.InviteCode{ID: "i1"}}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/invite-codes", nil)
	newInviteEngine(f).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if gotDays != 0 {
		t.Errorf("days = %d, want 0 (usecase default)", gotDays)
	}
}

func TestInviteRevoke(t *testing.T) {
	f := &fakeInvites{
		revoke: func(_ context.Context, id string) error {
			switch id {
			case "i1":
				return nil
			case "boom":
				return errors.New("db")
			}
			return domain.ErrInviteCodeNotFound
		},
	}
	r := newInviteEngine(f)

	tests := map[string]int{"i1": http.StatusNoContent, "nope": http.StatusNotFound, "boom": http.StatusInternalServerError}
	for id, want := range tests {
		if w := doJSON(r, http.MethodDelete, "/admin/invite-codes/"+id, ""); w.Code != want {
			t.Errorf("revoke %s: status = %d, want %d", id, w.Code, want)
		}
	}
}
