package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/http/handler"
	"github.com/ErlanBelekov/portfolio/internal/storage"
	"github.com/gin-gonic/gin"
)

// ---- fakes ----

type fakeMedia struct {
	uploadResume func(ctx context.Context, r io.Reader) (*storage.Object, error)
	current      func(ctx context.Context) (*storage.Object, error)
}

func (f *fakeMedia) UploadResume(ctx context.Context, r io.Reader) (*storage.Object, error) {
	return f.uploadResume(ctx, r)
}
func (f *fakeMedia) CurrentResume(ctx context.Context) (*storage.Object, error) { return f.current(ctx) }
func (f *fakeMedia) DeleteResume(context.Context) error                         { return nil }
func (f *fakeMedia) UploadImage(context.Context, io.Reader) (*storage.Object, error) {
	return nil, domain.ErrNotImage
}

type fakeThumbnails struct {
	generate func(ctx context.Context, projectID, title string) (string, error)
}

func (f *fakeThumbnails) Generate(ctx context.Context, projectID, title string) (string, error) {
	return f.generate(ctx, projectID, title)
}

type fakeWelcome struct {
	send func(ctx context.Context, email string) (string, error)
}

func (f *fakeWelcome) SendWelcome(ctx context.Context, email string) (string, error) {
	return f.send(ctx, email)
}

func multipartFile(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func newMediaEngine(m *fakeMedia, th *fakeThumbnails) *gin.Engine {
	h := handler.NewMediaHandler(m, th, discardLogger())
	r := gin.New()
	r.GET("/api/resume", h.Resume)
	r.POST("/admin/resume", h.UploadResume)
	r.POST("/admin/images", h.UploadImage)
	r.POST("/admin/projects/:id/thumbnail", h.GenerateThumbnail)
	return r
}

// ---- resume ----

func TestUploadResume(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"stored", nil, http.StatusCreated},
		{"not a pdf", domain.ErrNotPDF, http.StatusBadRequest},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"disk failure", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []byte
			m := &fakeMedia{uploadResume: func(_ context.Context, r io.Reader) (*storage.Object, error) {
				got, _ = io.ReadAll(r)
				if tt.err != nil {
					return nil, tt.err
				}
				return &storage.Object{Name: "resume-1.pdf", URL: "http://x/resume-1.pdf"}, nil
			}}

			body, ct := multipartFile(t, "file", []byte("%PDF-1.4 test"))
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/resume", body)
			req.Header.Set("Content-Type", ct)
			newMediaEngine(m, nil).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if string(got) != "%PDF-1.4 test" {
				t.Errorf("usecase read %q", got)
			}
		})
	}
}

func TestUploadResume_MissingFile_Returns400(t *testing.T) {
	body, ct := multipartFile(t, "other", []byte("x"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/resume", body)
	req.Header.Set("Content-Type", ct)
	newMediaEngine(&fakeMedia{}, nil).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadImage_WrongType_Returns400(t *testing.T) {
	body, ct := multipartFile(t, "file", []byte("plain text"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/images", body)
	req.Header.Set("Content-Type", ct)
	newMediaEngine(&fakeMedia{}, nil).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResume_NoneUploaded_Returns404(t *testing.T) {
	m := &fakeMedia{current: func(context.Context) (*storage.Object, error) { return nil, domain.ErrResumeNotFound }}
	w := doJSON(newMediaEngine(m, nil), http.MethodGet, "/api/resume", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---- thumbnails ----

func TestAdminThumbnail_UnknownProject_Returns404(t *testing.T) {
	th := &fakeThumbnails{generate: func(context.Context, string, string) (string, error) {
		return "", domain.ErrContentNotFound
	}}
	w := doJSON(newMediaEngine(&fakeMedia{}, th), http.MethodPost, "/admin/projects/p9/thumbnail", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func newFunctionsEngine(th *fakeThumbnails, wel *fakeWelcome) *gin.Engine {
	h := handler.NewFunctionsHandler(th, wel, discardLogger())
	r := gin.New()
	r.POST("/functions/v1/generate-thumbnail", h.GenerateThumbnail)
	r.POST("/functions/v1/send-welcome-email", h.SendWelcomeEmail)
	return r
}

func TestGenerateThumbnail(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"rate limited", domain.ErrAIRateLimited, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."},
		{"credits", domain.ErrAICreditsExhausted, http.StatusPaymentRequired, "AI credits exhausted. Please add credits."},
		{"other", errors.New("upload failed"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := &fakeThumbnails{generate: func(context.Context, string, string) (string, error) { return "", tt.err }}
			w := doJSON(newFunctionsEngine(th, nil), http.MethodPost, "/functions/v1/generate-thumbnail",
				`{"projectId":"p1","projectTitle":"Rover"}`)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if decodeBody(t, w)["error"] != tt.msg {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestGenerateThumbnail_Success(t *testing.T) {
	var gotID, gotTitle string
	th := &fakeThumbnails{generate: func(_ context.Context, id, title string) (string, error) {
		gotID, gotTitle = id, title
		return "http://x/thumbnail-p1-1.png", nil
	}}
	w := doJSON(newFunctionsEngine(th, nil), http.MethodPost, "/functions/v1/generate-thumbnail",
		`{"projectId":"p1","projectTitle":"Rover"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotID != "p1" || gotTitle != "Rover" {
		t.Errorf("Generate(%q, %q)", gotID, gotTitle)
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["thumbnailUrl"] != "http://x/thumbnail-p1-1.png" {
		t.Errorf("body = %v", body)
	}
}

func TestSendWelcomeEmail(t *testing.T) {
	wel := &fakeWelcome{send: func(_ context.Context, email string) (string, error) {
		if email == "down@b.co" {
			return "", errors.New("provider down")
		}
		return "msg-1", nil
	}}
	r := newFunctionsEngine(nil, wel)

	w := doJSON(r, http.MethodPost, "/functions/v1/send-welcome-email", `{"email":"a@b.co"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["success"] != true || body["id"] != "msg-1" {
		t.Errorf("body = %v", body)
	}

	w = doJSON(r, http.MethodPost, "/functions/v1/send-welcome-email", `{"email":"down@b.co"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := decodeBody(t, w); body["success"] != false {
		t.Errorf("body = %v", body)
	}
}
