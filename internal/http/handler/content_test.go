package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/http/handler"
	"github.com/gin-gonic/gin"
)

// ---- fakes ----

type fakeProjects struct {
	items   map[string]*domain.Project
	prepare func(*domain.Project) error

	lastFeatured bool
}

func (f *fakeProjects) Kind() domain.EntityKind { return domain.KindProject }

func (f *fakeProjects) ListPublished(_ context.Context, featuredOnly bool) ([]*domain.Project, error) {
	f.lastFeatured = featuredOnly
	var out []*domain.Project
	for _, p := range f.items {
		if p.IsPublished && (!featuredOnly || p.IsFeatured) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) GetPublished(ctx context.Context, id string) (*domain.Project, error) {
	p, err := f.Get(ctx, id)
	if err != nil || !p.IsPublished {
		return nil, domain.ErrContentNotFound
	}
	return p, nil
}

func (f *fakeProjects) ListAll(context.Context) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjects) Get(_ context.Context, id string) (*domain.Project, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	return p, nil
}

func (f *fakeProjects) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	if f.prepare != nil {
		if err := f.prepare(p); err != nil {
			return nil, err
		}
	}
	p.ID = "new"
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Update(_ context.Context, id string, p *domain.Project) (*domain.Project, error) {
	if _, ok := f.items[id]; !ok {
		return nil, domain.ErrContentNotFound
	}
	p.ID = id
	f.items[id] = p
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrContentNotFound
	}
	delete(f.items, id)
	return nil
}

func newContentEngine(f *fakeProjects) *gin.Engine {
	h := handler.NewContentHandler[domain.Project](f, discardLogger())
	r := gin.New()
	h.RegisterPublic(r.Group("/api"))
	h.RegisterAdmin(r.Group("/admin"))
	return r
}

func seedProjects() *fakeProjects {
	return &fakeProjects{items: map[string]*domain.Project{
		"p1": {ID: "p1", Title: "Rover", IsPublished: true, IsFeatured: true},
		"p2": {ID: "p2", Title: "Draft"},
	}}
}

// ---- public ----

func TestContent_ListPublished_FeaturedQuery(t *testing.T) {
	f := seedProjects()
	w := doJSON(newContentEngine(f), http.MethodGet, "/api/projects?featured=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !f.lastFeatured {
		t.Error("featured=true was not passed through")
	}
}

func TestContent_GetPublished_DraftIs404(t *testing.T) {
	w := doJSON(newContentEngine(seedProjects()), http.MethodGet, "/api/projects/p2", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---- admin ----

func TestContent_Create_ValidationError(t *testing.T) {
	f := seedProjects()
	f.prepare = func(p *domain.Project) error {
		var v domain.ValidationError
		if p.Title == "" {
			v.Add("title", "Title is required")
		}
		return v.Err()
	}
	w := doJSON(newContentEngine(f), http.MethodPost, "/admin/projects", `{"short_description":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	fields, _ := decodeBody(t, w)["fields"].(map[string]any)
	if fields["title"] != "Title is required" {
		t.Errorf("fields = %v", fields)
	}
}

func TestContent_CreateUpdateDelete(t *testing.T) {
	f := seedProjects()
	r := newContentEngine(f)

	if w := doJSON(r, http.MethodPost, "/admin/projects", `{"title":"Arm","short_description":"robot arm"}`); w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/admin/projects/new", `{"title":"Arm v2"}`); w.Code != http.StatusOK {
		t.Fatalf("update: status = %d", w.Code)
	}
	if f.items["new"].Title != "Arm v2" {
		t.Errorf("title = %q", f.items["new"].Title)
	}
	if w := doJSON(r, http.MethodDelete, "/admin/projects/new", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, "/admin/projects/new", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", w.Code)
	}
}

func TestContent_AdminListIncludesDrafts(t *testing.T) {
	w := doJSON(newContentEngine(seedProjects()), http.MethodGet, "/admin/projects", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := len(decodeList(t, w)); got != 2 {
		t.Errorf("items = %d, want 2", got)
	}
}

func TestContent_UpdateUnknown_Returns404(t *testing.T) {
	w := doJSON(newContentEngine(seedProjects()), http.MethodPut, "/admin/projects/nope", `{"title":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
