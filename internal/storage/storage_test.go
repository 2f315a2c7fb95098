package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ErlanBelekov/portfolio/internal/storage"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
)

func newStore(t *testing.T) (*storage.Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := storage.NewStore(root, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, root
}

func TestStore_PutListRemove(t *testing.T) {
	ctx := context.Background()
	s, root := newStore(t)

	obj, err := s.Put(ctx, storage.BucketResume, "resume-1.pdf", pdfBytes)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if obj.URL != "http://localhost:8080/storage/v1/object/public/resume/resume-1.pdf" {
		t.Errorf("unexpected URL %q", obj.URL)
	}
	if obj.ContentType != "application/pdf" {
		t.Errorf("want application/pdf, got %q", obj.ContentType)
	}
	if _, err := os.Stat(filepath.Join(root, "resume", "resume-1.pdf")); err != nil {
		t.Fatalf("object not on disk: %v", err)
	}

	objs, err := s.List(ctx, storage.BucketResume)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 1 || objs[0].Name != "resume-1.pdf" {
		t.Fatalf("unexpected listing %+v", objs)
	}

	if err := s.Remove(ctx, storage.BucketResume, "resume-1.pdf"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(ctx, storage.BucketResume, "resume-1.pdf"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("want ErrObjectNotFound, got %v", err)
	}
}

func TestStore_RejectsPathNames(t *testing.T) {
	s, _ := newStore(t)
	for _, name := range []string{"../escape.pdf", "a/b.pdf", ".hidden", ""} {
		if _, err := s.Put(context.Background(), storage.BucketResume, name, pdfBytes); !errors.Is(err, storage.ErrInvalidName) {
			t.Errorf("Put(%q): want ErrInvalidName, got %v", name, err)
		}
	}
}

func TestIs(t *testing.T) {
	if !storage.Is(pdfBytes, "application/pdf") {
		t.Error("pdf should match application/pdf")
	}
	if storage.Is(pdfBytes, "image/*") {
		t.Error("pdf should not match image/*")
	}
	if !storage.Is(pngBytes, "image/*") {
		t.Error("png should match image/*")
	}
	if storage.Is([]byte("hello world"), "application/pdf", "image/*") {
		t.Error("text should match nothing")
	}
}

func TestParseBucket(t *testing.T) {
	b, err := storage.ParseBucket("project-images")
	if err != nil || b != storage.BucketProjectImages {
		t.Fatalf("ParseBucket = %v, %v", b, err)
	}
	if _, err := storage.ParseBucket("avatars"); !errors.Is(err, storage.ErrUnknownBucket) {
		t.Errorf("want ErrUnknownBucket, got %v", err)
	}
}
