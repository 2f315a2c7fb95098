// Package storage keeps public files in named buckets on the local
// filesystem and hands out their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidName    = errors.New("invalid object name")
	ErrUnknownBucket  = errors.New("unknown bucket")
)

// PublicPrefix is where buckets are mounted on the HTTP server.
const PublicPrefix = "/storage/v1/object/public"

type Bucket int

const (
	BucketResume Bucket = iota + 1
	BucketProjectImages
)

var Buckets = []Bucket{BucketResume, BucketProjectImages}

func (b Bucket) Name() string {
	switch b {
	case BucketResume:
		return "resume"
	case BucketProjectImages:
		return "project-images"
	}
	panic(fmt.Sprintf("storage: invalid bucket %d", int(b)))
}

func (b Bucket) String() string { return b.Name() }

func ParseBucket(s string) (Bucket, error) {
	for _, b := range Buckets {
		if b.Name() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBucket, s)
}

type Object struct {
	Bucket      Bucket    `json:"-"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

type Store struct {
	root       string
	publicBase string
}

// NewStore creates the bucket directories under root.
func NewStore(root, publicBaseURL string) (*Store, error) {
	for _, b := range Buckets {
		if err := os.MkdirAll(filepath.Join(root, b.Name()), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", b, err)
		}
	}
	return &Store{root: root, publicBase: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Dir is the directory backing bucket b.
func (s *Store) Dir(b Bucket) string {
	return filepath.Join(s.root, b.Name())
}

func (s *Store) PublicURL(b Bucket, name string) string {
	return s.publicBase + PublicPrefix + "/" + b.Name() + "/" + url.PathEscape(name)
}

// Put writes data under name, replacing any existing object. The write goes
// through a temp file so readers never observe a partial object.
func (s *Store) Put(ctx context.Context, b Bucket, name string, data []byte) (*Object, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.Dir(b), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close object: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, fmt.Errorf("chmod object: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir(b), name)); err != nil {
		return nil, fmt.Errorf("publish object: %w", err)
	}

	return &Object{
		Bucket:      b,
		Name:        name,
		Size:        int64(len(data)),
		ContentType: DetectContentType(data),
		URL:         s.PublicURL(b, name),
		UpdatedAt:   time.Now(),
	}, nil
}

// List returns the bucket's objects, newest first.
func (s *Store) List(ctx context.Context, b Bucket) ([]*Object, error) {
	entries, err := os.ReadDir(s.Dir(b))
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", b, err)
	}

	objects := make([]*Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		ct, err := mimetype.DetectFile(filepath.Join(s.Dir(b), e.Name()))
		contentType := "application/octet-stream"
		if err == nil {
			contentType = ct.String()
		}
		objects = append(objects, &Object{
			Bucket:      b,
			Name:        e.Name(),
			Size:        info.Size(),
			ContentType: contentType,
			URL:         s.PublicURL(b, e.Name()),
			UpdatedAt:   info.ModTime(),
		})
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].UpdatedAt.After(objects[j].UpdatedAt)
	})
	return objects, nil
}

// Remove deletes the named objects. Missing objects are reported as
// ErrObjectNotFound after the rest have been removed.
func (s *Store) Remove(_ context.Context, b Bucket, names ...string) error {
	var missing bool
	for _, name := range names {
		if !validName.MatchString(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if err := os.Remove(filepath.Join(s.Dir(b), name)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = true
				continue
			}
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	if missing {
		return ErrObjectNotFound
	}
	return nil
}

// DetectContentType sniffs data, ignoring any client-declared type.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// Is reports whether data sniffs as one of the allowed MIME types. An entry
// ending in "/*" matches the whole top-level type.
func Is(data []byte, allowed ...string) bool {
	detected := mimetype.Detect(data)
	for _, want := range allowed {
		if prefix, ok := strings.CutSuffix(want, "/*"); ok {
			if strings.HasPrefix(detected.String(), prefix+"/") {
				return true
			}
			continue
		}
		if detected.Is(want) {
			return true
		}
	}
	return false
}
