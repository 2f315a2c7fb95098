package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/client"
	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/spf13/viper"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"validation fields sorted",
			&domain.ValidationError{Fields: map[string]string{"password": "Password too long", "email": "Invalid email address"}},
			"Error: invalid input\n  email: Invalid email address\n  password: Password too long",
		},
		{"api message", &client.APIError{Status: 400, Message: "Invalid or expired invite code"}, "Error: Invalid or expired invite code"},
		{"signed out", domain.ErrUnauthorized, "Error: not signed in, run 'portfolioctl login'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViperStore_RoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "portfolioctl.yaml")
	viper.SetConfigFile(path)

	store := &viperStore{}
	if sess, err := store.Load(); err != nil || sess != nil {
		t.Fatalf("empty Load = %v, %v", sess, err)
	}

	want := &domain.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		ExpiresAt:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		User:         domain.Identity{ID: "u-1", Email: "me@example.com"},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	// A fresh viper reads it back from disk.
	viper.Reset()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}
	got, err := store.Load()
	if err != nil || got == nil {
		t.Fatalf("Load = %v, %v", got, err)
	}
	if got.RefreshToken != want.RefreshToken || got.User.Email != want.User.Email || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "refresh") {
		t.Errorf("cleared config still holds the session:\n%s", raw)
	}
}
