package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/spf13/viper"
)

const sessionKey = "session"

// viperStore keeps the signed-in session in the config file, so it
// survives between invocations.
type viperStore struct{}

func (s *viperStore) Load() (*domain.Session, error) {
	raw := viper.GetString(sessionKey)
	if raw == "" {
		return nil, nil
	}
	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("stored session is unreadable, run 'portfolioctl logout': %w", err)
	}
	return &sess, nil
}

func (s *viperStore) Save(sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	viper.Set(sessionKey, string(raw))
	return s.write()
}

func (s *viperStore) Clear() error {
	viper.Set(sessionKey, "")
	return s.write()
}

func (s *viperStore) write() error {
	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		path = filepath.Join(home, ".portfolioctl.yaml")
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// The file holds a refresh token.
	return os.Chmod(path, 0o600)
}
