// Package store persists the session bearer token across process restarts.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore is the persistence boundary for the bearer token. Load returns
// an empty string when no token is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenStore keeps the token in memory only. Used in tests and for
// one-shot invocations that should not leave a session behind.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokenStore constructs an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Save("")
}

type tokenFile struct {
	Token string `json:"token"`
}

// FileTokenStore persists the token as a small JSON file, the client-side
// counterpart of the browser's localStorage entry.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// DefaultTokenPath returns the token location under the user config dir,
// honoring XDG_CONFIG_HOME.
func DefaultTokenPath() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "librairie", "token.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "librairie", "token.json")
}

// NewFileTokenStore builds a file-backed token store at path
// (DefaultTokenPath when empty).
func NewFileTokenStore(path string) *FileTokenStore {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("parse token file: %w", err)
	}
	return tf.Token, nil
}

func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(tokenFile{Token: token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
