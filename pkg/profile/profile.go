// Package profile mirrors the authenticated user's account resource.
package profile

import (
	"context"
	"log/slog"
	"sync"

	"librairie/pkg/api"
	"librairie/pkg/domain"
)

const endpoint = "/api/users/profile"

// Store is the profile store. Same loading/error discipline as the cart
// store; operations are serialized by opMu.
type Store struct {
	api    *api.Client
	logger *slog.Logger

	opMu sync.Mutex

	mu      sync.Mutex
	profile *domain.Profile
	loading bool
	lastErr error
}

// New constructs a profile store.
func New(apiClient *api.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: apiClient, logger: logger}
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *Store) finish(err error) {
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err
	}
	s.mu.Unlock()
}

// FetchProfile loads the profile scoped to the bearer token's identity.
func (s *Store) FetchProfile(ctx context.Context) (domain.Profile, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.begin()
	var fetched domain.Profile
	err := s.api.Get(ctx, endpoint, true, &fetched)
	if err == nil {
		s.mu.Lock()
		p := fetched
		s.profile = &p
		s.mu.Unlock()
	}
	s.finish(err)
	if err != nil {
		return domain.Profile{}, err
	}
	return fetched, nil
}

// UpdateProfile applies the given changes and stores the updated profile.
func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.begin()
	var updated domain.Profile
	err := s.api.Put(ctx, endpoint, update, true, &updated)
	if err == nil {
		s.mu.Lock()
		p := updated
		s.profile = &p
		s.mu.Unlock()
	}
	s.finish(err)
	if err != nil {
		return domain.Profile{}, err
	}
	return updated, nil
}

// DeleteProfile deletes the account and clears the local profile.
func (s *Store) DeleteProfile(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.begin()
	err := s.api.Delete(ctx, endpoint, true, nil)
	if err == nil {
		s.mu.Lock()
		s.profile = nil
		s.mu.Unlock()
		s.logger.Info("profile deleted")
	}
	s.finish(err)
	return err
}

// Profile returns the locally mirrored profile, nil before the first fetch
// and after a delete.
func (s *Store) Profile() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Loading reports whether an operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error recorded by the most recent failed operation.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
