// Package session owns the bearer token lifecycle: signup, login, logout,
// and the identity derivations views gate on.
//
// The token is decoded, never verified: signature checking is the server's
// job, the client only reads claims.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"librairie/pkg/api"
	"librairie/pkg/domain"
	"librairie/pkg/store"
)

var (
	// ErrAuthRequired indicates the action needs an authenticated session.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAdminRequired indicates the action needs an admin session.
	ErrAdminRequired = errors.New("admin privileges required")
)

// Claims are the identity attributes embedded in the session token.
type Claims struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// SignupInput carries the fields posted to the signup endpoint.
type SignupInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Credentials are login credentials.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Store is the session store. All derivations read the token store directly,
// so every process sharing the store sees the same session.
type Store struct {
	api    *api.Client
	tokens store.TokenStore
	logger *slog.Logger
}

// New constructs a session store on top of the API client and token store.
func New(apiClient *api.Client, tokens store.TokenStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: apiClient, tokens: tokens, logger: logger}
}

// Signup creates an account. It does not authenticate: the caller still has
// to log in afterwards.
func (s *Store) Signup(ctx context.Context, in SignupInput) (domain.Profile, error) {
	var created domain.Profile
	if err := s.api.Post(ctx, "/auth/signup", in, false, &created); err != nil {
		return domain.Profile{}, err
	}
	return created, nil
}

// Login authenticates, persists the returned token, and returns it.
func (s *Store) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := s.api.Post(ctx, "/auth/login", creds, false, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login response carried no token")
	}
	if err := s.tokens.Save(resp.Token); err != nil {
		return "", err
	}
	s.logger.Info("logged in", "email", creds.Email)
	return resp.Token, nil
}

// Logout discards the session locally. No network call is made.
func (s *Store) Logout() error {
	return s.tokens.Clear()
}

// Token returns the current bearer token, empty when absent.
func (s *Store) Token() string {
	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("load token", "err", err)
		return ""
	}
	return token
}

// decode reads the stored token's claims without verifying the signature.
// Any failure means "no session"; it is never surfaced as an error.
func (s *Store) decode() (*Claims, bool) {
	token := s.Token()
	if token == "" {
		return nil, false
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// IsAuthenticated reports whether a token is present and not yet expired.
func (s *Store) IsAuthenticated() bool {
	claims, ok := s.decode()
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.After(time.Now())
}

// CurrentUser returns the identity carried by the token, nil when there is
// no decodable session.
func (s *Store) CurrentUser() *domain.User {
	claims, ok := s.decode()
	if !ok {
		return nil
	}
	return &domain.User{
		ID:        claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		IsAdmin:   claims.IsAdmin,
	}
}

// IsAdmin reports whether the token carries the admin claim.
func (s *Store) IsAdmin() bool {
	claims, ok := s.decode()
	return ok && claims.IsAdmin
}

// RequireAuth returns ErrAuthRequired unless the session is live. Front ends
// use it to gate protected actions.
func (s *Store) RequireAuth() error {
	if !s.IsAuthenticated() {
		return ErrAuthRequired
	}
	return nil
}

// RequireAdmin returns ErrAdminRequired unless the live session is an admin.
func (s *Store) RequireAdmin() error {
	if err := s.RequireAuth(); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}
