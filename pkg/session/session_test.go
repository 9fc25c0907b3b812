package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"librairie/pkg/api"
	"librairie/pkg/store"
)

// signToken builds a claims token. The client never verifies signatures, so
// the signing key is irrelevant.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestStore(t *testing.T, handler http.HandlerFunc) (*Store, *store.MemoryTokenStore) {
	t.Helper()
	tokens := store.NewMemoryTokenStore()
	var apiClient *api.Client
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		apiClient = api.New(api.Config{BaseURL: srv.URL, Tokens: tokens})
	} else {
		apiClient = api.New(api.Config{BaseURL: "http://127.0.0.1:0", Tokens: tokens})
	}
	return New(apiClient, tokens, nil), tokens
}

func TestIsAuthenticatedHonorsExpiry(t *testing.T) {
	s, tokens := newTestStore(t, nil)

	_ = tokens.Save(signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}))
	if s.IsAuthenticated() {
		t.Fatalf("expired token reported authenticated")
	}

	_ = tokens.Save(signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}))
	if !s.IsAuthenticated() {
		t.Fatalf("live token reported unauthenticated")
	}
}

func TestMissingExpiryMeansUnauthenticated(t *testing.T) {
	s, tokens := newTestStore(t, nil)
	_ = tokens.Save(signToken(t, jwt.MapClaims{"sub": "u1"}))
	if s.IsAuthenticated() {
		t.Fatalf("token without exp reported authenticated")
	}
}

func TestMalformedTokenNeverRaises(t *testing.T) {
	s, tokens := newTestStore(t, nil)
	_ = tokens.Save("definitely.not.a-token")

	if s.IsAuthenticated() {
		t.Fatalf("malformed token reported authenticated")
	}
	if user := s.CurrentUser(); user != nil {
		t.Fatalf("malformed token yielded user %+v", user)
	}
	if s.IsAdmin() {
		t.Fatalf("malformed token reported admin")
	}
}

func TestCurrentUserDerivesClaims(t *testing.T) {
	s, tokens := newTestStore(t, nil)
	_ = tokens.Save(signToken(t, jwt.MapClaims{
		"sub":        "u42",
		"username":   "jdoe",
		"email":      "jdoe@example.com",
		"first_name": "Jeanne",
		"last_name":  "Doe",
		"is_admin":   true,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}))

	user := s.CurrentUser()
	if user == nil {
		t.Fatalf("nil user for valid token")
	}
	if user.ID != "u42" || user.Username != "jdoe" || user.Email != "jdoe@example.com" {
		t.Fatalf("unexpected identity: %+v", user)
	}
	if user.FirstName != "Jeanne" || user.LastName != "Doe" {
		t.Fatalf("unexpected name claims: %+v", user)
	}
	if !user.IsAdmin || !s.IsAdmin() {
		t.Fatalf("admin claim not derived")
	}
}

func TestNoTokenMeansNoIdentity(t *testing.T) {
	s, _ := newTestStore(t, nil)
	if s.IsAuthenticated() || s.IsAdmin() {
		t.Fatalf("empty store reported a session")
	}
	if user := s.CurrentUser(); user != nil {
		t.Fatalf("empty store yielded user %+v", user)
	}
}

func TestLoginStoresAndPersistsToken(t *testing.T) {
	issued := signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
	var gotBody map[string]string
	s, tokens := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": issued})
	})

	tok, err := s.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok != issued {
		t.Fatalf("login returned wrong token")
	}
	if gotBody["email"] != "a@b.com" || gotBody["password"] != "x" {
		t.Fatalf("login body = %v", gotBody)
	}
	if stored, _ := tokens.Load(); stored != issued {
		t.Fatalf("token not persisted")
	}
	if !s.IsAuthenticated() {
		t.Fatalf("not authenticated after login")
	}
}

func TestLoginFailureIsMapped(t *testing.T) {
	s, tokens := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"email ou mot de passe incorrect"}`))
	})
	_, err := s.Login(context.Background(), Credentials{Email: "a@b.com", Password: "bad"})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Message != "email ou mot de passe incorrect" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if stored, _ := tokens.Load(); stored != "" {
		t.Fatalf("failed login stored a token")
	}
}

func TestSignupDoesNotAuthenticate(t *testing.T) {
	var gotBody map[string]string
	s, tokens := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/signup" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"u9","username":"jdoe","email":"jdoe@example.com"}`))
	})

	created, err := s.Signup(context.Background(), SignupInput{
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		FirstName: "Jeanne",
		LastName:  "Doe",
		Password:  "secret",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.ID != "u9" || created.Username != "jdoe" {
		t.Fatalf("created = %+v", created)
	}
	if gotBody["first_name"] != "Jeanne" || gotBody["password"] != "secret" {
		t.Fatalf("signup body = %v", gotBody)
	}
	if stored, _ := tokens.Load(); stored != "" {
		t.Fatalf("signup stored a token")
	}
}

func TestLogoutClearsTokenWithoutNetwork(t *testing.T) {
	s, tokens := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("logout must not call the backend, got %s %s", r.Method, r.URL.Path)
	})
	_ = tokens.Save(signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}))

	if err := s.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if stored, _ := tokens.Load(); stored != "" {
		t.Fatalf("token survived logout")
	}
	if s.IsAuthenticated() {
		t.Fatalf("authenticated after logout")
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	s, tokens := newTestStore(t, nil)

	if err := s.RequireAuth(); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("RequireAuth = %v, want ErrAuthRequired", err)
	}

	_ = tokens.Save(signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}))
	if err := s.RequireAuth(); err != nil {
		t.Fatalf("RequireAuth with live session: %v", err)
	}
	if err := s.RequireAdmin(); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("RequireAdmin = %v, want ErrAdminRequired", err)
	}

	_ = tokens.Save(signToken(t, jwt.MapClaims{"sub": "u1", "is_admin": true, "exp": time.Now().Add(time.Hour).Unix()}))
	if err := s.RequireAdmin(); err != nil {
		t.Fatalf("RequireAdmin with admin session: %v", err)
	}
}
