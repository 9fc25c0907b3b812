package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"librairie/pkg/api"
	"librairie/pkg/domain"
	"librairie/pkg/store"
)

func newTestProfile(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := store.NewMemoryTokenStore()
	_ = tokens.Save("profile-token")
	return New(api.New(api.Config{BaseURL: srv.URL, Tokens: tokens}), nil)
}

func TestFetchProfile(t *testing.T) {
	s := newTestProfile(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/users/profile" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer profile-token" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"_id":"u1","username":"jdoe","email":"jdoe@example.com"}`))
	})

	fetched, err := s.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetched.ID != "u1" || fetched.Username != "jdoe" {
		t.Fatalf("fetched = %+v", fetched)
	}
	mirror := s.Profile()
	if mirror == nil || mirror.ID != "u1" {
		t.Fatalf("mirror = %+v", mirror)
	}
	if s.Loading() {
		t.Fatalf("loading flag stuck")
	}
}

func TestUpdateProfile(t *testing.T) {
	var gotBody map[string]string
	s := newTestProfile(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"_id":"u1","username":"jdoe2","email":"jdoe@example.com"}`))
	})

	updated, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Username: "jdoe2"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Username != "jdoe2" {
		t.Fatalf("updated = %+v", updated)
	}
	if len(gotBody) != 1 || gotBody["username"] != "jdoe2" {
		t.Fatalf("update body = %v (omitempty must drop blank fields)", gotBody)
	}
	if mirror := s.Profile(); mirror == nil || mirror.Username != "jdoe2" {
		t.Fatalf("mirror = %+v", mirror)
	}
}

func TestDeleteProfileClearsLocalState(t *testing.T) {
	deleted := false
	s := newTestProfile(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"_id":"u1","username":"jdoe"}`))
		case http.MethodDelete:
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		}
	})

	if _, err := s.FetchProfile(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := s.DeleteProfile(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatalf("DELETE never reached the backend")
	}
	if s.Profile() != nil {
		t.Fatalf("profile mirror survived delete")
	}
}

func TestOverlappingUpdatesSerializeLastRequestWins(t *testing.T) {
	var mu sync.Mutex
	var served []string
	s := newTestProfile(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		// Slow responses would let overlapping updates race without the
		// operation mutex.
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		served = append(served, body["username"])
		mu.Unlock()
		_, _ = w.Write([]byte(`{"_id":"u1","username":"` + body["username"] + `"}`))
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := s.UpdateProfile(ctx, domain.ProfileUpdate{Username: "premiere"}); err != nil {
			t.Errorf("update premiere: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := s.UpdateProfile(ctx, domain.ProfileUpdate{Username: "seconde"}); err != nil {
			t.Errorf("update seconde: %v", err)
		}
	}()
	wg.Wait()

	mu.Lock()
	if len(served) != 2 {
		mu.Unlock()
		t.Fatalf("served = %v, want both updates", served)
	}
	last := served[len(served)-1]
	mu.Unlock()

	// The mirror reflects the update the server completed last.
	if mirror := s.Profile(); mirror == nil || mirror.Username != last {
		t.Fatalf("mirror = %+v, want last completed update %q", mirror, last)
	}
}

func TestProfileErrorDiscipline(t *testing.T) {
	s := newTestProfile(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := s.FetchProfile(context.Background())
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 api error, got %v", err)
	}
	if s.Err() == nil {
		t.Fatalf("error not recorded")
	}
	if s.Loading() {
		t.Fatalf("loading flag stuck after failure")
	}
	if s.Profile() != nil {
		t.Fatalf("mirror set on failure")
	}
}
