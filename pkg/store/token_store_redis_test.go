package store

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisTokenStoreRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisTokenStore(redis.Addr(), "", "")

	tok, err := s.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if tok != "" {
		t.Fatalf("empty store returned %q", tok)
	}

	if err := s.Save("jwt-value"); err != nil {
		t.Fatalf("save: %v", err)
	}
	tok, err = s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "jwt-value" {
		t.Fatalf("load = %q, want jwt-value", tok)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	tok, err = s.Load()
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if tok != "" {
		t.Fatalf("token survived clear: %q", tok)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear on empty: %v", err)
	}
}

func TestRedisTokenStoreCustomKey(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisTokenStore(redis.Addr(), "", "other:key")
	if err := s.Save("tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, err := redis.Get("other:key"); err != nil || got != "tok" {
		t.Fatalf("redis value = %q, %v", got, err)
	}
}
