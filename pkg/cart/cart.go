// Package cart mirrors the authenticated user's cart. Every mutation is
// "mutate then refetch": the server owns the cart (including stock
// adjustments), the client never merges locally.
package cart

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"librairie/pkg/api"
	"librairie/pkg/domain"
)

// Store is the cart store.
//
// opMu serializes whole operations (request plus refetch), so two rapid
// mutations cannot interleave and the visible state is that of the last
// request. mu guards the state fields only.
type Store struct {
	api    *api.Client
	logger *slog.Logger

	opMu sync.Mutex

	mu      sync.Mutex
	items   []domain.CartItem
	loading bool
	lastErr error
}

// New constructs a cart store.
func New(apiClient *api.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: apiClient, logger: logger}
}

// begin marks the store loading and resets the error, so only the most
// recent failure is ever visible.
func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()
}

// finish clears the loading flag unconditionally and records err if any.
func (s *Store) finish(err error) {
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err
	}
	s.mu.Unlock()
}

// FetchCart replaces the local items with the server's cart.
func (s *Store) FetchCart(ctx context.Context) ([]domain.CartItem, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.begin()
	items, err := s.fetch(ctx)
	s.finish(err)
	return items, err
}

// fetch loads the cart and stores the items. Callers hold opMu.
func (s *Store) fetch(ctx context.Context) ([]domain.CartItem, error) {
	var payload domain.CartPayload
	if err := s.api.Get(ctx, "/api/panier", true, &payload); err != nil {
		return nil, err
	}
	items := payload.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return append([]domain.CartItem(nil), items...), nil
}

// AddToCart adds a book, then refetches the cart so the local mirror picks
// up server-side stock adjustments. quantite <= 0 means 1.
func (s *Store) AddToCart(ctx context.Context, livreID string, quantite int) error {
	if quantite <= 0 {
		quantite = 1
	}
	return s.mutate(ctx, livreID, quantite)
}

// UpdateQuantity sets a line's quantity through the same endpoint as
// AddToCart; the server distinguishes create from update. Quantities beyond
// the available stock are rejected server-side.
func (s *Store) UpdateQuantity(ctx context.Context, livreID string, quantite int) error {
	return s.mutate(ctx, livreID, quantite)
}

func (s *Store) mutate(ctx context.Context, livreID string, quantite int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.begin()
	err := s.api.Post(ctx, "/api/panier", domain.CartMutation{LivreID: livreID, Quantite: quantite}, true, nil)
	if err == nil {
		_, err = s.fetch(ctx)
	}
	s.finish(err)
	return err
}

// RemoveItem deletes one line by book id, then refetches.
func (s *Store) RemoveItem(ctx context.Context, livreID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.begin()
	err := s.api.Delete(ctx, "/api/panier/items/"+url.PathEscape(livreID), true, nil)
	if err == nil {
		_, err = s.fetch(ctx)
	}
	s.finish(err)
	return err
}

// ClearCart empties the cart. The local mirror is cleared without a refetch;
// an emptied cart needs no server confirmation beyond the 2xx.
func (s *Store) ClearCart(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.begin()
	err := s.api.Delete(ctx, "/api/panier", true, nil)
	if err == nil {
		s.mu.Lock()
		s.items = nil
		s.mu.Unlock()
	}
	s.finish(err)
	return err
}

// Items returns the current line items.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartItem(nil), s.items...)
}

// Total derives the cart total from the current items on every call.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.items {
		total += item.Prix * float64(item.Quantite)
	}
	return total
}

// ItemCount derives the summed quantity from the current items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, item := range s.items {
		count += item.Quantite
	}
	return count
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

// ClearError discards the recorded error.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}
