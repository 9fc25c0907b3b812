// Package catalog mirrors the book catalog: paginated listings, substring
// search, category extraction, and category filtering over a cached full list.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"librairie/pkg/api"
	"librairie/pkg/domain"
)

const (
	// fullListLimit is how many books a "full" fetch asks for; search and
	// category filtering operate on that list.
	fullListLimit = 100

	defaultPageSize = 4
)

// Store is the catalog store.
type Store struct {
	api      *api.Client
	logger   *slog.Logger
	pageSize int

	fetchAll singleflight.Group

	mu          sync.RWMutex
	books       []domain.Book
	allBooks    []domain.Book
	categories  []domain.Category
	currentPage int
	totalPages  int
	totalBooks  int
}

// New constructs a catalog store. pageSize <= 0 selects the default of 4.
func New(apiClient *api.Client, logger *slog.Logger, pageSize int) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Store{
		api:         apiClient,
		logger:      logger,
		pageSize:    pageSize,
		currentPage: 1,
		totalPages:  1,
	}
}

// FetchAllBooks loads up to 100 books, caches them as the full list, and
// recomputes the category set. Concurrent calls share a single request.
func (s *Store) FetchAllBooks(ctx context.Context) ([]domain.Book, error) {
	// The shared request must not die with the first caller's context, or
	// its cancellation would poison every collapsed caller. The HTTP
	// client's own timeout still bounds the request.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.fetchAll.Do("all", func() (any, error) {
		var list domain.BookList
		if err := s.api.Get(fetchCtx, fmt.Sprintf("/api/livres?limit=%d", fullListLimit), false, &list); err != nil {
			return nil, err
		}
		return list.Books, nil
	})
	if err != nil {
		return nil, err
	}
	books := v.([]domain.Book)

	s.mu.Lock()
	s.allBooks = books
	s.categories = ExtractCategories(books)
	s.mu.Unlock()
	return books, nil
}

// FetchBooks loads one catalog page. A non-empty search (after trimming)
// fetches the full list instead and filters it client-side, collapsing the
// result to a single page.
func (s *Store) FetchBooks(ctx context.Context, page int, search string) error {
	search = strings.TrimSpace(search)
	if search != "" {
		var list domain.BookList
		if err := s.api.Get(ctx, fmt.Sprintf("/api/livres?limit=%d", fullListLimit), false, &list); err != nil {
			return err
		}
		matched := make([]domain.Book, 0, len(list.Books))
		for _, b := range list.Books {
			if matchesSearch(b, search) {
				matched = append(matched, b)
			}
		}
		s.mu.Lock()
		s.books = matched
		s.totalPages = 1
		s.totalBooks = len(matched)
		s.currentPage = 1
		s.mu.Unlock()
		return nil
	}

	if page < 1 {
		page = 1
	}
	var list domain.BookList
	endpoint := fmt.Sprintf("/api/livres?page=%d&limit=%d", page, s.pageSize)
	if err := s.api.Get(ctx, endpoint, false, &list); err != nil {
		return err
	}
	s.mu.Lock()
	s.books = list.Books
	// Bare-array responses carry no metadata; the previous listing's totals
	// are kept on purpose rather than guessed from one page.
	if p := list.Pagination; p != nil {
		s.totalBooks = p.Total
		if p.TotalPages > 0 {
			s.totalPages = p.TotalPages
		} else {
			s.totalPages = pageCount(p.Total, s.pageSize)
		}
	}
	s.currentPage = page
	s.mu.Unlock()
	return nil
}

// matchesSearch reports a case-insensitive substring match against the title
// or the concatenated author names.
func matchesSearch(b domain.Book, query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(b.Titre), query) {
		return true
	}
	authors := strings.ToLower(strings.Join(b.Auteurs, " "))
	return strings.Contains(authors, query)
}

// FilterByCategory filters the cached full list; it never fetches. An empty
// categoryID resets to the first page-size slice of the full list, a concrete
// id collapses to a single unpaginated page of matching books.
func (s *Store) FilterByCategory(categoryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if categoryID == "" {
		end := s.pageSize
		if end > len(s.allBooks) {
			end = len(s.allBooks)
		}
		s.books = append([]domain.Book(nil), s.allBooks[:end]...)
		s.totalPages = pageCount(len(s.allBooks), s.pageSize)
		s.currentPage = 1
		return
	}

	var filtered []domain.Book
	for _, b := range s.allBooks {
		for _, c := range b.Categories {
			if c.ID == categoryID {
				filtered = append(filtered, b)
				break
			}
		}
	}
	s.books = filtered
	s.totalPages = 1
	s.currentPage = 1
}

// ExtractCategories deduplicates the categories embedded in books, keeping
// the first occurrence per id in insertion order. Entries missing an id or a
// name are skipped.
func ExtractCategories(books []domain.Book) []domain.Category {
	seen := make(map[string]struct{})
	var out []domain.Category
	for _, b := range books {
		for _, c := range b.Categories {
			if c.ID == "" || c.Nom == "" {
				continue
			}
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// CreateBook creates a catalog entry (admin only). Errors flow through the
// uniform API error path like every other call.
func (s *Store) CreateBook(ctx context.Context, book domain.Book) (domain.Book, error) {
	var created domain.Book
	if err := s.api.Post(ctx, "/api/livres", book, true, &created); err != nil {
		return domain.Book{}, err
	}
	s.logger.Info("book created", "id", created.ID, "titre", created.Titre)
	return created, nil
}

// Books returns the current page's books.
func (s *Store) Books() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Book(nil), s.books...)
}

// AllBooks returns the cached full list.
func (s *Store) AllBooks() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Book(nil), s.allBooks...)
}

// Categories returns the derived category set.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

// CurrentPage returns the current page number (1-based).
func (s *Store) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPage
}

// TotalPages returns the page count of the last listing.
func (s *Store) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPages
}

// TotalBooks returns the total count reported by the last listing.
func (s *Store) TotalBooks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalBooks
}

// PageSize returns the configured page size.
func (s *Store) PageSize() int {
	return s.pageSize
}

func pageCount(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
