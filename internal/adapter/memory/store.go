// Package memory implements an in-process document store used for dry runs
// and tests. It mimics the parts of the Notion block API the service uses:
// database templates, paginated children and trailing appends.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	"github.com/google/uuid"
)

const defaultPageSize = 100

// Page is a stored page and its properties.
type Page struct {
	ID         string
	DatabaseID string
	Properties []domain.Property
}

// Store is a thread-safe in-memory domain.DocumentStore.
type Store struct {
	mu       sync.Mutex
	template []domain.Block
	pageSize int
	pages    map[string]Page
	blocks   map[string]domain.Block
	children map[string][]string
	order    []string
}

// Option configures a Store.
type Option func(*Store)

// WithTemplate seeds every new page with copies of the given blocks, like a
// database default template.
func WithTemplate(blocks ...domain.Block) Option {
	return func(s *Store) { s.template = blocks }
}

// WithPageSize sets how many children ListChildren returns per call.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		pageSize: defaultPageSize,
		pages:    make(map[string]Page),
		blocks:   make(map[string]domain.Block),
		children: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) CreatePage(_ context.Context, databaseID string, props []domain.Property, children []domain.Block) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.pages[id] = Page{ID: id, DatabaseID: databaseID, Properties: props}
	s.order = append(s.order, id)

	for _, b := range s.template {
		s.appendLocked(id, b)
	}
	for _, b := range children {
		s.appendLocked(id, b)
	}
	return id, nil
}

func (s *Store) ListChildren(_ context.Context, blockID, cursor string) (domain.ChildrenPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.existsLocked(blockID) {
		return domain.ChildrenPage{}, &domain.APIError{Service: "memory", StatusCode: 404, Body: "block not found: " + blockID}
	}

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return domain.ChildrenPage{}, &domain.APIError{Service: "memory", StatusCode: 400, Body: "invalid cursor: " + cursor}
		}
		start = n
	}

	ids := s.children[blockID]
	if start > len(ids) {
		start = len(ids)
	}
	end := min(start+s.pageSize, len(ids))

	page := domain.ChildrenPage{Blocks: make([]domain.Block, 0, end-start)}
	for _, id := range ids[start:end] {
		page.Blocks = append(page.Blocks, s.blocks[id])
	}
	if end < len(ids) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (s *Store) AppendChildren(_ context.Context, blockID string, children []domain.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.existsLocked(blockID) {
		return &domain.APIError{Service: "memory", StatusCode: 404, Body: "block not found: " + blockID}
	}
	for _, b := range children {
		s.appendLocked(blockID, b)
	}
	return nil
}

// Page returns a stored page by ID.
func (s *Store) Page(id string) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	return p, ok
}

// Pages returns all page IDs in creation order.
func (s *Store) Pages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Block returns a stored block by ID.
func (s *Store) Block(id string) (domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	return b, ok
}

// Children returns every child of blockID, ignoring pagination.
func (s *Store) Children(blockID string) []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Block, 0, len(s.children[blockID]))
	for _, id := range s.children[blockID] {
		out = append(out, s.blocks[id])
	}
	return out
}

func (s *Store) existsLocked(id string) bool {
	if _, ok := s.pages[id]; ok {
		return true
	}
	_, ok := s.blocks[id]
	return ok
}

func (s *Store) appendLocked(parentID string, b domain.Block) {
	b.ID = uuid.NewString()
	b.RichText = append([]domain.RichText(nil), b.RichText...)
	s.blocks[b.ID] = b
	s.children[parentID] = append(s.children[parentID], b.ID)
}

// String is used in log lines for dry runs.
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("memory store (%d pages)", len(s.pages))
}
