// Package store owns the product collection and keeps it in step with its
// storage backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/product-catalog-manager/internal/model"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateName = errors.New("product name already exists")
	ErrPersist       = errors.New("persist products")
)

// Backend loads and rewrites the full product collection.
type Backend interface {
	Load(ctx context.Context) ([]model.Product, error)
	Persist(ctx context.Context, products []model.Product) error
}

// Options configures a Store.
type Options struct {
	// StampStartDate makes Create set startDate to the current time and
	// Update keep the stored value.
	StampStartDate bool
	// Now overrides the clock used for stamping.
	Now func() time.Time
}

// Store holds the authoritative product list. Published snapshots are never
// modified; mutations build a new slice, persist it, then swap it in.
type Store struct {
	mu       sync.RWMutex
	backend  Backend
	opts     Options
	products []model.Product
}

// Open loads the collection from backend.
func Open(ctx context.Context, backend Backend, opts Options) (*Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	products, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	seen := make(map[int]bool, len(products))
	for _, p := range products {
		if seen[p.ProductNumber] {
			return nil, fmt.Errorf("load products: duplicate productNumber %d", p.ProductNumber)
		}
		seen[p.ProductNumber] = true
	}
	return &Store{backend: backend, opts: opts, products: products}, nil
}

// All returns the current snapshot. Callers must not modify it.
func (s *Store) All() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// Len returns the number of stored products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Get returns the product numbered n.
func (s *Store) Get(n int) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.products, n); i >= 0 {
		return s.products[i].Clone(), true
	}
	return model.Product{}, false
}

func indexOf(products []model.Product, n int) int {
	for i, p := range products {
		if p.ProductNumber == n {
			return i
		}
	}
	return -1
}

// nextNumber is one past the highest number in use; 1 for an empty list.
func nextNumber(products []model.Product) int {
	top := 0
	for _, p := range products {
		if p.ProductNumber > top {
			top = p.ProductNumber
		}
	}
	return top + 1
}

// Create stores draft as a new product and returns it with its assigned
// number.
func (s *Store) Create(ctx context.Context, draft model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ProductName == draft.ProductName {
			return model.Product{}, fmt.Errorf("%w: %q", ErrDuplicateName, draft.ProductName)
		}
	}
	p := draft.Clone()
	p.ProductNumber = nextNumber(s.products)
	if s.opts.StampStartDate {
		p.StartDate = model.NewTimestamp(s.opts.Now())
	}
	n := len(s.products)
	next := append(s.products[:n:n], p)
	if err := s.commit(ctx, next); err != nil {
		return model.Product{}, err
	}
	return p.Clone(), nil
}

// Update replaces every mutable field of product n with those of draft.
// The product name is not checked against other records.
func (s *Store) Update(ctx context.Context, n int, draft model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.products, n)
	if i < 0 {
		return model.Product{}, fmt.Errorf("%w: %d", ErrNotFound, n)
	}
	p := draft.Clone()
	p.ProductNumber = n
	if s.opts.StampStartDate {
		p.StartDate = s.products[i].StartDate
	}
	next := make([]model.Product, len(s.products))
	copy(next, s.products)
	next[i] = p
	if err := s.commit(ctx, next); err != nil {
		return model.Product{}, err
	}
	return p.Clone(), nil
}

// commit persists next and publishes it. On failure the current snapshot
// stays in place. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []model.Product) error {
	if err := s.backend.Persist(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.products = next
	return nil
}
