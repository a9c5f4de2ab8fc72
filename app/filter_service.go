package app

import (
	"context"
	"fmt"
	"sync"

	"claimsight/domain/claims"
	"claimsight/internal/cache"
	"claimsight/ports"
)

// FilterService serves the distinct filter-option listings and the entity
// directory. Option listings are static for the life of the process, so
// each (entity, flag-policy) pair is fetched at most once; a failed fetch
// is not cached and the next request retries.
type FilterService struct {
	store ports.ClaimStore

	mu     sync.Mutex
	caches map[string]*cache.Once[claims.FilterOptions]
}

// NewFilterService creates a filter service.
func NewFilterService(store ports.ClaimStore) *FilterService {
	return &FilterService{
		store:  store,
		caches: make(map[string]*cache.Once[claims.FilterOptions]),
	}
}

// Options returns the drug/manufacturer/group listings for the request's
// entity and flag policy.
func (s *FilterService) Options(ctx context.Context, f claims.FilterParams) (claims.FilterOptions, error) {
	key := fmt.Sprintf("%d|%t", f.EntityID, f.IncludeFlagged)

	s.mu.Lock()
	c, ok := s.caches[key]
	if !ok {
		c = &cache.Once[claims.FilterOptions]{}
		s.caches[key] = c
	}
	s.mu.Unlock()

	return c.Get(ctx, func(ctx context.Context) (claims.FilterOptions, error) {
		return s.store.FilterOptions(ctx, f)
	})
}

// Entities lists the onboarded claims entities.
func (s *FilterService) Entities(ctx context.Context) ([]claims.Entity, error) {
	return s.store.Entities(ctx)
}
