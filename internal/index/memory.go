// Package index keeps the dashboard state of the running session in memory:
// the discovered businesses and, per location, the last fetched stats,
// reviews and posts.
package index

import (
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/storefront/internal/domain"
)

// locationState holds what was last fetched for one location
type locationState struct {
	stats     []domain.StatMetric
	reviews   []domain.Review
	posts     []domain.Post
	updatedAt time.Time
}

// MemoryIndex is the single owner of the dashboard lists. Handlers read
// snapshots; mutators report success and the index applies the change.
type MemoryIndex struct {
	mu         sync.RWMutex
	businesses []domain.Business         // discovery order
	byID       map[string]int            // ID -> position in businesses
	locations  map[string]*locationState // location ID -> fetched data
	lastReload time.Time                 // Timestamp of last businesses reload
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byID:      make(map[string]int),
		locations: make(map[string]*locationState),
	}
}

// UpdateBusinesses replaces the business list wholesale. Fetched data of
// locations that disappeared is dropped.
func (idx *MemoryIndex) UpdateBusinesses(businesses []domain.Business) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.businesses = append(make([]domain.Business, 0, len(businesses)), businesses...)
	idx.byID = make(map[string]int, len(businesses))
	for i, b := range idx.businesses {
		idx.byID[b.ID] = i
	}
	for id := range idx.locations {
		if _, ok := idx.byID[id]; !ok {
			delete(idx.locations, id)
		}
	}
	idx.lastReload = time.Now()
}

// GetBusiness retrieves a business by ID
func (idx *MemoryIndex) GetBusiness(id string) (domain.Business, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	i, ok := idx.byID[id]
	if !ok {
		return domain.Business{}, false
	}
	return idx.businesses[i], true
}

// GetAllBusinesses returns a copy of the businesses in discovery order
func (idx *MemoryIndex) GetAllBusinesses() []domain.Business {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append(make([]domain.Business, 0, len(idx.businesses)), idx.businesses...)
}

// Count returns the number of businesses in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.businesses)
}

// GetLastReload returns the timestamp of the last businesses reload
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// Clear forgets everything (the session switched to another client)
func (idx *MemoryIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.businesses = nil
	idx.byID = make(map[string]int)
	idx.locations = make(map[string]*locationState)
	idx.lastReload = time.Time{}
}

func (idx *MemoryIndex) location(id string) *locationState {
	st, ok := idx.locations[id]
	if !ok {
		st = &locationState{}
		idx.locations[id] = st
	}
	return st
}

// SetStats stores the stats of a location
func (idx *MemoryIndex) SetStats(locationID string, stats []domain.StatMetric) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	st := idx.location(locationID)
	st.stats = append([]domain.StatMetric(nil), stats...)
	st.updatedAt = time.Now()
}

// SetReviews stores the reviews of a location
func (idx *MemoryIndex) SetReviews(locationID string, reviews []domain.Review) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	st := idx.location(locationID)
	st.reviews = append([]domain.Review(nil), reviews...)
	st.updatedAt = time.Now()
}

// SetPosts stores the posts of a location
func (idx *MemoryIndex) SetPosts(locationID string, posts []domain.Post) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	st := idx.location(locationID)
	st.posts = append([]domain.Post(nil), posts...)
	st.updatedAt = time.Now()
}

// GetStats returns a copy of the stats of a location
func (idx *MemoryIndex) GetStats(locationID string) []domain.StatMetric {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	st, ok := idx.locations[locationID]
	if !ok {
		return []domain.StatMetric{}
	}
	return append([]domain.StatMetric{}, st.stats...)
}

// GetReviews returns a copy of the reviews of a location
func (idx *MemoryIndex) GetReviews(locationID string) []domain.Review {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	st, ok := idx.locations[locationID]
	if !ok {
		return []domain.Review{}
	}
	return append([]domain.Review{}, st.reviews...)
}

// GetPosts returns a copy of the posts of a location
func (idx *MemoryIndex) GetPosts(locationID string) []domain.Post {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	st, ok := idx.locations[locationID]
	if !ok {
		return []domain.Post{}
	}
	return append([]domain.Post{}, st.posts...)
}

// ApplyReply records an accepted reply on one review of a location
func (idx *MemoryIndex) ApplyReply(locationID, reviewID, reply string) (domain.Review, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	st, ok := idx.locations[locationID]
	if !ok {
		return domain.Review{}, fmt.Errorf("location %s: %w", locationID, domain.ErrReviewNotFound)
	}

	updated, err := domain.ApplyReply(st.reviews, reviewID, reply)
	if err != nil {
		return domain.Review{}, err
	}
	st.reviews = updated

	for _, r := range updated {
		if r.ID == reviewID {
			return r, nil
		}
	}
	return domain.Review{}, domain.ErrReviewNotFound
}

// PrependPost puts a freshly created post in front of a location's posts
func (idx *MemoryIndex) PrependPost(locationID string, p domain.Post) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	st := idx.location(locationID)
	st.posts = domain.PrependPost(st.posts, p)
}
