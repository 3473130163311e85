package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Repository. Searches are addressed by a dense
// document ID so per-user and address-token postings can be kept as Roaring
// bitmaps.
type MemoryStore struct {
	mu sync.RWMutex

	nextDocID uint32
	idToDoc   map[string]uint32
	docs      []*PropertySearch // index = docID, nil once deleted

	// Inverted indexes
	idxUser  map[string]*roaring.Bitmap
	idxToken map[string]*roaring.Bitmap

	saved      map[string]*SavedSearch
	savedOrder []string
	usage      map[string]int

	now   func() time.Time
	newID func() string
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock sets the time source for search and saved-search dates.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		idToDoc:  make(map[string]uint32),
		docs:     make([]*PropertySearch, 0, 64),
		idxUser:  make(map[string]*roaring.Bitmap),
		idxToken: make(map[string]*roaring.Bitmap),
		saved:    make(map[string]*SavedSearch),
		usage:    make(map[string]int),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveSearch stores a search and its results, returning the new search ID.
func (s *MemoryStore) SaveSearch(_ context.Context, userID, address string, results []any, params map[string]any) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("saving search: user id is required")
	}
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	doc := s.nextDocID
	s.nextDocID++

	s.docs = append(s.docs, &PropertySearch{
		ID:     id,
		UserID: userID,
		PropertyData: PropertyData{
			Address:         address,
			Results:         results,
			SearchParams:    params,
			SearchTimestamp: now,
		},
		SearchDate: now,
	})
	s.idToDoc[id] = doc
	addToBitmap(s.idxUser, userID, doc)
	for _, tok := range tokenizeAddress(address) {
		addToBitmap(s.idxToken, tok, doc)
	}
	return id, nil
}

// ListSearches returns the user's searches, newest first.
func (s *MemoryStore) ListSearches(_ context.Context, userID string, opts ListOptions) ([]PropertySearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userDocs, ok := s.idxUser[userID]
	if !ok {
		return []PropertySearch{}, nil
	}
	candidates := userDocs.Clone()
	for _, tok := range tokenizeAddress(opts.AddressFilter) {
		candidates.And(s.tokenPostings(tok))
		if candidates.IsEmpty() {
			return []PropertySearch{}, nil
		}
	}

	matches := make([]*PropertySearch, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		if doc := s.docs[it.Next()]; doc != nil {
			matches = append(matches, doc)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SearchDate.After(matches[j].SearchDate)
	})
	// Bitmap iteration is ascending by doc ID; flip equal dates to newest first.
	reverseEqualDates(matches)

	if opts.Offset >= len(matches) {
		return []PropertySearch{}, nil
	}
	end := opts.Offset + opts.limit()
	if end > len(matches) {
		end = len(matches)
	}

	out := make([]PropertySearch, 0, end-opts.Offset)
	for _, m := range matches[opts.Offset:end] {
		out = append(out, *m)
	}
	return out, nil
}

// tokenPostings unions every indexed token containing tok, so a filter
// token matches inside address words as well as whole words.
func (s *MemoryStore) tokenPostings(tok string) *roaring.Bitmap {
	if bm, ok := s.idxToken[tok]; ok {
		union := bm.Clone()
		for indexed, other := range s.idxToken {
			if indexed != tok && strings.Contains(indexed, tok) {
				union.Or(other)
			}
		}
		return union
	}
	union := roaring.New()
	for indexed, bm := range s.idxToken {
		if strings.Contains(indexed, tok) {
			union.Or(bm)
		}
	}
	return union
}

// GetSearch returns one of the user's searches.
func (s *MemoryStore) GetSearch(_ context.Context, id, userID string) (*PropertySearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.idToDoc[id]
	if !ok || s.docs[doc] == nil || s.docs[doc].UserID != userID {
		return nil, fmt.Errorf("search %q: %w", id, ErrNotFound)
	}
	out := *s.docs[doc]
	return &out, nil
}

// DeleteSearch removes one of the user's searches.
func (s *MemoryStore) DeleteSearch(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.idToDoc[id]
	if !ok || s.docs[doc] == nil || s.docs[doc].UserID != userID {
		return fmt.Errorf("search %q: %w", id, ErrNotFound)
	}
	search := s.docs[doc]
	s.docs[doc] = nil
	delete(s.idToDoc, id)
	removeFromBitmap(s.idxUser, search.UserID, doc)
	for _, tok := range tokenizeAddress(search.PropertyData.Address) {
		removeFromBitmap(s.idxToken, tok, doc)
	}
	return nil
}

// SaveNamedSearch stores reusable search criteria.
func (s *MemoryStore) SaveNamedSearch(_ context.Context, userID, name string, criteria map[string]any, autoNotify bool) (string, error) {
	if userID == "" || name == "" {
		return "", fmt.Errorf("saving named search: user id and name are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	s.saved[id] = &SavedSearch{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Criteria:   criteria,
		AutoNotify: autoNotify,
		CreatedAt:  s.now().UTC(),
	}
	s.savedOrder = append(s.savedOrder, id)
	return id, nil
}

// ListSavedSearches returns the user's saved searches, newest first.
func (s *MemoryStore) ListSavedSearches(_ context.Context, userID string) ([]SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []SavedSearch{}
	for i := len(s.savedOrder) - 1; i >= 0; i-- {
		if ss := s.saved[s.savedOrder[i]]; ss.UserID == userID {
			out = append(out, *ss)
		}
	}
	return out, nil
}

// UpdateSavedSearchResults records the result count of a re-run.
func (s *MemoryStore) UpdateSavedSearchResults(_ context.Context, id string, resultsCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.saved[id]
	if !ok {
		return fmt.Errorf("saved search %q: %w", id, ErrNotFound)
	}
	now := s.now().UTC()
	ss.ResultsCount = resultsCount
	ss.LastRun = &now
	return nil
}

// Statistics counts the user's searches and saved searches.
func (s *MemoryStore) Statistics(_ context.Context, userID string) (Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Statistics
	if bm, ok := s.idxUser[userID]; ok {
		st.TotalSearches = int(bm.GetCardinality())
	}
	for _, ss := range s.saved {
		if ss.UserID == userID {
			st.SavedSearches++
		}
	}
	return st, nil
}

// Usage returns the number of API queries the user has made.
func (s *MemoryStore) Usage(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[userID], nil
}

// IncrementUsage records one API query and returns the new count.
func (s *MemoryStore) IncrementUsage(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[userID]++
	return s.usage[userID], nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func addToBitmap(idx map[string]*roaring.Bitmap, key string, doc uint32) {
	bm, ok := idx[key]
	if !ok {
		bm = roaring.New()
		idx[key] = bm
	}
	bm.Add(doc)
}

func removeFromBitmap(idx map[string]*roaring.Bitmap, key string, doc uint32) {
	bm, ok := idx[key]
	if !ok {
		return
	}
	bm.Remove(doc)
	if bm.IsEmpty() {
		delete(idx, key)
	}
}

// reverseEqualDates reverses each run of equal SearchDate values so that,
// among searches saved in the same instant, the later save comes first.
func reverseEqualDates(s []*PropertySearch) {
	for i := 0; i < len(s); {
		j := i + 1
		for j < len(s) && s[j].SearchDate.Equal(s[i].SearchDate) {
			j++
		}
		for l, r := i, j-1; l < r; l, r = l+1, r-1 {
			s[l], s[r] = s[r], s[l]
		}
		i = j
	}
}

var _ Repository = (*MemoryStore)(nil)
