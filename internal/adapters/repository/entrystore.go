// Package repository holds the in-memory stores behind the service: the
// per-player entry history and the benchmark leaderboards.
package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/okian/aimtrack/internal/domain/model"
)

type bestKey struct {
	user string
	hash string
}

// EntryStore keeps every player's entries ordered by ctime.
type EntryStore struct {
	mu     sync.RWMutex
	byUser map[string][]model.Entry
	keys   map[string]struct{}
	best   map[bestKey]float64
	total  int
}

// NewEntryStore creates an empty entry store.
func NewEntryStore() *EntryStore {
	return &EntryStore{
		byUser: make(map[string][]model.Entry),
		keys:   make(map[string]struct{}),
		best:   make(map[bestKey]float64),
	}
}

// Insert stores e. It returns false when an entry with the same key is
// already stored.
func (s *EntryStore) Insert(_ context.Context, e model.Entry) (bool, error) { //nolint:gocritic // hugeParam: entries are values throughout
	if e.UserID == "" || e.Hash == "" {
		return false, fmt.Errorf("%w: user and hash are required", ErrInvalidEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.Key()
	if _, dup := s.keys[key]; dup {
		return false, nil
	}
	s.keys[key] = struct{}{}

	list := s.byUser[e.UserID]
	// Trackers upload in ctime order, so this is almost always an append.
	i := sort.Search(len(list), func(i int) bool { return list[i].CTime > e.CTime })
	s.byUser[e.UserID] = slices.Insert(list, i, e)

	bk := bestKey{user: e.UserID, hash: e.Hash}
	if cur, ok := s.best[bk]; !ok || e.Score > cur {
		s.best[bk] = e.Score
	}
	s.total++
	return true, nil
}

// List returns the user's entries with ctime in [from, to], oldest first.
// A nil hashes slice matches every scenario.
func (s *EntryStore) List(_ context.Context, user string, hashes []string, from, to int64) []model.Entry {
	var allowed map[string]struct{}
	if hashes != nil {
		allowed = make(map[string]struct{}, len(hashes))
		for _, h := range hashes {
			allowed[h] = struct{}{}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byUser[user]
	start := sort.Search(len(list), func(i int) bool { return list[i].CTime >= from })
	out := make([]model.Entry, 0)
	for _, e := range list[start:] {
		if e.CTime > to {
			break
		}
		if allowed != nil {
			if _, ok := allowed[e.Hash]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Latest returns the ctime of the user's newest entry, or 0 when there is none.
func (s *EntryStore) Latest(_ context.Context, user string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byUser[user]
	if len(list) == 0 {
		return 0
	}
	return list[len(list)-1].CTime
}

// Best returns the user's best score on a scenario.
func (s *EntryStore) Best(_ context.Context, user, hash string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.best[bestKey{user: user, hash: hash}]
	return v, ok
}

// Count returns the number of stored entries.
func (s *EntryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Players returns the number of users with at least one entry.
func (s *EntryStore) Players(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}
