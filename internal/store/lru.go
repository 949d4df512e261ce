package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

type lruStore struct {
	cache *lru.Cache
}

// NewLRUStore constructs a Store holding at most size sessions.
// The cache is safe for concurrent use.
func NewLRUStore(size int) (Store, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("new lru: %w", err)
	}
	return &lruStore{cache: c}, nil
}

func (l *lruStore) Save(ctx context.Context, s *Session) error {
	l.cache.Add(s.ID, s)
	return nil
}

func (l *lruStore) Get(ctx context.Context, id string) (*Session, error) {
	v, ok := l.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Session), nil
}

func (l *lruStore) Len() int { return l.cache.Len() }

// New picks the LRU store when size > 0 and the unbounded map otherwise.
func New(size int) (Store, error) {
	if size > 0 {
		return NewLRUStore(size)
	}
	return NewMemoryStore(), nil
}
