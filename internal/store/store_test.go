package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/robalobadob/mastermind/internal/game"
)

func newSession(id string) *Session {
	return &Session{ID: id, Engine: game.New(game.NewSeededSource(1))}
}

func TestStores(t *testing.T) {
	lruSt, err := NewLRUStore(8)
	if err != nil {
		t.Fatal(err)
	}
	stores := map[string]Store{"memory": NewMemoryStore(), "lru": lruSt}

	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}
			s := newSession("a")
			if err := st.Save(ctx, s); err != nil {
				t.Fatal(err)
			}
			got, err := st.Get(ctx, "a")
			if err != nil || got != s {
				t.Fatalf("Get(a) = %p, %v; want %p", got, err, s)
			}
			if st.Len() != 1 {
				t.Errorf("Len() = %d, want 1", st.Len())
			}
		})
	}
}

func TestLRUStoreEvicts(t *testing.T) {
	ctx := context.Background()
	st, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		_ = st.Save(ctx, newSession(fmt.Sprint(i)))
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
	if _, err := st.Get(ctx, "0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest session should be evicted, got %v", err)
	}
	if _, err := st.Get(ctx, "2"); err != nil {
		t.Errorf("newest session missing: %v", err)
	}
}

func TestNewUnbounded(t *testing.T) {
	st, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*memory); !ok {
		t.Errorf("New(0) = %T, want *memory", st)
	}
}
