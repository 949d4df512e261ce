package history

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/mastermind/internal/database"
	"github.com/robalobadob/mastermind/internal/game"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenAndMigrate() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func createUser(t *testing.T, s *Store, id, name string) {
	t.Helper()
	u := &User{ID: id, Username: name, PasswordHash: "x", CreatedAt: time.Now()}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
}

func TestCreateAndFindUser(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	createUser(t, s, "u1", "Alice")

	err := s.CreateUser(ctx, &User{ID: "u2", Username: "alice", PasswordHash: "x", CreatedAt: time.Now()})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	u, err := s.FindUserByUsername(ctx, "ALICE")
	if err != nil || u.ID != "u1" {
		t.Fatalf("FindUserByUsername() = %+v, %v", u, err)
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}
	if _, err := s.FindUserByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateUserConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &User{ID: "u" + string(rune('a'+i)), Username: "Dave", PasswordHash: "x", CreatedAt: time.Now()}
			errs[i] = s.CreateUser(ctx, u)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, ErrUsernameTaken):
			t.Errorf("CreateUser() error = %v, want ErrUsernameTaken", err)
		}
	}
	if created != 1 {
		t.Errorf("created %d users with the same name, want 1", created)
	}
}

func TestAbandonRound(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	createUser(t, s, "u1", "erin")
	owner := Owner{UserID: "u1"}
	now := time.Now()

	for _, id := range []string{"r1", "r2"} {
		if err := s.StartRound(ctx, id, owner, now); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RecordAttempt(ctx, "r2", owner, game.StateWon, 1, now); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"r1", "r2"} {
		if err := s.AbandonRound(ctx, id, owner, now); err != nil {
			t.Fatal(err)
		}
	}

	rounds, err := s.RecentRounds(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	status := map[string]string{}
	for _, r := range rounds {
		status[r.ID] = r.Status
	}
	if status["r1"] != StatusAbandoned || status["r2"] != "won" {
		t.Errorf("statuses = %v", status)
	}
	u, err := s.FindUserByID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.GamesPlayed != 1 || u.Wins != 1 {
		t.Errorf("abandoning changed stats: played %d wins %d", u.GamesPlayed, u.Wins)
	}
}

func TestRoundLifecycleBumpsStats(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	createUser(t, s, "u1", "bob")
	owner := Owner{UserID: "u1"}
	now := time.Now()

	if err := s.StartRound(ctx, "r1", owner, now); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAttempt(ctx, "r1", owner, game.StateInProgress, 1, now); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAttempt(ctx, "r1", owner, game.StateWon, 2, now); err != nil {
		t.Fatal(err)
	}
	// A second finish for the same round must not double count.
	if err := s.RecordAttempt(ctx, "r1", owner, game.StateWon, 2, now); err != nil {
		t.Fatal(err)
	}

	if err := s.StartRound(ctx, "r2", owner, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAttempt(ctx, "r2", owner, game.StateLost, game.MaxGuesses, now); err != nil {
		t.Fatal(err)
	}

	u, err := s.FindUserByID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.GamesPlayed != 2 || u.Wins != 1 || u.Streak != 0 {
		t.Errorf("stats = played %d wins %d streak %d", u.GamesPlayed, u.Wins, u.Streak)
	}

	rounds, err := s.RecentRounds(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != 2 || rounds[0].ID != "r2" || rounds[0].Status != "lost" || rounds[1].Attempts != 2 {
		t.Errorf("RecentRounds() = %+v", rounds)
	}
	if rounds[1].FinishedAt == "" {
		t.Error("finished round has no finished_at")
	}
}

func TestClaimAnonymous(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	createUser(t, s, "u1", "carol")

	anon := Owner{AnonID: "anon-1"}
	if err := s.StartRound(ctx, "r1", anon, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAttempt(ctx, "r1", anon, game.StateInProgress, 3, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.ClaimAnonymous(ctx, "anon-1", "u1"); err != nil {
		t.Fatal(err)
	}
	rounds, err := s.RecentRounds(ctx, "u1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != 1 || rounds[0].Attempts != 3 {
		t.Errorf("RecentRounds() after claim = %+v", rounds)
	}
}
