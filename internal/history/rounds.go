// internal/history/rounds.go
//
// Persistence of played rounds and per-user statistics.
// Rounds are owned either by a user account or by an anonymous cookie id;
// anonymous rounds are claimed when the player signs up or logs in.
// The secret code is never stored.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

// Store wraps the sqlite handle for round and user rows.
type Store struct{ db *sql.DB }

// NewStore returns a Store over db. Migrations must have been applied.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Owner identifies who played a round. Exactly one field is set.
type Owner struct {
	UserID string
	AnonID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return `user_id=?`, o.UserID
	}
	return `anonymous_id=?`, o.AnonID
}

// Round is a row of the rounds table.
type Round struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// StartRound inserts a new playing round for owner.
func (s *Store) StartRound(ctx context.Context, id string, owner Owner, at time.Time) error {
	var userID, anonID any
	if owner.UserID != "" {
		userID = owner.UserID
	} else {
		anonID = owner.AnonID
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO rounds (id, user_id, anonymous_id, status, attempts, started_at)
        VALUES (?, ?, ?, ?, 0, ?)`,
		id, userID, anonID, string(game.StateInProgress), at.UTC().Format(time.RFC3339))
	return err
}

// RecordAttempt stores the attempt count of a running round and, when the
// round is over, its final status. Finishing a round owned by a user also
// bumps that user's statistics in the same transaction.
func (s *Store) RecordAttempt(ctx context.Context, id string, owner Owner, state game.State, attempts int, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	clause, arg := owner.clause()
	if !state.Over() {
		if _, err := tx.ExecContext(ctx, `UPDATE rounds SET attempts=? WHERE id=? AND `+clause, attempts, id, arg); err != nil {
			return fmt.Errorf("update attempts: %w", err)
		}
		return tx.Commit()
	}

	res, err := tx.ExecContext(ctx, `UPDATE rounds SET attempts=?, status=?, finished_at=?
                                     WHERE id=? AND finished_at IS NULL AND `+clause,
		attempts, string(state), at.UTC().Format(time.RFC3339), id, arg)
	if err != nil {
		return fmt.Errorf("finish round: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 && owner.UserID != "" {
		if err := bumpStats(ctx, tx, owner.UserID, state == game.StateWon); err != nil {
			return fmt.Errorf("bump stats: %w", err)
		}
	}
	return tx.Commit()
}

// StatusAbandoned marks a round replaced by a reset before it finished.
const StatusAbandoned = "abandoned"

// AbandonRound closes an unfinished round without touching statistics.
// Finished rounds are left as they are.
func (s *Store) AbandonRound(ctx context.Context, id string, owner Owner, at time.Time) error {
	clause, arg := owner.clause()
	_, err := s.db.ExecContext(ctx, `UPDATE rounds SET status=?, finished_at=?
                                     WHERE id=? AND finished_at IS NULL AND `+clause,
		StatusAbandoned, at.UTC().Format(time.RFC3339), id, arg)
	return err
}

// ClaimAnonymous transfers anonymous rounds to a user account.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE rounds SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// RecentRounds lists a user's rounds, newest first.
func (s *Store) RecentRounds(ctx context.Context, userID string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, status, attempts, started_at, COALESCE(finished_at, '')
        FROM rounds WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.Status, &r.Attempts, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// bumpStats increments games played; updates wins and streak based on result.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	row := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}
