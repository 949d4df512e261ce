// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start a daily round (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's code
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Every player gets the same secret for a UTC date (HMAC of date + salt).
// Each player can finish the daily once per day; wins are persisted.
// Only today's sessions are kept in memory.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/i18n"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by playerID|date
	mu       sync.Mutex               // guards sessions and their engines
}

// dailySession holds in-memory state for an in-progress daily round.
type dailySession struct {
	GameID string
	UserID string
	Date   string
	Engine *game.Engine
	Start  time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// playerID returns the authenticated user ID if logged in, otherwise the
// anonymous cookie id.
func (d *dailyServer) playerID(w http.ResponseWriter, r *http.Request) string {
	if me := userFromContext(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID     string `json:"gameId"`
	Date       string `json:"date"`
	Played     bool   `json:"played"`
	Pegs       int    `json:"pegs"`
	MaxGuesses int    `json:"maxGuesses"`
}

// handleNew creates or reuses today's session.
// - If the player already has a result for today → Played=true.
// - Otherwise an engine is seeded with today's secret.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.playerID(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)
	res := dailyNewRes{Date: date, Pegs: game.Pegs, MaxGuesses: game.MaxGuesses}

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily lookup")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "db_error"})
		return
	}
	if played {
		res.Played = true
		writeJSON(w, http.StatusOK, res)
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked(date)
	if sess, ok := d.sessions[key]; ok {
		res.GameID = sess.GameID
		res.Played = sess.Engine.IsRoundOver()
		writeJSON(w, http.StatusOK, res)
		return
	}

	e := game.New(nil)
	e.Initialize()
	if err := e.OverrideSecretCode(daily.Secret(now, d.salt)); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily secret")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal"})
		return
	}
	sess := &dailySession{
		GameID: uuid.NewString(),
		UserID: uid,
		Date:   date,
		Engine: e,
		Start:  now,
	}
	d.sessions[key] = sess
	res.GameID = sess.GameID
	writeJSON(w, http.StatusOK, res)
}

// pruneLocked drops sessions from earlier dates. Callers hold d.mu.
func (d *dailyServer) pruneLocked(date string) {
	for key, sess := range d.sessions {
		if sess.Date != date {
			delete(d.sessions, key)
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/guess

// handleGuess validates and scores a guess against today's code.
// A win is persisted with the elapsed time; finished rounds answer 409.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid := d.playerID(w, r)

	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	tokens, err := decodeGuess(req.Guess)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}

	now := d.srv.now()
	date := daily.DateKey(now)
	loc := d.srv.locale(r, "")

	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[uid+"|"+date]
	if !ok || sess.GameID != req.GameID {
		writeJSON(w, http.StatusConflict, errorRes{Error: "no_session"})
		return
	}
	e := sess.Engine
	guess, err := e.ValidateAndConvert(tokens)
	if err != nil {
		d.srv.writeGameError(w, r, loc, err)
		return
	}
	res, err := e.ScoreGuess(guess)
	if err != nil {
		d.srv.writeGameError(w, r, loc, err)
		return
	}

	out := guessRes{
		Pegs:      res,
		Colors:    make([]game.Color, len(res)),
		Feedback:  d.srv.cat.Pegs(loc, res),
		State:     e.State(),
		Attempts:  e.Attempts(),
		Remaining: e.RemainingAttempts(),
	}
	for i, p := range res {
		out.Colors[i] = p.Color()
	}
	switch out.State {
	case game.StateWon:
		out.Message = d.srv.cat.Text(loc, i18n.KeyWin, nil)
		err := d.store.InsertResult(r.Context(), daily.Result{
			UserID:    uid,
			Date:      date,
			Attempts:  e.Attempts(),
			ElapsedMs: int(now.Sub(sess.Start).Milliseconds()),
		})
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("insert daily result")
		}
	case game.StateLost:
		out.Secret = e.Secret()
		out.Message = d.srv.cat.Text(loc, i18n.KeyLose, i18n.Args{"secret": out.Secret.String()})
	default:
		out.Message = d.srv.cat.Text(loc, i18n.KeyRemaining, i18n.Args{"remaining": out.Remaining})
	}
	writeJSON(w, http.StatusOK, out)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "db_error"})
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
