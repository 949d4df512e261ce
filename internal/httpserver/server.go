// internal/httpserver/server.go
//
// HTTP server wiring for the Mastermind backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     zerolog access logs).
//   - Public endpoints: "/", "/health", "/i18n".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess,
//     POST /game/reset, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Every session owns its own engine; requests on one session are
//     serialized by the session lock and limited to its owner (account or
//     anonymous cookie).
//   - Finished rounds are never reset implicitly; clients call /game/reset,
//     which marks an unfinished round abandoned.
//   - Round history is persisted best effort; a DB failure never fails a guess.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/history"
	"github.com/robalobadob/mastermind/internal/i18n"
	"github.com/robalobadob/mastermind/internal/input"
	"github.com/robalobadob/mastermind/internal/store"
)

// Options carries the server's collaborators.
type Options struct {
	Config   config.Config
	Catalog  *i18n.Catalog
	Sessions store.Store
	DB       *sql.DB

	// NewSource returns the random source for a new engine.
	// Defaults to game.CryptoSource.
	NewSource func() game.Source
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server bundles router, session store, catalog and DB-backed stores.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	cat      *i18n.Catalog
	sessions store.Store
	history  *history.Store
	db       *sql.DB
	daily    *dailyServer

	newSource func() game.Source
	now       func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		cfg:       opts.Config,
		cat:       opts.Catalog,
		sessions:  opts.Sessions,
		history:   history.NewStore(opts.DB),
		db:        opts.DB,
		newSource: opts.NewSource,
		now:       opts.Now,
	}
	if s.newSource == nil {
		s.newSource = func() game.Source { return game.CryptoSource{} }
	}
	if s.now == nil {
		s.now = time.Now
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(requestIDLogger)                 // tag logs with the chi request id
	s.r.Use(hlog.AccessHandler(accessLog))   // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"mastermind-go","endpoints":["/health","/i18n","POST /game/new","POST /game/guess","POST /game/reset","GET /game/{id}","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/i18n", s.handleI18n)

	// Game endpoints — OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/reset", s.handleReset)
		r.Get("/game/{id}", s.handleGetGame)
	})

	// Daily Challenge — OPTIONAL AUTH (guests can play; result persisted on win)
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/stats
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	// Debug: live sessions
	s.r.Get("/debug/sessions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"sessions": s.sessions.Len()})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Handler exposes the router (useful for tests and custom http.Server setups).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ helpers ------------------------------------

// errorRes is the body of every structured error response.
type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// locale negotiates the response locale: explicit body value, then ?lang=,
// then Accept-Language.
func (s *Server) locale(r *http.Request, explicit string) string {
	return s.cat.Match(explicit, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// writeGameError maps engine errors to HTTP responses.
// Validation errors are 400 with a localized message, round over is 409.
func (s *Server) writeGameError(w http.ResponseWriter, r *http.Request, locale string, err error) {
	msg, _ := s.cat.ErrorMessage(locale, err)
	var colorErr *game.InvalidColorError
	switch {
	case errors.Is(err, game.ErrRoundOver):
		writeJSON(w, http.StatusConflict, errorRes{Error: "round_over", Message: msg})
	case errors.As(err, &colorErr):
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "invalid_color", Message: msg, Token: colorErr.Token})
	case errors.Is(err, game.ErrInvalidGuessLength):
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "invalid_guess_length", Message: msg})
	case errors.Is(err, game.ErrInvalidSecretLength):
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "invalid_secret_length", Message: msg})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("game error")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal"})
	}
}

// decodeGuess accepts either a JSON string ("red blue green yellow") or an
// array of tokens.
func decodeGuess(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var tokens []string
	if err := json.Unmarshal(raw, &tokens); err == nil {
		return tokens, nil
	}
	var line string
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, err
	}
	return input.Tokenize(line), nil
}

// ------------------------------ i18n ---------------------------------------

type i18nRes struct {
	Locale     string       `json:"locale"`
	Name       string       `json:"name"`
	Default    string       `json:"default"`
	Locales    []string     `json:"locales"`
	Welcome    string       `json:"welcome"`
	Colors     []game.Color `json:"colors"`
	Pegs       int          `json:"pegs"`
	MaxGuesses int          `json:"maxGuesses"`
}

func (s *Server) handleI18n(w http.ResponseWriter, r *http.Request) {
	loc := s.locale(r, "")
	_ = json.NewEncoder(w).Encode(i18nRes{
		Locale:     loc,
		Name:       s.cat.Name(loc),
		Default:    s.cat.Fallback(),
		Locales:    s.cat.Locales(),
		Welcome:    s.cat.Welcome(loc),
		Colors:     game.Colors,
		Pegs:       game.Pegs,
		MaxGuesses: game.MaxGuesses,
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Lang   string   `json:"lang"`
	Secret []string `json:"secret"` // fixed secret; only with ALLOW_SECRET_OVERRIDE
}
type newGameRes struct {
	GameID     string       `json:"gameId"`
	Locale     string       `json:"locale"`
	Pegs       int          `json:"pegs"`
	MaxGuesses int          `json:"maxGuesses"`
	Colors     []game.Color `json:"colors"`
	State      game.State   `json:"state"`
	Message    string       `json:"message"`
}

// handleNewGame creates a session with a fresh engine and persists a round
// row for the owner (user or anonymous cookie).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	loc := s.locale(r, req.Lang)

	e := game.New(s.newSource())
	e.Initialize()
	if len(req.Secret) > 0 {
		if !s.cfg.AllowSecretOverride {
			writeJSON(w, http.StatusForbidden, errorRes{Error: "secret_override_disabled"})
			return
		}
		if err := e.OverrideSecretCode(parseSecret(req.Secret)); err != nil {
			s.writeGameError(w, r, loc, err)
			return
		}
	}

	sess := &store.Session{
		ID:        uuid.NewString(),
		RoundID:   uuid.NewString(),
		Locale:    loc,
		Engine:    e,
		CreatedAt: s.now().UTC(),
	}
	if me := userFromContext(r); me != nil {
		sess.UserID = me.ID
	} else {
		sess.AnonID = s.ensureAnonID(w, r)
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save session")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "save_failed"})
		return
	}
	s.startRound(r, sess)

	writeJSON(w, http.StatusOK, newGameRes{
		GameID:     sess.ID,
		Locale:     loc,
		Pegs:       game.Pegs,
		MaxGuesses: game.MaxGuesses,
		Colors:     game.Colors,
		State:      e.State(),
		Message:    s.cat.Welcome(loc),
	})
}

// parseSecret normalizes known colours and keeps unknown tokens verbatim so
// OverrideSecretCode can report them.
func parseSecret(tokens []string) game.Code {
	code := make(game.Code, len(tokens))
	for i, tok := range tokens {
		if c, ok := game.ParseColor(tok); ok {
			code[i] = c
		} else {
			code[i] = game.Color(tok)
		}
	}
	return code
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string          `json:"gameId"`
	Guess  json.RawMessage `json:"guess"`
}
type guessRes struct {
	Pegs      game.Result  `json:"pegs"`     // exact | present | absent
	Colors    []game.Color `json:"colors"`   // GREEN | YELLOW | RED
	Feedback  []string     `json:"feedback"` // localized peg names
	State     game.State   `json:"state"`
	Attempts  int          `json:"attempts"`
	Remaining int          `json:"remaining"`
	Message   string       `json:"message"`
	Secret    game.Code    `json:"secret,omitempty"` // revealed on loss
}

// handleGuess validates and scores a guess on the session's engine, then
// records progress for history/stats.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
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
	sess, err := s.sessions.Get(r.Context(), req.GameID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorRes{Error: "not_found"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if !s.claimSession(r, sess) {
		writeJSON(w, http.StatusForbidden, errorRes{Error: "forbidden"})
		return
	}

	loc := sess.Locale
	if q := r.URL.Query().Get("lang"); q != "" {
		loc = s.cat.Match(q)
	}
	e := sess.Engine
	if e.IsRoundOver() {
		s.writeGameError(w, r, loc, game.ErrRoundOver)
		return
	}
	guess, err := e.ValidateAndConvert(tokens)
	if err != nil {
		s.writeGameError(w, r, loc, err)
		return
	}
	res, err := e.ScoreGuess(guess)
	if err != nil {
		s.writeGameError(w, r, loc, err)
		return
	}
	s.recordAttempt(r, sess)

	out := guessRes{
		Pegs:      res,
		Colors:    make([]game.Color, len(res)),
		Feedback:  s.cat.Pegs(loc, res),
		State:     e.State(),
		Attempts:  e.Attempts(),
		Remaining: e.RemainingAttempts(),
	}
	for i, p := range res {
		out.Colors[i] = p.Color()
	}
	switch out.State {
	case game.StateWon:
		out.Message = s.cat.Text(loc, i18n.KeyWin, nil)
	case game.StateLost:
		out.Secret = e.Secret()
		out.Message = s.cat.Text(loc, i18n.KeyLose, i18n.Args{"secret": out.Secret.String()})
	default:
		out.Message = s.cat.Text(loc, i18n.KeyRemaining, i18n.Args{"remaining": out.Remaining})
	}
	writeJSON(w, http.StatusOK, out)
}

type resetReq struct {
	GameID string `json:"gameId"`
}

// handleReset starts a new round on an existing session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	sess, err := s.sessions.Get(r.Context(), req.GameID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorRes{Error: "not_found"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if !s.claimSession(r, sess) {
		writeJSON(w, http.StatusForbidden, errorRes{Error: "forbidden"})
		return
	}

	s.abandonRound(r, sess)
	sess.Engine.Initialize()
	sess.RoundID = uuid.NewString()
	s.startRound(r, sess)

	writeJSON(w, http.StatusOK, newGameRes{
		GameID:     sess.ID,
		Locale:     sess.Locale,
		Pegs:       game.Pegs,
		MaxGuesses: game.MaxGuesses,
		Colors:     game.Colors,
		State:      sess.Engine.State(),
		Message:    s.cat.Welcome(sess.Locale),
	})
}

type snapshotRes struct {
	GameID    string         `json:"gameId"`
	State     game.State     `json:"state"`
	Attempts  int            `json:"attempts"`
	Remaining int            `json:"remaining"`
	History   []game.Attempt `json:"history"`
	Secret    game.Code      `json:"secret,omitempty"`
}

// handleGetGame returns the session's current round. The secret is only
// included once the round is over.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorRes{Error: "not_found"})
		return
	}
	sess.Lock()
	defer sess.Unlock()

	if !s.claimSession(r, sess) {
		writeJSON(w, http.StatusForbidden, errorRes{Error: "forbidden"})
		return
	}

	e := sess.Engine
	out := snapshotRes{
		GameID:    sess.ID,
		State:     e.State(),
		Attempts:  e.Attempts(),
		Remaining: e.RemainingAttempts(),
		History:   e.History(),
	}
	if e.IsRoundOver() {
		out.Secret = e.Secret()
	}
	writeJSON(w, http.StatusOK, out)
}

// ----------------------------- persistence ---------------------------------

func owner(sess *store.Session) history.Owner {
	return history.Owner{UserID: sess.UserID, AnonID: sess.AnonID}
}

// claimSession reports whether the caller owns sess. A guest session is
// adopted by the account its anonymous cookie has signed in to, so the rest
// of the round is recorded for that user.
func (s *Server) claimSession(r *http.Request, sess *store.Session) bool {
	me := userFromContext(r)
	if sess.UserID != "" {
		return me != nil && me.ID == sess.UserID
	}
	c, err := r.Cookie(anonCookieName)
	if err != nil || c.Value == "" || c.Value != sess.AnonID {
		return false
	}
	if me != nil {
		if err := s.history.ClaimAnonymous(r.Context(), sess.AnonID, me.ID); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("roundId", sess.RoundID).Msg("claim anon rounds")
		}
		sess.UserID, sess.AnonID = me.ID, ""
	}
	return true
}

func (s *Server) startRound(r *http.Request, sess *store.Session) {
	if err := s.history.StartRound(r.Context(), sess.RoundID, owner(sess), s.now()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("roundId", sess.RoundID).Msg("insert round row")
	}
}

func (s *Server) abandonRound(r *http.Request, sess *store.Session) {
	if err := s.history.AbandonRound(r.Context(), sess.RoundID, owner(sess), s.now()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("roundId", sess.RoundID).Msg("abandon round")
	}
}

func (s *Server) recordAttempt(r *http.Request, sess *store.Session) {
	e := sess.Engine
	if err := s.history.RecordAttempt(r.Context(), sess.RoundID, owner(sess), e.State(), e.Attempts(), s.now()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("roundId", sess.RoundID).Msg("record attempt")
	}
}
