// internal/game/engine.go
//
// Core game engine for a single Mastermind round.
// Responsibilities:
//   - Generate a secret of Pegs colours from an injected random source.
//   - Validate and convert raw guess tokens into colours.
//   - Score guesses with the two-pass consume algorithm.
//   - Track state transitions: not_started → playing → won/lost.
//
// Notes:
//   - An Engine is owned by exactly one round/session; it is not safe for
//     concurrent use. Adapters serving several clients keep one per session.
//   - The engine never produces user-facing text, only structured results.
package game

// Engine holds the state of one round: the secret, the attempts used and
// the won flag.
type Engine struct {
	src      Source
	secret   Code
	attempts int
	won      bool
	started  bool
	history  []Attempt
}

// New constructs an engine in the not-started state.
// A nil src falls back to CryptoSource.
func New(src Source) *Engine {
	if src == nil {
		src = CryptoSource{}
	}
	return &Engine{src: src}
}

// Initialize starts a fresh round: new random secret, zero attempts, not won.
// It may be called in any state.
func (e *Engine) Initialize() {
	e.secret = RandomCode(e.src)
	e.attempts = 0
	e.won = false
	e.started = true
	e.history = nil
}

// OverrideSecretCode replaces the secret of the current round.
// Intended for tests and fixed-answer configuration, not normal play.
func (e *Engine) OverrideSecretCode(code Code) error {
	if len(code) != Pegs {
		return lengthError(ErrInvalidSecretLength, len(code))
	}
	for _, c := range code {
		if !c.Valid() {
			return &InvalidColorError{Token: string(c)}
		}
	}
	e.secret = code.Clone()
	return nil
}

// IsRoundOver reports whether the attempts are exhausted or the round is won.
func (e *Engine) IsRoundOver() bool {
	return e.attempts >= MaxGuesses || e.won
}

// RemainingAttempts returns MaxGuesses minus the attempts used.
func (e *Engine) RemainingAttempts() int {
	if n := MaxGuesses - e.attempts; n > 0 {
		return n
	}
	return 0
}

// HasWon reports whether the current round was won.
func (e *Engine) HasWon() bool { return e.won }

// Attempts returns the number of scored guesses in the current round.
func (e *Engine) Attempts() int { return e.attempts }

// Secret returns a copy of the current secret.
func (e *Engine) Secret() Code { return e.secret.Clone() }

// History returns the scored attempts of the current round, oldest first.
func (e *Engine) History() []Attempt {
	out := make([]Attempt, len(e.history))
	copy(out, e.history)
	return out
}

// State reports the lifecycle state of the round.
func (e *Engine) State() State {
	switch {
	case !e.started:
		return StateNotStarted
	case e.won:
		return StateWon
	case e.attempts >= MaxGuesses:
		return StateLost
	default:
		return StateInProgress
	}
}

// ValidateAndConvert turns raw tokens into colours.
//
// Validation rules:
//   - Exactly Pegs tokens, else ErrInvalidGuessLength.
//   - Each token must name a colour (case-insensitive), else
//     *InvalidColorError for the first offending token.
//
// It does not touch engine state.
func (e *Engine) ValidateAndConvert(raw []string) (Code, error) {
	if len(raw) != Pegs {
		return nil, lengthError(ErrInvalidGuessLength, len(raw))
	}
	out := make(Code, Pegs)
	for i, tok := range raw {
		c, ok := ParseColor(tok)
		if !ok {
			return nil, &InvalidColorError{Token: tok}
		}
		out[i] = c
	}
	return out, nil
}

// ScoreGuess scores guess against the secret and records the attempt.
//
// State transitions:
//   - All pegs exact → won.
//   - Else if attempts reach MaxGuesses → lost.
//
// Scoring outside a running round returns ErrRoundOver and leaves the
// state untouched.
func (e *Engine) ScoreGuess(guess Code) (Result, error) {
	if !e.started || e.IsRoundOver() {
		return nil, ErrRoundOver
	}
	if len(guess) != Pegs {
		return nil, lengthError(ErrInvalidGuessLength, len(guess))
	}

	res := Score(e.secret, guess)
	e.attempts++
	if res.Win() {
		e.won = true
	}
	e.history = append(e.history, Attempt{Guess: guess.Clone(), Result: res})
	return res, nil
}

// Score evaluates guess against secret. Both must have the same length.
//
// Pass 1: exact matches, left to right; each consumes its secret position.
// Pass 2: for the remaining positions, left to right, claim the first
// unconsumed secret position of the same colour as present.
// Pass 3: everything unresolved is absent.
//
// A secret peg is claimed at most once, so no colour is credited more
// often than it occurs in the secret.
func Score(secret, guess Code) Result {
	n := len(guess)
	res := make(Result, n)
	consumed := make([]bool, len(secret))

	for i := 0; i < n && i < len(secret); i++ {
		if guess[i] == secret[i] {
			res[i] = PegExact
			consumed[i] = true
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == PegExact {
			continue
		}
		for j := range secret {
			if !consumed[j] && secret[j] == guess[i] {
				res[i] = PegPresent
				consumed[j] = true
				break
			}
		}
	}

	for i := range res {
		if res[i] == "" {
			res[i] = PegAbsent
		}
	}
	return res
}
