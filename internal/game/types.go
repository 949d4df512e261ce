// internal/game/types.go
//
// Core type definitions for the Mastermind engine.
// Defines:
//   - Color: one of the six peg colours.
//   - Code: an ordered sequence of colours (secret or guess).
//   - Peg / Result: per-position evaluation of a guess.
//   - State: coarse lifecycle of a round.

package game

import "strings"

const (
	// Pegs is the number of positions in a code.
	Pegs = 4
	// MaxGuesses is the number of attempts per round.
	MaxGuesses = 10
)

// Color is a canonical (uppercase) peg colour.
type Color string

const (
	Red    Color = "RED"
	Blue   Color = "BLUE"
	Green  Color = "GREEN"
	Yellow Color = "YELLOW"
	Orange Color = "ORANGE"
	Purple Color = "PURPLE"
)

// Colors is the fixed colour set, in draw order.
var Colors = []Color{Red, Blue, Green, Yellow, Orange, Purple}

// ParseColor normalizes s to a canonical colour.
// Surrounding whitespace is ignored and matching is case-insensitive.
func ParseColor(s string) (Color, bool) {
	c := Color(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Colors {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is a member of the fixed colour set.
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// Code is an ordered sequence of colours. Repeats are allowed.
type Code []Color

// Clone returns an independent copy of c.
func (c Code) Clone() Code {
	if c == nil {
		return nil
	}
	out := make(Code, len(c))
	copy(out, c)
	return out
}

func (c Code) String() string {
	parts := make([]string, len(c))
	for i, col := range c {
		parts[i] = string(col)
	}
	return strings.Join(parts, " ")
}

// Peg is the evaluation of a single guessed position.
//   - "exact":   right colour, right position.
//   - "present": colour occurs elsewhere (unclaimed) in the secret.
//   - "absent":  colour not matched at all.
type Peg string

const (
	PegExact   Peg = "exact"
	PegPresent Peg = "present"
	PegAbsent  Peg = "absent"
)

// Color returns the conventional rendering colour for the peg
// (GREEN / YELLOW / RED).
func (p Peg) Color() Color {
	switch p {
	case PegExact:
		return Green
	case PegPresent:
		return Yellow
	default:
		return Red
	}
}

// Result is the ordered feedback for one attempt, one peg per position.
type Result []Peg

// Win reports whether every peg is an exact match.
func (r Result) Win() bool {
	if len(r) == 0 {
		return false
	}
	for _, p := range r {
		if p != PegExact {
			return false
		}
	}
	return true
}

// Counts returns the number of exact and present pegs.
func (r Result) Counts() (exact, present int) {
	for _, p := range r {
		switch p {
		case PegExact:
			exact++
		case PegPresent:
			present++
		}
	}
	return exact, present
}

// Attempt is one scored guess of the current round.
type Attempt struct {
	Guess  Code   `json:"guess"`
	Result Result `json:"result"`
}

// State is the lifecycle of a round.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "playing"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Over reports whether s is terminal.
func (s State) Over() bool { return s == StateWon || s == StateLost }
