// internal/game/errors.go
//
// Error kinds raised by the engine. Validation errors are user-correctable
// and never mutate state; adapters turn them into a retry prompt.

package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGuessLength is returned when a guess does not have Pegs tokens.
	ErrInvalidGuessLength = errors.New("invalid guess length")

	// ErrInvalidColor matches any *InvalidColorError via errors.Is.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidSecretLength is returned by OverrideSecretCode for codes
	// that do not have Pegs colours.
	ErrInvalidSecretLength = errors.New("invalid secret length")

	// ErrRoundOver is returned when scoring is attempted outside a running round.
	ErrRoundOver = errors.New("round over")
)

// InvalidColorError carries the raw token that failed colour lookup.
type InvalidColorError struct {
	Token string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("invalid color received: %q", e.Token)
}

// Is lets errors.Is(err, ErrInvalidColor) match.
func (e *InvalidColorError) Is(target error) bool { return target == ErrInvalidColor }

// LengthError reports a guess or secret with the wrong number of pegs.
// It unwraps to ErrInvalidGuessLength or ErrInvalidSecretLength.
type LengthError struct {
	Err error
	Got int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%v: got %d, expected %d", e.Err, e.Got, Pegs)
}

func (e *LengthError) Unwrap() error { return e.Err }

func lengthError(sentinel error, got int) error {
	return &LengthError{Err: sentinel, Got: got}
}
