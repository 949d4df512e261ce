// internal/console/console.go
//
// Line-oriented terminal adapter.
// Responsibilities:
//   - Print the localized welcome banner and prompts.
//   - Read one guess per line, tokenize it and hand it to the engine.
//   - Render per-peg feedback (optionally coloured) and the round outcome.
//   - Ask whether to play again; rounds are only reset on a "yes".
//
// Validation errors are printed and the player is re-prompted; they never
// end the loop. End of input ends the session without error.

package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/i18n"
	"github.com/robalobadob/mastermind/internal/input"
)

// Options tunes presentation.
type Options struct {
	// Color renders pegs with ANSI colours.
	Color bool
}

// Game drives one engine from a line reader.
type Game struct {
	engine *game.Engine
	cat    *i18n.Catalog
	locale string
	in     *bufio.Scanner
	out    io.Writer
	styles map[game.Peg]lipgloss.Style

	// lines is fed by a single reader goroutine so ask can give up on
	// ctx while the scanner is blocked.
	lines     chan line
	startRead sync.Once
}

type line struct {
	text string
	err  error
}

// New wires an engine to in/out. The engine is initialized by Run unless
// the caller already started a round.
func New(e *game.Engine, cat *i18n.Catalog, locale string, in io.Reader, out io.Writer, opts Options) *Game {
	g := &Game{
		engine: e,
		cat:    cat,
		locale: locale,
		in:     bufio.NewScanner(in),
		out:    out,
		lines:  make(chan line),
	}
	if opts.Color {
		r := lipgloss.NewRenderer(out)
		g.styles = map[game.Peg]lipgloss.Style{
			game.PegExact:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
			game.PegPresent: r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
			game.PegAbsent:  r.NewStyle().Foreground(lipgloss.Color("1")),
		}
	}
	return g
}

// Run plays rounds until the player declines another one, input ends,
// or ctx is cancelled. Cancellation returns ctx.Err() without waiting for
// the pending line.
func (g *Game) Run(ctx context.Context) error {
	if g.engine.State() == game.StateNotStarted {
		g.engine.Initialize()
	}
	if err := g.println(g.cat.Welcome(g.locale)); err != nil {
		return err
	}

	for {
		done, err := g.playRound(ctx)
		if err != nil || done {
			return err
		}

		again, err := g.ask(ctx, g.cat.Text(g.locale, i18n.KeyPlayAgain, nil))
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		confirm := g.cat.Text(g.locale, i18n.KeyConfirm, nil)
		if !strings.EqualFold(strings.TrimSpace(again), confirm) {
			return g.println(g.cat.Text(g.locale, i18n.KeyGoodbye, nil))
		}
		g.engine.Initialize()
		log.Debug().Msg("new round")
	}
}

// playRound prompts for guesses until the round ends. done is true when
// input ran out before the round finished.
func (g *Game) playRound(ctx context.Context) (done bool, err error) {
	for !g.engine.IsRoundOver() {
		line, err := g.ask(ctx, g.cat.Text(g.locale, i18n.KeyPrompt, nil))
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return true, err
		}

		guess, err := g.engine.ValidateAndConvert(input.Tokenize(line))
		if err != nil {
			msg, ok := g.cat.ErrorMessage(g.locale, err)
			if !ok {
				return true, err
			}
			if err := g.println(msg); err != nil {
				return true, err
			}
			continue
		}

		res, err := g.engine.ScoreGuess(guess)
		if err != nil {
			return true, fmt.Errorf("score guess: %w", err)
		}
		log.Debug().Int("attempt", g.engine.Attempts()).Str("guess", guess.String()).Msg("scored")

		if err := g.println(g.render(res)); err != nil {
			return true, err
		}
		if !g.engine.IsRoundOver() {
			msg := g.cat.Text(g.locale, i18n.KeyRemaining, i18n.Args{"remaining": g.engine.RemainingAttempts()})
			if err := g.println(msg); err != nil {
				return true, err
			}
		}
	}

	if g.engine.HasWon() {
		return false, g.println(g.cat.Text(g.locale, i18n.KeyWin, nil))
	}
	return false, g.println(g.cat.Text(g.locale, i18n.KeyLose, i18n.Args{"secret": g.engine.Secret().String()}))
}

// ask writes prompt and reads one line. It returns io.EOF when input ends
// and ctx.Err() as soon as ctx is cancelled, even mid-read.
func (g *Game) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(g.out, prompt); err != nil {
		return "", err
	}
	g.startRead.Do(func() { go g.readLines() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-g.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// readLines scans input until it ends. It blocks on each send until the
// next ask, so at most one line is read ahead.
func (g *Game) readLines() {
	defer close(g.lines)
	for g.in.Scan() {
		g.lines <- line{text: g.in.Text()}
	}
	if err := g.in.Err(); err != nil {
		g.lines <- line{err: fmt.Errorf("read input: %w", err)}
	}
}

func (g *Game) render(res game.Result) string {
	if g.styles == nil {
		return g.cat.FormatResult(g.locale, res)
	}
	names := g.cat.Pegs(g.locale, res)
	for i, p := range res {
		names[i] = g.styles[p].Render(names[i])
	}
	return strings.Join(names, " - ")
}

func (g *Game) println(s string) error {
	_, err := fmt.Fprintln(g.out, s)
	return err
}
