package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/i18n"
)

func setup(t *testing.T, locale, script string, secret game.Code) (*Game, *game.Engine, *bytes.Buffer) {
	t.Helper()
	cat, err := i18n.Load("en")
	if err != nil {
		t.Fatal(err)
	}
	e := game.New(game.NewSeededSource(3))
	e.Initialize()
	if err := e.OverrideSecretCode(secret); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	return New(e, cat, locale, strings.NewReader(script), &out, Options{}), e, &out
}

func TestRunWinAndQuit(t *testing.T) {
	script := strings.Join([]string{
		"red, blue, orange, orange",
		"blue red green yellow",
		"n",
	}, "\n")
	g, e, out := setup(t, "en", script, game.Code{game.Blue, game.Red, game.Green, game.Yellow})

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Welcome to Mastermind!",
		"YELLOW - YELLOW - RED - RED",
		"9 guesses left.",
		"GREEN - GREEN - GREEN - GREEN",
		"You win!",
		"Play again? (y/n): ",
		"Goodbye!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if !e.HasWon() || e.Attempts() != 2 {
		t.Errorf("won=%v attempts=%d", e.HasWon(), e.Attempts())
	}
}

func TestRunValidationErrorsReprompt(t *testing.T) {
	script := strings.Join([]string{
		"reddy blue green yellow",
		"red blue green",
		"",
		"red red red red",
	}, "\n")
	g, e, out := setup(t, "en", script, game.Code{game.Red, game.Red, game.Red, game.Red})

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Invalid color received: reddy") {
		t.Errorf("missing invalid colour message:\n%s", got)
	}
	if !strings.Contains(got, "Invalid number of colors received: 3. Expected: 4") {
		t.Errorf("missing invalid length message:\n%s", got)
	}
	if !strings.Contains(got, "Invalid number of colors received: 0. Expected: 4") {
		t.Errorf("missing empty line message:\n%s", got)
	}
	if e.Attempts() != 1 || !e.HasWon() {
		t.Errorf("attempts=%d won=%v; validation errors must not count", e.Attempts(), e.HasWon())
	}
	if n := strings.Count(got, "Enter your guess: "); n != 4 {
		t.Errorf("prompted %d times, want 4", n)
	}
}

func TestRunLoseRevealsSecret(t *testing.T) {
	lines := make([]string, game.MaxGuesses)
	for i := range lines {
		lines[i] = "red red red red"
	}
	g, e, out := setup(t, "en", strings.Join(lines, "\n"), game.Code{game.Blue, game.Blue, game.Green, game.Purple})

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "You lose! The secret code was: BLUE BLUE GREEN PURPLE") {
		t.Errorf("missing lose message:\n%s", got)
	}
	if e.State() != game.StateLost {
		t.Errorf("State() = %s", e.State())
	}
	if strings.Contains(got, "0 guesses left.") {
		t.Error("remaining line printed after the last attempt")
	}
}

func TestRunPlayAgainReinitializes(t *testing.T) {
	script := strings.Join([]string{
		"green green green green",
		"y",
	}, "\n")
	g, e, out := setup(t, "en", script, game.Code{game.Green, game.Green, game.Green, game.Green})

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if e.State() != game.StateInProgress || e.Attempts() != 0 {
		t.Errorf("after play again: state=%s attempts=%d", e.State(), e.Attempts())
	}
	if strings.Count(out.String(), "Enter your guess: ") != 2 {
		t.Errorf("expected a prompt for the second round:\n%s", out.String())
	}
}

func TestRunFrench(t *testing.T) {
	script := "rouge bleu vert jaune\nblue red green yellow\nn\n"
	g, _, out := setup(t, "fr", script, game.Code{game.Blue, game.Red, game.Green, game.Yellow})

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Bienvenue à Mastermind!", "Couleur invalide reçue: rouge", "VERT - VERT - VERT - VERT", "Vous gagnez!", "Au revoir!"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	g, _, _ := setup(t, "en", "red red red red\n", game.Code{game.Blue, game.Blue, game.Blue, game.Blue})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

// promptWriter signals once the first guess prompt has been written.
type promptWriter struct {
	once     sync.Once
	prompted chan struct{}
}

func (w *promptWriter) Write(p []byte) (int, error) {
	if strings.Contains(string(p), "Enter your guess") {
		w.once.Do(func() { close(w.prompted) })
	}
	return len(p), nil
}

func TestRunCancelledWhileWaitingForInput(t *testing.T) {
	cat, err := i18n.Load("en")
	if err != nil {
		t.Fatal(err)
	}
	pr, pw := io.Pipe()
	defer pw.Close()
	out := &promptWriter{prompted: make(chan struct{})}
	g := New(game.New(game.NewSeededSource(1)), cat, "en", pr, out, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	select {
	case <-out.prompted:
	case <-time.After(time.Second):
		t.Fatal("no prompt written")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel while blocked on input")
	}
}

func TestRenderPlain(t *testing.T) {
	cat, err := i18n.Load("en")
	if err != nil {
		t.Fatal(err)
	}
	g := New(game.New(nil), cat, "fr", strings.NewReader(""), io.Discard, Options{})
	got := g.render(game.Result{game.PegExact, game.PegPresent, game.PegAbsent, game.PegAbsent})
	if got != "VERT - JAUNE - ROUGE - ROUGE" {
		t.Errorf("render() = %q", got)
	}
}

func TestRenderColored(t *testing.T) {
	cat, err := i18n.Load("en")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	g := New(game.New(nil), cat, "en", strings.NewReader(""), &out, Options{Color: true})
	got := g.render(game.Result{game.PegExact, game.PegPresent, game.PegAbsent, game.PegAbsent})
	for _, name := range []string{"GREEN", "YELLOW", "RED"} {
		if !strings.Contains(got, name) {
			t.Errorf("render() = %q, missing %s", got, name)
		}
	}
}
