package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/robalobadob/mastermind/internal/console"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/i18n"
)

var flagNoColor bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Play rounds against a random secret code.

Type four colours per line, separated by spaces or commas:
  red blue green yellow
  Red, BLUE, orange, purple

Colour is used when stdout is a terminal; --no-color turns it off.

Examples:
  mastermind play
  mastermind play --lang fr
  mastermind play --seed 42`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable coloured feedback")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cat, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		return err
	}
	locale := cat.Match(flagLang, envLocale())

	var src game.Source
	if flagSeed != 0 {
		src = game.NewSeededSource(flagSeed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	color := !flagNoColor && term.IsTerminal(int(os.Stdout.Fd()))
	g := console.New(game.New(src), cat, locale, os.Stdin, cmd.OutOrStdout(), console.Options{Color: color})
	if err := g.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	// Ctrl-C at the prompt ends the game like end of input.
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

// envLocale turns $LANG ("fr_FR.UTF-8") into a BCP 47 tag ("fr-FR").
func envLocale() string {
	v := os.Getenv("LANG")
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}
