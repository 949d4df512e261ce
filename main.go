// mastermind is a code-breaking game for the terminal and over HTTP.
//
// Usage:
//
//	mastermind play          - Play in the terminal
//	mastermind serve         - Start the JSON HTTP API
//
// Global flags:
//
//	--lang <tag>    - Message language (en, fr)
//	--seed <value>  - RNG seed for reproducible secrets (0 = random)
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/config"
)

var (
	// Global flags
	flagLang string
	flagSeed uint64

	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mastermind",
	Short: "Mastermind - crack the secret colour code",
	Long: `Mastermind hides a code of 4 colours picked from RED, BLUE, GREEN,
YELLOW, ORANGE and PURPLE. You have 10 guesses to find it.

Each guess is answered with one peg per position:
  GREEN  - right colour, right position
  YELLOW - colour is in the code, elsewhere
  RED    - no further match

Examples:
  mastermind play
  mastermind play --lang fr
  mastermind serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		setupLogging(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "Message language (default: DEFAULT_LOCALE or $LANG)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = cryptographically random)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogging(c config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
