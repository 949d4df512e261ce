// internal/i18n/catalog.go
//
// Locale message tables for the adapters.
// Responsibilities:
//   - Parse per-locale YAML tables (embedded in assets/locales).
//   - Negotiate a locale from ?lang= values or Accept-Language headers.
//   - Render messages with {name} placeholders, peg names and validation errors.
//
// The engine never sees this package; it only returns structured results.

package i18n

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/mastermind/assets"
	"github.com/robalobadob/mastermind/internal/game"
)

// Message keys shared by every locale table.
const (
	KeyWelcome       = "welcome"
	KeyPrompt        = "prompt"
	KeyWin           = "win"
	KeyLose          = "lose"
	KeyRemaining     = "remaining"
	KeyInvalidColor  = "invalid_color"
	KeyInvalidLength = "invalid_length"
	KeyRoundOver     = "round_over"
	KeyPlayAgain     = "play_again"
	KeyConfirm       = "confirm"
	KeyGoodbye       = "goodbye"
)

// Args holds placeholder values for a message.
type Args map[string]any

// table is the YAML shape of one locale file.
type table struct {
	Name     string            `yaml:"name"`
	Messages map[string]string `yaml:"messages"`
	Pegs     map[string]string `yaml:"pegs"`
}

// Catalog is an immutable set of locale tables.
type Catalog struct {
	tables   map[string]*table
	codes    []string // codes[i] matches tags[i]; fallback first
	tags     []language.Tag
	matcher  language.Matcher
	fallback string
}

// Load parses the embedded locale tables.
func Load(fallback string) (*Catalog, error) {
	raw, err := assets.Locales()
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	return New(raw, fallback)
}

// New builds a catalog from raw YAML tables keyed by locale code.
// fallback must be one of the keys.
func New(raw map[string][]byte, fallback string) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]*table, len(raw)), fallback: fallback}
	for code, b := range raw {
		var t table
		if err := yaml.Unmarshal(b, &t); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", code, err)
		}
		c.tables[code] = &t
	}
	if _, ok := c.tables[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %q not found", fallback)
	}

	codes := make([]string, 0, len(c.tables))
	for code := range c.tables {
		if code != fallback {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	codes = append([]string{fallback}, codes...)

	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", code, err)
		}
		c.tags = append(c.tags, tag)
	}
	c.codes = codes
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Locales lists the available locale codes, fallback first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.codes...)
}

// Fallback returns the default locale code.
func (c *Catalog) Fallback() string { return c.fallback }

// Name returns the display name of a locale.
func (c *Catalog) Name(locale string) string {
	return c.table(locale).Name
}

// Match picks the best locale for the given preferences, in priority order.
// Each preference may be a single tag ("fr") or an Accept-Language value.
// Empty or unparsable preferences are skipped.
func (c *Catalog) Match(prefs ...string) string {
	for _, p := range prefs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := c.matcher.Match(tags...)
		if conf == language.No {
			continue
		}
		return c.codes[idx]
	}
	return c.fallback
}

// Text renders key in locale, substituting {name} placeholders from args.
// Missing keys fall back to the default locale, then to the key itself.
func (c *Catalog) Text(locale, key string, args Args) string {
	msg, ok := c.table(locale).Messages[key]
	if !ok {
		if msg, ok = c.tables[c.fallback].Messages[key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, 2*len(args))
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Welcome renders the welcome banner with the game constants filled in.
func (c *Catalog) Welcome(locale string) string {
	return c.Text(locale, KeyWelcome, Args{"max_guesses": game.MaxGuesses, "pegs": game.Pegs})
}

// Peg returns the localized name of a feedback peg.
func (c *Catalog) Peg(locale string, p game.Peg) string {
	if s, ok := c.table(locale).Pegs[string(p)]; ok {
		return s
	}
	if s, ok := c.tables[c.fallback].Pegs[string(p)]; ok {
		return s
	}
	return string(p.Color())
}

// Pegs returns the localized peg names of a result.
func (c *Catalog) Pegs(locale string, res game.Result) []string {
	out := make([]string, len(res))
	for i, p := range res {
		out[i] = c.Peg(locale, p)
	}
	return out
}

// FormatResult renders a result as "GREEN - YELLOW - RED - RED".
func (c *Catalog) FormatResult(locale string, res game.Result) string {
	return strings.Join(c.Pegs(locale, res), " - ")
}

// ErrorMessage renders a validation or round error for the player.
// ok is false for errors that are not user-correctable.
func (c *Catalog) ErrorMessage(locale string, err error) (msg string, ok bool) {
	var colorErr *game.InvalidColorError
	var lenErr *game.LengthError
	switch {
	case errors.As(err, &colorErr):
		return c.Text(locale, KeyInvalidColor, Args{"token": colorErr.Token}), true
	case errors.As(err, &lenErr):
		return c.Text(locale, KeyInvalidLength, Args{"count": lenErr.Got, "pegs": game.Pegs}), true
	case errors.Is(err, game.ErrRoundOver):
		return c.Text(locale, KeyRoundOver, nil), true
	}
	return "", false
}

func (c *Catalog) table(locale string) *table {
	if t, ok := c.tables[locale]; ok {
		return t
	}
	return c.tables[c.fallback]
}
