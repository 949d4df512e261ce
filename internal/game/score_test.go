package game

import (
	"reflect"
	"testing"
)

func colorCounts(c Code) map[Color]int {
	m := make(map[Color]int)
	for _, col := range c {
		m[col]++
	}
	return m
}

// TestScoreProperties checks scoring invariants over a seeded sample of
// secret/guess pairs.
func TestScoreProperties(t *testing.T) {
	src := NewSeededSource(2024)
	for n := 0; n < 5000; n++ {
		secret := RandomCode(src)
		guess := RandomCode(src)

		res := Score(secret, guess)
		if len(res) != Pegs {
			t.Fatalf("len(result) = %d", len(res))
		}
		if again := Score(secret, guess); !reflect.DeepEqual(res, again) {
			t.Fatalf("non-deterministic: %v vs %v", res, again)
		}

		// No colour may be credited more than it occurs in the secret.
		credited := make(map[Color]int)
		for i, p := range res {
			if p == PegExact && guess[i] != secret[i] {
				t.Fatalf("exact peg at %d but %s != %s", i, guess[i], secret[i])
			}
			if p != PegAbsent {
				credited[guess[i]]++
			}
		}
		inSecret := colorCounts(secret)
		for col, n := range credited {
			if n > inSecret[col] {
				t.Fatalf("secret %v guess %v: %s credited %d times, occurs %d", secret, guess, col, n, inSecret[col])
			}
		}

		// exact+present equals the multiset intersection size.
		exact, present := res.Counts()
		inGuess := colorCounts(guess)
		common := 0
		for col, g := range inGuess {
			common += min(g, inSecret[col])
		}
		if exact+present != common {
			t.Fatalf("secret %v guess %v: exact+present=%d, want %d", secret, guess, exact+present, common)
		}

		if res.Win() != reflect.DeepEqual(secret, guess) {
			t.Fatalf("Win() = %v for secret %v guess %v", res.Win(), secret, guess)
		}
	}
}

func TestScoreSelfIsWin(t *testing.T) {
	src := NewSeededSource(99)
	for n := 0; n < 200; n++ {
		c := RandomCode(src)
		if !Score(c, c).Win() {
			t.Fatalf("Score(%v, %v) is not a win", c, c)
		}
	}
}

func TestPegColor(t *testing.T) {
	cases := map[Peg]Color{PegExact: Green, PegPresent: Yellow, PegAbsent: Red}
	for p, want := range cases {
		if got := p.Color(); got != want {
			t.Errorf("%s.Color() = %s, want %s", p, got, want)
		}
	}
}

func TestParseColor(t *testing.T) {
	for _, in := range []string{"red", "RED", " Red ", "rEd"} {
		if c, ok := ParseColor(in); !ok || c != Red {
			t.Errorf("ParseColor(%q) = %q, %v", in, c, ok)
		}
	}
	for _, in := range []string{"", "reddy", "rouge", "r"} {
		if _, ok := ParseColor(in); ok {
			t.Errorf("ParseColor(%q) accepted", in)
		}
	}
}
