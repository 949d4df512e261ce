// internal/game/random.go
//
// Random sources for secret generation. The engine never touches a global
// generator; callers inject one (crypto-backed by default, seeded for
// reproducible rounds and the daily challenge).

package game

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Source draws uniform integers in [0, n).
type Source interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// Intn returns a uniform value in [0, n). Panics if n <= 0.
func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("game: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	return int(v.Int64())
}

type seededSource struct {
	r *mrand.Rand
}

// NewSeededSource returns a deterministic source: equal seeds yield equal
// sequences.
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int { return s.r.IntN(n) }

// RandomCode draws Pegs colours uniformly with replacement.
func RandomCode(src Source) Code {
	code := make(Code, Pegs)
	for i := range code {
		code[i] = Colors[src.Intn(len(Colors))]
	}
	return code
}
