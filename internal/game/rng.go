package game

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the randomness used to pick targets, decoys and
// option order.
type RandomSource interface {
	// IntN returns a uniform integer in [0, n). n must be > 0.
	IntN(n int) int
}

type pcgSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *pcgSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// DefaultRandom returns a PCG source seeded from crypto/rand.
func DefaultRandom() RandomSource {
	var buf [16]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return &pcgSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	seed1 := binary.BigEndian.Uint64(buf[:8])
	seed2 := binary.BigEndian.Uint64(buf[8:])
	return &pcgSource{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewSeededRandom returns a reproducible source, for tests and replays.
func NewSeededRandom(seed uint64) RandomSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, 0))}
}
