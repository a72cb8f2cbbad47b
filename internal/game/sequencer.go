package game

import (
	"github.com/handiism/tunetracer/internal/model"
)

// OptionCount is the number of answer options per round: the target and three decoys.
const OptionCount = 4

// UsedSet records the target IDs already played in the current pass over the pool.
type UsedSet map[string]struct{}

// Has reports whether id has been used.
func (u UsedSet) Has(id string) bool {
	_, ok := u[id]
	return ok
}

func (u UsedSet) clone() UsedSet {
	out := make(UsedSet, len(u)+1)
	for id := range u {
		out[id] = struct{}{}
	}
	return out
}

// Sequencer selects the target and decoys of each round.
//
// Targets are drawn uniformly among tracks not yet used. Once every track of
// the pool has been used the set is reset, so a track repeats only after a
// full pass. Decoys are three distinct other tracks sampled without
// replacement, and the four options are shuffled together (Fisher-Yates).
type Sequencer struct {
	rng RandomSource
}

// NewSequencer creates a Sequencer. A nil rng uses DefaultRandom.
func NewSequencer(rng RandomSource) *Sequencer {
	if rng == nil {
		rng = DefaultRandom()
	}
	return &Sequencer{rng: rng}
}

// SelectRound picks the next target and its options.
//
// used is not modified; the returned set includes the new target. The pool
// must hold at least model.MinPoolSize tracks, which NewCandidatePool
// guarantees.
func (s *Sequencer) SelectRound(pool *model.CandidatePool, used UsedSet) (model.Track, [OptionCount]model.Track, UsedSet) {
	unused := make([]int, 0, pool.Len())
	for i := 0; i < pool.Len(); i++ {
		if !used.Has(pool.At(i).ID) {
			unused = append(unused, i)
		}
	}

	next := used.clone()
	if len(unused) == 0 {
		next = make(UsedSet, pool.Len())
		for i := 0; i < pool.Len(); i++ {
			unused = append(unused, i)
		}
	}

	targetIdx := unused[s.rng.IntN(len(unused))]
	target := pool.At(targetIdx)
	next[target.ID] = struct{}{}

	others := make([]int, 0, pool.Len()-1)
	for i := 0; i < pool.Len(); i++ {
		if i != targetIdx {
			others = append(others, i)
		}
	}

	var options [OptionCount]model.Track
	options[0] = target
	// Partial Fisher-Yates: the first OptionCount-1 slots become the decoys.
	for k := 0; k < OptionCount-1; k++ {
		j := k + s.rng.IntN(len(others)-k)
		others[k], others[j] = others[j], others[k]
		options[k+1] = pool.At(others[k])
	}

	for i := OptionCount - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	return target, options, next
}
