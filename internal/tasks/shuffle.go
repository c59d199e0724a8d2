package tasks

import (
	"math/rand/v2"

	"github.com/desertthunder/libsort/internal/models"
)

// Shuffler randomizes playlist order from its own random source.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler wraps r. A nil r gets a source seeded from the runtime's random state.
func NewShuffler(r *rand.Rand) *Shuffler {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Shuffler{rng: r}
}

// NewSeededShuffler returns a shuffler that produces the same orders for the same seed.
func NewSeededShuffler(seed uint64) *Shuffler {
	return NewShuffler(rand.New(rand.NewPCG(seed, seed)))
}

// Shuffle permutes tracks in place.
func (s *Shuffler) Shuffle(tracks []*models.Track) {
	s.rng.Shuffle(len(tracks), func(i, j int) {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	})
}
