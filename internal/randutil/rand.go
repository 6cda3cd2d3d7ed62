package randutil

import (
	rand "math/rand/v2"
	"sync"
	"time"
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every room shuffler and test derives its generator here so a seed always
// reproduces the same deals.
func New(seed int64) *rand.Rand {
	sm := splitMix(seed)
	return rand.New(rand.NewPCG(sm.next(), sm.next()))
}

// splitMix is a SplitMix64 stream, used only to expand one seed into the
// two words PCG wants
type splitMix uint64

func (s *splitMix) next() uint64 {
	*s += 0x9e3779b97f4a7c15
	z := uint64(*s)
	z = (z ^ z>>30) * 0xbf58476d1ce4e5b9
	z = (z ^ z>>27) * 0x94d049bb133111eb
	return z ^ z>>31
}

// Seeds hands out per-room seeds derived from one root seed. A server started
// with a fixed seed therefore deals the same sequence of games for the same
// sequence of room creations.
type Seeds struct {
	mu   sync.Mutex
	root *rand.Rand
}

// NewSeeds creates a seed source. A nil seed uses the current time.
func NewSeeds(seed *int64) *Seeds {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &Seeds{root: New(s)}
}

// Next returns a fresh generator for one consumer
func (s *Seeds) Next() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return New(s.root.Int64())
}
