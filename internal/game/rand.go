package game

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness the engine needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a time-seeded Rand that is safe for concurrent use.
func NewRand() Rand {
	return NewLockedRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewLockedRand serializes access to r.
func NewLockedRand(r Rand) Rand {
	if l, ok := r.(*lockedRand); ok {
		return l
	}
	return &lockedRand{r: r}
}

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

func shuffled(ids []string, rng Rand) []string {
	out := append([]string(nil), ids...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
