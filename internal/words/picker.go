package words

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Random picks answers uniformly using an injected random source.
// Safe for concurrent use.
type Random struct {
	mu      sync.Mutex
	rng     *rand.Rand
	answers []string
}

// NewRandom returns a picker over answers driven by src.
// A nil src seeds a PCG generator from the runtime's random state.
func NewRandom(answers []string, src rand.Source) *Random {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Random{rng: rand.New(src), answers: append([]string(nil), answers...)}
}

// Pick returns the next random answer, or "" when there are none.
func (p *Random) Pick() string {
	if len(p.answers) == 0 {
		return ""
	}
	p.mu.Lock()
	i := p.rng.IntN(len(p.answers))
	p.mu.Unlock()
	return p.answers[i]
}

// Fixed always picks the same word.
type Fixed string

// Pick returns the fixed word, lowercased.
func (f Fixed) Pick() string { return strings.ToLower(string(f)) }
