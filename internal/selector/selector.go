// internal/selector/selector.go
//
// Package selector picks the next target word.
//
// Selection is a weighted lottery over the active dataset. Each entry weighs
//
//	w = max(1, 1 + 3·fail − 0.5·success)
//
// so failed words come back far more often while every word keeps a weight of
// at least one and can always be drawn.
package selector

import (
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/robalobadob/studywordle/internal/stats"
	"github.com/robalobadob/studywordle/internal/words"
)

const (
	failWeight    = 3.0
	successWeight = 0.5
)

// Weight computes the lottery weight for one word's history.
func Weight(ws stats.WordStats) float64 {
	return max(1, 1+failWeight*float64(ws.Fail)-successWeight*float64(ws.Success))
}

// Selector draws entries using its own random source.
type Selector struct {
	rng *rand.Rand
}

// New returns a Selector drawing from rng. A nil rng gets a randomly seeded one.
func New(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// Next picks one entry. history is keyed by normalized word; missing words
// count as never played. dataset must not be empty.
func (s *Selector) Next(dataset []words.Entry, history map[string]stats.WordStats) words.Entry {
	if len(dataset) == 0 {
		panic("selector: Next called with an empty dataset")
	}
	weights := lo.Map(dataset, func(e words.Entry, _ int) float64 {
		return Weight(history[e.Word])
	})
	total := lo.Sum(weights)
	return dataset[pick(weights, s.rng.Float64()*total)]
}

// pick walks the cumulative weights until they reach draw. Rounding can leave
// draw above the final sum; the last entry is chosen then.
func pick(weights []float64, draw float64) int {
	var cum float64
	for i, w := range weights {
		cum += w
		if cum >= draw {
			return i
		}
	}
	return len(weights) - 1
}
