package policy

import (
	"math"
	"math/rand"

	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// softmax samples actions from a Boltzmann distribution over Q-values.
// Higher temperature flattens the distribution toward uniform; lower
// temperature sharpens it toward greedy.
type softmax struct {
	cfg types.PolicyConfig
	rng *rand.Rand
}

func newSoftmax(cfg types.PolicyConfig, rng *rand.Rand) *softmax {
	return &softmax{cfg: cfg, rng: rng}
}

func (p *softmax) SelectAction(_ types.State, qValues map[string]float64, available []string) string {
	if len(available) == 0 {
		return ""
	}
	probs := boltzmann(qValues, available, p.cfg.Temperature)
	return sample(p.rng, available, probs)
}

func (p *softmax) Update(float64) {}

func (p *softmax) Config() types.PolicyConfig { return p.cfg }

// boltzmann returns softmax(q/tau) over available actions. The max
// preference is subtracted before exponentiating to avoid overflow.
func boltzmann(qValues map[string]float64, available []string, tau float64) []float64 {
	prefs := make([]float64, len(available))
	maxPref := math.Inf(-1)
	for i, a := range available {
		prefs[i] = qValues[a] / tau
		if prefs[i] > maxPref {
			maxPref = prefs[i]
		}
	}

	var sum float64
	for i := range prefs {
		prefs[i] = math.Exp(prefs[i] - maxPref)
		sum += prefs[i]
	}
	for i := range prefs {
		prefs[i] /= sum
	}
	return prefs
}

// sample draws one action from the given distribution. Accumulated
// rounding is absorbed by the last action.
func sample(rng *rand.Rand, available []string, probs []float64) string {
	r := rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if r < cum {
			return available[i]
		}
	}
	return available[len(available)-1]
}
