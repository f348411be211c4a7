package policy

import (
	"math/rand"

	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// epsilonGreedy explores uniformly with probability epsilon and exploits
// the greedy action otherwise. Epsilon decays multiplicatively on every
// reward, floored at EpsilonMin.
type epsilonGreedy struct {
	cfg types.PolicyConfig
	rng *rand.Rand
}

func newEpsilonGreedy(cfg types.PolicyConfig, rng *rand.Rand) *epsilonGreedy {
	return &epsilonGreedy{cfg: cfg, rng: rng}
}

func (p *epsilonGreedy) SelectAction(_ types.State, qValues map[string]float64, available []string) string {
	if len(available) == 0 {
		return ""
	}
	if p.rng.Float64() < p.cfg.Epsilon {
		return available[p.rng.Intn(len(available))]
	}
	return argmax(qValues, available)
}

func (p *epsilonGreedy) Update(float64) {
	decayed := p.cfg.Epsilon * p.cfg.EpsilonDecay
	if decayed < p.cfg.EpsilonMin {
		decayed = p.cfg.EpsilonMin
	}
	p.cfg.Epsilon = decayed
}

func (p *epsilonGreedy) Config() types.PolicyConfig { return p.cfg }
