package policy

import (
	"math/rand"

	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// gradient is a gradient bandit: it keeps its own per-action preferences
// (ignoring the learner's Q-values), samples from their softmax, and
// moves preferences along the reward advantage over a running baseline.
type gradient struct {
	cfg types.PolicyConfig
	rng *rand.Rand

	preferences map[string]float64
	avgReward   float64
	step        int

	// last selection context, consumed by Update.
	lastAction    string
	lastAvailable []string
	lastProbs     []float64
}

func newGradient(cfg types.PolicyConfig, rng *rand.Rand) *gradient {
	return &gradient{cfg: cfg, rng: rng, preferences: make(map[string]float64)}
}

func (p *gradient) SelectAction(_ types.State, _ map[string]float64, available []string) string {
	if len(available) == 0 {
		return ""
	}
	probs := boltzmann(p.preferences, available, 1.0)
	action := sample(p.rng, available, probs)

	p.lastAction = action
	p.lastAvailable = available
	p.lastProbs = probs
	return action
}

func (p *gradient) Update(reward float64) {
	p.step++
	// Advantage is taken against the baseline as it stood before this
	// reward; folding the reward in first would cancel the very first
	// update entirely.
	advantage := reward - p.avgReward
	p.avgReward += (reward - p.avgReward) / float64(p.step)

	if p.lastAction == "" {
		return
	}
	for i, a := range p.lastAvailable {
		if a == p.lastAction {
			p.preferences[a] += p.cfg.LearningRate * advantage * (1 - p.lastProbs[i])
		} else {
			p.preferences[a] -= p.cfg.LearningRate * advantage * p.lastProbs[i]
		}
	}
}

func (p *gradient) Config() types.PolicyConfig { return p.cfg }
