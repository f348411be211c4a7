package policy

import (
	"math"

	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// ucb implements UCB1: score = Q(a) + c * sqrt(ln(total) / count(a)).
// Untried actions are always selected first so every arm gets coverage
// before the bound kicks in.
type ucb struct {
	cfg        types.PolicyConfig
	counts     map[string]int
	totalCount int
}

func newUCB(cfg types.PolicyConfig) *ucb {
	return &ucb{cfg: cfg, counts: make(map[string]int)}
}

func (p *ucb) SelectAction(_ types.State, qValues map[string]float64, available []string) string {
	if len(available) == 0 {
		return ""
	}
	p.totalCount++

	for _, a := range available {
		if p.counts[a] == 0 {
			p.counts[a]++
			return a
		}
	}

	best := ""
	bestScore := math.Inf(-1)
	for _, a := range available {
		bound := p.cfg.UCBC * math.Sqrt(math.Log(float64(p.totalCount))/float64(p.counts[a]))
		if score := qValues[a] + bound; score > bestScore {
			best, bestScore = a, score
		}
	}
	p.counts[best]++
	return best
}

func (p *ucb) Update(float64) {}

func (p *ucb) Config() types.PolicyConfig { return p.cfg }
