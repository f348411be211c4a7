// Package policy implements the action-selection strategies: epsilon-
// greedy, UCB1, softmax (Boltzmann), and a gradient bandit. All four
// share one interface so the learner can swap them at construction time.
package policy

import (
	"fmt"
	"math/rand"

	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// Policy selects actions from Q-value estimates and adapts its own
// exploration state from observed rewards. Implementations are not safe
// for concurrent use.
type Policy interface {
	// SelectAction picks one of the available actions given the current
	// Q-value estimates. Actions missing from qValues are treated as
	// having value 0. An empty available list yields "".
	SelectAction(state types.State, qValues map[string]float64, available []string) string

	// Update feeds back the reward of the last selected action, letting
	// the policy adjust exploration (decay epsilon, move preferences).
	Update(reward float64)

	// Config returns the live configuration, reflecting any decay applied
	// since construction.
	Config() types.PolicyConfig
}

// Option configures policy construction.
type Option func(*settings)

// WithRand injects the random source used for exploration draws. Tests
// pass a seeded source for reproducibility.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) { s.rng = rng }
}

type settings struct {
	rng *rand.Rand
}

// New builds the policy variant named by cfg.PolicyType. The config is
// validated first.
func New(cfg types.PolicyConfig, opts ...Option) (Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("building policy: %w", err)
	}
	s := settings{rng: rand.New(rand.NewSource(rand.Int63()))}
	for _, opt := range opts {
		opt(&s)
	}

	switch cfg.PolicyType {
	case types.PolicyEpsilonGreedy:
		return newEpsilonGreedy(cfg, s.rng), nil
	case types.PolicyUCB:
		return newUCB(cfg), nil
	case types.PolicySoftmax:
		return newSoftmax(cfg, s.rng), nil
	case types.PolicyGradient:
		return newGradient(cfg, s.rng), nil
	default:
		// Unreachable after Validate, kept for exhaustiveness.
		return nil, fmt.Errorf("building policy: %w: %q", types.ErrInvalidPolicyConfig, cfg.PolicyType)
	}
}

// argmax returns the first action with the highest Q-value, iterating in
// available order so ties resolve deterministically. Missing actions
// score 0.
func argmax(qValues map[string]float64, available []string) string {
	best := available[0]
	bestQ := qValues[best]
	for _, a := range available[1:] {
		if q := qValues[a]; q > bestQ {
			best, bestQ = a, q
		}
	}
	return best
}
