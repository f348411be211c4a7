// Package qlearn implements the Q-learning core with three value
// backends: a single tabular Q-table, double Q-learning over two tables,
// and a linear function approximator over hashed state features. The
// backend is chosen by LearningConfig.Kind; the update rule, metrics, and
// snapshot format are shared.
package qlearn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/Str0mxx/atlas-rlcore/internal/policy"
	"github.com/Str0mxx/atlas-rlcore/internal/statekey"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

const (
	// alphaFloor stops learning-rate decay from silencing updates entirely.
	alphaFloor = 0.001

	// recentWindow bounds the reward history used for convergence.
	recentWindow = 100
)

// qTable maps state key -> action -> value.
type qTable map[string]map[string]float64

func (t qTable) get(key, action string) float64 {
	return t[key][action]
}

func (t qTable) set(key, action string, v float64) {
	row, ok := t[key]
	if !ok {
		row = make(map[string]float64)
		t[key] = row
	}
	row[action] = v
}

// entries counts state/action pairs.
func (t qTable) entries() int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
}

// Option configures a Learner at construction time.
type Option func(*Learner)

// WithRand injects the random source used for the double-Q coin flip.
func WithRand(rng *rand.Rand) Option {
	return func(l *Learner) { l.rng = rng }
}

// Learner is the value-learning engine. It owns the Q representation and
// delegates action selection to an attached policy. Not safe for
// concurrent use.
type Learner struct {
	cfg types.LearningConfig
	pol policy.Policy
	rng *rand.Rand

	q1 qTable
	q2 qTable // double-Q only
	fn *linearApprox

	alpha         float64
	totalUpdates  int
	rewardSum     float64
	recentRewards []float64
}

// New builds a learner over the given policy. The config is validated
// first.
func New(cfg types.LearningConfig, pol policy.Policy, opts ...Option) (*Learner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("building learner: %w", err)
	}
	l := &Learner{
		cfg:   cfg,
		pol:   pol,
		rng:   rand.New(rand.NewSource(rand.Int63())),
		q1:    make(qTable),
		alpha: cfg.Alpha,
	}
	if cfg.Kind == types.LearnerDouble {
		l.q2 = make(qTable)
	}
	if cfg.Kind == types.LearnerLinear {
		l.fn = newLinearApprox()
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Kind returns the configured value backend.
func (l *Learner) Kind() types.LearnerKind { return l.cfg.Kind }

// Alpha returns the current (possibly decayed) learning rate.
func (l *Learner) Alpha() float64 { return l.alpha }

// SelectAction asks the policy to choose among available actions using
// this learner's value estimates for the state.
func (l *Learner) SelectAction(state types.State, available []string) string {
	return l.pol.SelectAction(state, l.QValues(state, available), available)
}

// BestAction returns the greedy action for a state, bypassing the
// policy's exploration. Ties resolve to the earliest available action;
// an empty available list yields "".
func (l *Learner) BestAction(state types.State, available []string) string {
	if len(available) == 0 {
		return ""
	}
	q := l.QValues(state, available)
	best := available[0]
	bestQ := q[best]
	for _, a := range available[1:] {
		if q[a] > bestQ {
			best, bestQ = a, q[a]
		}
	}
	return best
}

// QValues returns this learner's value estimate for each available
// action in the given state. For double Q-learning the two tables are
// averaged.
func (l *Learner) QValues(state types.State, available []string) map[string]float64 {
	out := make(map[string]float64, len(available))
	switch l.cfg.Kind {
	case types.LearnerLinear:
		for _, a := range available {
			out[a] = l.fn.predict(state, a)
		}
	case types.LearnerDouble:
		key := statekey.ForState(state)
		for _, a := range available {
			out[a] = (l.q1.get(key, a) + l.q2.get(key, a)) / 2
		}
	default:
		key := statekey.ForState(state)
		for _, a := range available {
			out[a] = l.q1.get(key, a)
		}
	}
	return out
}

// Update applies one Q-learning step for the transition and returns the
// TD-error. availableNext lists the actions considered for the next
// state's value; it is ignored when done is true.
func (l *Learner) Update(state types.State, action string, reward float64,
	nextState types.State, done bool, availableNext []string) float64 {

	var td float64
	switch l.cfg.Kind {
	case types.LearnerLinear:
		td = l.updateLinear(state, action, reward, nextState, done, availableNext)
	case types.LearnerDouble:
		td = l.updateDouble(state, action, reward, nextState, done, availableNext)
	default:
		td = l.updateTabular(state, action, reward, nextState, done, availableNext)
	}

	l.totalUpdates++
	l.rewardSum += reward
	l.recentRewards = append(l.recentRewards, reward)
	if len(l.recentRewards) > recentWindow {
		l.recentRewards = l.recentRewards[1:]
	}
	l.pol.Update(reward)
	return td
}

func (l *Learner) updateTabular(state types.State, action string, reward float64,
	nextState types.State, done bool, availableNext []string) float64 {

	key := statekey.ForState(state)
	current := l.q1.get(key, action)

	target := reward
	if !done && len(availableNext) > 0 {
		nextKey := statekey.ForState(nextState)
		target += l.cfg.Gamma * maxOver(l.q1, nextKey, availableNext)
	}

	td := target - current
	l.q1.set(key, action, current+l.alpha*td)
	return td
}

// updateDouble flips a fair coin to pick the table being updated, selects
// the next action greedily in that table, and evaluates it with the other
// one. Decoupling selection from evaluation removes the maximization bias
// of plain Q-learning.
func (l *Learner) updateDouble(state types.State, action string, reward float64,
	nextState types.State, done bool, availableNext []string) float64 {

	sel, eval := l.q1, l.q2
	if l.rng.Float64() < 0.5 {
		sel, eval = l.q2, l.q1
	}

	key := statekey.ForState(state)
	current := sel.get(key, action)

	target := reward
	if !done && len(availableNext) > 0 {
		nextKey := statekey.ForState(nextState)
		best := argmaxOver(sel, nextKey, availableNext)
		target += l.cfg.Gamma * eval.get(nextKey, best)
	}

	td := target - current
	sel.set(key, action, current+l.alpha*td)
	return td
}

func (l *Learner) updateLinear(state types.State, action string, reward float64,
	nextState types.State, done bool, availableNext []string) float64 {

	current := l.fn.predict(state, action)

	target := reward
	if !done && len(availableNext) > 0 {
		best := l.fn.predict(nextState, availableNext[0])
		for _, a := range availableNext[1:] {
			if v := l.fn.predict(nextState, a); v > best {
				best = v
			}
		}
		target += l.cfg.Gamma * best
	}

	td := target - current
	l.fn.update(state, action, l.alpha*td)
	return td
}

// UpdateWeighted is Update with the applied step scaled by an
// importance-sampling weight in (0,1]. The returned TD-error is
// unweighted so replay priorities stay comparable across samples.
func (l *Learner) UpdateWeighted(state types.State, action string, reward float64,
	nextState types.State, done bool, availableNext []string, weight float64) float64 {

	saved := l.alpha
	l.alpha *= weight
	td := l.Update(state, action, reward, nextState, done, availableNext)
	l.alpha = saved
	return td
}

// DecayLearningRate multiplies alpha by the configured decay, floored at
// 0.001.
func (l *Learner) DecayLearningRate() {
	l.alpha *= l.cfg.AlphaDecay
	if l.alpha < alphaFloor {
		l.alpha = alphaFloor
	}
}

// Metrics summarizes learning progress so far.
func (l *Learner) Metrics() types.LearningMetrics {
	m := types.LearningMetrics{
		TotalEpisodes:  l.totalUpdates,
		EpsilonCurrent: l.pol.Config().Epsilon,
	}
	if l.totalUpdates > 0 {
		m.AvgReward = l.rewardSum / float64(l.totalUpdates)
	}

	switch l.cfg.Kind {
	case types.LearnerLinear:
		m.QTableSize = l.fn.dim()
	case types.LearnerDouble:
		m.QTableSize = l.q1.entries() + l.q2.entries()
	default:
		m.QTableSize = l.q1.entries()
	}

	if len(l.recentRewards) >= 2 {
		m.ConvergenceRate = 1.0 / (1.0 + stat.PopStdDev(l.recentRewards, nil))
	}
	return m
}

func maxOver(t qTable, key string, actions []string) float64 {
	best := t.get(key, actions[0])
	for _, a := range actions[1:] {
		if v := t.get(key, a); v > best {
			best = v
		}
	}
	return best
}

func argmaxOver(t qTable, key string, actions []string) string {
	best := actions[0]
	bestV := t.get(key, best)
	for _, a := range actions[1:] {
		if v := t.get(key, a); v > bestV {
			best, bestV = a, v
		}
	}
	return best
}
