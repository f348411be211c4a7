// Package agent ties the learning core together: it routes task
// outcomes through the reward function into the prioritized replay
// buffer, trains the Q-learner from weighted batches, feeds strategy
// performance to the adaptive controller, and exposes one facade for
// callers.
package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/Str0mxx/atlas-rlcore/internal/adaptive"
	"github.com/Str0mxx/atlas-rlcore/internal/config"
	"github.com/Str0mxx/atlas-rlcore/internal/policy"
	"github.com/Str0mxx/atlas-rlcore/internal/qlearn"
	"github.com/Str0mxx/atlas-rlcore/internal/replay"
	"github.com/Str0mxx/atlas-rlcore/internal/reward"
	"github.com/Str0mxx/atlas-rlcore/internal/statekey"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// ErrNoActions means the agent was built without an action space.
var ErrNoActions = errors.New("no actions configured")

// Option configures an Agent at construction time.
type Option func(*settings)

// WithLogger sets the structured logger; defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithRand injects the random source shared by the policy, learner, and
// replay buffer. Tests pass a seeded source for reproducibility.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) { s.rng = rng }
}

type settings struct {
	log *slog.Logger
	rng *rand.Rand
}

// Agent is the learning facade. Not safe for concurrent use.
type Agent struct {
	cfg     config.Config
	actions []string
	log     *slog.Logger

	learner  *qlearn.Learner
	buffer   *replay.Buffer
	rewardFn *reward.Function
	adapter  *adaptive.Agent // nil when no strategies are configured

	visits map[string]int
}

// New builds an agent over the given action space. Adaptation is enabled
// only when the config names strategies.
func New(cfg config.Config, actions []string, opts ...Option) (*Agent, error) {
	if len(actions) == 0 {
		return nil, ErrNoActions
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("building agent: %w", err)
	}

	s := settings{
		log: slog.Default(),
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(&s)
	}

	pol, err := policy.New(cfg.Policy, policy.WithRand(s.rng))
	if err != nil {
		return nil, fmt.Errorf("building agent: %w", err)
	}
	learner, err := qlearn.New(cfg.Learning, pol, qlearn.WithRand(s.rng))
	if err != nil {
		return nil, fmt.Errorf("building agent: %w", err)
	}

	a := &Agent{
		cfg:      cfg,
		actions:  append([]string(nil), actions...),
		log:      s.log,
		learner:  learner,
		buffer:   replay.New(cfg.Learning.BufferSize, replay.WithRand(s.rng)),
		rewardFn: reward.New(cfg.Reward),
		visits:   make(map[string]int),
	}
	if len(cfg.Adaptive.Strategies) > 0 {
		a.adapter, err = adaptive.New(cfg.Adaptive, adaptive.WithLogger(s.log))
		if err != nil {
			return nil, fmt.Errorf("building agent: %w", err)
		}
	}
	return a, nil
}

// Actions returns the configured action space.
func (a *Agent) Actions() []string {
	return append([]string(nil), a.actions...)
}

// Act selects an action for the state via the learner's policy.
func (a *Agent) Act(state types.State) string {
	return a.learner.SelectAction(state, a.actions)
}

// Observe converts a task outcome into a reward signal, adds the
// curiosity bonus for the visited state, stores the transition in the
// replay buffer, and feeds the reward to the adaptive controller. The
// stored experience carries the shaped reward.
func (a *Agent) Observe(state types.State, action string, outcome types.TaskResult,
	next types.State, done bool, context map[string]float64) types.RewardSignal {

	signal := a.rewardFn.Calculate(outcome, context)

	bonus := a.rewardFn.IntrinsicMotivation(state, a.visits)
	a.visits[statekey.ForState(state)]++
	signal.IntrinsicBonus = bonus
	signal.ShapedValue = signal.Value + bonus

	exp := types.NewExperience(state, action, signal.ShapedValue, next, done)
	exp.Metadata["id"] = uuid.NewString()
	a.buffer.Add(exp)

	if a.adapter != nil {
		a.adapter.RecordPerformance(a.adapter.Current(), signal.Value)
	}

	a.log.Debug("observed transition",
		"action", action,
		"success", outcome.Success,
		"reward", signal.Value,
		"shaped", signal.ShapedValue)
	return signal
}

// Train replays one prioritized batch through the learner, scales each
// update by its importance-sampling weight, writes the new TD-errors
// back as priorities, and decays the learning rate. It returns the
// number of transitions replayed (0 when the buffer is empty).
func (a *Agent) Train() int {
	batch := a.buffer.Sample(a.cfg.Learning.BatchSize)
	if len(batch) == 0 {
		return 0
	}

	indices := make([]int, len(batch))
	tds := make([]float64, len(batch))
	for i, pe := range batch {
		exp := pe.Experience
		td := a.learner.UpdateWeighted(exp.State, exp.Action, exp.Reward,
			exp.NextState, exp.Done, a.actions, pe.Weight)
		indices[i] = pe.TreeIndex
		tds[i] = td
	}
	a.buffer.UpdatePriorities(indices, tds)
	a.learner.DecayLearningRate()
	return len(batch)
}

// Adapt runs one adaptation cycle and returns the active strategy, or
// "" when adaptation is disabled.
func (a *Agent) Adapt() string {
	if a.adapter == nil {
		return ""
	}
	return a.adapter.Adapt()
}

// Metrics reports the learner's progress.
func (a *Agent) Metrics() types.LearningMetrics {
	return a.learner.Metrics()
}

// BufferStats reports replay buffer occupancy.
func (a *Agent) BufferStats() replay.Stats {
	return a.buffer.Stats()
}

// RewardStats reports reward totals.
func (a *Agent) RewardStats() reward.Stats {
	return a.rewardFn.Stats()
}

// AdaptationState returns the adaptive controller's snapshot; ok is
// false when adaptation is disabled.
func (a *Agent) AdaptationState() (types.AdaptationState, bool) {
	if a.adapter == nil {
		return types.AdaptationState{}, false
	}
	return a.adapter.State(), true
}

// VisitCount returns how many times a state has been observed.
func (a *Agent) VisitCount(state types.State) int {
	return a.visits[statekey.ForState(state)]
}

// Save persists the learner snapshot to path.
func (a *Agent) Save(path string) error {
	return a.learner.Save(path)
}

// Load restores the learner snapshot from path.
func (a *Agent) Load(path string) error {
	return a.learner.Load(path)
}
