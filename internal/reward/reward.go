// Package reward computes the multi-objective training signal: a base
// success/failure reward plus weighted objective contributions, with
// optional potential-based shaping and a count-based curiosity bonus.
package reward

import (
	"math"

	"github.com/Str0mxx/atlas-rlcore/internal/statekey"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// Function turns task outcomes into reward signals. Not safe for
// concurrent use.
type Function struct {
	cfg types.RewardConfig

	episodeCount int
	totalReward  float64
}

// Stats summarizes the rewards produced so far.
type Stats struct {
	EpisodeCount int     `json:"episode_count"`
	TotalReward  float64 `json:"total_reward"`
	AvgReward    float64 `json:"avg_reward"`
}

// New creates a reward function. A nil-objective config gets the
// canonical defaults merged in.
func New(cfg types.RewardConfig) *Function {
	if cfg.Objectives == nil {
		cfg.Objectives = types.DefaultRewardConfig().Objectives
	}
	return &Function{cfg: cfg}
}

// Config returns the live configuration, including objective updates.
func (f *Function) Config() types.RewardConfig { return f.cfg }

// Calculate produces the reward signal for one task outcome. Context
// supplies raw objective values; objectives missing from the context
// fall back to outcome-derived defaults (success_rate from the outcome
// itself, efficiency 0.5, exploration 0). The weighted objective total
// is added to the base success/failure reward.
func (f *Function) Calculate(outcome types.TaskResult, context map[string]float64) types.RewardSignal {
	base := f.cfg.FailurePenalty
	if outcome.Success {
		base = f.cfg.SuccessReward
	}

	components := make(map[string]float64, len(f.cfg.Objectives))
	value := base
	for name, weight := range f.cfg.Objectives {
		raw, ok := context[name]
		if !ok {
			raw = f.defaultObjective(name, outcome)
		}
		components[name] = raw
		value += weight * raw
	}

	f.episodeCount++
	f.totalReward += value

	return types.RewardSignal{
		Value:       value,
		Components:  components,
		ShapedValue: value,
	}
}

func (f *Function) defaultObjective(name string, outcome types.TaskResult) float64 {
	switch name {
	case "success_rate":
		if outcome.Success {
			return 1.0
		}
		return 0.0
	case "efficiency":
		return 0.5
	default:
		return 0.0
	}
}

// ShapeReward applies potential-based shaping with the configured gamma:
// r + gamma*phi(next) - phi(state). Shaping preserves the optimal policy
// while densifying sparse rewards.
func (f *Function) ShapeReward(reward float64, state, next types.State) float64 {
	return f.ShapeRewardWithGamma(reward, state, next, f.cfg.ShapingGamma)
}

// ShapeRewardWithGamma is ShapeReward with an explicit discount.
func (f *Function) ShapeRewardWithGamma(reward float64, state, next types.State, gamma float64) float64 {
	return reward + gamma*Potential(next) - Potential(state)
}

// IntrinsicMotivation returns the curiosity bonus for visiting state:
// weight / sqrt(visits + 1). Unseen states get the full weight.
func (f *Function) IntrinsicMotivation(state types.State, visitCounts map[string]int) float64 {
	visits := visitCounts[statekey.ForState(state)]
	return f.cfg.CuriosityWeight / math.Sqrt(float64(visits)+1)
}

// UpdateObjectives merges new objective weights over the existing set,
// adding objectives that were not configured before.
func (f *Function) UpdateObjectives(weights map[string]float64) {
	for name, w := range weights {
		f.cfg.Objectives[name] = w
	}
}

// Stats reports episode count and reward totals.
func (f *Function) Stats() Stats {
	s := Stats{
		EpisodeCount: f.episodeCount,
		TotalReward:  f.totalReward,
	}
	if f.episodeCount > 0 {
		s.AvgReward = f.totalReward / float64(f.episodeCount)
	}
	return s
}

// Potential is the shaping potential of a state: the sum of its numeric
// values, counting true booleans as 1. Non-numeric values contribute
// nothing.
func Potential(state types.State) float64 {
	var sum float64
	for _, v := range state {
		switch x := v.(type) {
		case float64:
			sum += x
		case float32:
			sum += float64(x)
		case int:
			sum += float64(x)
		case int32:
			sum += float64(x)
		case int64:
			sum += float64(x)
		case uint:
			sum += float64(x)
		case bool:
			if x {
				sum++
			}
		}
	}
	return sum
}
