package types

import "fmt"

// PolicyConfig parameterizes the action-selection policies. One config
// type serves all four variants; each variant reads only its own fields.
type PolicyConfig struct {
	// PolicyType selects the variant at construction time.
	PolicyType PolicyType `yaml:"policy_type" json:"policy_type"`

	// Epsilon is the exploration probability for epsilon-greedy, in [0,1].
	Epsilon float64 `yaml:"epsilon" json:"epsilon"`

	// EpsilonDecay multiplies epsilon after every outcome update.
	EpsilonDecay float64 `yaml:"epsilon_decay" json:"epsilon_decay"`

	// EpsilonMin floors the decayed epsilon.
	EpsilonMin float64 `yaml:"epsilon_min" json:"epsilon_min"`

	// UCBC is the UCB1 exploration coefficient.
	UCBC float64 `yaml:"ucb_c" json:"ucb_c"`

	// Temperature is the softmax temperature, strictly positive.
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// LearningRate is the gradient-bandit preference step size.
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
}

// DefaultPolicyConfig returns the canonical policy defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		PolicyType:   PolicyEpsilonGreedy,
		Epsilon:      0.1,
		EpsilonDecay: 0.995,
		EpsilonMin:   0.01,
		UCBC:         2.0,
		Temperature:  1.0,
		LearningRate: 0.01,
	}
}

// Validate checks field bounds and reports the first violation.
func (c PolicyConfig) Validate() error {
	if !IsValidPolicyType(c.PolicyType) {
		return fmt.Errorf("%w: unknown policy_type %q", ErrInvalidPolicyConfig, c.PolicyType)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon %v outside [0,1]", ErrInvalidPolicyConfig, c.Epsilon)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > 1 {
		return fmt.Errorf("%w: epsilon_min %v outside [0,1]", ErrInvalidPolicyConfig, c.EpsilonMin)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("%w: epsilon_decay %v outside (0,1]", ErrInvalidPolicyConfig, c.EpsilonDecay)
	}
	if c.Temperature <= 0 {
		return fmt.Errorf("%w: temperature %v must be > 0", ErrInvalidPolicyConfig, c.Temperature)
	}
	if c.UCBC < 0 {
		return fmt.Errorf("%w: ucb_c %v must be >= 0", ErrInvalidPolicyConfig, c.UCBC)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate %v must be > 0", ErrInvalidPolicyConfig, c.LearningRate)
	}
	return nil
}

// LearningConfig parameterizes the Q-learner and its replay buffer.
type LearningConfig struct {
	// Gamma is the discount factor, in [0,1].
	Gamma float64 `yaml:"gamma" json:"gamma"`

	// Alpha is the learning rate, in (0,1].
	Alpha float64 `yaml:"alpha" json:"alpha"`

	// AlphaDecay multiplies alpha on each DecayLearningRate call.
	AlphaDecay float64 `yaml:"alpha_decay" json:"alpha_decay"`

	// BatchSize is the replay sample size, at least 1.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// BufferSize is the replay capacity, at least 100.
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`

	// Kind selects the value backend: tabular, double, or linear.
	Kind LearnerKind `yaml:"kind" json:"kind"`
}

// DefaultLearningConfig returns the canonical learning defaults.
func DefaultLearningConfig() LearningConfig {
	return LearningConfig{
		Gamma:      0.99,
		Alpha:      0.1,
		AlphaDecay: 0.999,
		BatchSize:  32,
		BufferSize: 10000,
		Kind:       LearnerTabular,
	}
}

// Validate checks field bounds and reports the first violation.
func (c LearningConfig) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("%w: gamma %v outside [0,1]", ErrInvalidLearningConfig, c.Gamma)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha %v outside (0,1]", ErrInvalidLearningConfig, c.Alpha)
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay > 1 {
		return fmt.Errorf("%w: alpha_decay %v outside (0,1]", ErrInvalidLearningConfig, c.AlphaDecay)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size %d must be >= 1", ErrInvalidLearningConfig, c.BatchSize)
	}
	if c.BufferSize < 100 {
		return fmt.Errorf("%w: buffer_size %d must be >= 100", ErrInvalidLearningConfig, c.BufferSize)
	}
	if !IsValidLearnerKind(c.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidLearningConfig, c.Kind)
	}
	return nil
}

// RewardConfig parameterizes the multi-objective reward function.
type RewardConfig struct {
	// Objectives maps objective names to their weights. Objective values
	// are pulled from the calculation context; see reward.Function.
	Objectives map[string]float64 `yaml:"objectives" json:"objectives"`

	// ShapingGamma is the discount used by potential-based shaping, in [0,1].
	ShapingGamma float64 `yaml:"shaping_gamma" json:"shaping_gamma"`

	// CuriosityWeight scales the count-based intrinsic bonus, >= 0.
	CuriosityWeight float64 `yaml:"curiosity_weight" json:"curiosity_weight"`

	// SuccessReward is the base reward for a successful outcome.
	SuccessReward float64 `yaml:"success_reward" json:"success_reward"`

	// FailurePenalty is the base reward for a failed outcome.
	FailurePenalty float64 `yaml:"failure_penalty" json:"failure_penalty"`
}

// DefaultRewardConfig returns the canonical reward defaults.
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		Objectives: map[string]float64{
			"success_rate": 0.6,
			"efficiency":   0.3,
			"exploration":  0.1,
		},
		ShapingGamma:    0.99,
		CuriosityWeight: 0.1,
		SuccessReward:   1.0,
		FailurePenalty:  -0.5,
	}
}

// Validate checks field bounds and reports the first violation.
func (c RewardConfig) Validate() error {
	if c.ShapingGamma < 0 || c.ShapingGamma > 1 {
		return fmt.Errorf("%w: shaping_gamma %v outside [0,1]", ErrInvalidRewardConfig, c.ShapingGamma)
	}
	if c.CuriosityWeight < 0 {
		return fmt.Errorf("%w: curiosity_weight %v must be >= 0", ErrInvalidRewardConfig, c.CuriosityWeight)
	}
	return nil
}

// AdaptiveConfig parameterizes the strategy meta-controller.
type AdaptiveConfig struct {
	// Strategies is the closed set of selectable strategy names. The
	// first entry is the initial strategy. Must be non-empty.
	Strategies []string `yaml:"strategies" json:"strategies"`

	// WindowSize is the recent-window length for drift detection; the
	// detector needs at least twice this much history to run.
	WindowSize int `yaml:"window_size" json:"window_size"`

	// DriftThreshold is the p-value below which drift is declared.
	DriftThreshold float64 `yaml:"drift_threshold" json:"drift_threshold"`
}

// DefaultAdaptiveConfig returns the canonical adaptation defaults. The
// strategy set still has to be supplied by the caller.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		WindowSize:     10,
		DriftThreshold: 0.05,
	}
}

// Validate checks field bounds and reports the first violation. An empty
// strategy list is fatal: there is nothing to adapt between.
func (c AdaptiveConfig) Validate() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAdaptiveConfig, ErrNoStrategies)
	}
	if c.WindowSize < 2 {
		return fmt.Errorf("%w: window_size %d must be >= 2", ErrInvalidAdaptiveConfig, c.WindowSize)
	}
	if c.DriftThreshold <= 0 || c.DriftThreshold >= 1 {
		return fmt.Errorf("%w: drift_threshold %v outside (0,1)", ErrInvalidAdaptiveConfig, c.DriftThreshold)
	}
	return nil
}
