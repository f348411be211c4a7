// Package types defines the shared data model of the learning core:
// experiences, reward signals, drift reports, and the typed configuration
// blocks consumed by the policy, learner, reward, and adaptive packages.
package types

import (
	"strings"
	"time"
)

// State is an arbitrary map of scalar observations describing the
// environment at one decision point. Values are expected to be numbers,
// booleans, or strings; consumers skip or hash anything else.
type State = map[string]any

// PolicyType selects the action-selection strategy at construction time.
type PolicyType string

const (
	// PolicyEpsilonGreedy explores uniformly with probability epsilon.
	PolicyEpsilonGreedy PolicyType = "epsilon_greedy"

	// PolicyUCB uses the UCB1 upper confidence bound.
	PolicyUCB PolicyType = "ucb"

	// PolicySoftmax samples from a Boltzmann distribution over Q-values.
	PolicySoftmax PolicyType = "softmax"

	// PolicyGradient is a gradient bandit over action preferences.
	PolicyGradient PolicyType = "gradient"
)

// ParsePolicyType parses input and falls back to epsilon-greedy for
// unknown values.
func ParsePolicyType(raw string) PolicyType {
	switch PolicyType(strings.ToLower(strings.TrimSpace(raw))) {
	case PolicyUCB:
		return PolicyUCB
	case PolicySoftmax:
		return PolicySoftmax
	case PolicyGradient:
		return PolicyGradient
	default:
		return PolicyEpsilonGreedy
	}
}

// IsValidPolicyType checks membership in the canonical policy set.
func IsValidPolicyType(pt PolicyType) bool {
	return pt == PolicyEpsilonGreedy || pt == PolicyUCB ||
		pt == PolicySoftmax || pt == PolicyGradient
}

// LearnerKind selects the value-learning backend at construction time.
type LearnerKind string

const (
	// LearnerTabular keeps a single Q-table.
	LearnerTabular LearnerKind = "tabular"

	// LearnerDouble keeps two Q-tables and decouples action selection
	// from evaluation (double Q-learning).
	LearnerDouble LearnerKind = "double"

	// LearnerLinear approximates Q with a linear weight vector over
	// state features.
	LearnerLinear LearnerKind = "linear"
)

// IsValidLearnerKind checks membership in the canonical learner set.
func IsValidLearnerKind(k LearnerKind) bool {
	return k == LearnerTabular || k == LearnerDouble || k == LearnerLinear
}

// DriftType classifies the magnitude profile of a detected drift.
type DriftType string

const (
	// DriftNone means no drift was detected.
	DriftNone DriftType = "none"

	// DriftSudden is a mean shift above 50% of the reference magnitude.
	DriftSudden DriftType = "sudden"

	// DriftGradual is a mean shift between 20% and 50%.
	DriftGradual DriftType = "gradual"

	// DriftIncremental is a statistically significant shift below 20%.
	DriftIncremental DriftType = "incremental"

	// DriftRecurring marks a previously seen regime returning. The
	// detector never emits it today; it is part of the report vocabulary
	// for consumers that correlate drift histories.
	DriftRecurring DriftType = "recurring"
)

// Experience is one state/action/reward transition. It is immutable once
// created and owned by whichever buffer slot currently holds it.
type Experience struct {
	State     State          `json:"state"`
	Action    string         `json:"action"`
	Reward    float64        `json:"reward"`
	NextState State          `json:"next_state"`
	Done      bool           `json:"done"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewExperience builds an Experience stamped with the current UTC time.
func NewExperience(state State, action string, reward float64, next State, done bool) Experience {
	return Experience{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: next,
		Done:      done,
		Timestamp: time.Now().UTC(),
		Metadata:  map[string]any{},
	}
}

// PrioritizedExperience is a sampling-time view pairing an experience with
// its stored priority and importance-sampling weight. It is never persisted.
type PrioritizedExperience struct {
	Experience Experience `json:"experience"`

	// Priority is the stored (already transformed) sampling priority.
	Priority float64 `json:"priority"`

	// Weight is the importance-sampling correction, normalized so the
	// largest possible weight in the buffer is 1.
	Weight float64 `json:"weight"`

	// TreeIndex addresses the backing sum-tree leaf for priority updates.
	TreeIndex int `json:"tree_index"`
}

// RewardSignal is the full breakdown of one computed reward.
type RewardSignal struct {
	// Value is the scalar training signal: base reward plus the weighted
	// objective total.
	Value float64 `json:"value"`

	// Components maps each objective to the raw (unweighted) context
	// value that contributed to it.
	Components map[string]float64 `json:"components"`

	// ShapedValue is Value after potential-based shaping, when applied.
	ShapedValue float64 `json:"shaped_value"`

	// IntrinsicBonus is the curiosity bonus, when applied.
	IntrinsicBonus float64 `json:"intrinsic_bonus"`
}

// TaskResult is the outcome contract delivered by the surrounding agent
// orchestration layer.
type TaskResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}

// DriftDetection is the report of one drift check.
type DriftDetection struct {
	Detected bool `json:"detected"`

	// Type is DriftNone unless Detected is true.
	Type DriftType `json:"drift_type"`

	// Confidence is 1 - p-value for detected drift, 0 otherwise.
	Confidence float64 `json:"confidence"`

	// WindowMean is the mean of the most recent window.
	WindowMean float64 `json:"window_mean"`

	// ReferenceMean is the mean of everything before the window.
	ReferenceMean float64 `json:"reference_mean"`

	// PValue is the Welch t-test p-value; 1.0 when not enough data.
	PValue float64 `json:"p_value"`
}

// NoDrift is the report returned when there is not enough history to test.
func NoDrift() DriftDetection {
	return DriftDetection{Type: DriftNone, PValue: 1.0}
}

// AdaptationState is a bounded snapshot of an adaptive agent, recomputed
// on demand; it is a view, not a stored entity.
type AdaptationState struct {
	// CurrentStrategy is the active strategy name.
	CurrentStrategy string `json:"current_strategy"`

	// Strategies maps each configured strategy to its mean reward
	// (0 for strategies with no recorded outcomes).
	Strategies map[string]float64 `json:"strategies"`

	// SwitchCount is the number of completed strategy switches.
	SwitchCount int `json:"switch_count"`

	// PerformanceHistory holds at most the last 100 recorded rewards
	// across all strategies, in record order.
	PerformanceHistory []float64 `json:"performance_history"`

	// DriftDetections holds at most the last 10 drift reports that
	// actually detected drift.
	DriftDetections []DriftDetection `json:"drift_detections"`
}

// LearningMetrics summarizes a learner's progress.
type LearningMetrics struct {
	TotalEpisodes int `json:"total_episodes"`

	// AvgReward is the running mean reward across all updates.
	AvgReward float64 `json:"avg_reward"`

	// EpsilonCurrent is read from the attached policy's config.
	EpsilonCurrent float64 `json:"epsilon_current"`

	// QTableSize counts state/action entries across all tables.
	QTableSize int `json:"q_table_size"`

	// ConvergenceRate is 1/(1+s) where s is the population standard
	// deviation of the last 100 rewards; higher is more converged. Zero
	// until at least two rewards are recorded.
	ConvergenceRate float64 `json:"convergence_rate"`
}
