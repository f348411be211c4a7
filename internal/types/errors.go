package types

import "errors"

// Sentinel errors for the types package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrNoStrategies is returned when an adaptive agent is constructed
	// without at least one strategy.
	ErrNoStrategies = errors.New("at least one strategy is required")

	// ErrUnknownStrategy is returned when a strategy name is not in the
	// configured strategy set.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrInvalidPolicyConfig is returned when a PolicyConfig fails validation.
	ErrInvalidPolicyConfig = errors.New("invalid policy config")

	// ErrInvalidLearningConfig is returned when a LearningConfig fails validation.
	ErrInvalidLearningConfig = errors.New("invalid learning config")

	// ErrInvalidRewardConfig is returned when a RewardConfig fails validation.
	ErrInvalidRewardConfig = errors.New("invalid reward config")

	// ErrInvalidAdaptiveConfig is returned when an AdaptiveConfig fails validation.
	ErrInvalidAdaptiveConfig = errors.New("invalid adaptive config")
)
