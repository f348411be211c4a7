// Package adaptive implements the strategy meta-controller: it tracks
// per-strategy reward histories, detects concept drift in the reward
// stream with Welch's t-test, and switches strategies using a UCB score
// over their observed means.
package adaptive

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Str0mxx/atlas-rlcore/internal/stats"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

const (
	// historyLimit bounds the global performance history.
	historyLimit = 100

	// driftLimit bounds the retained drift reports.
	driftLimit = 10

	// Classification thresholds on |window-ref| / |ref|.
	suddenRatio  = 0.5
	gradualRatio = 0.2

	// improvementMargin is the relative mean advantage another strategy
	// needs before Adapt switches without drift. Hysteresis against
	// flapping between near-equal strategies.
	improvementMargin = 0.1
)

// Option configures an Agent at construction time.
type Option func(*Agent)

// WithLogger sets the structured logger; defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(a *Agent) { a.log = log }
}

// Agent is the adaptive strategy controller. Not safe for concurrent
// use.
type Agent struct {
	cfg types.AdaptiveConfig
	log *slog.Logger

	current    string
	order      []string             // selection order: configured first, then discovered
	rewards    map[string][]float64 // per-strategy reward histories
	history    []float64            // last historyLimit rewards across strategies
	detections []types.DriftDetection
	switches   int
}

// New creates an agent over the configured strategy set. The first
// strategy is active initially.
func New(cfg types.AdaptiveConfig, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("building adaptive agent: %w", err)
	}
	a := &Agent{
		cfg:     cfg,
		log:     slog.Default(),
		current: cfg.Strategies[0],
		order:   append([]string(nil), cfg.Strategies...),
		rewards: make(map[string][]float64, len(cfg.Strategies)),
	}
	for _, s := range cfg.Strategies {
		a.rewards[s] = nil
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Current returns the active strategy name.
func (a *Agent) Current() string { return a.current }

// RecordPerformance appends a reward observation for a strategy. A
// strategy not in the configured set is added to it.
func (a *Agent) RecordPerformance(strategy string, reward float64) {
	if _, ok := a.rewards[strategy]; !ok {
		a.rewards[strategy] = nil
		a.order = append(a.order, strategy)
	}
	a.rewards[strategy] = append(a.rewards[strategy], reward)

	a.history = append(a.history, reward)
	if len(a.history) > historyLimit {
		a.history = a.history[1:]
	}
}

// DetectDrift tests whether the given strategy's recent rewards differ
// from its earlier ones. An empty strategy name means the current one.
// At least twice the window size of history is required; with less the
// neutral no-drift report is returned. Reports that detect drift are
// retained (up to 10) in the agent state.
func (a *Agent) DetectDrift(strategy string) types.DriftDetection {
	if strategy == "" {
		strategy = a.current
	}
	rewards := a.rewards[strategy]
	if len(rewards) < 2*a.cfg.WindowSize {
		return types.NoDrift()
	}

	window := rewards[len(rewards)-a.cfg.WindowSize:]
	reference := rewards[:len(rewards)-a.cfg.WindowSize]

	res := stats.Welch(window, reference)
	windowMean := mean(window)
	referenceMean := mean(reference)

	det := types.DriftDetection{
		Type:          types.DriftNone,
		WindowMean:    windowMean,
		ReferenceMean: referenceMean,
		PValue:        res.P,
	}
	if res.P < a.cfg.DriftThreshold {
		det.Detected = true
		det.Confidence = 1 - res.P
		det.Type = classify(windowMean, referenceMean)

		a.detections = append(a.detections, det)
		if len(a.detections) > driftLimit {
			a.detections = a.detections[1:]
		}
		a.log.Debug("drift detected",
			"strategy", strategy,
			"type", string(det.Type),
			"p_value", res.P,
			"window_mean", windowMean,
			"reference_mean", referenceMean)
	}
	return det
}

// classify grades a detected drift by the relative magnitude of the mean
// shift.
func classify(windowMean, referenceMean float64) types.DriftType {
	diff := math.Abs(windowMean - referenceMean)
	ref := math.Abs(referenceMean)
	if ref < 1e-10 {
		return types.DriftSudden
	}
	switch ratio := diff / ref; {
	case ratio > suddenRatio:
		return types.DriftSudden
	case ratio > gradualRatio:
		return types.DriftGradual
	default:
		return types.DriftIncremental
	}
}

// SelectStrategy picks the next strategy by UCB over observed means:
// mean(s) + sqrt(2*ln(total)/n(s)). Strategies with no observations are
// always tried first, in configuration order.
func (a *Agent) SelectStrategy() string {
	total := 0
	for _, rs := range a.rewards {
		total += len(rs)
	}
	if total == 0 {
		return a.order[0]
	}

	for _, s := range a.order {
		if len(a.rewards[s]) == 0 {
			return s
		}
	}

	best := ""
	bestScore := math.Inf(-1)
	for _, s := range a.order {
		n := float64(len(a.rewards[s]))
		score := mean(a.rewards[s]) + math.Sqrt(2*math.Log(float64(total))/n)
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}

// SwitchStrategy activates the named strategy. Switching to the already
// active strategy is a no-op; an unknown name is an error and leaves the
// agent unchanged.
func (a *Agent) SwitchStrategy(name string) error {
	if _, ok := a.rewards[name]; !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownStrategy, name)
	}
	if name == a.current {
		return nil
	}
	a.log.Info("switching strategy", "from", a.current, "to", name)
	a.current = name
	a.switches++
	return nil
}

// Adapt runs one adaptation cycle: on drift in the current strategy,
// switch to the UCB-selected one; otherwise switch to any tried
// alternative whose windowed mean beats the current one by more than
// 10%. It returns the strategy active afterwards.
func (a *Agent) Adapt() string {
	det := a.DetectDrift(a.current)
	next := ""
	if det.Detected {
		next = a.SelectStrategy()
	} else {
		next = a.betterAlternative()
	}
	if next != "" {
		if err := a.SwitchStrategy(next); err != nil {
			a.log.Warn("adapt selected unknown strategy", "strategy", next, "error", err)
		}
	}
	return a.current
}

// betterAlternative returns the tried strategy whose windowed mean
// reward best clears the current one's by the improvement margin, or ""
// when none does. Windowed means keep the comparison responsive after
// long histories.
func (a *Agent) betterAlternative() string {
	current := lastWindow(a.rewards[a.current], a.cfg.WindowSize)
	if len(current) == 0 {
		return ""
	}
	currentMean := mean(current)
	bar := currentMean + improvementMargin*math.Abs(currentMean)

	best := ""
	bestMean := bar
	for _, s := range a.order {
		if s == a.current {
			continue
		}
		candidate := lastWindow(a.rewards[s], a.cfg.WindowSize)
		if len(candidate) == 0 {
			continue
		}
		if m := mean(candidate); m > bestMean {
			best, bestMean = s, m
		}
	}
	return best
}

func lastWindow(xs []float64, n int) []float64 {
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}

// State returns a bounded snapshot of the agent: strategy means, switch
// count, recent rewards, and retained drift reports.
func (a *Agent) State() types.AdaptationState {
	strategies := make(map[string]float64, len(a.rewards))
	for s, rs := range a.rewards {
		strategies[s] = mean(rs)
	}
	return types.AdaptationState{
		CurrentStrategy:    a.current,
		Strategies:         strategies,
		SwitchCount:        a.switches,
		PerformanceHistory: append([]float64(nil), a.history...),
		DriftDetections:    append([]types.DriftDetection(nil), a.detections...),
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
