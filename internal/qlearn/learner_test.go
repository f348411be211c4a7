package qlearn

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/Str0mxx/atlas-rlcore/internal/policy"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

func newTestLearner(t *testing.T, kind types.LearnerKind) *Learner {
	t.Helper()
	pcfg := types.DefaultPolicyConfig()
	pcfg.Epsilon = 0 // deterministic greedy selection in tests
	pol, err := policy.New(pcfg, policy.WithRand(rand.New(rand.NewSource(3))))
	if err != nil {
		t.Fatalf("policy.New() failed: %v", err)
	}

	cfg := types.DefaultLearningConfig()
	cfg.Kind = kind
	cfg.Gamma = 0.9
	cfg.Alpha = 0.1
	l, err := New(cfg, pol, WithRand(rand.New(rand.NewSource(3))))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return l
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := types.DefaultLearningConfig()
	cfg.Alpha = 0
	if _, err := New(cfg, nil); !errors.Is(err, types.ErrInvalidLearningConfig) {
		t.Fatalf("New() = %v, want ErrInvalidLearningConfig", err)
	}
}

func TestTabularTerminalUpdate(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)
	s := types.State{"pos": 1}

	td := l.Update(s, "go", 1.0, types.State{"pos": 2}, true, nil)
	if td != 1.0 {
		t.Fatalf("TD-error = %v, want 1.0", td)
	}
	q := l.QValues(s, []string{"go"})
	if math.Abs(q["go"]-0.1) > 1e-12 {
		t.Fatalf("Q = %v, want alpha*td = 0.1", q["go"])
	}
}

func TestTabularBootstrapsNextState(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)
	s := types.State{"pos": 1}
	next := types.State{"pos": 2}
	actions := []string{"go", "stay"}

	// Give the next state a known value first.
	l.Update(next, "go", 1.0, types.State{"pos": 3}, true, nil) // Q(next,go) = 0.1

	td := l.Update(s, "go", 0.5, next, false, actions)
	wantTarget := 0.5 + 0.9*0.1
	if math.Abs(td-wantTarget) > 1e-12 {
		t.Fatalf("TD-error = %v, want %v", td, wantTarget)
	}
}

func TestTabularUnseenStateIsZero(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)
	q := l.QValues(types.State{"new": true}, []string{"x", "y"})
	if q["x"] != 0 || q["y"] != 0 {
		t.Fatalf("QValues(unseen) = %v, want zeros", q)
	}
}

func TestDoubleUsesBothTables(t *testing.T) {
	l := newTestLearner(t, types.LearnerDouble)
	s := types.State{"pos": 1}
	next := types.State{"pos": 2}

	for i := 0; i < 40; i++ {
		l.Update(s, "go", 1.0, next, false, []string{"go"})
	}
	if len(l.q1) == 0 || len(l.q2) == 0 {
		t.Fatalf("table sizes = (%d, %d), want both populated", len(l.q1), len(l.q2))
	}

	q := l.QValues(s, []string{"go"})
	if q["go"] <= 0 {
		t.Fatalf("averaged Q = %v, want positive after positive rewards", q["go"])
	}
}

func TestLinearLearnsPositiveValue(t *testing.T) {
	l := newTestLearner(t, types.LearnerLinear)
	s := types.State{"x": 0.5, "y": 0.2}

	before := l.QValues(s, []string{"go"})["go"]
	if before != 0 {
		t.Fatalf("initial prediction = %v, want 0", before)
	}
	for i := 0; i < 50; i++ {
		l.Update(s, "go", 1.0, s, true, nil)
	}
	after := l.QValues(s, []string{"go"})["go"]
	if after <= before {
		t.Fatalf("prediction after training = %v, want > %v", after, before)
	}
}

func TestLinearDimensionChangeResetsWeights(t *testing.T) {
	l := newTestLearner(t, types.LearnerLinear)
	l.Update(types.State{"x": 1.0}, "go", 1.0, nil, true, nil)
	oldDim := l.fn.dim()

	l.Update(types.State{"x": 1.0, "y": 2.0}, "go", 1.0, nil, true, nil)
	if l.fn.dim() == oldDim {
		t.Fatalf("dim = %d, want changed from %d", l.fn.dim(), oldDim)
	}
	if l.fn.resets == 0 {
		t.Fatal("resets = 0, want at least one reinitialization")
	}
}

func TestTabularConvergesOnAbsorbingState(t *testing.T) {
	pcfg := types.DefaultPolicyConfig()
	pcfg.Epsilon = 0
	pol, err := policy.New(pcfg, policy.WithRand(rand.New(rand.NewSource(3))))
	if err != nil {
		t.Fatalf("policy.New() failed: %v", err)
	}
	cfg := types.DefaultLearningConfig()
	cfg.Alpha = 0.5
	l, err := New(cfg, pol)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	s := types.State{"s": 0}
	for i := 0; i < 50; i++ {
		l.Update(s, "a", 2.0, s, true, nil)
	}
	if q := l.QValues(s, []string{"a"})["a"]; math.Abs(q-2.0) > 1e-3 {
		t.Fatalf("Q = %v, want within 1e-3 of 2.0", q)
	}
}

func TestDoubleConvergesOnAbsorbingState(t *testing.T) {
	pcfg := types.DefaultPolicyConfig()
	pcfg.Epsilon = 0
	pol, err := policy.New(pcfg, policy.WithRand(rand.New(rand.NewSource(3))))
	if err != nil {
		t.Fatalf("policy.New() failed: %v", err)
	}
	cfg := types.DefaultLearningConfig()
	cfg.Alpha = 0.5
	cfg.Kind = types.LearnerDouble
	l, err := New(cfg, pol, WithRand(rand.New(rand.NewSource(5))))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	s := types.State{"s": 0}
	for i := 0; i < 200; i++ {
		l.Update(s, "a", 2.0, s, true, nil)
	}
	// QValues averages the two tables for the double kind.
	if q := l.QValues(s, []string{"a"})["a"]; math.Abs(q-2.0) > 1e-2 {
		t.Fatalf("averaged Q = %v, want within 1e-2 of 2.0", q)
	}
}

func TestSelectActionGreedyAfterTraining(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)
	s := types.State{"pos": 0}
	actions := []string{"good", "bad"}

	for i := 0; i < 20; i++ {
		l.Update(s, "good", 1.0, nil, true, nil)
		l.Update(s, "bad", -1.0, nil, true, nil)
	}
	if got := l.SelectAction(s, actions); got != "good" {
		t.Fatalf("SelectAction() = %q, want %q", got, "good")
	}
}

func TestBestAction(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)
	s := types.State{"pos": 0}

	if got := l.BestAction(s, nil); got != "" {
		t.Fatalf("BestAction(no actions) = %q, want empty", got)
	}
	// Unseen state: all zeros, earliest action wins.
	if got := l.BestAction(s, []string{"first", "second"}); got != "first" {
		t.Fatalf("BestAction(unseen) = %q, want %q", got, "first")
	}

	l.Update(s, "second", 1.0, nil, true, nil)
	if got := l.BestAction(s, []string{"first", "second"}); got != "second" {
		t.Fatalf("BestAction() = %q, want trained %q", got, "second")
	}
}

func TestDecayLearningRateFloor(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)
	for i := 0; i < 10000; i++ {
		l.DecayLearningRate()
	}
	if l.Alpha() != 0.001 {
		t.Fatalf("Alpha = %v, want floor 0.001", l.Alpha())
	}
}

func TestMetrics(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)

	m := l.Metrics()
	if m.TotalEpisodes != 0 || m.AvgReward != 0 || m.ConvergenceRate != 0 {
		t.Fatalf("fresh metrics = %+v, want zeros", m)
	}

	l.Update(types.State{"p": 1}, "a", 1.0, nil, true, nil)
	l.Update(types.State{"p": 2}, "b", 3.0, nil, true, nil)

	m = l.Metrics()
	if m.TotalEpisodes != 2 {
		t.Fatalf("TotalEpisodes = %d, want 2", m.TotalEpisodes)
	}
	if m.AvgReward != 2.0 {
		t.Fatalf("AvgReward = %v, want 2.0", m.AvgReward)
	}
	if m.QTableSize != 2 {
		t.Fatalf("QTableSize = %d, want 2", m.QTableSize)
	}
	// Rewards 1 and 3: population stdev 1, so 1/(1+1).
	if math.Abs(m.ConvergenceRate-0.5) > 1e-12 {
		t.Fatalf("ConvergenceRate = %v, want 0.5", m.ConvergenceRate)
	}
}

func TestMetricsEpsilonTracksPolicyDecay(t *testing.T) {
	pcfg := types.DefaultPolicyConfig()
	pcfg.Epsilon = 0.5
	pcfg.EpsilonDecay = 0.5
	pcfg.EpsilonMin = 0.01
	pol, err := policy.New(pcfg, policy.WithRand(rand.New(rand.NewSource(3))))
	if err != nil {
		t.Fatalf("policy.New() failed: %v", err)
	}
	l, err := New(types.DefaultLearningConfig(), pol)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	l.Update(types.State{"p": 1}, "a", 1.0, nil, true, nil)
	if got := l.Metrics().EpsilonCurrent; got != 0.25 {
		t.Fatalf("EpsilonCurrent = %v, want 0.25 after one decay", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "learner.json")

	l := newTestLearner(t, types.LearnerTabular)
	s := types.State{"pos": 7}
	l.Update(s, "go", 2.0, nil, true, nil)
	wantQ := l.QValues(s, []string{"go"})["go"]

	if err := l.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	restored := newTestLearner(t, types.LearnerTabular)
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := restored.QValues(s, []string{"go"})["go"]; got != wantQ {
		t.Fatalf("restored Q = %v, want %v", got, wantQ)
	}
	if restored.Metrics().TotalEpisodes != 1 {
		t.Fatalf("restored TotalEpisodes = %d, want 1", restored.Metrics().TotalEpisodes)
	}
}

func TestSnapshotRoundTripLinear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linear.json")

	l := newTestLearner(t, types.LearnerLinear)
	s := types.State{"x": 0.3}
	for i := 0; i < 10; i++ {
		l.Update(s, "go", 1.0, nil, true, nil)
	}
	want := l.QValues(s, []string{"go"})["go"]

	if err := l.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	restored := newTestLearner(t, types.LearnerLinear)
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got := restored.QValues(s, []string{"go"})["go"]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("restored prediction = %v, want %v", got, want)
	}
}

// The snapshot document carries the Q-tables, the config, and a metrics
// block with total_episodes and total_reward.
func TestSnapshotDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.json")
	l := newTestLearner(t, types.LearnerTabular)
	l.Update(types.State{"p": 1}, "a", 2.5, nil, true, nil)
	if err := l.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"q1", "config", "metrics"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("snapshot missing top-level %q; keys = %v", key, keysOf(doc))
		}
	}

	var metrics map[string]float64
	if err := json.Unmarshal(doc["metrics"], &metrics); err != nil {
		t.Fatalf("decoding metrics: %v", err)
	}
	if metrics["total_episodes"] != 1 {
		t.Fatalf("metrics.total_episodes = %v, want 1", metrics["total_episodes"])
	}
	if metrics["total_reward"] != 2.5 {
		t.Fatalf("metrics.total_reward = %v, want 2.5", metrics["total_reward"])
	}
}

func keysOf(doc map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	return keys
}

func TestLoadMissingFile(t *testing.T) {
	l := newTestLearner(t, types.LearnerTabular)
	err := l.Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("Load() = %v, want ErrSnapshotNotFound", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	l := newTestLearner(t, types.LearnerTabular)
	if err := l.Load(path); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("Load() = %v, want ErrSnapshotCorrupt", err)
	}
}
