package qlearn

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// snapshot is the on-disk representation of a learner: the two Q-tables,
// the config, and a metrics block, plus the learning-rate and recent-
// reward state needed to resume. Q-tables are stored by hashed state
// key, so snapshots are portable across processes as long as the states
// themselves are reproducible.
type snapshot struct {
	Q1      qTable               `json:"q1"`
	Q2      qTable               `json:"q2,omitempty"`
	Weights []float64            `json:"weights,omitempty"`
	Config  types.LearningConfig `json:"config"`
	Metrics snapshotMetrics      `json:"metrics"`

	Alpha         float64   `json:"alpha,omitempty"`
	RecentRewards []float64 `json:"recent_rewards,omitempty"`
}

type snapshotMetrics struct {
	TotalEpisodes int     `json:"total_episodes"`
	TotalReward   float64 `json:"total_reward"`
}

// Save writes the learner's full state to path as JSON.
func (l *Learner) Save(path string) error {
	snap := snapshot{
		Q1:     l.q1,
		Q2:     l.q2,
		Config: l.cfg,
		Metrics: snapshotMetrics{
			TotalEpisodes: l.totalUpdates,
			TotalReward:   l.rewardSum,
		},
		Alpha:         l.alpha,
		RecentRewards: l.recentRewards,
	}
	if l.fn != nil {
		snap.Weights = l.fn.raw()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load replaces the learner's state from a snapshot written by Save. The
// attached policy is kept. A missing file yields ErrSnapshotNotFound; an
// undecodable or invalid one yields ErrSnapshotCorrupt.
func (l *Learner) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, path, err)
	}
	if err := snap.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, path, err)
	}

	l.cfg = snap.Config
	l.alpha = snap.Alpha
	if l.alpha <= 0 {
		l.alpha = snap.Config.Alpha
	}
	l.totalUpdates = snap.Metrics.TotalEpisodes
	l.rewardSum = snap.Metrics.TotalReward
	l.recentRewards = snap.RecentRewards

	l.q1 = snap.Q1
	if l.q1 == nil {
		l.q1 = make(qTable)
	}
	l.q2 = nil
	if snap.Config.Kind == types.LearnerDouble {
		l.q2 = snap.Q2
		if l.q2 == nil {
			l.q2 = make(qTable)
		}
	}
	l.fn = nil
	if snap.Config.Kind == types.LearnerLinear {
		l.fn = newLinearApprox()
		l.fn.restore(snap.Weights)
	}
	return nil
}
