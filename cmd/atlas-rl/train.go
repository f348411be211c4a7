package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/Str0mxx/atlas-rlcore/internal/agent"
	"github.com/Str0mxx/atlas-rlcore/internal/config"
	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

var (
	trainEpisodes int
	trainSeed     int64
	trainActions  []string
	trainOut      string
)

// trainCmd runs the agent against a simulated multi-armed task: each
// action has a hidden success probability and the agent has to find the
// best one from outcome feedback alone.
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run a simulated training loop and save a learner snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(trainSeed))
		a, err := agent.New(cfg, trainActions, agent.WithRand(rng))
		if err != nil {
			return err
		}

		// Hidden success probabilities, spread over [0.15, 0.95].
		succProb := make(map[string]float64, len(trainActions))
		for i, action := range trainActions {
			succProb[action] = 0.15 + 0.8*float64(i)/float64(len(trainActions))
		}

		for ep := 0; ep < trainEpisodes; ep++ {
			state := types.State{"phase": ep % 4}
			action := a.Act(state)
			outcome := types.TaskResult{Success: rng.Float64() < succProb[action]}
			next := types.State{"phase": (ep + 1) % 4}

			a.Observe(state, action, outcome, next, true, nil)
			if ep%4 == 3 {
				a.Train()
			}
			if ep%20 == 19 {
				a.Adapt()
			}
		}

		m := a.Metrics()
		fmt.Fprintf(cmd.OutOrStdout(), "episodes: %d\n", trainEpisodes)
		fmt.Fprintf(cmd.OutOrStdout(), "updates: %d\n", m.TotalEpisodes)
		fmt.Fprintf(cmd.OutOrStdout(), "avg_reward: %.4f\n", m.AvgReward)
		fmt.Fprintf(cmd.OutOrStdout(), "q_table_size: %d\n", m.QTableSize)
		fmt.Fprintf(cmd.OutOrStdout(), "convergence: %.4f\n", m.ConvergenceRate)

		if trainOut != "" {
			if err := a.Save(trainOut); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot: %s\n", trainOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().IntVar(&trainEpisodes, "episodes", 200, "Number of simulated episodes")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 1, "Random seed for the simulation")
	trainCmd.Flags().StringSliceVar(&trainActions, "actions",
		[]string{"retry", "scale", "deploy"}, "Action space for the simulated task")
	trainCmd.Flags().StringVar(&trainOut, "out", "", "Snapshot output path (optional)")
}
