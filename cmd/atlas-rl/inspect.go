package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Str0mxx/atlas-rlcore/internal/config"
	"github.com/Str0mxx/atlas-rlcore/internal/policy"
	"github.com/Str0mxx/atlas-rlcore/internal/qlearn"
)

var inspectSnapshot string

// inspectCmd loads a learner snapshot and prints its metrics as JSON.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize a saved learner snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		pol, err := policy.New(cfg.Policy)
		if err != nil {
			return err
		}
		learner, err := qlearn.New(cfg.Learning, pol)
		if err != nil {
			return err
		}
		if err := learner.Load(inspectSnapshot); err != nil {
			return err
		}

		summary := struct {
			Kind    string  `json:"kind"`
			Alpha   float64 `json:"alpha"`
			Metrics any     `json:"metrics"`
		}{
			Kind:    string(learner.Kind()),
			Alpha:   learner.Alpha(),
			Metrics: learner.Metrics(),
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectSnapshot, "snapshot", "", "Path to a learner snapshot")
	_ = inspectCmd.MarkFlagRequired("snapshot")
}
