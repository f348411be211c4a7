// Package config loads the YAML configuration file shared by the CLI
// and the learning agent. Missing files and missing sections fall back
// to defaults; present values are validated section by section.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Str0mxx/atlas-rlcore/internal/types"
)

// Config is the full configuration tree.
type Config struct {
	Policy   types.PolicyConfig   `yaml:"policy"`
	Learning types.LearningConfig `yaml:"learning"`
	Reward   types.RewardConfig   `yaml:"reward"`
	Adaptive types.AdaptiveConfig `yaml:"adaptive"`
}

// Default returns the canonical defaults for every section. The adaptive
// strategy list is left empty; adaptation stays disabled until strategies
// are configured.
func Default() Config {
	return Config{
		Policy:   types.DefaultPolicyConfig(),
		Learning: types.DefaultLearningConfig(),
		Reward:   types.DefaultRewardConfig(),
		Adaptive: types.DefaultAdaptiveConfig(),
	}
}

// Load reads the config at path. An empty path or a missing file yields
// the defaults; a present file is decoded over the defaults so omitted
// fields keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section. The adaptive section is only validated
// when strategies are configured, since an empty strategy list just
// disables adaptation.
func (c Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if err := c.Learning.Validate(); err != nil {
		return err
	}
	if err := c.Reward.Validate(); err != nil {
		return err
	}
	if len(c.Adaptive.Strategies) > 0 {
		if err := c.Adaptive.Validate(); err != nil {
			return err
		}
	}
	return nil
}
