// Package config loads the optional YAML configuration file.
package config

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/YNCK000/strudel-studio/pkg/runtime"
)

const DefaultListenAddr = "127.0.0.1:8765"

type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Budgets BudgetsConfig `yaml:"budgets"`
	Listen  string        `yaml:"listen"`
}

type ModelConfig struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int64  `yaml:"max_tokens"`
}

type BudgetsConfig struct {
	Sync   BudgetConfig `yaml:"sync"`
	Stream BudgetConfig `yaml:"stream"`
}

// BudgetConfig overrides one run budget. WallClock is a Go duration string;
// "0" disables the wall clock entirely.
type BudgetConfig struct {
	MaxIterations int    `yaml:"max_iterations"`
	WallClock     string `yaml:"wall_clock"`
}

// Load reads the configuration at path. An empty path or a missing file
// yields the zero config; callers resolve defaults through the accessor
// methods.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) ListenAddr() string {
	return cmp.Or(c.Listen, DefaultListenAddr)
}

// SyncBudget resolves the budget for blocking requests.
func (c *Config) SyncBudget() (runtime.Budget, error) {
	return resolveBudget(c.Budgets.Sync, runtime.FastBudget)
}

// StreamBudget resolves the budget for streaming requests.
func (c *Config) StreamBudget() (runtime.Budget, error) {
	return resolveBudget(c.Budgets.Stream, runtime.PatientBudget)
}

func resolveBudget(override BudgetConfig, fallback runtime.Budget) (runtime.Budget, error) {
	budget := fallback
	if override.MaxIterations > 0 {
		budget.MaxIterations = override.MaxIterations
	}
	if override.WallClock != "" {
		d, err := time.ParseDuration(override.WallClock)
		if err != nil {
			return runtime.Budget{}, fmt.Errorf("invalid wall_clock %q: %w", override.WallClock, err)
		}
		budget.WallClock = d
	}
	return budget, nil
}
