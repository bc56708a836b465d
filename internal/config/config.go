package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"tick-backtest/internal/batch"
	"tick-backtest/internal/blotter"
)

const DefaultCapital = 100000

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Data DataConfig `yaml:"data" json:"data"`

	Capital        float64 `yaml:"capital" json:"capital"`
	FillPolicy     string  `yaml:"fill_policy" json:"fill_policy"`
	SlippageSpread float64 `yaml:"slippage_spread" json:"slippage_spread"`

	// Optional: load transform defaults from a separate YAML.
	// If both TransformFile and Transform are provided, Transform overrides TransformFile.
	TransformFile string          `yaml:"transform_file" json:"transform_file,omitempty"`
	Transform     TransformConfig `yaml:"transform" json:"transform"`
	Strategy      StrategyConfig  `yaml:"strategy" json:"strategy"`
}

// DataConfig selects the snapshot feed. One of Path, Remote or Synthetic is set.
type DataConfig struct {
	Path string `yaml:"path" json:"path,omitempty"`
	// Remote names a feed on the feed service (FEED_SERVICE_URL).
	Remote string `yaml:"remote" json:"remote,omitempty"`
	Format string `yaml:"format" json:"format,omitempty"`
	// Limit keeps only the first N snapshots (0 = all).
	Limit     int              `yaml:"limit" json:"limit,omitempty"`
	Synthetic *SyntheticConfig `yaml:"synthetic" json:"synthetic,omitempty"`
}

type SyntheticConfig struct {
	Assets     int     `yaml:"assets" json:"assets"`
	Ticks      int     `yaml:"ticks" json:"ticks"`
	Seed       int64   `yaml:"seed" json:"seed"`
	StartPrice float64 `yaml:"start_price" json:"start_price"`
	Drift      float64 `yaml:"drift" json:"drift"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
	Bars       string  `yaml:"bars" json:"bars"`
}

// TransformConfig holds the batch transform defaults handed to strategies.
// Pointer booleans distinguish "unset" from false.
type TransformConfig struct {
	WindowLength    int    `yaml:"window_length" json:"window_length,omitempty"`
	RefreshPeriod   int    `yaml:"refresh_period" json:"refresh_period,omitempty"`
	ComputeOnlyFull *bool  `yaml:"compute_only_full" json:"compute_only_full,omitempty"`
	CleanNaNs       *bool  `yaml:"clean_nans" json:"clean_nans,omitempty"`
	NaNPolicy       string `yaml:"nan_policy" json:"nan_policy,omitempty"`
	Bars            string `yaml:"bars" json:"bars,omitempty"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name" json:"name"`
	Params map[string]any `yaml:"params" json:"params,omitempty"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.TransformFile != "" {
		loaded, err := loadTransformFile(resolve(path, c.TransformFile))
		if err != nil {
			return nil, err
		}
		c.Transform = MergeTransform(loaded, c.Transform)
	}
	if c.Data.Path != "" {
		c.Data.Path = resolve(path, c.Data.Path)
	}
	return &c, nil
}

// resolve prefers interpreting rel as relative to the config file directory,
// but falls back to the provided path (relative to cwd) if that doesn't exist.
func resolve(configPath, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	cand := filepath.Join(filepath.Dir(configPath), rel)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return rel
}

// ApplyDefaults fills unset top-level options.
func (c *Config) ApplyDefaults() {
	if c.Capital == 0 {
		c.Capital = DefaultCapital
	}
	if c.FillPolicy == "" {
		c.FillPolicy = string(blotter.FillNextBar)
	}
	if c.Data.Format == "" {
		c.Data.Format = "json"
	}
}

// Validate reports every problem found, not just the first.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var errs error
	if c.Strategy.Name == "" {
		errs = multierr.Append(errs, errors.New("strategy.name is required"))
	}
	if c.Capital <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("capital must be positive, got %.2f", c.Capital))
	}
	if _, err := blotter.ParseFillPolicy(c.FillPolicy); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.SlippageSpread < 0 {
		errs = multierr.Append(errs, fmt.Errorf("slippage_spread must be >= 0, got %g", c.SlippageSpread))
	}
	if c.Data.Path == "" && c.Data.Remote == "" && c.Data.Synthetic == nil {
		errs = multierr.Append(errs, errors.New("one of data.path, data.remote or data.synthetic is required"))
	}
	switch c.Data.Format {
	case "", "json", "csv":
	default:
		errs = multierr.Append(errs, fmt.Errorf("data.format %q is not json or csv", c.Data.Format))
	}
	// Strategies choose their own window lengths; validate the rest.
	bc := c.Transform.ToBatchConfig()
	if bc.WindowLength == 0 {
		bc.WindowLength = 1
	}
	if err := bc.Validate(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("transform config invalid: %w", err))
	}
	return errs
}

// ToBatchConfig converts to batch.Config, applying defaults for unset fields.
func (t TransformConfig) ToBatchConfig() batch.Config {
	out := batch.DefaultConfig()
	out.WindowLength = t.WindowLength
	if t.RefreshPeriod != 0 {
		out.RefreshPeriod = t.RefreshPeriod
	}
	if t.ComputeOnlyFull != nil {
		out.ComputeOnlyFull = *t.ComputeOnlyFull
	}
	if t.CleanNaNs != nil {
		out.CleanNaNs = *t.CleanNaNs
	}
	if t.NaNPolicy != "" {
		out.NaNPolicy = batch.NaNPolicy(t.NaNPolicy)
	}
	if t.Bars != "" {
		out.Bars = t.Bars
	}
	return out
}

type transformFileWrapper struct {
	Transform TransformConfig `yaml:"transform"`
}

func loadTransformFile(path string) (TransformConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TransformConfig{}, err
	}
	var w transformFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return TransformConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Transform, nil
}

// MergeTransform overlays set fields from override onto base.
// This is used when loading a transform file and then applying overrides from the config or request.
func MergeTransform(base, override TransformConfig) TransformConfig {
	out := base
	if override.WindowLength != 0 {
		out.WindowLength = override.WindowLength
	}
	if override.RefreshPeriod != 0 {
		out.RefreshPeriod = override.RefreshPeriod
	}
	if override.ComputeOnlyFull != nil {
		v := *override.ComputeOnlyFull
		out.ComputeOnlyFull = &v
	}
	if override.CleanNaNs != nil {
		v := *override.CleanNaNs
		out.CleanNaNs = &v
	}
	if override.NaNPolicy != "" {
		out.NaNPolicy = override.NaNPolicy
	}
	if override.Bars != "" {
		out.Bars = override.Bars
	}
	return out
}

// MergeStrategy overlays override onto base. Params are merged key by key.
func MergeStrategy(base, override StrategyConfig) StrategyConfig {
	out := StrategyConfig{Name: base.Name, Params: map[string]any{}}
	if override.Name != "" && override.Name != base.Name {
		// A different strategy does not inherit the base's parameters.
		out.Name = override.Name
	} else {
		for k, v := range base.Params {
			out.Params[k] = v
		}
	}
	for k, v := range override.Params {
		out.Params[k] = v
	}
	return out
}
