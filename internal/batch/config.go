package batch

import (
	"go.uber.org/multierr"

	"tick-backtest/internal/model"
)

// Bar granularity tags. Opaque to the transform itself.
const (
	BarsDaily  = "daily"
	BarsMinute = "minute"
)

// Config holds the construction parameters of a BatchTransform.
type Config struct {
	Name string `yaml:"name" json:"name"`
	// WindowLength is the number of ticks retained.
	WindowLength int `yaml:"window_length" json:"window_length"`
	// RefreshPeriod is the number of ticks between recomputations.
	RefreshPeriod int `yaml:"refresh_period" json:"refresh_period"`
	// ComputeOnlyFull suppresses computation until the window is full.
	ComputeOnlyFull bool `yaml:"compute_only_full" json:"compute_only_full"`
	// CleanNaNs drops missing values before the computation sees them.
	CleanNaNs bool      `yaml:"clean_nans" json:"clean_nans"`
	NaNPolicy NaNPolicy `yaml:"nan_policy" json:"nan_policy"`

	Sids   []model.AssetID `yaml:"sids" json:"sids,omitempty"`
	Fields []string        `yaml:"fields" json:"fields,omitempty"`
	Bars   string          `yaml:"bars" json:"bars"`
}

// DefaultConfig returns the defaults applied to unset options.
func DefaultConfig() Config {
	return Config{
		Name:            "batch_transform",
		WindowLength:    0,
		RefreshPeriod:   1,
		ComputeOnlyFull: true,
		CleanNaNs:       true,
		NaNPolicy:       DropTicks,
		Bars:            BarsDaily,
	}
}

// withDefaults fills zero-valued options that have a natural default.
// Booleans are left alone; start from DefaultConfig to get their defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.RefreshPeriod == 0 {
		c.RefreshPeriod = d.RefreshPeriod
	}
	if c.NaNPolicy == "" {
		c.NaNPolicy = d.NaNPolicy
	}
	if c.Bars == "" {
		c.Bars = d.Bars
	}
	return c
}

// Validate reports every invalid option.
func (c Config) Validate() error {
	var errs error
	if c.WindowLength < 1 {
		errs = multierr.Append(errs, configErr("window_length", "must be >= 1, got %d", c.WindowLength))
	}
	if c.RefreshPeriod < 1 {
		errs = multierr.Append(errs, configErr("refresh_period", "must be >= 1, got %d", c.RefreshPeriod))
	}
	if c.NaNPolicy != "" && !c.NaNPolicy.valid() {
		errs = multierr.Append(errs, configErr("nan_policy", "unknown policy %q", c.NaNPolicy))
	}
	if c.Sids != nil && len(c.Sids) == 0 {
		errs = multierr.Append(errs, configErr("sids", "allow-list is empty"))
	}
	if c.Fields != nil && len(c.Fields) == 0 {
		errs = multierr.Append(errs, configErr("fields", "allow-list is empty"))
	}
	seen := map[model.AssetID]bool{}
	for _, id := range c.Sids {
		if seen[id] {
			errs = multierr.Append(errs, configErr("sids", "duplicate asset %d", id))
		}
		seen[id] = true
	}
	return errs
}
