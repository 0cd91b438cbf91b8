package config

import (
	"github.com/xplshn/gbfc/pkg/cli"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatConstFold
	FeatLoopLiterals
	FeatCount
)

type Warning int

const (
	WarnOverflow Warning = iota
	WarnUnusedVar
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

// Config carries the per-compilation settings: language features, warning
// toggles, and the tape layout of the generated code. One Config may be
// shared by concurrent compilations; it is never mutated after flag
// processing.
type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning

	// TempBase is the first tape cell of the temp region; variables live
	// in [0, TempBase). TempLimit bounds the temp region; acquiring a temp
	// at or beyond it is a TempSpaceExhausted error.
	TempBase  int
	TempLimit int
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		TempBase:   64,
		TempLimit:  4096,
	}

	features := map[Feature]Info{
		FeatCComments:    {"c-comments", true, "Recognize C-style '//' line comments."},
		FeatConstFold:    {"const-fold", true, "Fold constant expressions before code generation."},
		FeatLoopLiterals: {"loop-literals", true, "Build literals >= 10 with a nested counting loop instead of a '+' chain."},
	}

	warnings := map[Warning]Info{
		WarnOverflow:  {"overflow", true, "Warn when a folded constant wraps around the cell width."},
		WarnUnusedVar: {"unused-variable", false, "Warn about variables that are declared but never read."},
		WarnExtra:     {"extra", true, "Enable extra miscellaneous warnings."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

func (c *Config) WarningName(wt Warning) string { return c.Warnings[wt].Name }

// SetupFlagGroups registers the -W and -F flag groups on fs and returns the
// entry slices so the driver can apply them after parsing. Entry i of each
// slice corresponds to Warning(i) / Feature(i).
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) (warnings, features []cli.FlagGroupEntry) {
	warnings = make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warnings[i] = cli.FlagGroupEntry{
			Name:     info.Name,
			Prefix:   "W",
			Usage:    info.Description,
			Enabled:  new(bool),
			Disabled: new(bool),
		}
	}
	features = make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		features[i] = cli.FlagGroupEntry{
			Name:     info.Name,
			Prefix:   "F",
			Usage:    info.Description,
			Enabled:  new(bool),
			Disabled: new(bool),
		}
	}
	fs.AddFlagGroup("Warnings", "warning", warnings)
	fs.AddFlagGroup("Features", "feature", features)
	return warnings, features
}

// ApplyFlagGroups copies parsed -W/-F toggles back into the config.
func (c *Config) ApplyFlagGroups(warnings, features []cli.FlagGroupEntry) {
	for i, entry := range warnings {
		if *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range features {
		if *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
