// Package config provides configuration management for the polars CLI.
//
// A config file declares a base "generate" section plus named profiles that
// override parts of it. Applying a profile merges its keys over the base
// section; flags still win over both.
package config

import (
	"fmt"

	"github.com/bertiewooster/polars/pkg/datatype"
	"github.com/bertiewooster/polars/pkg/parametric"
)

// GenConfig describes one frame-generation profile. Range fields use -1 for
// "unset", which leaves the corresponding draw bound at its generator
// default; explicit values pin it.
type GenConfig struct {
	Rows    int `koanf:"rows"`
	MinRows int `koanf:"min_rows"`
	MaxRows int `koanf:"max_rows"`
	Cols    int `koanf:"cols"`
	MinCols int `koanf:"min_cols"`
	MaxCols int `koanf:"max_cols"`

	Lazy bool `koanf:"lazy"`

	// Chunked is "always", "never", or "" for a per-column coin flip.
	Chunked string `koanf:"chunked"`

	NullProbability float64 `koanf:"null_probability"`
	AllowInfinity   bool    `koanf:"allow_infinity"`

	AllowedDTypes  []string `koanf:"allowed_dtypes"`
	ExcludedDTypes []string `koanf:"excluded_dtypes"`
}

// Config holds all CLI configuration options.
type Config struct {
	Seed       uint64               `koanf:"seed"`
	Verbose    bool                 `koanf:"verbose"`
	OutDir     string               `koanf:"out_dir"`
	CorpusPath string               `koanf:"corpus_path"`
	Generate   GenConfig            `koanf:"generate"`
	Profiles   map[string]GenConfig `koanf:"profiles"`
}

// Default configuration values.
const (
	DefaultOutDir     = "out"
	DefaultCorpusFile = ".polars/corpus.db"
)

// DefaultGenConfig returns a GenConfig with every bound unset.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:          -1,
		MinRows:       -1,
		MaxRows:       -1,
		Cols:          -1,
		MinCols:       -1,
		MaxCols:       -1,
		AllowInfinity: true,
	}
}

// FrameSpec converts the profile into a generator spec. Validation of the
// resulting bounds happens when the generator is built.
func (g GenConfig) FrameSpec() (parametric.FrameSpec, error) {
	spec := parametric.FrameSpec{Lazy: g.Lazy}

	if g.Rows >= 0 {
		spec.Size = parametric.Ptr(g.Rows)
	}
	if g.MinRows >= 0 {
		spec.MinSize = parametric.Ptr(g.MinRows)
	}
	if g.MaxRows >= 0 {
		spec.MaxSize = parametric.Ptr(g.MaxRows)
	}
	if g.Cols >= 0 {
		spec.NCols = parametric.Ptr(g.Cols)
	}
	if g.MinCols >= 0 {
		spec.MinCols = parametric.Ptr(g.MinCols)
	}
	if g.MaxCols >= 0 {
		spec.MaxCols = parametric.Ptr(g.MaxCols)
	}

	switch g.Chunked {
	case "":
		// Per-column coin flip.
	case "always":
		spec.Chunked = parametric.Ptr(true)
	case "never":
		spec.Chunked = parametric.Ptr(false)
	default:
		return parametric.FrameSpec{}, fmt.Errorf("invalid chunked mode %q (want \"always\" or \"never\")", g.Chunked)
	}

	if g.NullProbability != 0 {
		spec.NullProbability = parametric.Ptr(g.NullProbability)
	}
	if !g.AllowInfinity {
		spec.AllowInfinity = parametric.Ptr(false)
	}

	for _, name := range g.AllowedDTypes {
		dt, err := datatype.Parse(name)
		if err != nil {
			return parametric.FrameSpec{}, fmt.Errorf("invalid allowed dtype: %w", err)
		}
		spec.AllowedDTypes = append(spec.AllowedDTypes, dt)
	}
	for _, name := range g.ExcludedDTypes {
		dt, err := datatype.Parse(name)
		if err != nil {
			return parametric.FrameSpec{}, fmt.Errorf("invalid excluded dtype: %w", err)
		}
		spec.ExcludedDTypes = append(spec.ExcludedDTypes, dt)
	}

	return spec, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.OutDir == "" {
		return fmt.Errorf("out_dir is required")
	}
	if c.CorpusPath == "" {
		return fmt.Errorf("corpus_path is required")
	}
	return nil
}
