// Package config holds the tunable knobs of the generator and the
// constructor. Values load from an optional YAML file on top of
// defaults that reproduce the reference dataset.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration.
type Config struct {
	// CellSize is the grid cell edge used to arrange buildings, meters.
	CellSize float64 `yaml:"cell_size"`

	// Footprint extents, meters.
	MinWidth float64 `yaml:"min_width"`
	MaxWidth float64 `yaml:"max_width"`
	MinDepth float64 `yaml:"min_depth"`
	MaxDepth float64 `yaml:"max_depth"`

	// Chance (percent) that a footprint gets an L-shaped notch instead
	// of a plain rectangle. Notched footprints keep flat or shed roofs.
	IrregularPercent int `yaml:"irregular_percent"`

	MinStoreys       int     `yaml:"min_storeys"`
	MaxStoreys       int     `yaml:"max_storeys"`
	MinStoreyHeight  float64 `yaml:"min_storey_height"`
	MaxStoreyHeight  float64 `yaml:"max_storey_height"`
	FlatOnlyStoreys  int     `yaml:"flat_only_storeys"` // taller buildings get flat roofs
	MinRoofRise      float64 `yaml:"min_roof_rise"`
	MaxRoofRise      float64 `yaml:"max_roof_rise"`
	DefaultRoofRise  float64 `yaml:"default_roof_rise"` // used for low buildings
	LowBuildingEaves float64 `yaml:"low_building_eaves"`

	// RoofWeights maps roof type names to relative selection weights.
	// Missing entries weigh 1; an empty map means uniform choice.
	RoofWeights map[string]int `yaml:"roof_weights"`

	OverhangPercent int     `yaml:"overhang_percent"`
	MinOverhang     float64 `yaml:"min_overhang"`
	MaxOverhang     float64 `yaml:"max_overhang"`

	// Part generation.
	PartPercent int     `yaml:"part_percent"`
	MaxParts    int     `yaml:"max_parts"`
	PartRetries int     `yaml:"part_retries"`
	MaxRotation float64 `yaml:"max_rotation"` // degrees either way

	// Decorative features.
	StreetWidth      float64 `yaml:"street_width"`
	StreetSeparation float64 `yaml:"street_separation"`
	StreetSkip       int     `yaml:"street_skip"` // cells between parallel streets
	ParkRatio        float64 `yaml:"park_ratio"`
	ParkHeight       float64 `yaml:"park_height"`

	// CRSOffsets maps named regional reference systems to planar shifts.
	CRSOffsets map[string][2]float64 `yaml:"crs_offsets"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CellSize: 20.0,

		MinWidth: 3, MaxWidth: 10,
		MinDepth: 3, MaxDepth: 10,
		IrregularPercent: 15,

		MinStoreys: 1, MaxStoreys: 5,
		MinStoreyHeight: 3.0, MaxStoreyHeight: 3.5,
		FlatOnlyStoreys: 4,
		MinRoofRise:     2.0,
		MaxRoofRise:     3.8,
		DefaultRoofRise: 2.8,
		LowBuildingEaves: 5.0,

		OverhangPercent: 20,
		MinOverhang:     0.1,
		MaxOverhang:     1.0,

		PartPercent: 80,
		MaxParts:    2,
		PartRetries: 10,
		MaxRotation: 45,

		StreetWidth:      5.0,
		StreetSeparation: 1.0,
		StreetSkip:       3,
		ParkRatio:        0.05,
		ParkHeight:       3.0,

		CRSOffsets: map[string][2]float64{
			"Nordoostpolder": {173469.0, 526427.0},
		},
	}
}

// Load reads a configuration YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CRSOffset returns the planar shift for a named reference system.
// The empty name means local coordinates.
func (c *Config) CRSOffset(name string) ([2]float64, error) {
	if name == "" {
		return [2]float64{}, nil
	}
	off, ok := c.CRSOffsets[name]
	if !ok {
		return [2]float64{}, fmt.Errorf("unknown coordinate system %q", name)
	}
	return off, nil
}

// Check validates the configuration ranges.
func (c *Config) Check() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("config: cell_size must be positive")
	}
	if c.MinWidth <= 0 || c.MaxWidth < c.MinWidth {
		return fmt.Errorf("config: invalid width range [%.2f, %.2f]", c.MinWidth, c.MaxWidth)
	}
	if c.MinDepth <= 0 || c.MaxDepth < c.MinDepth {
		return fmt.Errorf("config: invalid depth range [%.2f, %.2f]", c.MinDepth, c.MaxDepth)
	}
	if c.MinStoreys < 1 || c.MaxStoreys < c.MinStoreys {
		return fmt.Errorf("config: invalid storey range [%d, %d]", c.MinStoreys, c.MaxStoreys)
	}
	if c.MinStoreyHeight <= 0 || c.MaxStoreyHeight < c.MinStoreyHeight {
		return fmt.Errorf("config: invalid storey height range")
	}
	if c.MinRoofRise <= 0 || c.MaxRoofRise < c.MinRoofRise {
		return fmt.Errorf("config: invalid roof rise range")
	}
	if c.PartRetries < 1 {
		return fmt.Errorf("config: part_retries must be at least 1")
	}
	return nil
}
