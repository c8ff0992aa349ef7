// Package config provides configuration loading and management for the
// codebook toolkit: source-track definitions, data-driven marker lists,
// and the wave→prefix table.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hrstools/codebook/model"
	"github.com/hrstools/codebook/naming"
)

// Config is the complete toolkit configuration.
type Config struct {
	// DataDir is the root directory holding raw codebook files.
	DataDir string `yaml:"data_dir"`

	// Sources defines the known source tracks.
	Sources []SourceConfig `yaml:"sources"`

	// Markers holds the data-driven token lists used by the value-code
	// parser and the categorizer.
	Markers MarkerConfig `yaml:"markers"`

	// WaveTable maps wave numbers to their letter prefixes. Historical
	// corrections are data changes here, not code changes.
	WaveTable naming.Table `yaml:"wave_table"`
}

// SourceConfig describes one source track: where its files live and which
// years it covers.
type SourceConfig struct {
	// Name is the source identifier (e.g. "hrs_core_codebook").
	Name string `yaml:"name"`

	// Track selects the layout grammar.
	Track model.Track `yaml:"track"`

	// Years lists the release years to process.
	Years []int `yaml:"years"`

	// Patterns are doublestar globs, relative to DataDir, matching the
	// track's codebook files (e.g. "**/h*cb.txt").
	Patterns []string `yaml:"patterns"`
}

// MarkerConfig holds the fixed token lists the source grammars recognize.
// The lists come from the domain documentation; an incomplete list
// misclassifies silently, so all four are overridable.
type MarkerConfig struct {
	// MissingCodes are code tokens that mark a missing-value row
	// (compared case-insensitively).
	MissingCodes []string `yaml:"missing_codes"`

	// MissingLabels are labels that mark a missing-value row
	// (compared case-insensitively).
	MissingLabels []string `yaml:"missing_labels"`

	// IdentifierNames are variable names or base names of known
	// respondent/household identifiers.
	IdentifierNames []string `yaml:"identifier_names"`

	// DerivedMarkers are description substrings (upper-cased) that mark
	// computed/derived variables.
	DerivedMarkers []string `yaml:"derived_markers"`
}

// DefaultConfig returns a Config with the documented marker lists and the
// historical wave table.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Sources: []SourceConfig{
			{
				Name:     "hrs_core_codebook",
				Track:    model.TrackCore,
				Years:    biennial(1992, 2022),
				Patterns: []string{"**/h*cb.txt"},
			},
			{
				Name:     "hrs_exit_codebook",
				Track:    model.TrackExit,
				Years:    biennial(1996, 2022),
				Patterns: []string{"**/x*cb.htm", "**/x*cb.html", "**/x*cb.txt"},
			},
			{
				Name:     "hrs_post_exit_codebook",
				Track:    model.TrackPostExit,
				Years:    biennial(2014, 2022),
				Patterns: []string{"**/px*cb.txt", "**/PX*cb.txt"},
			},
		},
		Markers: MarkerConfig{
			MissingCodes: []string{
				"blank", "missing", "na", "n/a", "inap", "dk", "rf",
			},
			MissingLabels: []string{
				"don't know", "dk (don't know)", "refused", "rf (refused)",
				"inap", "data missing", "not applicable", "not ascertained",
			},
			IdentifierNames: []string{
				"HHID", "PN", "SUBHH", "HHIDPN", "PNSP", "OPN",
			},
			DerivedMarkers: []string{
				"DERIVED", "IMPUTED", "CALCULATED", "COMPUTED", "CONSTRUCTED",
			},
		},
		WaveTable: naming.DefaultTable(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source name is required")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name: %s", s.Name)
		}
		seen[s.Name] = true
		if !s.Track.Valid() {
			return fmt.Errorf("source %s: unknown track %q", s.Name, s.Track)
		}
		if len(s.Patterns) == 0 {
			return fmt.Errorf("source %s: at least one pattern is required", s.Name)
		}
	}
	if len(c.WaveTable) == 0 {
		return fmt.Errorf("wave_table is required")
	}
	return nil
}

// Source returns the source config with the given name, or nil.
func (c *Config) Source(name string) *SourceConfig {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i]
		}
	}
	return nil
}

// SourceForTrack returns the first source config for the given track, or
// nil.
func (c *Config) SourceForTrack(track model.Track) *SourceConfig {
	for i := range c.Sources {
		if c.Sources[i].Track == track {
			return &c.Sources[i]
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, layered over the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one; other takes precedence for
// non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if len(other.Sources) > 0 {
		c.Sources = other.Sources
	}
	if len(other.Markers.MissingCodes) > 0 {
		c.Markers.MissingCodes = other.Markers.MissingCodes
	}
	if len(other.Markers.MissingLabels) > 0 {
		c.Markers.MissingLabels = other.Markers.MissingLabels
	}
	if len(other.Markers.IdentifierNames) > 0 {
		c.Markers.IdentifierNames = other.Markers.IdentifierNames
	}
	if len(other.Markers.DerivedMarkers) > 0 {
		c.Markers.DerivedMarkers = other.Markers.DerivedMarkers
	}
	if len(other.WaveTable) > 0 {
		c.WaveTable = other.WaveTable
	}
}

// biennial returns every second year from first through last inclusive.
func biennial(first, last int) []int {
	var years []int
	for y := first; y <= last; y += 2 {
		years = append(years, y)
	}
	return years
}
