package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest written next to the Parquet outputs.
const FileName = "manifest.yaml"

// Manifest records what a conversion run produced.
type Manifest struct {
	GeneratedAt      time.Time `yaml:"generated_at"`
	GADMVersion      string    `yaml:"gadm_version"`
	ReferenceEntries int       `yaml:"reference_entries"`
	Outputs          []Output  `yaml:"outputs"`
	Skipped          []Skipped `yaml:"skipped,omitempty"`
}

// Output is one Parquet file written by the run.
type Output struct {
	File   string `yaml:"file"`
	Source string `yaml:"source"`
	Level  int    `yaml:"level"`
	Files  int    `yaml:"files"`
	Rows   int64  `yaml:"rows"`
}

// Skipped is a (data source, admin level) pair that produced no output.
type Skipped struct {
	Source string `yaml:"source"`
	Level  int    `yaml:"level"`
	Reason string `yaml:"reason"`
}

// Path returns the manifest location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Write stores m as dir/manifest.yaml.
func Write(dir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(Path(dir), data, 0o644); err != nil { //nolint:gosec // output is meant to be shared
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads dir/manifest.yaml.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", Path(dir), err)
	}
	return &m, nil
}
