package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// OperationStatus is the manifest entry of one analysis.
type OperationStatus struct {
	Name     string `yaml:"name"`
	OK       bool   `yaml:"ok"`
	Error    string `yaml:"error,omitempty"`
	Artifact string `yaml:"artifact,omitempty"`
}

// Manifest describes one pipeline run and the artifacts it produced.
type Manifest struct {
	RunID       string            `yaml:"run_id"`
	StartedAt   time.Time         `yaml:"started_at"`
	Input       string            `yaml:"input"`
	Fingerprint string            `yaml:"fingerprint"`
	Rows        int               `yaml:"rows"`
	Missing     map[string]int    `yaml:"missing_values,omitempty"`
	Repaired    int               `yaml:"repaired_review_counts"`
	Operations  []OperationStatus `yaml:"operations"`
	Artifacts   []string          `yaml:"artifacts"`
}

// WriteManifest serialises m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("manifest: create output dir: %w", err)
	}
	b, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("manifest: write %q: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %q: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("manifest: unmarshal yaml: %w", err)
	}
	return &m, nil
}
