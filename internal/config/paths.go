package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBaseDir returns the directory holding one sub-directory per test,
// ~/simdb/data/shear_zone.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "simdb", "data", "shear_zone"), nil
}

// DataDir returns base_dir/dir_name
func (p PathsConfig) DataDir() (string, error) {
	base := p.BaseDir
	if base == "" {
		var err error
		if base, err = DefaultBaseDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(base, p.DirName), nil
}

// SeriesFile resolves the load-deflection CSV. An explicit File wins over
// the base_dir/dir_name/load_deflection/load_deflection.csv convention.
func (p PathsConfig) SeriesFile() (string, error) {
	if p.File != "" {
		return p.File, nil
	}
	if p.DirName == "" {
		return "", fmt.Errorf("either a file or a test directory name is required")
	}
	dataDir, err := p.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, p.SubDir, p.FileName), nil
}

// EnsureOutputDir creates the report output directory
func (p PathsConfig) EnsureOutputDir() (string, error) {
	dir, err := filepath.Abs(p.OutputDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory %s: %w", p.OutputDir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return dir, nil
}
