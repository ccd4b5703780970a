package config

import (
	"os"
	"path/filepath"
)

// DataCandidates lists where ipcsim looks for index data when none is configured,
// relative to the working directory and then the config directory.
var DataCandidates = []string{
	"data/output.json",
	"output.json",
	"data",
}

// ResolveDataFile returns the configured data path, or the first existing
// candidate. ok is false when nothing was found.
func ResolveDataFile(cfg Config) (string, bool) {
	if cfg.General.DataFile != "" {
		return cfg.General.DataFile, true
	}
	for _, base := range []string{".", Dir()} {
		for _, c := range DataCandidates {
			path := filepath.Join(base, c)
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}
	}
	return "", false
}
