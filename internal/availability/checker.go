package availability

import (
	"fmt"
	"path/filepath"

	"nightsweep/internal/config"
	"nightsweep/internal/nights"
)

// Checker reports whether any telescope unit recorded raw data for a night.
type Checker struct {
	dataDir  string
	unitGlob string
}

// NewChecker builds a Checker from the configured observation root.
func NewChecker(cfg *config.Config) *Checker {
	return &Checker{dataDir: cfg.Paths.DataDir, unitGlob: cfg.Ingest.UnitGlob}
}

// HasData matches <data_dir>/<unit_glob>/<date>* across all unit
// directories. Night directories may carry suffixes (2025-06-04_gain2750),
// so the date is matched as a prefix. A glob failure is returned alongside
// false; callers record a skip with a warning rather than aborting.
func (c *Checker) HasData(night nights.Night) (bool, error) {
	pattern := filepath.Join(c.dataDir, c.unitGlob, night.String()+"*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return false, fmt.Errorf("glob %s: %w", pattern, err)
	}
	return len(matches) > 0, nil
}
