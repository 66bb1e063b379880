package tasks

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 1
	// A sync holds the clippings file, so more workers only help cleanup tasks.
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often backlite removes finished tasks. Default: 1h
	CleanupInterval time.Duration

	// HistoryRetentionDays is how long sync runs and audit snapshots are kept. Default: 90
	HistoryRetentionDays int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:              1,
		ReleaseAfter:         15 * time.Minute,
		CleanupInterval:      1 * time.Hour,
		HistoryRetentionDays: 90,
	}
}

// DBPath returns the task queue database path that sits next to mainDBPath
// with a "-tasks" suffix.
func DBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}
