package tasks

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Akshat120/Book-Review-API/internal/config"
)

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 2
	Workers int

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: 1 * time.Hour,
	}
}

// FromConfig fills unset values in the application config with defaults.
func FromConfig(cfg config.Tasks) Config {
	out := DefaultConfig()
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	if cfg.ReleaseAfter > 0 {
		out.ReleaseAfter = cfg.ReleaseAfter
	}
	if cfg.CleanupInterval > 0 {
		out.CleanupInterval = cfg.CleanupInterval
	}
	return out
}

// DatabasePath resolves where the queue keeps its SQLite file. An explicit
// path wins; otherwise the file sits next to the main SQLite database with a
// "-tasks" suffix. PostgreSQL and in-memory deployments fall back to a file
// in the working directory.
func DatabasePath(tasksCfg config.Tasks, dbCfg config.Database) string {
	if tasksCfg.DatabasePath != "" {
		return tasksCfg.DatabasePath
	}

	mainDBPath := dbCfg.Path
	if i := strings.Index(mainDBPath, "?"); i >= 0 {
		mainDBPath = mainDBPath[:i]
	}
	sqliteFile := dbCfg.Driver == "" || strings.EqualFold(dbCfg.Driver, "sqlite")
	if !sqliteFile || mainDBPath == "" || strings.Contains(mainDBPath, ":memory:") {
		mainDBPath = config.DefaultDatabasePath
	}

	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	return filepath.Join(dir, name+"-tasks"+ext)
}
