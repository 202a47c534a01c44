// Package config holds the runtime configuration surfaced as cobra flags
// and environment variable overrides by cmd/idxbeast, per spec.md §6.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Config is the full set of tunables spec.md §6 describes as external
// interface configuration.
type Config struct {
	Root              string   // directory or URL root to index
	Extensions        []string // file extension allow-list; empty means "all"
	RecurseLinks      int      // web source hop limit, [0, 8]
	WorkerCount       int      // indexer worker goroutines, [1, 16]
	BatchCap          int      // writer batch size cap
	HashCacheCapacity int      // per-worker word-hash LRU capacity
	StorePath         string   // sqlite database file path
	LogLevel          string   // debug, info, warn, error
	StatusAddr        string   // status/debug HTTP listen address, read from IDXBEAST_STATUS_ADDR; no subcommand starts a server from it (serve uses --addr)
}

// Default returns spec.md's defaults (§6, §9).
func Default() Config {
	return Config{
		RecurseLinks:      0,
		WorkerCount:       min(runtime.NumCPU(), 16),
		BatchCap:          10000,
		HashCacheCapacity: 100000,
		StorePath:         "idxbeast.db",
		LogLevel:          "info",
	}
}

// ApplyEnv overrides cfg's fields from IDXBEAST_* environment variables,
// letting flags set explicitly on the command line take precedence (the
// caller should call this before parsing flags that the user may override,
// or simply treat it as a base layer beneath cobra's flag defaults).
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("IDXBEAST_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("IDXBEAST_EXTENSIONS"); v != "" {
		c.Extensions = strings.Split(v, ",")
	}
	if v := os.Getenv("IDXBEAST_RECURSE_LINKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IDXBEAST_RECURSE_LINKS: %w", err)
		}
		c.RecurseLinks = n
	}
	if v := os.Getenv("IDXBEAST_WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IDXBEAST_WORKER_COUNT: %w", err)
		}
		c.WorkerCount = n
	}
	if v := os.Getenv("IDXBEAST_BATCH_CAP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IDXBEAST_BATCH_CAP: %w", err)
		}
		c.BatchCap = n
	}
	if v := os.Getenv("IDXBEAST_HASH_CACHE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IDXBEAST_HASH_CACHE_CAPACITY: %w", err)
		}
		c.HashCacheCapacity = n
	}
	if v := os.Getenv("IDXBEAST_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("IDXBEAST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("IDXBEAST_STATUS_ADDR"); v != "" {
		c.StatusAddr = v
	}
	return nil
}

// Validate reports a ConfigurationError for out-of-range values per
// spec.md §7.
func (c Config) Validate() error {
	if c.Root == "" {
		return &ConfigurationError{Field: "root", Reason: "must not be empty"}
	}
	if c.RecurseLinks < 0 || c.RecurseLinks > 8 {
		return &ConfigurationError{Field: "recurse_links", Reason: "must be in range [0, 8]"}
	}
	if c.WorkerCount < 1 || c.WorkerCount > 16 {
		return &ConfigurationError{Field: "worker_count", Reason: "must be in range [1, 16]"}
	}
	if c.BatchCap < 1 {
		return &ConfigurationError{Field: "batch_cap", Reason: "must be positive"}
	}
	return nil
}

// ConfigurationError is the spec.md §7 error surface raised at startup for
// invalid configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %q: %s", e.Field, e.Reason)
}
