package tasks

import "time"

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Imports run on a
	// single worker so batches execute strictly one at a time. Default: 1
	Workers int

	// MaxRetries is the default maximum retry attempts for failed tasks. Default: 1
	MaxRetries int

	// TaskTimeout bounds the execution time of one import batch. Default: 30m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to the queue. Default: 45m
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are cleaned up. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long completed task rows are kept. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        1,
		TaskTimeout:       30 * time.Minute,
		ReleaseAfter:      45 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
