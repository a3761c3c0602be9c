package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// JobPurger provides the ability to delete old finished import jobs.
type JobPurger interface {
	PurgeFinished(olderThan time.Time) (int64, error)
}

// CleanupJobsTask removes finished import jobs older than the retention
// period.
type CleanupJobsTask struct {
	RetentionHours int `json:"retention_hours"`
}

// Config returns the queue configuration for job cleanup tasks.
func (t CleanupJobsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_jobs",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupJobsProcessor creates a processor function for CleanupJobsTask.
func CleanupJobsProcessor(purger JobPurger) backlite.QueueProcessor[CleanupJobsTask] {
	return func(ctx context.Context, task CleanupJobsTask) error {
		if purger == nil {
			return fmt.Errorf("job purger not configured")
		}

		retentionHours := task.RetentionHours
		if retentionHours <= 0 {
			retentionHours = 168
		}
		cutoff := time.Now().Add(-time.Duration(retentionHours) * time.Hour)

		deleted, err := purger.PurgeFinished(cutoff)
		if err != nil {
			return fmt.Errorf("cleanup import jobs: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d import jobs older than %d hours", deleted, retentionHours)
		return nil
	}
}

// NewCleanupJobsQueue creates a backlite queue for job cleanup tasks.
func NewCleanupJobsQueue(purger JobPurger) backlite.Queue {
	return backlite.NewQueue(CleanupJobsProcessor(purger))
}
