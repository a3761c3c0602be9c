package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mustafahasanain/bookstock/internal/database/jobs"
	"github.com/mustafahasanain/bookstock/internal/importer"
	"github.com/mustafahasanain/bookstock/internal/parser"
)

// ImportBatchTask processes one queued import job. The queue runs on a
// single worker, so jobs execute strictly one at a time in enqueue order.
type ImportBatchTask struct {
	JobID uint `json:"job_id"`
}

// Config returns the queue configuration for import batch tasks.
func (t ImportBatchTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_batch",
		MaxAttempts: 1,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportBatchProcessor creates a processor function for ImportBatchTask.
func ImportBatchProcessor(repo *jobs.Repository, runner *importer.BatchRunner) backlite.QueueProcessor[ImportBatchTask] {
	return func(ctx context.Context, task ImportBatchTask) error {
		if repo == nil || runner == nil {
			return fmt.Errorf("import batch processor not configured")
		}

		job, err := repo.GetJob(task.JobID)
		if err != nil {
			return fmt.Errorf("load import job %d: %w", task.JobID, err)
		}

		lines := parser.Parse(job.RawText)
		reporter := repo.NewReporter(job.ID)

		if len(lines) == 0 {
			if err := reporter.CompleteBatch(false, "no valid book entries found"); err != nil {
				return fmt.Errorf("mark job %d failed: %w", job.ID, err)
			}
			log.Printf("[TASK] Import job %d had no valid entries", job.ID)
			return nil
		}

		summary, err := runner.Run(ctx, lines, job.Category, reporter)
		if err != nil {
			return fmt.Errorf("run import job %d: %w", job.ID, err)
		}

		log.Printf("[TASK] Import job %d finished: %d succeeded, %d failed, %d skipped of %d",
			job.ID, summary.Succeeded, summary.Failed, summary.Skipped, summary.Total)
		return nil
	}
}

// NewImportBatchQueue creates a backlite queue for import batch tasks.
func NewImportBatchQueue(repo *jobs.Repository, runner *importer.BatchRunner) backlite.Queue {
	return backlite.NewQueue(ImportBatchProcessor(repo, runner))
}
