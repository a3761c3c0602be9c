// Package jobs provides database operations for import job tracking.
//
// This package implements the ProgressReporter interface used by the
// batch runner.
//
// # Interface Implementation
//
//	var _ importer.ProgressReporter = (*Reporter)(nil)
package jobs

import (
	"time"

	"gorm.io/gorm"

	"github.com/mustafahasanain/bookstock/internal/entities"
)

// Repository handles import job database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new jobs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateJob enqueues a new pending job for the given raw input.
func (r *Repository) CreateJob(rawText, category string) (*entities.ImportJob, error) {
	job := entities.ImportJob{
		Status:    entities.JobStatusPending,
		RawText:   rawText,
		Category:  category,
		StartedAt: time.Now(),
	}
	if err := r.db.Create(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob retrieves a job with its per-item results ordered by position.
func (r *Repository) GetJob(id uint) (*entities.ImportJob, error) {
	var job entities.ImportJob
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&job, id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// AppendItem records one per-row outcome for a job.
func (r *Repository) AppendItem(jobID uint, position int, title string, success bool, message string, productID uint) error {
	item := entities.ImportItem{
		JobID:     jobID,
		Position:  position,
		Title:     title,
		Success:   success,
		Message:   message,
		ProductID: productID,
	}
	return r.db.Create(&item).Error
}

// PurgeFinished deletes completed and failed jobs older than the cutoff,
// together with their items. Returns the number of jobs removed.
func (r *Repository) PurgeFinished(olderThan time.Time) (int64, error) {
	var stale []entities.ImportJob
	err := r.db.Select("id").
		Where("status IN ? AND updated_at < ?",
			[]entities.JobStatus{entities.JobStatusCompleted, entities.JobStatusFailed}, olderThan).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(stale))
	for _, job := range stale {
		ids = append(ids, job.ID)
	}

	if err := r.db.Where("job_id IN ?", ids).Delete(&entities.ImportItem{}).Error; err != nil {
		return 0, err
	}
	result := r.db.Where("id IN ?", ids).Delete(&entities.ImportJob{})
	return result.RowsAffected, result.Error
}

// Reporter reports batch progress into a single job row.
type Reporter struct {
	repo  *Repository
	jobID uint
}

// NewReporter creates a progress reporter bound to one job.
func (r *Repository) NewReporter(jobID uint) *Reporter {
	return &Reporter{repo: r, jobID: jobID}
}

// StartBatch marks the job running and records the item total.
func (rp *Reporter) StartBatch(totalItems int) error {
	return rp.repo.db.Model(&entities.ImportJob{}).
		Where("id = ?", rp.jobID).
		Updates(map[string]any{
			"status":      entities.JobStatusRunning,
			"total_items": totalItems,
			"updated_at":  time.Now(),
		}).Error
}

// UpdateProgress updates the counters of a running job.
func (rp *Reporter) UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error {
	return rp.repo.db.Model(&entities.ImportJob{}).
		Where("id = ?", rp.jobID).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"skipped":      skipped,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteBatch marks the job completed or failed.
func (rp *Reporter) CompleteBatch(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.JobStatusCompleted
	if !succeeded {
		status = entities.JobStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return rp.repo.db.Model(&entities.ImportJob{}).
		Where("id = ?", rp.jobID).
		Updates(updates).Error
}

// RecordItem persists one per-row result for the reporter's job.
func (rp *Reporter) RecordItem(position int, title string, success bool, message string, productID uint) error {
	return rp.repo.AppendItem(rp.jobID, position, title, success, message, productID)
}
