package entities

import (
	"time"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ImportJob tracks one queued batch import and its progress counters.
type ImportJob struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Status      JobStatus `gorm:"size:20;index" json:"status"`
	RawText     string    `gorm:"type:text" json:"-"`
	Category    string    `gorm:"size:256" json:"category,omitempty"`
	TotalItems  int       `json:"total_items"`
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	CurrentItem string    `gorm:"size:512" json:"current_item,omitempty"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`

	Items []ImportItem `gorm:"foreignKey:JobID" json:"items,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}

// ImportItem is the recorded outcome of a single row within a job.
type ImportItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	JobID     uint      `gorm:"index" json:"job_id"`
	Position  int       `json:"position"`
	Title     string    `gorm:"size:512" json:"title"`
	Success   bool      `json:"success"`
	Message   string    `gorm:"size:512" json:"message"`
	ProductID uint      `json:"product_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (ImportItem) TableName() string {
	return "import_items"
}
