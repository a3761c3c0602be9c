// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mustafahasanain/bookstock/internal/tasks"
)

// CleanupScheduler periodically enqueues a job-cleanup task so finished
// import jobs do not accumulate forever.
type CleanupScheduler struct {
	queue          *tasks.Client
	schedule       string
	retentionHours int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCleanupScheduler creates a scheduler that fires on the given five-field
// cron schedule and keeps finished jobs for retentionHours.
func NewCleanupScheduler(queue *tasks.Client, schedule string, retentionHours int) *CleanupScheduler {
	return &CleanupScheduler{
		queue:          queue,
		schedule:       schedule,
		retentionHours: retentionHours,
		cron:           cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueueCleanup()
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Job cleanup scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a firing job to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Job cleanup scheduler: stopped")
}

// RunNow enqueues a cleanup immediately.
func (s *CleanupScheduler) RunNow() {
	go s.enqueueCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will be enqueued.
func (s *CleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *CleanupScheduler) enqueueCleanup() {
	if s.queue == nil {
		return
	}
	_, err := s.queue.Add(tasks.CleanupJobsTask{RetentionHours: s.retentionHours}).Save()
	if err != nil {
		log.Printf("Job cleanup scheduler: failed to enqueue cleanup: %v", err)
		return
	}
	log.Printf("Job cleanup scheduler: cleanup task enqueued")
}
