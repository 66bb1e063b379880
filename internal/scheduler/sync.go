package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/kindle-notion/internal/entities"
	"github.com/mrlokans/kindle-notion/internal/services"
	"github.com/mrlokans/kindle-notion/internal/tasks"
)

// Syncer runs one sync of the clippings file.
type Syncer interface {
	Run(ctx context.Context, trigger entities.SyncTrigger) (*entities.SyncRun, error)
}

// Enqueuer adds a task to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Config selects the cron expressions. An empty expression disables the job.
type Config struct {
	SyncSchedule    string
	CleanupSchedule string
	RetentionDays   int
	// SyncTimeout bounds one scheduled sync. Default: 10m
	SyncTimeout time.Duration
}

// SyncScheduler runs periodic syncs and queues history cleanup.
type SyncScheduler struct {
	config   Config
	syncer   Syncer
	enqueuer Enqueuer

	cron        *cron.Cron
	syncEntryID cron.EntryID
	mu          sync.RWMutex
	isRunning   bool
	cancelFunc  context.CancelFunc
}

// NewSyncScheduler creates a new scheduler instance. enqueuer may be nil,
// in which case the cleanup job is not scheduled.
func NewSyncScheduler(cfg Config, syncer Syncer, enqueuer Enqueuer) *SyncScheduler {
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 10 * time.Minute
	}
	return &SyncScheduler{
		config:   cfg,
		syncer:   syncer,
		enqueuer: enqueuer,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the jobs and starts the cron runner. It stops on its own
// when ctx is cancelled.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.config.SyncSchedule == "" && (s.config.CleanupSchedule == "" || s.enqueuer == nil) {
		log.Printf("Sync scheduler: no schedule configured")
		return nil
	}

	if s.config.SyncSchedule != "" {
		if err := ValidateCronSchedule(s.config.SyncSchedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", s.config.SyncSchedule, err)
		}
		entryID, err := s.cron.AddFunc(s.config.SyncSchedule, s.runSync)
		if err != nil {
			return fmt.Errorf("failed to schedule sync job: %w", err)
		}
		s.syncEntryID = entryID
	}

	if s.config.CleanupSchedule != "" && s.enqueuer != nil {
		if err := ValidateCronSchedule(s.config.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", s.config.CleanupSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.config.CleanupSchedule, s.enqueueCleanup); err != nil {
			return fmt.Errorf("failed to schedule cleanup job: %w", err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	if s.config.SyncSchedule != "" {
		nextRun, _ := GetNextRunTime(s.config.SyncSchedule, time.Now())
		log.Printf("Sync scheduler: started with schedule '%s' (%s). Next run: %v",
			s.config.SyncSchedule,
			GetCronDescription(s.config.SyncSchedule),
			nextRun)
	}

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Sync scheduler: stopped")
}

// IsRunning returns whether the scheduler is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next scheduled sync will occur
func (s *SyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || s.syncEntryID == 0 {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.syncEntryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *SyncScheduler) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.SyncTimeout)
	defer cancel()

	_, err := s.syncer.Run(ctx, entities.SyncTriggerSchedule)
	if errors.Is(err, services.ErrSyncInProgress) {
		return
	}
	if err != nil {
		log.Printf("Sync scheduler: scheduled sync failed: %v", err)
	}
}

func (s *SyncScheduler) enqueueCleanup() {
	id, err := s.enqueuer.Enqueue(context.Background(), tasks.CleanupHistoryTask{RetentionDays: s.config.RetentionDays})
	if err != nil {
		log.Printf("Sync scheduler: failed to queue history cleanup: %v", err)
		return
	}
	log.Printf("Sync scheduler: queued history cleanup task %s", id)
}
