package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kindle-notion/internal/entities"
	"github.com/mrlokans/kindle-notion/internal/services"
)

// Syncer runs one sync of the clippings file.
// Implemented by services.SyncService.
type Syncer interface {
	Run(ctx context.Context, trigger entities.SyncTrigger) (*entities.SyncRun, error)
}

// SyncClippingsTask publishes new clips from the clippings file.
type SyncClippingsTask struct {
	Trigger     entities.SyncTrigger `json:"trigger"`
	RequestedAt time.Time            `json:"requested_at"`
}

// Config returns the queue configuration for sync tasks. A failed sync is
// not retried automatically; its run is recorded and the next trigger tries again.
func (t SyncClippingsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_clippings",
		MaxAttempts: 1,
		Timeout:     15 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncClippingsProcessor creates a processor function for SyncClippingsTask.
func SyncClippingsProcessor(syncer Syncer) backlite.QueueProcessor[SyncClippingsTask] {
	return func(ctx context.Context, task SyncClippingsTask) error {
		if syncer == nil {
			return fmt.Errorf("sync service not configured")
		}

		trigger := task.Trigger
		if trigger == "" {
			trigger = entities.SyncTriggerAPI
		}

		run, err := syncer.Run(ctx, trigger)
		if errors.Is(err, services.ErrSyncInProgress) {
			log.Printf("[TASK] Sync requested at %s skipped: another sync is running", task.RequestedAt.Format(time.RFC3339))
			return nil
		}
		if err != nil {
			return fmt.Errorf("sync clippings: %w", err)
		}

		log.Printf("[TASK] Sync run %s finished with status %s", run.UUID, run.Status)
		return nil
	}
}

// NewSyncClippingsQueue creates a backlite queue for sync tasks.
func NewSyncClippingsQueue(syncer Syncer) backlite.Queue {
	return backlite.NewQueue(SyncClippingsProcessor(syncer))
}
