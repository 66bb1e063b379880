package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// RunPruner deletes finished sync runs. Implemented by runs.Repository.
type RunPruner interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// SnapshotPruner deletes old audit snapshots. Implemented by audit.Auditor.
type SnapshotPruner interface {
	Prune(retention time.Duration) (int, error)
}

// CleanupHistoryTask removes sync runs and audit snapshots older than the retention period.
type CleanupHistoryTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for history cleanup tasks.
func (t CleanupHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_history",
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

// CleanupHistoryProcessor creates a processor function for CleanupHistoryTask.
// snapshots may be nil when auditing is disabled.
func CleanupHistoryProcessor(runs RunPruner, snapshots SnapshotPruner) backlite.QueueProcessor[CleanupHistoryTask] {
	return func(ctx context.Context, task CleanupHistoryTask) error {
		if runs == nil {
			return fmt.Errorf("run history not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = DefaultConfig().HistoryRetentionDays
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := runs.DeleteOlderThan(time.Now().Add(-retention))
		if err != nil {
			return fmt.Errorf("cleanup sync runs: %w", err)
		}

		pruned := 0
		if snapshots != nil {
			pruned, err = snapshots.Prune(retention)
			if err != nil {
				return fmt.Errorf("cleanup audit snapshots: %w", err)
			}
		}

		log.Printf("[TASK] Cleaned up %d sync runs and %d audit snapshots older than %d days", deleted, pruned, retentionDays)
		return nil
	}
}

// NewCleanupHistoryQueue creates a backlite queue for history cleanup tasks.
func NewCleanupHistoryQueue(runs RunPruner, snapshots SnapshotPruner) backlite.Queue {
	return backlite.NewQueue(CleanupHistoryProcessor(runs, snapshots))
}
