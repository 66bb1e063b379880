package services

import (
	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/entities"
)

// RunRecorder persists the lifecycle of a sync run.
// Implemented by runs.Repository.
type RunRecorder interface {
	Start(trigger entities.SyncTrigger, clippingsPath string) (*entities.SyncRun, error)
	AddPublished(run *entities.SyncRun, books []entities.PublishedBook) error
	Complete(run *entities.SyncRun) error
	Fail(run *entities.SyncRun, runErr error) error
}

// SnapshotSaver keeps a copy of what a run parsed.
// Implemented by audit.Auditor.
type SnapshotSaver interface {
	SaveSnapshot(runID, clippingsPath string, result *clippings.Result) (string, error)
}
