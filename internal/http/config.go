package http

import (
	"github.com/mrlokans/kindle-notion/internal/clippings"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database Pinger
	Runs     RunReader
	Parser   *clippings.Parser

	// Sync
	SyncState     SyncState
	ClippingsPath string

	// Task queue; both nil when the queue is disabled
	TaskEnqueuer TaskEnqueuer
	TaskStatus   TaskStatusReader

	// Upload limit for parse requests in bytes
	MaxUploadSize int64

	// Application info
	Version string
}
