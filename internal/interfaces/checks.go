package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mrlokans/kindle-notion/internal/archive"
	"github.com/mrlokans/kindle-notion/internal/audit"
	"github.com/mrlokans/kindle-notion/internal/database"
	"github.com/mrlokans/kindle-notion/internal/database/runs"
	"github.com/mrlokans/kindle-notion/internal/exporters"
	"github.com/mrlokans/kindle-notion/internal/http"
	"github.com/mrlokans/kindle-notion/internal/notion"
	"github.com/mrlokans/kindle-notion/internal/scheduler"
	"github.com/mrlokans/kindle-notion/internal/services"
	"github.com/mrlokans/kindle-notion/internal/tasks"
	"github.com/mrlokans/kindle-notion/internal/watcher"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Sync history
var _ services.RunRecorder = (*runs.Repository)(nil)
var _ http.RunReader = (*runs.Repository)(nil)
var _ tasks.RunPruner = (*runs.Repository)(nil)

// Audit snapshots
var _ services.SnapshotSaver = (*audit.Auditor)(nil)
var _ tasks.SnapshotPruner = (*audit.Auditor)(nil)

// Health
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Export Targets
// =============================================================================

var _ exporters.Exporter = (*exporters.NotionExporter)(nil)
var _ exporters.Exporter = (*exporters.MarkdownExporter)(nil)
var _ exporters.Publisher = (*notion.Client)(nil)

// =============================================================================
// Archive Modes
// =============================================================================

var _ archive.Archiver = archive.MarkerArchiver{}
var _ archive.Archiver = archive.NopArchiver{}
var _ archive.Archiver = (*archive.RotateArchiver)(nil)
var _ archive.Archiver = (*archive.S3Archiver)(nil)
var _ archive.PutObjectAPI = (*s3.Client)(nil)

// =============================================================================
// Sync Triggers
// =============================================================================

var _ http.SyncState = (*services.SyncService)(nil)
var _ scheduler.Syncer = (*services.SyncService)(nil)
var _ watcher.Syncer = (*services.SyncService)(nil)
var _ tasks.Syncer = (*services.SyncService)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskEnqueuer = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
