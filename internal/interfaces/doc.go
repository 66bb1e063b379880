// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help find the
// extension points of the sync pipeline.
//
// # Interface Categories
//
// ## Sync Pipeline Interfaces
//
//   - RunRecorder: Sync run lifecycle (internal/services/interfaces.go)
//   - SnapshotSaver: Parsed export snapshots (internal/services/interfaces.go)
//   - Exporter: Publishes grouped clips (internal/exporters/generic.go)
//   - Publisher: Creates one Notion page per book (internal/exporters/notion.go)
//   - Archiver: Marks or stores a consumed export (internal/archive/archive.go)
//
// ## Trigger Interfaces
//
//   - Syncer: Starts a sync (internal/scheduler, internal/watcher, internal/tasks)
//   - Enqueuer: Adds background tasks (internal/scheduler/sync.go, internal/http/sync.go)
//
// ## HTTP Read Interfaces
//
//   - RunReader: Sync history (internal/http/sync.go)
//   - SyncState: Sync in progress flag (internal/http/sync.go)
//   - TaskStatusReader: Task status lookup (internal/http/tasks.go)
//   - Pinger: Health checks (internal/http/health.go)
//
// # Adding a New Export Target
//
//  1. Implement Exporter in internal/exporters/
//
//     type ObsidianExporter struct {
//         vaultDir string
//     }
//
//     func (e *ObsidianExporter) Export(ctx context.Context, books []clippings.BookClips) (ExportResult, error)
//
//     var _ Exporter = (*ObsidianExporter)(nil)
//
//  2. Select it in entrypoint/wiring.go and in the sync command
//
// # Adding a New Archive Mode
//
//  1. Implement Archiver in internal/archive/
//
//  2. Add the mode to archive.New and to the ARCHIVE_MODE validation in config.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
