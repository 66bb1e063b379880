package entrypoint

import (
	"context"
	"fmt"

	"github.com/mrlokans/kindle-notion/internal/audit"
	"github.com/mrlokans/kindle-notion/internal/config"
	"github.com/mrlokans/kindle-notion/internal/database"
	"github.com/mrlokans/kindle-notion/internal/database/runs"
	"github.com/mrlokans/kindle-notion/internal/exporters"
	"github.com/mrlokans/kindle-notion/internal/notion"
	"github.com/mrlokans/kindle-notion/internal/services"
)

// SyncStack is everything a sync run touches, built from configuration.
type SyncStack struct {
	Service *services.SyncService
	Runs    *runs.Repository
	// Auditor is nil when AUDIT_DIR is empty.
	Auditor *audit.Auditor
}

// NewNotionExporter builds the exporter that publishes books to Notion.
func NewNotionExporter(cfg *config.Config) *exporters.NotionExporter {
	client := notion.NewClient(cfg.Notion.APIKey, cfg.Notion.BaseURL, cfg.Notion.Version)
	return exporters.NewNotionExporter(client, cfg.Notion.ParentPageID)
}

// NewSyncStack wires the sync service to db and the configured archiver.
func NewSyncStack(ctx context.Context, cfg *config.Config, db *database.Database, exporter exporters.Exporter) (*SyncStack, error) {
	parseOpts, err := cfg.Clippings.ParserOptions()
	if err != nil {
		return nil, err
	}

	archiver, err := cfg.NewArchiver(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize archiver: %w", err)
	}

	stack := &SyncStack{Runs: runs.NewRepository(db.DB)}

	var snapshots services.SnapshotSaver
	if cfg.Audit.Dir != "" {
		stack.Auditor = audit.NewAuditor(cfg.Audit.Dir)
		snapshots = stack.Auditor
	}

	stack.Service, err = services.NewSyncService(cfg.Clippings.Path, parseOpts, exporter, archiver, stack.Runs, snapshots)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sync service: %w", err)
	}
	return stack, nil
}
