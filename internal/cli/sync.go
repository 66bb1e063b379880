package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mrlokans/kindle-notion/internal/config"
	"github.com/mrlokans/kindle-notion/internal/database"
	"github.com/mrlokans/kindle-notion/internal/entities"
	"github.com/mrlokans/kindle-notion/internal/entrypoint"
	"github.com/mrlokans/kindle-notion/internal/exporters"
)

// SyncCommand runs one sync: publish new clips, record the run and mark the file.
type SyncCommand struct {
	ClippingsPath string
	DatabasePath  string
	MarkdownDir   string
	ArchiveMode   string
	Verbose       bool

	cfg *config.Config
}

func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	cmd.cfg = config.NewConfig()
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.ClippingsPath, "file", cmd.cfg.Clippings.Path, "Path to Kindle 'My Clippings.txt' file")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the sync history database")
	fs.StringVar(&cmd.MarkdownDir, "markdown", "", "Write markdown files to this directory instead of publishing to Notion")
	fs.StringVar(&cmd.ArchiveMode, "archive", cmd.cfg.Archive.Mode, "What to do with the file after a full sync: marker, rotate, s3 or none")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every book of the run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Publish clips added since the last sync and mark the clippings file.\n\n")
		fmt.Fprintf(os.Stderr, "Notion credentials are read from NOTION_API_KEY and NOTION_PARENT_PAGE_ID.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -file \"/Volumes/Kindle/documents/My Clippings.txt\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -markdown ~/Obsidian/Kindle -archive none\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.cfg.Clippings.Path = cmd.ClippingsPath
	cmd.cfg.Database.Path = cmd.DatabasePath
	cmd.cfg.Archive.Mode = cmd.ArchiveMode

	if err := cmd.validate(); err != nil {
		fs.Usage()
		return err
	}
	return nil
}

func (cmd *SyncCommand) validate() error {
	validators := []interface{ Validate() error }{
		&cmd.cfg.Database,
		&cmd.cfg.Clippings,
		&cmd.cfg.Archive,
	}
	if cmd.MarkdownDir == "" {
		validators = append(validators, &cmd.cfg.Notion)
	}
	if cmd.cfg.Archive.Mode == "s3" {
		validators = append(validators, &cmd.cfg.S3)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *SyncCommand) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	absDBPath, err := filepath.Abs(cmd.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var exporter exporters.Exporter
	if cmd.MarkdownDir != "" {
		exporter = exporters.NewAppendingMarkdownExporter(cmd.MarkdownDir)
	} else {
		exporter = entrypoint.NewNotionExporter(cmd.cfg)
	}

	stack, err := entrypoint.NewSyncStack(ctx, cmd.cfg, db, exporter)
	if err != nil {
		return err
	}

	fmt.Printf("Syncing %s\n", cmd.cfg.Clippings.Path)
	run, err := stack.Service.Run(ctx, entities.SyncTriggerCLI)
	if run != nil {
		printRun(run, cmd.Verbose)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if run.Status == entities.SyncStatusPartial {
		return errors.New("some books were not published; the file was left unmarked so they are retried")
	}
	return nil
}

func printRun(run *entities.SyncRun, verbose bool) {
	fmt.Println("\n=== Sync Summary ===")
	fmt.Printf("Run: %s (%s)\n", run.UUID, run.Status)
	fmt.Printf("Records: %d, rejected: %d\n", run.Records, run.Rejected)
	fmt.Printf("Books: %d published, %d failed\n", run.BooksPublished, run.BooksFailed)
	fmt.Printf("Clips: %d\n", run.Clips)
	fmt.Printf("Archived: %t\n", run.Archived)
	if run.AuditFile != "" {
		fmt.Printf("Audit snapshot: %s\n", run.AuditFile)
	}

	if verbose {
		for _, book := range run.Published {
			if book.Succeeded() {
				fmt.Printf("  [OK] \"%s\" by %s (%d clips) %s\n", book.BookName, book.Author, book.Clips, book.URL)
			} else {
				fmt.Printf("  [ERROR] \"%s\" by %s: %s\n", book.BookName, book.Author, book.Error)
			}
		}
	}
}
