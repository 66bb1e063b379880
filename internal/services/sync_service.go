package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mrlokans/kindle-notion/internal/archive"
	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/entities"
	"github.com/mrlokans/kindle-notion/internal/exporters"
)

// ErrSyncInProgress is returned when a run is requested while another one is active.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncService reads the clippings file, publishes new clips and marks the
// file so the next run starts after them.
type SyncService struct {
	clippingsPath string
	parser        *clippings.Parser
	exporter      exporters.Exporter
	archiver      archive.Archiver
	recorder      RunRecorder
	snapshots     SnapshotSaver

	mu        sync.Mutex
	isSyncing bool
	finished  []func(run *entities.SyncRun)
}

// NewSyncService creates a SyncService. snapshots may be nil.
func NewSyncService(clippingsPath string, parseOpts clippings.Options, exporter exporters.Exporter, archiver archive.Archiver, recorder RunRecorder, snapshots SnapshotSaver) (*SyncService, error) {
	parser, err := clippings.NewParser(parseOpts)
	if err != nil {
		return nil, err
	}
	if archiver == nil {
		archiver = archive.NopArchiver{}
	}
	return &SyncService{
		clippingsPath: clippingsPath,
		parser:        parser,
		exporter:      exporter,
		archiver:      archiver,
		recorder:      recorder,
		snapshots:     snapshots,
	}, nil
}

// IsSyncing returns whether a sync is currently in progress
func (s *SyncService) IsSyncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSyncing
}

// OnRunFinished registers fn to be called after every recorded run,
// whatever its outcome and trigger.
func (s *SyncService) OnRunFinished(fn func(run *entities.SyncRun)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, fn)
}

func (s *SyncService) notifyFinished(run *entities.SyncRun) {
	s.mu.Lock()
	hooks := append([]func(*entities.SyncRun){}, s.finished...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(run)
	}
}

// ClippingsPath returns the file this service syncs.
func (s *SyncService) ClippingsPath() string {
	return s.clippingsPath
}

// Run performs one sync. The returned run is stored even when an error is
// returned, except for ErrSyncInProgress.
func (s *SyncService) Run(ctx context.Context, trigger entities.SyncTrigger) (*entities.SyncRun, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Sync: skipped %s trigger (already syncing)", trigger)
		return nil, ErrSyncInProgress
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	run, err := s.recorder.Start(trigger, s.clippingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}

	log.Printf("Sync: run %s started by %s trigger", run.UUID, trigger)
	startTime := time.Now()
	defer s.notifyFinished(run)

	if err := s.sync(ctx, run); err != nil {
		log.Printf("Sync: run %s failed: %v", run.UUID, err)
		if recErr := s.recorder.Fail(run, err); recErr != nil {
			log.Printf("Sync: failed to record failure of run %s: %v", run.UUID, recErr)
		}
		return run, err
	}

	if err := s.recorder.Complete(run); err != nil {
		return run, fmt.Errorf("failed to record sync run: %w", err)
	}

	log.Printf("Sync: run %s %s in %v: %d books, %d clips, %d published, %d failed, %d rejected records",
		run.UUID, run.Status, time.Since(startTime).Round(time.Millisecond),
		run.Books, run.Clips, run.BooksPublished, run.BooksFailed, run.Rejected)
	return run, nil
}

func (s *SyncService) sync(ctx context.Context, run *entities.SyncRun) error {
	data, err := os.ReadFile(s.clippingsPath)
	if err != nil {
		return fmt.Errorf("failed to read clippings file: %w", err)
	}

	result, err := s.parser.Parse(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse clippings: %w", err)
	}

	run.Records = result.Records
	run.Books = len(result.Books)
	run.Clips = result.ClipCount()
	run.Rejected = len(result.Rejected)
	for _, rejected := range result.Rejected {
		log.Printf("Sync: rejected %v", &rejected)
	}

	if s.snapshots != nil && result.Records > 0 {
		filename, err := s.snapshots.SaveSnapshot(run.UUID, s.clippingsPath, result)
		if err != nil {
			log.Printf("Sync: failed to save audit snapshot: %v", err)
		} else {
			run.AuditFile = filename
		}
	}

	if len(result.Books) == 0 {
		log.Printf("Sync: no new clips since the last resume marker")
		return nil
	}

	exported, exportErr := s.exporter.Export(ctx, result.Books)
	run.BooksPublished = exported.BooksProcessed
	run.BooksFailed = exported.BooksFailed
	if err := s.recorder.AddPublished(run, publishedBooks(exported)); err != nil {
		log.Printf("Sync: failed to record published books: %v", err)
	}
	if exportErr != nil {
		return fmt.Errorf("export failed: %w", exportErr)
	}

	if !exported.Complete() {
		log.Printf("Sync: %d books failed, leaving %s unmarked so they are retried", exported.BooksFailed, s.clippingsPath)
		return nil
	}

	err = s.archiver.Archive(ctx, s.clippingsPath, data)
	if errors.Is(err, archive.ErrSourceChanged) {
		log.Printf("Sync: %s changed during the run, leaving it unmarked: %v", s.clippingsPath, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("published but failed to archive clippings: %w", err)
	}
	run.Archived = true
	return nil
}

func publishedBooks(result exporters.ExportResult) []entities.PublishedBook {
	books := make([]entities.PublishedBook, 0, len(result.Books))
	for _, b := range result.Books {
		books = append(books, entities.PublishedBook{
			BookName: b.BookName,
			Author:   b.Author,
			Clips:    b.Clips,
			Target:   b.Target,
			URL:      b.URL,
			Error:    b.Error,
		})
	}
	return books
}
