package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/config"
	"github.com/mrlokans/kindle-notion/internal/database"
	"github.com/mrlokans/kindle-notion/internal/entities"
	http_controllers "github.com/mrlokans/kindle-notion/internal/http"
	"github.com/mrlokans/kindle-notion/internal/scheduler"
	"github.com/mrlokans/kindle-notion/internal/tasks"
	"github.com/mrlokans/kindle-notion/internal/watcher"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) default sends syscall.SIGTERM, kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no sync starts while the server drains
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting kindle-notion v%s", version)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(cfg.Clippings.Path)); err != nil {
		log.Printf("WARNING: clippings directory %s is not accessible: %v", filepath.Dir(cfg.Clippings.Path), err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	stack, err := NewSyncStack(bgCtx, cfg, db, NewNotionExporter(cfg))
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Runs left in "running" by a crash or kill would otherwise stay there forever
	if n, err := stack.Runs.MarkInterrupted(cfg.Sync.Timeout); err != nil {
		log.Printf("WARNING: Failed to mark interrupted sync runs: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d interrupted sync runs as failed", n)
	}

	parseOpts, _ := cfg.Clippings.ParserOptions()
	parser, err := clippings.NewParser(parseOpts)
	if err != nil {
		log.Fatalf("Failed to initialize parser: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		Runs:          stack.Runs,
		Parser:        parser,
		SyncState:     stack.Service,
		ClippingsPath: cfg.Clippings.Path,
		MaxUploadSize: config.MaxUploadSize,
		Version:       version,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var enqueuer scheduler.Enqueuer
	if cfg.Tasks.Enabled {
		var snapshots tasks.SnapshotPruner
		if stack.Auditor != nil {
			snapshots = stack.Auditor
		}
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks.TaskConfig(),
			tasks.NewSyncClippingsQueue(stack.Service),
			tasks.NewCleanupHistoryQueue(stack.Runs, snapshots),
		)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		taskClient.Start(bgCtx)

		enqueuer = taskClient
		routerCfg.TaskEnqueuer = taskClient
		routerCfg.TaskStatus = taskClient
	} else {
		log.Printf("Task queue disabled: POST /api/sync is unavailable")
	}

	var syncScheduler *scheduler.SyncScheduler
	if cfg.Sync.Enabled {
		syncScheduler = scheduler.NewSyncScheduler(scheduler.Config{
			SyncSchedule:    cfg.Sync.Schedule,
			CleanupSchedule: cfg.Sync.CleanupSchedule,
			RetentionDays:   cfg.Tasks.TaskConfig().HistoryRetentionDays,
			SyncTimeout:     cfg.Sync.Timeout,
		}, stack.Service, enqueuer)
		if err := syncScheduler.Start(bgCtx); err != nil {
			log.Fatalf("Failed to start sync scheduler: %v", err)
		}
	}

	if cfg.Watch.Enabled {
		w := watcher.New(cfg.Clippings.Path, stack.Service, cfg.Watch.Debounce)
		stack.Service.OnRunFinished(func(*entities.SyncRun) { w.Refresh() })
		go func() {
			if err := w.Watch(bgCtx); err != nil {
				log.Printf("Watcher: %v", err)
			}
		}()
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if syncScheduler != nil {
			syncScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Shutdown(ctx)
		}
		bgCancel()
	}

	Serve(router, cfg, onShutdown)
}
