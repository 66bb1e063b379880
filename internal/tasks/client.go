package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

const sqliteParams = "?_journal=WAL&_timeout=5000&_busy_timeout=5000"

// Client runs the sync and cleanup queues on their own SQLite database so
// that queue polling never contends with the run history.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	queues  int

	mu      sync.Mutex
	running bool
}

// NewClient opens the task database next to mainDBPath (see DBPath),
// installs the backlite schema and registers queues. backlite only accepts
// queues before workers start, so they are fixed here.
func NewClient(mainDBPath string, cfg Config, queues ...backlite.Queue) (*Client, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	db, err := sql.Open("sqlite3", DBPath(mainDBPath)+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          taskLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create task queue: %w", err)
	}
	if err := queue.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install task schema: %w", err)
	}

	for _, q := range queues {
		queue.Register(q)
	}

	return &Client{
		queue:   queue,
		db:      db,
		workers: cfg.Workers,
		queues:  len(queues),
	}, nil
}

// Start launches the workers and returns. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true

	log.Printf("Tasks: processing %d queue(s) with %d worker(s)", c.queues, c.workers)
	c.queue.Start(ctx)
}

// Shutdown waits for running tasks until ctx expires, then closes the
// database. It reports whether every worker finished in time.
func (c *Client) Shutdown(ctx context.Context) bool {
	c.mu.Lock()
	wasRunning := c.running
	c.running = false
	c.mu.Unlock()

	finished := true
	if wasRunning {
		finished = c.queue.Stop(ctx)
		if finished {
			log.Println("Tasks: stopped")
		} else {
			log.Println("Tasks: stopped before all tasks finished")
		}
	}

	if err := c.db.Close(); err != nil {
		log.Printf("Tasks: failed to close database: %v", err)
	}
	return finished
}

// Enqueue stores a task and returns its id.
func (c *Client) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	ids, err := c.queue.Add(task).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", task.Config().Name, err)
	}
	return ids[0], nil
}

// Status returns the current state of a task.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

type taskLogger struct{}

func (taskLogger) Info(message string, params ...any) {
	log.Printf("Tasks: "+message, params...)
}

func (taskLogger) Error(message string, params ...any) {
	log.Printf("Tasks: error: "+message, params...)
}
