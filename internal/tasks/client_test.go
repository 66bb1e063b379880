package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTask struct {
	Value string `json:"value"`
}

func (echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func newTestClient(t *testing.T, queues ...backlite.Queue) (*Client, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "kindle-notion.db")

	client, err := NewClient(dbPath, DefaultConfig(), queues...)
	require.NoError(t, err)
	return client, dbPath
}

func TestNewClient_CreatesTaskDatabase(t *testing.T) {
	client, dbPath := newTestClient(t)
	defer client.Shutdown(context.Background())

	_, err := os.Stat(DBPath(dbPath))
	assert.NoError(t, err)
}

func TestNewClient_BadPath(t *testing.T) {
	_, err := NewClient(filepath.Join(t.TempDir(), "missing", "dir", "kindle-notion.db"), DefaultConfig())
	assert.Error(t, err)
}

func TestClient_ProcessesEnqueuedTask(t *testing.T) {
	executed := make(chan string, 1)
	client, _ := newTestClient(t, backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))
	defer client.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	id, err := client.Enqueue(context.Background(), echoTask{Value: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}

	assert.Eventually(t, func() bool {
		status, err := client.Status(context.Background(), id)
		return err == nil && status == backlite.TaskStatusSuccess
	}, 5*time.Second, 20*time.Millisecond)
}

func TestClient_ShutdownWithoutStart(t *testing.T) {
	client, _ := newTestClient(t)
	assert.True(t, client.Shutdown(context.Background()))
}

func TestClient_StartTwice(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	client.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Shutdown(stopCtx))
}

func TestDBPath(t *testing.T) {
	assert.Equal(t, "/data/kindle-notion-tasks.db", DBPath("/data/kindle-notion.db"))
	assert.Equal(t, "data-tasks", DBPath("data"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 90, cfg.HistoryRetentionDays)
}
