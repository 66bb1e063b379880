package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kindle-notion/internal/database/runs"
	"github.com/mrlokans/kindle-notion/internal/entities"
	"github.com/mrlokans/kindle-notion/internal/tasks"
)

// TaskEnqueuer adds tasks to the background queue.
// Implemented by tasks.Client.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// RunReader reads sync history.
// Implemented by runs.Repository.
type RunReader interface {
	List(limit, offset int) ([]entities.SyncRun, int64, error)
	Get(id uint) (*entities.SyncRun, error)
	GetByUUID(id string) (*entities.SyncRun, error)
	Latest() (*entities.SyncRun, error)
}

// SyncState reports whether a sync is running right now.
// Implemented by services.SyncService.
type SyncState interface {
	IsSyncing() bool
}

type SyncController struct {
	enqueuer TaskEnqueuer
	runs     RunReader
	state    SyncState
}

// NewSyncController creates a SyncController. enqueuer is nil when the task
// queue is disabled; state may be nil.
func NewSyncController(enqueuer TaskEnqueuer, runs RunReader, state SyncState) *SyncController {
	return &SyncController{enqueuer: enqueuer, runs: runs, state: state}
}

// RequestSync handles POST /api/sync
func (sc *SyncController) RequestSync(c *gin.Context) {
	if sc.enqueuer == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	taskID, err := sc.enqueuer.Enqueue(ctx, tasks.SyncClippingsTask{
		Trigger:     entities.SyncTriggerAPI,
		RequestedAt: time.Now(),
	})
	if err != nil {
		respondInternalError(c, err, "enqueue sync")
		return
	}

	respondAccepted(c, "sync queued", gin.H{"task_id": taskID})
}

// Status handles GET /api/sync/status
func (sc *SyncController) Status(c *gin.Context) {
	resp := gin.H{"syncing": sc.state != nil && sc.state.IsSyncing()}

	latest, err := sc.runs.Latest()
	switch {
	case errors.Is(err, runs.ErrNotFound):
	case err != nil:
		respondInternalError(c, err, "latest sync run")
		return
	default:
		resp["latest_run"] = latest
	}

	c.JSON(http.StatusOK, resp)
}

// ListRuns handles GET /api/sync/runs
func (sc *SyncController) ListRuns(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	list, total, err := sc.runs.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list sync runs")
		return
	}
	if list == nil {
		list = []entities.SyncRun{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    list,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(list)) < total,
	})
}

// GetRun handles GET /api/sync/runs/:id where id is the numeric id or the run UUID.
func (sc *SyncController) GetRun(c *gin.Context) {
	id := c.Param("id")

	var run *entities.SyncRun
	var err error
	if isNumeric(id) {
		numericID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		run, err = sc.runs.Get(numericID)
	} else {
		run, err = sc.runs.GetByUUID(id)
	}

	if errors.Is(err, runs.ErrNotFound) {
		respondNotFound(c, "sync run")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get sync run")
		return
	}

	c.JSON(http.StatusOK, run)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
