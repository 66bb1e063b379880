// Package runs stores the history of sync runs and the books each run published.
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	run, err := repo.Start(entities.SyncTriggerSchedule, path)
//	...
//	err = repo.AddPublished(run, books)
//	err = repo.Complete(run)
package runs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/kindle-notion/internal/entities"
)

// ErrNotFound is returned when no run matches the lookup.
var ErrNotFound = errors.New("sync run not found")

const defaultListLimit = 50

// Repository handles all sync run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync run repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Start records a new running sync.
func (r *Repository) Start(trigger entities.SyncTrigger, clippingsPath string) (*entities.SyncRun, error) {
	now := time.Now()
	run := &entities.SyncRun{
		UUID:          uuid.New().String(),
		Trigger:       trigger,
		Status:        entities.SyncStatusRunning,
		ClippingsPath: clippingsPath,
		StartedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Complete stores the counters held by run and closes it. The status becomes
// partial when any book failed.
func (r *Repository) Complete(run *entities.SyncRun) error {
	now := time.Now()
	run.Status = entities.SyncStatusCompleted
	if run.BooksFailed > 0 {
		run.Status = entities.SyncStatusPartial
	}
	run.UpdatedAt = now
	run.CompletedAt = &now
	return r.db.Omit("Published").Save(run).Error
}

// Fail closes run with the given error.
func (r *Repository) Fail(run *entities.SyncRun, runErr error) error {
	now := time.Now()
	run.Status = entities.SyncStatusFailed
	if runErr != nil {
		run.Error = runErr.Error()
	}
	run.UpdatedAt = now
	run.CompletedAt = &now
	return r.db.Omit("Published").Save(run).Error
}

// AddPublished stores per-book outcomes for run, keeping their order.
func (r *Repository) AddPublished(run *entities.SyncRun, books []entities.PublishedBook) error {
	if len(books) == 0 {
		return nil
	}
	offset := len(run.Published)
	for i := range books {
		books[i].SyncRunID = run.ID
		books[i].Position = offset + i
	}
	if err := r.db.Create(&books).Error; err != nil {
		return err
	}
	run.Published = append(run.Published, books...)
	return nil
}

// List returns runs newest first together with the total count.
func (r *Repository) List(limit, offset int) ([]entities.SyncRun, int64, error) {
	var runs []entities.SyncRun
	var total int64

	if err := r.db.Model(&entities.SyncRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("started_at DESC, id DESC").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

// Get loads a run and its published books.
func (r *Repository) Get(id uint) (*entities.SyncRun, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByUUID loads a run by its public identifier.
func (r *Repository) GetByUUID(id string) (*entities.SyncRun, error) {
	return r.first(r.db.Where("uuid = ?", id))
}

// Latest returns the most recently started run.
func (r *Repository) Latest() (*entities.SyncRun, error) {
	return r.first(r.db.Order("started_at DESC, id DESC"))
}

func (r *Repository) first(query *gorm.DB) (*entities.SyncRun, error) {
	var run entities.SyncRun
	err := query.Preload("Published", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// MarkInterrupted fails runs still marked running that have not been updated
// since before staleAfter. A process killed mid-sync leaves such rows behind.
func (r *Repository) MarkInterrupted(staleAfter time.Duration) (int64, error) {
	now := time.Now()
	result := r.db.Model(&entities.SyncRun{}).
		Where("status = ? AND updated_at < ?", entities.SyncStatusRunning, now.Add(-staleAfter)).
		Updates(map[string]any{
			"status":       entities.SyncStatusFailed,
			"error":        "sync was interrupted",
			"updated_at":   now,
			"completed_at": now,
		})
	return result.RowsAffected, result.Error
}

// DeleteOlderThan removes finished runs started before cutoff, with their books.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&entities.SyncRun{}).
			Where("started_at < ? AND status <> ?", cutoff, entities.SyncStatusRunning).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("sync_run_id IN ?", ids).Delete(&entities.PublishedBook{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&entities.SyncRun{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
