package entities

import (
	"time"
)

type SyncTrigger string

const (
	SyncTriggerCLI      SyncTrigger = "cli"
	SyncTriggerSchedule SyncTrigger = "schedule"
	SyncTriggerWatch    SyncTrigger = "watch"
	SyncTriggerAPI      SyncTrigger = "api"
)

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	// SyncStatusPartial means some books were not published; the file is not archived.
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncRun is one pass of read, parse, publish and archive over the clippings file.
type SyncRun struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UUID           string          `gorm:"size:36;uniqueIndex" json:"uuid"`
	Trigger        SyncTrigger     `gorm:"size:20;index" json:"trigger"`
	Status         SyncStatus      `gorm:"size:20;index" json:"status"`
	ClippingsPath  string          `gorm:"size:1024" json:"clippings_path"`
	Records        int             `json:"records"`
	Clips          int             `json:"clips"`
	Books          int             `json:"books"`
	Rejected       int             `json:"rejected"`
	BooksPublished int             `json:"books_published"`
	BooksFailed    int             `json:"books_failed"`
	Archived       bool            `json:"archived"`
	AuditFile      string          `gorm:"size:64" json:"audit_file,omitempty"`
	Error          string          `gorm:"type:text" json:"error,omitempty"`
	StartedAt      time.Time       `gorm:"index" json:"started_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	Published      []PublishedBook `gorm:"foreignKey:SyncRunID;constraint:OnDelete:CASCADE" json:"published,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

// Duration is zero while the run is in progress.
func (r *SyncRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
