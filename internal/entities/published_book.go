package entities

import "time"

// PublishedBook is the outcome of exporting one book group during a sync run.
// Target holds the Notion page id (or file path) and Error is set on failure.
type PublishedBook struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SyncRunID uint      `gorm:"index;not null" json:"sync_run_id"`
	Position  int       `json:"position"`
	BookName  string    `gorm:"size:1024" json:"book_name"`
	Author    string    `gorm:"size:512" json:"author"`
	Clips     int       `json:"clips"`
	Target    string    `gorm:"size:1024" json:"target,omitempty"`
	URL       string    `gorm:"size:1024" json:"url,omitempty"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (PublishedBook) TableName() string {
	return "published_books"
}

func (b PublishedBook) Succeeded() bool {
	return b.Error == ""
}
