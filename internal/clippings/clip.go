package clippings

import "time"

// Kind is the entry type written by the device in the location clause.
type Kind string

const (
	KindHighlight Kind = "highlight"
	KindNote      Kind = "note"
	KindBookmark  Kind = "bookmark"
)

// Location is the device-assigned start/end marker pair. Numbering is per book.
type Location struct {
	Start uint64 `json:"start" yaml:"start"`
	End   uint64 `json:"end" yaml:"end"`
}

// Clip is a single highlight, note or bookmark.
type Clip struct {
	Book     string    `json:"book" yaml:"book"`
	Author   string    `json:"author" yaml:"author"`
	Kind     Kind      `json:"kind" yaml:"kind"`
	Content  string    `json:"content" yaml:"content"`
	Date     time.Time `json:"date" yaml:"date"`
	Location Location  `json:"location" yaml:"location"`
}

// SameBook reports whether both clips belong to the same (book, author) pair.
func (c Clip) SameBook(other Clip) bool {
	return c.Book == other.Book && c.Author == other.Author
}

// BookClips is a run of consecutive clips sharing one (book, author) pair.
type BookClips struct {
	BookName string `json:"book_name" yaml:"book_name"`
	Author   string `json:"author" yaml:"author"`
	Clips    []Clip `json:"clips" yaml:"clips"`
}
