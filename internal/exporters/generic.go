package exporters

import (
	"context"

	"github.com/mrlokans/kindle-notion/internal/clippings"
)

// Exporter delivers grouped clips somewhere. Books are handled in the order given.
type Exporter interface {
	Export(ctx context.Context, books []clippings.BookClips) (ExportResult, error)
}

type ExportResult struct {
	BooksProcessed int           `json:"books_processed"`
	ClipsProcessed int           `json:"clips_processed"`
	BooksFailed    int           `json:"books_failed"`
	ClipsFailed    int           `json:"clips_failed"`
	Books          []BookOutcome `json:"books"`
}

// BookOutcome reports where one book ended up. Target is a Notion page id or
// a file path; Error is set when the book failed.
type BookOutcome struct {
	BookName string `json:"book_name"`
	Author   string `json:"author"`
	Clips    int    `json:"clips"`
	Target   string `json:"target,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Complete reports whether every book was exported.
func (r ExportResult) Complete() bool {
	return r.BooksFailed == 0
}

func (r *ExportResult) succeeded(outcome BookOutcome) {
	r.BooksProcessed++
	r.ClipsProcessed += outcome.Clips
	r.Books = append(r.Books, outcome)
}

func (r *ExportResult) failed(outcome BookOutcome, err error) {
	outcome.Error = err.Error()
	r.BooksFailed++
	r.ClipsFailed += outcome.Clips
	r.Books = append(r.Books, outcome)
}
