package exporters

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/notion"
)

// Publisher creates one Notion page per book.
type Publisher interface {
	PublishBook(ctx context.Context, parentPageID string, book clippings.BookClips) (*notion.Page, error)
}

type NotionExporter struct {
	publisher    Publisher
	parentPageID string
}

func NewNotionExporter(publisher Publisher, parentPageID string) *NotionExporter {
	return &NotionExporter{
		publisher:    publisher,
		parentPageID: parentPageID,
	}
}

// Export publishes books one at a time in file order. A failed book is
// recorded and the rest continue, except for a rejected token or a cancelled
// context which stop the run.
func (e *NotionExporter) Export(ctx context.Context, books []clippings.BookClips) (ExportResult, error) {
	result := ExportResult{}

	for _, book := range books {
		outcome := BookOutcome{BookName: book.BookName, Author: book.Author, Clips: len(book.Clips)}

		log.Printf("Notion: publishing %d clips from '%s' by %s", len(book.Clips), book.BookName, book.Author)
		page, err := e.publisher.PublishBook(ctx, e.parentPageID, book)
		if err != nil {
			log.Printf("Notion: failed to publish '%s': %v", book.BookName, err)
			result.failed(outcome, err)
			if errors.Is(err, notion.ErrUnauthorized) || ctx.Err() != nil {
				return result, fmt.Errorf("publishing stopped at '%s': %w", book.BookName, err)
			}
			continue
		}

		outcome.Target = page.ID
		outcome.URL = page.URL
		result.succeeded(outcome)
	}

	return result, nil
}
