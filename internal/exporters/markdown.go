package exporters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/utils"
)

// MarkdownExporter writes one markdown file per book into OutputDir.
type MarkdownExporter struct {
	OutputDir string
	// Append adds clips to the file an earlier export wrote for the same
	// book instead of replacing it.
	Append bool
}

// NewMarkdownExporter returns an exporter that replaces existing files.
func NewMarkdownExporter(outputDir string) *MarkdownExporter {
	return &MarkdownExporter{OutputDir: outputDir}
}

// NewAppendingMarkdownExporter returns an exporter for repeated syncs, where
// each run only sees the clips added after the last resume marker.
func NewAppendingMarkdownExporter(outputDir string) *MarkdownExporter {
	return &MarkdownExporter{OutputDir: outputDir, Append: true}
}

type frontmatter struct {
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	ContentType string   `yaml:"content_type"`
	CreatedAt   string   `yaml:"created_at"`
	UpdatedAt   string   `yaml:"updated_at,omitempty"`
	Clips       int      `yaml:"clips"`
	Tags        []string `yaml:"tags"`
}

// GenerateMarkdown renders a book as markdown with a YAML frontmatter block.
func GenerateMarkdown(book clippings.BookClips) string {
	meta := frontmatter{
		Title:       book.BookName,
		Author:      book.Author,
		ContentType: "book_highlights",
		CreatedAt:   time.Now().Format("2006-01-02"),
		Clips:       len(book.Clips),
		Tags:        []string{"highlights", "books", "kindle"},
	}
	body := fmt.Sprintf("# %s\n\n## Highlights\n\n", book.BookName) + renderClips(book.Clips)
	return renderDocument(meta, body)
}

func renderDocument(meta frontmatter, body string) string {
	data, _ := yaml.Marshal(meta)
	return fmt.Sprintf("---\n%s---\n\n%s", data, body)
}

func renderClips(clips []clippings.Clip) string {
	var builder strings.Builder
	for _, clip := range clips {
		fmt.Fprintf(&builder, "### %s · %s · %s\n\n", kindLabel(clip.Kind), locationLabel(clip.Location), clip.Date.Format("2006-01-02 15:04"))
		switch {
		case clip.Content == "":
		case clip.Kind == clippings.KindNote:
			fmt.Fprintf(&builder, "**Note:** %s\n\n", clip.Content)
		default:
			fmt.Fprintf(&builder, "> %s\n\n", strings.ReplaceAll(clip.Content, "\n", "\n> "))
		}
	}
	return builder.String()
}

var errNoFrontmatter = errors.New("markdown file has no frontmatter")

// splitDocument separates a file written by this exporter into its
// frontmatter and body.
func splitDocument(data []byte) (frontmatter, string, error) {
	var meta frontmatter
	rest, ok := bytes.CutPrefix(data, []byte("---\n"))
	if !ok {
		return meta, "", errNoFrontmatter
	}
	header, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return meta, "", errNoFrontmatter
	}
	if err := yaml.Unmarshal(header, &meta); err != nil {
		return meta, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return meta, strings.TrimPrefix(string(body), "\n"), nil
}

// AppendMarkdown adds clips to a document written by GenerateMarkdown and
// updates its clip count.
func AppendMarkdown(existing []byte, clips []clippings.Clip) (string, error) {
	meta, body, err := splitDocument(existing)
	if err != nil {
		return "", err
	}
	meta.Clips += len(clips)
	meta.UpdatedAt = time.Now().Format("2006-01-02")
	return renderDocument(meta, body+renderClips(clips)), nil
}

func kindLabel(kind clippings.Kind) string {
	switch kind {
	case clippings.KindNote:
		return "Note"
	case clippings.KindBookmark:
		return "Bookmark"
	default:
		return "Highlight"
	}
}

func locationLabel(loc clippings.Location) string {
	if loc.Start == loc.End {
		return fmt.Sprintf("location %d", loc.Start)
	}
	return fmt.Sprintf("location %d-%d", loc.Start, loc.End)
}

// Export writes every book to <OutputDir>/<title>.md. Groups of the same book
// that are not adjacent in the export end up in one file, in file order.
func (e *MarkdownExporter) Export(ctx context.Context, books []clippings.BookClips) (ExportResult, error) {
	result := ExportResult{}

	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	used := make(map[string]bool)
	for _, book := range mergeBooks(books) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := BookOutcome{BookName: book.BookName, Author: book.Author, Clips: len(book.Clips)}
		outputPath, existing := e.target(book, used)

		content := GenerateMarkdown(book)
		if existing != nil {
			merged, err := AppendMarkdown(existing, book.Clips)
			if err != nil {
				log.Printf("Markdown: failed to update '%s': %v", outputPath, err)
				result.failed(outcome, err)
				continue
			}
			content = merged
		}

		if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
			log.Printf("Markdown: failed to write '%s': %v", outputPath, err)
			result.failed(outcome, err)
			continue
		}

		log.Printf("Markdown: exported %d clips of '%s' to %s", len(book.Clips), book.BookName, outputPath)
		outcome.Target = outputPath
		result.succeeded(outcome)
	}

	return result, nil
}

// target picks the file for book. In append mode it also returns the current
// content when an earlier export already wrote this book there. A file of another book with
// the same sanitized title moves this book to "<title> (<author>).md".
func (e *MarkdownExporter) target(book clippings.BookClips, used map[string]bool) (string, []byte) {
	candidates := []string{
		utils.SanitizeFilename(book.BookName),
		utils.SanitizeFilename(book.BookName + " (" + book.Author + ")"),
	}

	for _, name := range candidates {
		if used[name] {
			continue
		}
		path := filepath.Join(e.OutputDir, name+".md")
		data, err := os.ReadFile(path)
		if err != nil {
			used[name] = true
			return path, nil
		}
		meta, _, err := splitDocument(data)
		if err == nil && meta.Title == book.BookName && meta.Author == book.Author {
			used[name] = true
			if !e.Append {
				return path, nil
			}
			return path, data
		}
	}

	// both names taken by other books: overwrite the author-qualified one
	name := candidates[1]
	used[name] = true
	return filepath.Join(e.OutputDir, name+".md"), nil
}

func mergeBooks(books []clippings.BookClips) []clippings.BookClips {
	var merged []clippings.BookClips
	index := make(map[[2]string]int)
	for _, book := range books {
		key := [2]string{book.BookName, book.Author}
		if i, ok := index[key]; ok {
			merged[i].Clips = append(merged[i].Clips, book.Clips...)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, clippings.BookClips{
			BookName: book.BookName,
			Author:   book.Author,
			Clips:    append([]clippings.Clip(nil), book.Clips...),
		})
	}
	return merged
}
