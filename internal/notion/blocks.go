package notion

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/kindle-notion/internal/clippings"
)

const (
	// maxChunkBytes leaves room under Notion's 2000 character rich text limit
	// for the trailing date mention.
	maxChunkBytes = 1800

	pageEmoji   = "📖"
	titleEmoji  = "📕"
	authorEmoji = "✍️"
)

// Block is one child block of a page. Exactly one of the typed fields is set.
type Block struct {
	Object  string   `json:"object"`
	Type    string   `json:"type"`
	Callout *Callout `json:"callout,omitempty"`
	Divider *Divider `json:"divider,omitempty"`
	Quote   *Quote   `json:"quote,omitempty"`
}

type Callout struct {
	Color    string     `json:"color"`
	Icon     Icon       `json:"icon"`
	RichText []RichText `json:"rich_text"`
}

type Divider struct{}

type Quote struct {
	RichText []RichText `json:"rich_text"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

type RichText struct {
	Type    string   `json:"type"`
	Text    *Text    `json:"text,omitempty"`
	Mention *Mention `json:"mention,omitempty"`
}

type Text struct {
	Content string `json:"content"`
}

type Mention struct {
	Type string       `json:"type"`
	Date *DateMention `json:"date,omitempty"`
}

type DateMention struct {
	Start string `json:"start"`
}

// PageRequest is the body of a create page call.
type PageRequest struct {
	Parent     Parent     `json:"parent"`
	Icon       Icon       `json:"icon"`
	Properties Properties `json:"properties"`
	Children   []Block    `json:"children,omitempty"`
}

type Parent struct {
	PageID string `json:"page_id"`
}

type Properties struct {
	Title []RichText `json:"title"`
}

func emojiIcon(emoji string) Icon {
	return Icon{Type: "emoji", Emoji: emoji}
}

func textRun(content string) RichText {
	return RichText{Type: "text", Text: &Text{Content: content}}
}

func dateRun(t time.Time) RichText {
	return RichText{
		Type: "mention",
		Mention: &Mention{
			Type: "date",
			Date: &DateMention{Start: t.Format(time.RFC3339)},
		},
	}
}

// NewCallout returns a callout block with a single text run.
func NewCallout(content, emoji string) Block {
	return Block{
		Object: "block",
		Type:   "callout",
		Callout: &Callout{
			Color:    "default",
			Icon:     emojiIcon(emoji),
			RichText: []RichText{textRun(content)},
		},
	}
}

func NewDivider() Block {
	return Block{Object: "block", Type: "divider", Divider: &Divider{}}
}

// NewQuote returns a quote block. A non-nil date is appended after a line
// break as a date mention.
func NewQuote(content string, date *time.Time) Block {
	runs := []RichText{textRun(content)}
	if date != nil {
		runs = append(runs, textRun("\n"), dateRun(*date))
	}
	return Block{Object: "block", Type: "quote", Quote: &Quote{RichText: runs}}
}

// PageTitle shortens "Title: Subtitle" names to the part before the first colon.
// The second return value reports whether the name was shortened.
func PageTitle(bookName string) (string, bool) {
	title, _, found := strings.Cut(bookName, ":")
	if !found {
		return bookName, false
	}
	return title, true
}

// BuildPage renders one book as a page under parentPageID.
func BuildPage(parentPageID string, book clippings.BookClips) PageRequest {
	var children []Block

	title, shortened := PageTitle(book.BookName)
	if shortened {
		children = append(children, NewCallout(book.BookName, titleEmoji))
	}
	children = append(children, NewCallout(book.Author, authorEmoji), NewDivider())

	for _, clip := range book.Clips {
		children = append(children, ClipBlocks(clip)...)
	}

	return PageRequest{
		Parent:     Parent{PageID: parentPageID},
		Icon:       emojiIcon(pageEmoji),
		Properties: Properties{Title: []RichText{textRun(title)}},
		Children:   children,
	}
}

// ClipBlocks renders a clip as one or more quote blocks. Only the last one
// carries the date.
func ClipBlocks(clip clippings.Clip) []Block {
	chunks := SplitContent(clip.Content, maxChunkBytes)
	blocks := make([]Block, 0, len(chunks))
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			date := clip.Date
			blocks = append(blocks, NewQuote(chunk, &date))
			continue
		}
		blocks = append(blocks, NewQuote(chunk, nil))
	}
	return blocks
}

// SplitContent cuts text into chunks of at most limit bytes, breaking after
// ". " where possible. A sentence longer than limit is cut on a rune
// boundary. It always returns at least one chunk.
func SplitContent(text string, limit int) []string {
	var chunks []string
	var current strings.Builder

	for _, phrase := range strings.SplitAfter(text, ". ") {
		if current.Len()+len(phrase) > limit && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		for len(phrase) > limit {
			cut := runeBoundary(phrase, limit)
			chunks = append(chunks, phrase[:cut])
			phrase = phrase[cut:]
		}
		current.WriteString(phrase)
	}

	return append(chunks, current.String())
}

func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
