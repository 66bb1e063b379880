package notion

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notion/internal/clippings"
)

func TestPageTitle(t *testing.T) {
	title, shortened := PageTitle("Building a Second Brain: A Proven Method")
	assert.Equal(t, "Building a Second Brain", title)
	assert.True(t, shortened)

	title, shortened = PageTitle("Fahrenheit 451")
	assert.Equal(t, "Fahrenheit 451", title)
	assert.False(t, shortened)
}

func TestBuildPage(t *testing.T) {
	date := time.Date(2020, 12, 1, 16, 58, 58, 0, time.UTC)
	book := clippings.BookClips{
		BookName: "Fahrenheit 451",
		Author:   "Ray Bradbury",
		Clips: []clippings.Clip{
			{Content: "It was a pleasure to burn.", Date: date},
		},
	}

	page := BuildPage("parent", book)

	assert.Equal(t, "📖", page.Icon.Emoji)
	assert.Equal(t, "Fahrenheit 451", page.Properties.Title[0].Text.Content)
	require.Len(t, page.Children, 3)

	author := page.Children[0]
	assert.Equal(t, "callout", author.Type)
	assert.Equal(t, "✍️", author.Callout.Icon.Emoji)
	assert.Equal(t, "Ray Bradbury", author.Callout.RichText[0].Text.Content)

	assert.Equal(t, "divider", page.Children[1].Type)

	quote := page.Children[2].Quote
	require.NotNil(t, quote)
	require.Len(t, quote.RichText, 3)
	assert.Equal(t, "It was a pleasure to burn.", quote.RichText[0].Text.Content)
	assert.Equal(t, "\n", quote.RichText[1].Text.Content)
	assert.Equal(t, "2020-12-01T16:58:58Z", quote.RichText[2].Mention.Date.Start)
}

func TestBuildPage_LongTitleCallout(t *testing.T) {
	page := BuildPage("parent", clippings.BookClips{BookName: "Deep Work: Rules for Focused Success", Author: "Cal Newport"})

	require.Len(t, page.Children, 3)
	assert.Equal(t, "📕", page.Children[0].Callout.Icon.Emoji)
	assert.Equal(t, "Deep Work: Rules for Focused Success", page.Children[0].Callout.RichText[0].Text.Content)
	assert.Equal(t, "Deep Work", page.Properties.Title[0].Text.Content)
}

func TestBlock_JSON(t *testing.T) {
	data, err := json.Marshal(NewDivider())
	require.NoError(t, err)
	assert.JSONEq(t, `{"object":"block","type":"divider","divider":{}}`, string(data))
}

func TestSplitContent(t *testing.T) {
	assert.Equal(t, []string{""}, SplitContent("", 10))
	assert.Equal(t, []string{"short. text"}, SplitContent("short. text", 100))
	assert.Equal(t, []string{"One. ", "Two. ", "Three."}, SplitContent("One. Two. Three.", 6))
	assert.Equal(t, []string{"One. Two. ", "Three."}, SplitContent("One. Two. Three.", 10))
	assert.Equal(t, []string{"One. ", "Two. "}, SplitContent("One. Two. ", 5))

	long := strings.Repeat("é", 10)
	chunks := SplitContent(long, 5)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 5)
		assert.True(t, strings.HasPrefix(long, c) || strings.Contains(long, c))
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestClipBlocks_DateOnLastChunk(t *testing.T) {
	sentence := strings.Repeat("a", 1000) + ". "
	clip := clippings.Clip{Content: sentence + sentence + "end", Date: time.Now()}

	blocks := ClipBlocks(clip)
	require.Len(t, blocks, 2)
	assert.Len(t, blocks[0].Quote.RichText, 1)
	assert.Len(t, blocks[1].Quote.RichText, 3)
}
