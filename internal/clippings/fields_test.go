package clippings

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitleLine(t *testing.T) {
	tests := []struct {
		line       string
		wantTitle  string
		wantAuthor string
	}{
		{"Fahrenheit 451 (Ray Bradbury)\n", "Fahrenheit 451", "Ray Bradbury"},
		{"Building a Second Brain (NEW) (2022) (Tiago Forte)\n", "Building a Second Brain (NEW) (2022)", "Tiago Forte"},
		{"\uFEFFThe Power of Now (Eckhart Tolle)\n", "The Power of Now", "Eckhart Tolle"},
		{"Война и мир (Лев Толстой)\n", "Война и мир", "Лев Толстой"},
		{"Title (Author))\n", "Title", "Author"},
		{"Title (Smith, John (ed.))\n", "Title", "Smith, John (ed.)"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			title, author, rest, err := parseTitleLine(tt.line + "rest")
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantAuthor, author)
			assert.Equal(t, "rest", rest)
		})
	}
}

func TestParseTitleLine_Errors(t *testing.T) {
	for _, input := range []string{
		"No author here\n",
		"Unclosed (author\n",
		"Trailing text (author) after\n",
		"No newline (author)",
	} {
		_, _, _, err := parseTitleLine(input)
		var target *StructuralError
		assert.True(t, errors.As(err, &target), "input %q: got %v", input, err)
	}
}

func TestParseLocationClause(t *testing.T) {
	tests := []struct {
		line     string
		kind     Kind
		location Location
	}{
		{"- Your Highlight at location 1502-1507 | Added on X", KindHighlight, Location{1502, 1507}},
		{"- Your Highlight on Location 10-12 | Added on X", KindHighlight, Location{10, 12}},
		{"- Your Highlight on page 58 | location 877-879 | Added on X", KindHighlight, Location{877, 879}},
		{"- Your Highlight on page 58 | Location 877–879 | Added on X", KindHighlight, Location{877, 879}},
		{"- Your Note on page 31 | Location 307 | Added on X", KindNote, Location{307, 307}},
		{"- Your Bookmark at location 346 | Added on X", KindBookmark, Location{346, 346}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kind, loc, rest, err := parseLocationClause(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.location, loc)
			assert.Equal(t, " Added on X", rest)
		})
	}
}

func TestParseLocationClause_EndBeforeStart(t *testing.T) {
	_, _, _, err := parseLocationClause("- Your Highlight at location 20-10 | Added on X")
	var target *NumericFormatError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "location range", target.Field)
}

func TestParseDateClause_Locales(t *testing.T) {
	tests := []struct {
		locale string
		clause string
		want   time.Time
	}{
		{"en", "Tuesday, 1 December 2020 16:58:58", time.Date(2020, 12, 1, 16, 58, 58, 0, time.UTC)},
		{"en", "Tuesday, 01 december 2020 6:58:58", time.Date(2020, 12, 1, 6, 58, 58, 0, time.UTC)},
		{"fr", "mardi, 1 décembre 2020 16:58:58", time.Date(2020, 12, 1, 16, 58, 58, 0, time.UTC)},
		{"de", "Dienstag, 1 Dezember 2020 16:58:58", time.Date(2020, 12, 1, 16, 58, 58, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.locale+" "+tt.clause, func(t *testing.T) {
			months, ok := Months(tt.locale)
			require.True(t, ok)
			got, err := parseDateClause(tt.clause, months, tt.locale, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseDateClause_UsesLocation(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	months, _ := Months("en")

	got, err := parseDateClause("Tuesday, 1 December 2020 16:58:58", months, "en", berlin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 12, 1, 15, 58, 58, 0, time.UTC), got.UTC())
}

func TestParseDateClause_MonthFromOtherLocale(t *testing.T) {
	months, _ := Months("en")
	_, err := parseDateClause("mardi, 1 décembre 2020 16:58:58", months, "en", time.UTC)

	var target *UnknownMonthError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "en", target.Locale)
}

func TestLocales(t *testing.T) {
	locales := Locales()
	assert.Contains(t, locales, "en")
	assert.IsIncreasing(t, locales)
	for _, l := range locales {
		months, ok := Months(l)
		require.True(t, ok)
		assert.Len(t, months, 12, "locale %s", l)
	}
}

func TestGroup(t *testing.T) {
	a := Clip{Book: "A", Author: "X"}
	b := Clip{Book: "B", Author: "X"}
	a2 := Clip{Book: "A", Author: "Y"}

	books := Group([]Clip{a, a, b, a, a2})
	require.Len(t, books, 4)
	assert.Len(t, books[0].Clips, 2)
	assert.Equal(t, "B", books[1].BookName)
	assert.Equal(t, "X", books[2].Author)
	assert.Equal(t, "Y", books[3].Author)

	assert.Empty(t, Group(nil))
}
