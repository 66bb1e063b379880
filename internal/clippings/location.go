package clippings

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const clausePrefix = "- Your "

var kindWords = map[string]Kind{
	"Highlight": KindHighlight,
	"Note":      KindNote,
	"Bookmark":  KindBookmark,
}

// locationFormat recognises one layout of the location clause. match returns
// the raw "<start>-<end>" value and the text after its closing " |", or false
// when the layout does not apply.
type locationFormat struct {
	name  string
	match func(clause string) (value, rest string, ok bool)
}

// locationFormats are tried in order; the paged layout comes first because it
// wraps the unpaged one.
var locationFormats = []locationFormat{
	{name: "paged", match: matchPaged},
	{name: "unpaged", match: matchUnpaged},
}

// parseLocationClause reads "- Your <Kind> ... location <start>-<end> |" and
// returns the text following the clause's closing bar.
func parseLocationClause(line string) (Kind, Location, string, error) {
	if !strings.HasPrefix(line, clausePrefix) {
		return "", Location{}, "", structural("location clause", "line does not start with \"- Your\"")
	}
	word, clause, _ := strings.Cut(line[len(clausePrefix):], " ")
	kind, ok := kindWords[word]
	if !ok {
		return "", Location{}, "", structural("location clause", "unknown entry type "+strconv.Quote(word))
	}
	clause = " " + clause

	for _, f := range locationFormats {
		value, rest, ok := f.match(clause)
		if !ok {
			continue
		}
		loc, err := parseLocationRange(value, kind != KindHighlight)
		if err != nil {
			return "", Location{}, "", err
		}
		return kind, loc, rest, nil
	}

	return "", Location{}, "", structural("location clause", "no known location layout")
}

// matchPaged handles " on page <N> | location <start>-<end> |".
func matchPaged(clause string) (string, string, bool) {
	if !strings.HasPrefix(clause, " on page ") {
		return "", "", false
	}
	i := indexFold(clause, "location ")
	if i < 0 {
		return "", "", false
	}
	return cutValue(clause[i+len("location "):])
}

// matchUnpaged handles " at location <start>-<end> |" and the " on Location"
// spelling of later firmware.
func matchUnpaged(clause string) (string, string, bool) {
	for _, p := range []string{" at ", " on "} {
		if !strings.HasPrefix(clause, p) {
			continue
		}
		after := clause[len(p):]
		if !hasPrefixFold(after, "location ") {
			return "", "", false
		}
		return cutValue(after[len("location "):])
	}
	return "", "", false
}

func cutValue(s string) (value, rest string, ok bool) {
	value, rest, ok = strings.Cut(s, " |")
	if !ok || value == "" {
		return "", "", false
	}
	return value, rest, true
}

// parseLocationRange reads "<start><sep><end>" where sep is exactly one
// character of any kind. A lone "<start>" is only allowed when single is set.
func parseLocationRange(value string, single bool) (Location, error) {
	n := 0
	for n < len(value) && isDigit(value[n]) {
		n++
	}
	start, err := parseUint("location start", value[:n])
	if err != nil {
		return Location{}, err
	}

	remainder := value[n:]
	if remainder == "" {
		if !single {
			return Location{}, &NumericFormatError{Field: "location end", Value: ""}
		}
		return Location{Start: start, End: start}, nil
	}

	_, size := utf8.DecodeRuneInString(remainder)
	end, err := parseUint("location end", remainder[size:])
	if err != nil {
		return Location{}, err
	}
	if end < start {
		return Location{}, &NumericFormatError{Field: "location range", Value: value}
	}

	return Location{Start: start, End: end}, nil
}

func parseUint(field, digits string) (uint64, error) {
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, &NumericFormatError{Field: field, Value: digits}
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, &NumericFormatError{Field: field, Value: digits}
	}
	return v, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
