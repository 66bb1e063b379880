package clippings

import (
	"strings"
	"unicode/utf8"
)

// parseTitleLine splits the first line of a record into title and author and
// returns the remainder of the record.
//
// The author is the parenthesis group that closes the line. Earlier groups such
// as "(2022)" stay in the title, so the scan moves left to right one rune at a
// time and stops at the first " (" whose group runs to the end of the line.
func parseTitleLine(record string) (title, author, rest string, err error) {
	nl := strings.IndexByte(record, '\n')
	if nl < 0 {
		return "", "", "", structural("title line", "no line break after title")
	}
	line := record[:nl]
	rest = record[nl+1:]

	for i := 0; i < len(line); {
		if strings.HasPrefix(line[i:], " (") {
			if a, ok := matchAuthorGroup(line[i+2:]); ok {
				return cleanTitle(line[:i]), a, rest, nil
			}
		}
		_, size := utf8.DecodeRuneInString(line[i:])
		i += size
	}

	return "", "", "", structural("title line", "no trailing (author) group")
}

// matchAuthorGroup accepts a run of non-')' characters followed by one or
// more ')' that end the line. Extra closing parentheses belong to the author
// unless they leave it unbalanced.
func matchAuthorGroup(s string) (string, bool) {
	j := strings.IndexByte(s, ')')
	if j < 0 {
		return "", false
	}
	closers := s[j:]
	if strings.Trim(closers, ")") != "" {
		return "", false
	}
	author := s[:j] + closers[1:]
	for strings.HasSuffix(author, ")") && strings.Count(author, ")") > strings.Count(author, "(") {
		author = strings.TrimSuffix(author, ")")
	}
	return author, true
}

func cleanTitle(title string) string {
	title = strings.TrimPrefix(title, bom)
	return strings.NewReplacer("\r", "", "\n", "").Replace(title)
}
