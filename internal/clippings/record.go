package clippings

import "strings"

// ParseRecord parses one raw record, as produced by Split, into a Clip.
//
// Layout:
//
//	<title> (<author>)
//	- Your Highlight on page <N> | location <start>-<end> | Added on <Weekday>, <D> <Month> <YYYY> <HH:MM:SS>
//
//	<content>
func (p *Parser) ParseRecord(raw string) (Clip, error) {
	raw = normalizeNewlines(raw)

	book, author, rest, err := parseTitleLine(raw)
	if err != nil {
		return Clip{}, err
	}

	line, body, ok := strings.Cut(rest, "\n")
	if !ok {
		return Clip{}, structural("location clause", "record ends inside the metadata line")
	}

	kind, loc, dateClause, err := parseLocationClause(line)
	if err != nil {
		return Clip{}, err
	}

	date, err := parseDateClause(dateClause, p.months, p.locale, p.location)
	if err != nil {
		return Clip{}, err
	}

	if !strings.HasPrefix(body, "\n") {
		return Clip{}, structural("content", "missing blank line after the date clause")
	}

	return Clip{
		Book:     book,
		Author:   author,
		Kind:     kind,
		Content:  strings.TrimSuffix(body[1:], "\n"),
		Date:     date,
		Location: loc,
	}, nil
}
