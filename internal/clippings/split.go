package clippings

import "strings"

const (
	// Delimiter is the line the device writes after every record.
	Delimiter = "=========="

	// ResumeMarker is two consecutive delimiter lines. Everything up to the
	// last marker in a file has already been consumed by a previous run.
	ResumeMarker = Delimiter + "\n" + Delimiter + "\n"

	bom = "\uFEFF"
)

// Split breaks the export into raw records in file order. Only the text after
// the last resume marker is considered. Each record keeps its own trailing
// line break; the delimiter lines are not part of any record.
func Split(input string) []string {
	input = normalizeNewlines(input)

	var records []string
	var current strings.Builder
	prevDelimiter := false

	for _, line := range strings.SplitAfter(input, "\n") {
		if line == "" {
			continue
		}
		if isDelimiterLine(line) {
			if prevDelimiter {
				// Resume marker: drop everything collected so far.
				records = records[:0]
				current.Reset()
				continue
			}
			if current.Len() > 0 {
				records = append(records, current.String())
				current.Reset()
			}
			prevDelimiter = true
			continue
		}
		prevDelimiter = false
		current.WriteString(line)
	}

	// A file cut short may miss the final delimiter.
	if current.Len() > 0 {
		records = append(records, current.String())
	}

	return records
}

// HasResumeMarker reports whether the export already ends with a resume marker.
func HasResumeMarker(input string) bool {
	return strings.HasSuffix(normalizeNewlines(input), ResumeMarker)
}

func isDelimiterLine(line string) bool {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimPrefix(line, bom)
	return line == Delimiter
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
