package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// maxFilenameBytes leaves room for an extension under the usual 255 byte limit.
const maxFilenameBytes = 200

// SanitizeFilename turns a book title into a file name that is valid on
// common filesystems and in markdown vaults.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	if len(filename) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = strings.TrimSpace(filename[:cut])
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// TimestampedName returns "<prefix>-<stamp>.<ext>" for archive copies.
func TimestampedName(prefix, stamp, ext string) string {
	return SanitizeFilename(prefix) + "-" + stamp + "." + ext
}
