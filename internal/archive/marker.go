package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/kindle-notion/internal/clippings"
)

// tailSize is enough to see the last two delimiter lines with CRLF endings.
const tailSize = 2 * (len(clippings.Delimiter) + 2)

// ErrSourceChanged means the clippings file no longer starts with the bytes
// that were parsed, so there is no safe place for the resume marker.
var ErrSourceChanged = errors.New("clippings file changed since it was read")

// AppendMarker marks everything currently in the file at path as consumed.
func AppendMarker(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read clippings file: %w", err)
	}
	return MarkConsumed(path, data)
}

// MarkConsumed writes a resume marker right after data, the prefix of the
// file that was parsed. Records the device appended since data was read are
// moved after the marker so the next run still sees them. The file's line
// ending style is kept and an existing marker is left alone.
//
// ErrSourceChanged is returned, and the file left untouched, when the file
// does not start with data or when it grew after a record that data only
// holds part of.
func MarkConsumed(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat clippings file: %w", err)
	}

	consumed := int64(len(data))
	if info.Size() < consumed {
		return ErrSourceChanged
	}

	current := make([]byte, info.Size())
	if _, err := io.ReadFull(f, current); err != nil {
		return fmt.Errorf("failed to read clippings file: %w", err)
	}
	if !bytes.Equal(current[:consumed], data) {
		return ErrSourceChanged
	}

	tail := data[max(0, len(data)-tailSize):]
	suffix := markerSuffix(tail)
	if suffix == "" {
		return nil
	}

	appended := current[consumed:]
	if len(appended) > 0 && !endsWithDelimiter(tail) {
		return ErrSourceChanged
	}

	if _, err := f.WriteAt(append([]byte(suffix), appended...), consumed); err != nil {
		return fmt.Errorf("failed to write resume marker: %w", err)
	}
	return f.Sync()
}

// markerSuffix returns what has to follow tail for the file to end with a
// resume marker.
func markerSuffix(tail []byte) string {
	if clippings.HasResumeMarker(string(tail)) {
		return ""
	}

	eol := "\n"
	if bytes.Contains(tail, []byte("\r\n")) {
		eol = "\r\n"
	}
	delimiter := clippings.Delimiter + eol

	switch {
	case endsWithDelimiter(tail):
		return delimiter
	case len(tail) == 0, bytes.HasSuffix(tail, []byte("\n")):
		return delimiter + delimiter
	default:
		return eol + delimiter + delimiter
	}
}

func endsWithDelimiter(tail []byte) bool {
	normalized := bytes.ReplaceAll(tail, []byte("\r\n"), []byte("\n"))
	return bytes.HasSuffix(normalized, []byte("\n"+clippings.Delimiter+"\n")) ||
		bytes.Equal(normalized, []byte(clippings.Delimiter+"\n"))
}
