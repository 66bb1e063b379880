package archive

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/kindle-notion/internal/utils"
)

const (
	ModeMarker = "marker"
	ModeRotate = "rotate"
	ModeS3     = "s3"
	ModeNone   = "none"

	timestampFormat = "20060102T150405.000000000"
	archivePrefix   = "clippings"
)

// Archiver stores the consumed export and marks the source file so the same
// records are not published twice. data is the export as it was parsed.
type Archiver interface {
	Archive(ctx context.Context, path string, data []byte) error
}

// MarkerArchiver only writes the resume marker.
type MarkerArchiver struct{}

func (MarkerArchiver) Archive(ctx context.Context, path string, data []byte) error {
	return MarkConsumed(path, data)
}

// NopArchiver leaves the export untouched; every run re-reads the whole file.
type NopArchiver struct{}

func (NopArchiver) Archive(ctx context.Context, path string, data []byte) error {
	return nil
}

// RotateArchiver copies the consumed export into Dir before writing the marker.
type RotateArchiver struct {
	Dir string
	now func() time.Time
}

func NewRotateArchiver(dir string) *RotateArchiver {
	return &RotateArchiver{Dir: dir, now: time.Now}
}

func (a *RotateArchiver) Archive(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	target := filepath.Join(a.Dir, archiveName(a.now()))
	if err := writeNew(target, data); err != nil {
		return fmt.Errorf("failed to write archive copy: %w", err)
	}
	log.Printf("Archive: copied %d bytes to %s", len(data), target)

	return MarkConsumed(path, data)
}

// writeNew refuses to replace an earlier archive copy.
func writeNew(name string, data []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func archiveName(t time.Time) string {
	return utils.TimestampedName(archivePrefix, t.UTC().Format(timestampFormat), "txt")
}

// Options selects and configures an Archiver.
type Options struct {
	Mode string
	Dir  string
	S3   S3Options
}

// New builds the archiver for opts.Mode. An empty mode means ModeMarker.
func New(ctx context.Context, opts Options) (Archiver, error) {
	switch opts.Mode {
	case ModeMarker, "":
		return MarkerArchiver{}, nil
	case ModeRotate:
		return NewRotateArchiver(opts.Dir), nil
	case ModeS3:
		return NewS3Archiver(ctx, opts.S3)
	case ModeNone:
		return NopArchiver{}, nil
	default:
		return nil, fmt.Errorf("unknown archive mode %q", opts.Mode)
	}
}
