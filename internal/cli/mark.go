package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/kindle-notion/internal/archive"
	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/config"
)

// MarkCommand appends the resume marker so later syncs ignore every record
// currently in the file.
type MarkCommand struct {
	ClippingsPath string
}

func NewMarkCommand() *MarkCommand {
	return &MarkCommand{}
}

func (cmd *MarkCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	fs := flag.NewFlagSet("mark", flag.ExitOnError)

	fs.StringVar(&cmd.ClippingsPath, "file", cfg.Clippings.Path, "Path to Kindle 'My Clippings.txt' file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s mark [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mark every clip in the file as already synced.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ClippingsPath == "" {
		fs.Usage()
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *MarkCommand) Run() error {
	data, err := os.ReadFile(cmd.ClippingsPath)
	if err != nil {
		return fmt.Errorf("failed to read clippings file: %w", err)
	}

	records := len(clippings.Split(string(data)))
	if err := archive.AppendMarker(cmd.ClippingsPath); err != nil {
		return fmt.Errorf("failed to mark clippings file: %w", err)
	}

	fmt.Printf("Marked %s: %d records will be skipped by the next sync\n", cmd.ClippingsPath, records)
	return nil
}
