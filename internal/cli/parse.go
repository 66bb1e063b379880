package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/config"
	"github.com/mrlokans/kindle-notion/internal/exporters"
)

const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// ParseCommand parses a clippings file and prints the grouped clips.
// Nothing is published and the file is left untouched.
type ParseCommand struct {
	ClippingsPath string
	Format        string
	OutputDir     string
	Locale        string
	Timezone      string
	SkipErrors    bool
	Workers       int

	Out io.Writer
}

func NewParseCommand() *ParseCommand {
	return &ParseCommand{Out: os.Stdout}
}

func (cmd *ParseCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	fs := flag.NewFlagSet("parse", flag.ExitOnError)

	fs.StringVar(&cmd.ClippingsPath, "file", cfg.Clippings.Path, "Path to Kindle 'My Clippings.txt' file")
	fs.StringVar(&cmd.Format, "format", FormatJSON, "Output format: json, yaml or markdown")
	fs.StringVar(&cmd.OutputDir, "output", "", "Directory for markdown files (markdown format only; prints to stdout if empty)")
	fs.StringVar(&cmd.Locale, "locale", cfg.Clippings.Locale, "Language of the device export (month names)")
	fs.StringVar(&cmd.Timezone, "timezone", cfg.Clippings.Timezone, "IANA time zone of the device (default: local)")
	fs.BoolVar(&cmd.SkipErrors, "skip-errors", cfg.Clippings.ErrorMode == string(clippings.ErrorModeSkip), "Report malformed records instead of failing")
	fs.IntVar(&cmd.Workers, "workers", cfg.Clippings.Workers, "Number of records parsed concurrently")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s parse [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parse a Kindle clippings file and print the clips grouped by book.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s parse -file \"/Volumes/Kindle/documents/My Clippings.txt\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s parse -file clippings.txt -format yaml -locale de\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s parse -file clippings.txt -format markdown -output ~/Obsidian/Kindle\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.ClippingsPath == "" {
		fs.Usage()
		return fmt.Errorf("required flag -file not provided")
	}

	switch cmd.Format {
	case FormatJSON, FormatYAML, FormatMarkdown:
	default:
		return fmt.Errorf("unknown format %q (expected json, yaml or markdown)", cmd.Format)
	}

	if cmd.OutputDir != "" && cmd.Format != FormatMarkdown {
		return fmt.Errorf("-output is only supported with -format markdown")
	}

	return nil
}

func (cmd *ParseCommand) Run() error {
	data, err := os.ReadFile(cmd.ClippingsPath)
	if err != nil {
		return fmt.Errorf("failed to read clippings file: %w", err)
	}

	opts, err := cmd.parserOptions()
	if err != nil {
		return err
	}
	parser, err := clippings.NewParser(opts)
	if err != nil {
		return err
	}

	result, err := parser.Parse(string(data))
	if err != nil {
		if kind := clippings.ErrorKind(err); kind != "" {
			return fmt.Errorf("failed to parse clippings (%s): %w", kind, err)
		}
		return fmt.Errorf("failed to parse clippings: %w", err)
	}

	if len(result.Rejected) > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d records could not be parsed:\n", len(result.Rejected), result.Records)
		for _, rejected := range result.Rejected {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", rejected.Kind, rejected.Error())
		}
	}

	return cmd.write(result)
}

func (cmd *ParseCommand) parserOptions() (clippings.Options, error) {
	mode := clippings.ErrorModeAbort
	if cmd.SkipErrors {
		mode = clippings.ErrorModeSkip
	}
	section := config.Clippings{
		Locale:    cmd.Locale,
		Timezone:  cmd.Timezone,
		ErrorMode: string(mode),
		Workers:   cmd.Workers,
	}
	return section.ParserOptions()
}

func (cmd *ParseCommand) write(result *clippings.Result) error {
	out := cmd.Out
	if out == nil {
		out = os.Stdout
	}

	switch cmd.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	case FormatMarkdown:
		if cmd.OutputDir == "" {
			for i, book := range result.Books {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, exporters.GenerateMarkdown(book))
			}
			return nil
		}
		absOutputDir, err := filepath.Abs(cmd.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for output: %w", err)
		}
		exported, err := exporters.NewMarkdownExporter(absOutputDir).Export(context.Background(), result.Books)
		if err != nil {
			return fmt.Errorf("failed to export to markdown: %w", err)
		}
		fmt.Fprintf(out, "Exported %d books (%d clips) to %s\n", exported.BooksProcessed, exported.ClipsProcessed, absOutputDir)
		if exported.BooksFailed > 0 {
			return fmt.Errorf("%d books failed to export", exported.BooksFailed)
		}
		return nil

	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}
