package clippings

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrorMode decides what happens to the run when a record fails to parse.
type ErrorMode string

const (
	// ErrorModeAbort fails the whole file on the first bad record.
	ErrorModeAbort ErrorMode = "abort"
	// ErrorModeSkip keeps the good records and reports the bad ones in Result.Rejected.
	ErrorModeSkip ErrorMode = "skip"
)

// ErrUnknownLocale is returned by NewParser for a locale without a month table.
var ErrUnknownLocale = errors.New("no month table for locale")

// Options configures a Parser.
type Options struct {
	// Locale selects the month-name table. Default: "en"
	Locale string

	// Location is the reader's time zone; the export has no offset. Default: time.Local
	Location *time.Location

	// ErrorMode is ErrorModeAbort or ErrorModeSkip. Default: ErrorModeAbort
	ErrorMode ErrorMode

	// Workers bounds how many records are parsed concurrently. Default: 1
	Workers int
}

// DefaultOptions returns Options with the defaults applied.
func DefaultOptions() Options {
	return Options{
		Locale:    DefaultLocale,
		Location:  time.Local,
		ErrorMode: ErrorModeAbort,
		Workers:   1,
	}
}

// Parser turns a clippings export into grouped clips. It holds no state
// between calls and is safe for concurrent use.
type Parser struct {
	months   MonthTable
	locale   string
	location *time.Location
	mode     ErrorMode
	workers  int
}

func NewParser(opts Options) (*Parser, error) {
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	months, ok := Months(opts.Locale)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, opts.Locale)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	switch opts.ErrorMode {
	case "":
		opts.ErrorMode = ErrorModeAbort
	case ErrorModeAbort, ErrorModeSkip:
	default:
		return nil, fmt.Errorf("unknown error mode %q", opts.ErrorMode)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Parser{
		months:   months,
		locale:   opts.Locale,
		location: opts.Location,
		mode:     opts.ErrorMode,
		workers:  opts.Workers,
	}, nil
}

// Result is the outcome of parsing one export.
type Result struct {
	Books    []BookClips   `json:"books" yaml:"books"`
	Rejected []RecordError `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Records  int           `json:"records" yaml:"records"`
}

// ClipCount returns the number of clips across all books.
func (r *Result) ClipCount() int {
	n := 0
	for _, b := range r.Books {
		n += len(b.Clips)
	}
	return n
}

// Parse splits, parses and groups the whole export held in input.
//
// In ErrorModeAbort the first failing record in file order is returned as a
// *RecordError and no result is produced.
func (p *Parser) Parse(input string) (*Result, error) {
	records := Split(input)
	clips, errs := p.parseRecords(records)

	result := &Result{Records: len(records)}
	parsed := make([]Clip, 0, len(clips))
	for i := range records {
		if errs[i] == nil {
			parsed = append(parsed, clips[i])
			continue
		}
		recErr := RecordError{Index: i, Raw: records[i], Kind: ErrorKind(errs[i]), Message: errs[i].Error(), Err: errs[i]}
		if p.mode == ErrorModeAbort {
			return nil, &recErr
		}
		result.Rejected = append(result.Rejected, recErr)
	}

	result.Books = Group(parsed)
	return result, nil
}

// parseRecords parses every record, possibly in parallel. Results and errors
// are stored by record index so the outcome never depends on scheduling.
func (p *Parser) parseRecords(records []string) ([]Clip, []error) {
	clips := make([]Clip, len(records))
	errs := make([]error, len(records))

	if p.workers == 1 || len(records) < 2 {
		for i, raw := range records {
			clips[i], errs[i] = p.ParseRecord(raw)
		}
		return clips, errs
	}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, raw := range records {
		g.Go(func() error {
			clips[i], errs[i] = p.ParseRecord(raw)
			return nil
		})
	}
	_ = g.Wait()

	return clips, errs
}

// Parse parses input with DefaultOptions.
func Parse(input string) ([]BookClips, error) {
	p, err := NewParser(DefaultOptions())
	if err != nil {
		return nil, err
	}
	result, err := p.Parse(input)
	if err != nil {
		return nil, err
	}
	return result.Books, nil
}
