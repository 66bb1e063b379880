package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/mrlokans/kindle-notion/internal/archive"
	"github.com/mrlokans/kindle-notion/internal/clippings"
	"github.com/mrlokans/kindle-notion/internal/tasks"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Audit
		Notion
		Clippings
		Archive
		S3
		Sync
		Watch
		Markdown
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Audit struct {
		Dir string
	}
	Notion struct {
		APIKey       string
		ParentPageID string
		BaseURL      string
		Version      string
	}
	Clippings struct {
		Path      string
		Locale    string
		Timezone  string // IANA name, empty means the local zone
		ErrorMode string // "abort" or "skip"
		Workers   int
	}
	Archive struct {
		Mode string // marker, rotate, s3 or none
		Dir  string // Used by rotate
	}
	S3 struct {
		Bucket          string
		Prefix          string
		Region          string
		Endpoint        string // For MinIO and other S3 compatible stores
		AccessKeyID     string
		SecretAccessKey string
	}
	Sync struct {
		Enabled         bool
		Schedule        string // Cron format: "*/30 * * * *" = every 30 minutes
		CleanupSchedule string
		Timeout         time.Duration
	}
	Watch struct {
		Enabled  bool
		Debounce time.Duration
	}
	Markdown struct {
		OutputDir string
	}
	Tasks struct {
		Enabled              bool
		Workers              int
		ReleaseAfter         time.Duration
		CleanupInterval      time.Duration
		HistoryRetentionDays int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")

	v.SetDefault("notion_base_url", "https://api.notion.com/v1")
	v.SetDefault("notion_version", "2022-06-28")

	v.SetDefault("clippings_path", DefaultClippingsPath)
	v.SetDefault("clippings_locale", clippings.DefaultLocale)
	v.SetDefault("clippings_timezone", "")
	v.SetDefault("clippings_error_mode", string(clippings.ErrorModeAbort))
	v.SetDefault("clippings_workers", 1)

	v.SetDefault("archive_mode", archive.ModeMarker)
	v.SetDefault("archive_dir", "./archive")
	v.SetDefault("s3_prefix", "clippings")
	v.SetDefault("s3_region", "us-east-1")

	v.SetDefault("sync_enabled", false)
	v.SetDefault("sync_schedule", "*/30 * * * *")
	v.SetDefault("sync_cleanup_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("sync_timeout", "10m")
	v.SetDefault("watch_enabled", false)
	v.SetDefault("watch_debounce", "500ms")

	v.SetDefault("markdown_output_dir", "./markdown")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("history_retention_days", 90)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Notion: Notion{
			APIKey:       v.GetString("NOTION_API_KEY"),
			ParentPageID: v.GetString("NOTION_PARENT_PAGE_ID"),
			BaseURL:      v.GetString("NOTION_BASE_URL"),
			Version:      v.GetString("NOTION_VERSION"),
		},
		Clippings: Clippings{
			Path:      v.GetString("CLIPPINGS_PATH"),
			Locale:    v.GetString("CLIPPINGS_LOCALE"),
			Timezone:  v.GetString("CLIPPINGS_TIMEZONE"),
			ErrorMode: v.GetString("CLIPPINGS_ERROR_MODE"),
			Workers:   v.GetInt("CLIPPINGS_WORKERS"),
		},
		Archive: Archive{
			Mode: v.GetString("ARCHIVE_MODE"),
			Dir:  v.GetString("ARCHIVE_DIR"),
		},
		S3: S3{
			Bucket:          v.GetString("S3_BUCKET"),
			Prefix:          v.GetString("S3_PREFIX"),
			Region:          v.GetString("S3_REGION"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		},
		Sync: Sync{
			Enabled:         v.GetBool("SYNC_ENABLED"),
			Schedule:        v.GetString("SYNC_SCHEDULE"),
			CleanupSchedule: v.GetString("SYNC_CLEANUP_SCHEDULE"),
			Timeout:         v.GetDuration("SYNC_TIMEOUT"),
		},
		Watch: Watch{
			Enabled:  v.GetBool("WATCH_ENABLED"),
			Debounce: v.GetDuration("WATCH_DEBOUNCE"),
		},
		Markdown: Markdown{
			OutputDir: v.GetString("MARKDOWN_OUTPUT_DIR"),
		},
		Tasks: Tasks{
			Enabled:              v.GetBool("TASKS_ENABLED"),
			Workers:              v.GetInt("TASK_WORKERS"),
			ReleaseAfter:         v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:      v.GetDuration("TASK_CLEANUP_INTERVAL"),
			HistoryRetentionDays: v.GetInt("HISTORY_RETENTION_DAYS"),
		},
	}
}

// Validate checks every section needed to run the server or a sync.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.HTTP,
		&c.Database,
		&c.Notion,
		&c.Clippings,
		&c.Archive,
		&c.Tasks,
	}
	if c.Archive.Mode == archive.ModeS3 {
		validators = append(validators, &c.S3)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *HTTP) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(int32(1)), validation.Max(int32(65535))),
	)
}

func (c *Database) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// Validate requires the integration token and the page new books go under.
func (c *Notion) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.ParentPageID, validation.Required),
	); err != nil {
		return fmt.Errorf("notion: %w", err)
	}
	return nil
}

func (c *Clippings) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Locale, validation.Required, validation.In(localeValues()...)),
		validation.Field(&c.Timezone, validation.By(validTimezone)),
		validation.Field(&c.ErrorMode, validation.In(string(clippings.ErrorModeAbort), string(clippings.ErrorModeSkip))),
		validation.Field(&c.Workers, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("clippings: %w", err)
	}
	return nil
}

// ParserOptions converts the section into clippings parser options.
func (c *Clippings) ParserOptions() (clippings.Options, error) {
	loc := time.Local
	if c.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(c.Timezone); err != nil {
			return clippings.Options{}, fmt.Errorf("clippings: unknown timezone %q: %w", c.Timezone, err)
		}
	}
	return clippings.Options{
		Locale:    c.Locale,
		Location:  loc,
		ErrorMode: clippings.ErrorMode(c.ErrorMode),
		Workers:   c.Workers,
	}, nil
}

func (c *Archive) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In(archive.ModeMarker, archive.ModeRotate, archive.ModeS3, archive.ModeNone)),
		validation.Field(&c.Dir, validation.When(c.Mode == archive.ModeRotate, validation.Required)),
	); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

func (c *S3) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.Region, validation.Required),
		validation.Field(&c.SecretAccessKey, validation.When(c.AccessKeyID != "", validation.Required)),
	); err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	return nil
}

func (c *Tasks) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.When(c.Enabled, validation.Required, validation.Min(1))),
		validation.Field(&c.HistoryRetentionDays, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("tasks: %w", err)
	}
	return nil
}

// ArchiveOptions builds the options for archive.New.
func (c *Config) ArchiveOptions() archive.Options {
	return archive.Options{
		Mode: c.Archive.Mode,
		Dir:  c.Archive.Dir,
		S3: archive.S3Options{
			Bucket:    c.S3.Bucket,
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKeyID,
			SecretKey: c.S3.SecretAccessKey,
			Prefix:    c.S3.Prefix,
		},
	}
}

// NewArchiver builds the configured archiver.
func (c *Config) NewArchiver(ctx context.Context) (archive.Archiver, error) {
	return archive.New(ctx, c.ArchiveOptions())
}

// TaskConfig converts the section into task queue settings.
func (c *Tasks) TaskConfig() tasks.Config {
	cfg := tasks.DefaultConfig()
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.ReleaseAfter > 0 {
		cfg.ReleaseAfter = c.ReleaseAfter
	}
	if c.CleanupInterval > 0 {
		cfg.CleanupInterval = c.CleanupInterval
	}
	if c.HistoryRetentionDays > 0 {
		cfg.HistoryRetentionDays = c.HistoryRetentionDays
	}
	return cfg
}

func localeValues() []interface{} {
	locales := clippings.Locales()
	values := make([]interface{}, len(locales))
	for i, l := range locales {
		values[i] = l
	}
	return values
}

func validTimezone(value interface{}) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return errors.New("must be an IANA time zone name")
	}
	return nil
}
