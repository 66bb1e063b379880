package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notion/internal/archive"
	"github.com/mrlokans/kindle-notion/internal/clippings"
)

func validConfig() *Config {
	return &Config{
		HTTP:     HTTP{Port: 8188, Host: "0.0.0.0"},
		Database: Database{Path: "test.db"},
		Notion:   Notion{APIKey: "secret", ParentPageID: "parent"},
		Clippings: Clippings{
			Path:      "My Clippings.txt",
			Locale:    "en",
			ErrorMode: "abort",
			Workers:   1,
		},
		Archive: Archive{Mode: archive.ModeMarker},
		Tasks:   Tasks{Enabled: true, Workers: 1},
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultClippingsPath, cfg.Clippings.Path)
	assert.Equal(t, "en", cfg.Clippings.Locale)
	assert.Equal(t, "abort", cfg.Clippings.ErrorMode)
	assert.Equal(t, archive.ModeMarker, cfg.Archive.Mode)
	assert.Equal(t, "https://api.notion.com/v1", cfg.Notion.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 10*time.Minute, cfg.Sync.Timeout)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 90, cfg.Tasks.HistoryRetentionDays)
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "secret_abc")
	t.Setenv("NOTION_PARENT_PAGE_ID", "page-123")
	t.Setenv("CLIPPINGS_PATH", "/media/kindle/documents/My Clippings.txt")
	t.Setenv("CLIPPINGS_LOCALE", "fr")
	t.Setenv("CLIPPINGS_ERROR_MODE", "skip")
	t.Setenv("ARCHIVE_MODE", "s3")
	t.Setenv("S3_BUCKET", "kindle")
	t.Setenv("SYNC_ENABLED", "true")
	t.Setenv("SYNC_SCHEDULE", "0 * * * *")
	t.Setenv("WATCH_ENABLED", "true")
	t.Setenv("PORT", "9000")

	cfg := NewConfig()

	assert.Equal(t, "secret_abc", cfg.Notion.APIKey)
	assert.Equal(t, "page-123", cfg.Notion.ParentPageID)
	assert.Equal(t, "/media/kindle/documents/My Clippings.txt", cfg.Clippings.Path)
	assert.Equal(t, "fr", cfg.Clippings.Locale)
	assert.Equal(t, "skip", cfg.Clippings.ErrorMode)
	assert.Equal(t, "s3", cfg.Archive.Mode)
	assert.Equal(t, "kindle", cfg.S3.Bucket)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, "0 * * * *", cfg.Sync.Schedule)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "missing notion key", modify: func(c *Config) { c.Notion.APIKey = "" }, wantErr: "notion"},
		{name: "missing parent page", modify: func(c *Config) { c.Notion.ParentPageID = "" }, wantErr: "notion"},
		{name: "unknown locale", modify: func(c *Config) { c.Clippings.Locale = "xx" }, wantErr: "clippings"},
		{name: "bad timezone", modify: func(c *Config) { c.Clippings.Timezone = "Mars/Olympus" }, wantErr: "clippings"},
		{name: "bad error mode", modify: func(c *Config) { c.Clippings.ErrorMode = "ignore" }, wantErr: "clippings"},
		{name: "bad archive mode", modify: func(c *Config) { c.Archive.Mode = "tape" }, wantErr: "archive"},
		{name: "rotate without dir", modify: func(c *Config) { c.Archive.Mode = archive.ModeRotate }, wantErr: "archive"},
		{name: "s3 without bucket", modify: func(c *Config) { c.Archive.Mode = archive.ModeS3; c.S3.Region = "eu-west-1" }, wantErr: "s3"},
		{name: "s3 key without secret", modify: func(c *Config) {
			c.Archive.Mode = archive.ModeS3
			c.S3 = S3{Bucket: "b", Region: "eu-west-1", AccessKeyID: "AKIA"}
		}, wantErr: "s3"},
		{name: "port out of range", modify: func(c *Config) { c.HTTP.Port = 70000 }, wantErr: "Port"},
		{name: "no database path", modify: func(c *Config) { c.Database.Path = "" }, wantErr: "database"},
		{name: "tasks without workers", modify: func(c *Config) { c.Tasks.Workers = 0 }, wantErr: "tasks"},
		{name: "tasks disabled", modify: func(c *Config) { c.Tasks = Tasks{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClippings_ParserOptions(t *testing.T) {
	c := Clippings{Locale: "de", Timezone: "Europe/Berlin", ErrorMode: "skip", Workers: 4}

	opts, err := c.ParserOptions()
	require.NoError(t, err)
	assert.Equal(t, "de", opts.Locale)
	assert.Equal(t, "Europe/Berlin", opts.Location.String())
	assert.Equal(t, clippings.ErrorModeSkip, opts.ErrorMode)
	assert.Equal(t, 4, opts.Workers)

	opts, err = (&Clippings{}).ParserOptions()
	require.NoError(t, err)
	assert.Equal(t, time.Local, opts.Location)

	_, err = (&Clippings{Timezone: "Nowhere/Land"}).ParserOptions()
	assert.Error(t, err)
}

func TestConfig_ArchiveOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Archive = Archive{Mode: archive.ModeS3}
	cfg.S3 = S3{Bucket: "b", Prefix: "p", Region: "r", Endpoint: "http://minio:9000", AccessKeyID: "k", SecretAccessKey: "s"}

	opts := cfg.ArchiveOptions()
	assert.Equal(t, archive.ModeS3, opts.Mode)
	assert.Equal(t, archive.S3Options{Bucket: "b", Region: "r", Endpoint: "http://minio:9000", AccessKey: "k", SecretKey: "s", Prefix: "p"}, opts.S3)
}

func TestTasks_TaskConfig(t *testing.T) {
	cfg := (&Tasks{Workers: 3, HistoryRetentionDays: 7}).TaskConfig()
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 7, cfg.HistoryRetentionDays)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
}
