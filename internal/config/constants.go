package config

const (
	// DefaultDatabasePath is the default path for the sync history database
	DefaultDatabasePath = "./kindle-notion.db"

	// DefaultClippingsPath is where a mounted Kindle usually exposes its export
	DefaultClippingsPath = "./My Clippings.txt"

	// MaxUploadSize limits clippings files posted to the HTTP API
	MaxUploadSize = 10 << 20
)
