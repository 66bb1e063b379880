// Package database provides the data access layer for the sync history.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── runs/            # Sync runs and the books published by each run
//
// # Usage
//
//	db, err := database.NewDatabase("./kindle-notion.db")
//	runsRepo := runs.NewRepository(db.DB)
//
//	run, err := runsRepo.Start(entities.SyncTriggerCLI, "/mnt/kindle/documents/My Clippings.txt")
//	...
//	err = runsRepo.Complete(run)
package database
