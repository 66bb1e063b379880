package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/kindle-notion/internal/clippings"
)

// Snapshot is what a sync run saw in the clippings file: the parsed books
// and any records that were rejected.
type Snapshot struct {
	RunID         string                  `json:"run_id"`
	ClippingsPath string                  `json:"clippings_path"`
	ParsedAt      time.Time               `json:"parsed_at"`
	Records       int                     `json:"records"`
	Books         []clippings.BookClips   `json:"books"`
	Rejected      []clippings.RecordError `json:"rejected,omitempty"`
}

// Auditor keeps JSON snapshots in AuditDir, one uuid-named file each.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := uuid.New().String() + ".json"
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("Audit: saved %s", path)
	return filename, nil
}

// SaveSnapshot stores the parse result of one run.
func (a *Auditor) SaveSnapshot(runID, clippingsPath string, result *clippings.Result) (string, error) {
	return a.SaveJSON(Snapshot{
		RunID:         runID,
		ClippingsPath: clippingsPath,
		ParsedAt:      time.Now(),
		Records:       result.Records,
		Books:         result.Books,
		Rejected:      result.Rejected,
	})
}

// LoadSnapshot reads a snapshot previously written by SaveSnapshot.
func (a *Auditor) LoadSnapshot(filename string) (*Snapshot, error) {
	if filepath.Base(filename) != filename {
		return nil, fmt.Errorf("invalid audit file name %q", filename)
	}
	data, err := os.ReadFile(filepath.Join(a.AuditDir, filename))
	if err != nil {
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode audit file: %w", err)
	}
	return &snapshot, nil
}

// Prune removes audit files last modified before now minus retention.
// A missing audit directory is not an error.
func (a *Auditor) Prune(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(a.AuditDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(a.AuditDir, entry.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
