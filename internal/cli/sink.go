package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emedosmotr/vvk-validator/internal/model"
)

// FileSink persists verdicts as JSON files in a directory, one file per
// validation.
type FileSink struct {
	dir string
}

// NewFileSink creates the sink, making the directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Save writes the verdict with the record it was produced for.
func (s *FileSink) Save(_ context.Context, record *model.ExaminationRecord, verdict *model.Verdict) error {
	payload := struct {
		SavedAt time.Time                `json:"saved_at"`
		Record  *model.ExaminationRecord `json:"record"`
		Verdict *model.Verdict           `json:"verdict"`
	}{
		SavedAt: time.Now().UTC(),
		Record:  record,
		Verdict: verdict,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	name := fmt.Sprintf("verdict-%s-%s.json",
		payload.SavedAt.Format("20060102-150405.000"),
		sanitizeFilename(record.Specialty))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	if s == "" {
		return "record"
	}
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
