package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"igfeed/pkg/logger"
	"igfeed/pkg/models"
)

// Recorder writes the publish record sidecar the website reads
type Recorder struct {
	path   string
	logger logger.Logger
}

// NewRecorder creates a recorder that writes to path
func NewRecorder(path string, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Recorder{path: path, logger: log}
}

// Path returns the sidecar location
func (r *Recorder) Path() string {
	return r.path
}

// Record overwrites the sidecar with posts and the given update time.
// The attempted list is recorded in order, including posts whose slot failed.
func (r *Recorder) Record(posts []models.Post, now time.Time) error {
	record := models.PublishRecord{
		LastUpdated: now,
		Posts:       make([]models.Post, 0, len(posts)),
	}
	for _, p := range posts {
		record.Posts = append(record.Posts, p.Recorded())
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	r.logger.InfoWithFields("Metadata recorded", map[string]interface{}{
		"path":  r.path,
		"posts": len(posts),
	})
	return nil
}

// Load reads a publish record from a JSON file
func Load(path string) (*models.PublishRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var record models.PublishRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &record, nil
}

// Exists checks if the sidecar file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
