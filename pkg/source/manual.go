package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"igfeed/pkg/config"
	errs "igfeed/pkg/errors"
	"igfeed/pkg/logger"
	"igfeed/pkg/models"
)

// ManualSource picks the newest images an operator saved to a local directory
type ManualSource struct {
	dir      string
	patterns []string
	logger   logger.Logger
}

// NewManualSource creates a source over dir; a leading ~ expands to the home directory
func NewManualSource(dir string, patterns []string, log logger.Logger) *ManualSource {
	if log == nil {
		log = logger.GetLogger()
	}
	if len(patterns) == 0 {
		patterns = []string{"*.jpg"}
	}
	return &ManualSource{dir: ExpandHome(dir), patterns: patterns, logger: log}
}

func (s *ManualSource) Name() string { return config.SourceManual }

type candidate struct {
	path    string
	modTime time.Time
}

// Fetch ranks matching files by modification time, newest first, and
// rejects the batch unless at least six are present.
func (s *ManualSource) Fetch(ctx context.Context) ([]models.Post, error) {
	if s.dir == "" {
		return nil, fmt.Errorf("manual directory not set: %w", errs.ErrNotConfigured)
	}
	if info, err := os.Stat(s.dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("manual directory %s unavailable: %w", s.dir, errs.ErrNotConfigured)
	}

	seen := make(map[string]bool)
	var candidates []candidate
	for _, pattern := range s.patterns {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid manual pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true

			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			candidates = append(candidates, candidate{path: path, modTime: info.ModTime()})
		}
	}

	if len(candidates) < models.MaxSlots {
		return nil, fmt.Errorf("found %d images in %s, need %d: %w",
			len(candidates), s.dir, models.MaxSlots, errs.ErrInsufficientCandidates)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].path < candidates[j].path
		}
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	posts := make([]models.Post, 0, models.MaxSlots)
	for _, c := range candidates[:models.MaxSlots] {
		base := filepath.Base(c.path)
		posts = append(posts, models.Post{
			ID:        strings.TrimSuffix(base, filepath.Ext(base)),
			LocalPath: c.path,
			Timestamp: c.modTime.UTC().Format(time.RFC3339),
		})
	}

	s.logger.DebugWithFields("Manual images ranked", map[string]interface{}{
		"dir":        s.dir,
		"candidates": len(candidates),
	})
	return posts, nil
}

// ExpandHome replaces a leading ~ with the home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
