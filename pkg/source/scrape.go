package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"igfeed/pkg/config"
	errs "igfeed/pkg/errors"
	"igfeed/pkg/instagram"
	"igfeed/pkg/logger"
	"igfeed/pkg/models"
)

// ProfileFetcher reads a public profile with its latest timeline media
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, username string) (*instagram.ProfileResponse, error)
}

// Downloader streams a remote file into w
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// ScrapeSource reads the public profile without credentials and downloads
// each image into a transient directory. The directory is removed by Cleanup.
type ScrapeSource struct {
	profiles   ProfileFetcher
	downloader Downloader
	username   string
	tempDir    string
	logger     logger.Logger
}

// NewScrapeSource creates a public-profile source
func NewScrapeSource(profiles ProfileFetcher, downloader Downloader, username, tempDir string, log logger.Logger) *ScrapeSource {
	if log == nil {
		log = logger.GetLogger()
	}
	return &ScrapeSource{
		profiles:   profiles,
		downloader: downloader,
		username:   instagram.SanitizeUsername(username),
		tempDir:    tempDir,
		logger:     log,
	}
}

func (s *ScrapeSource) Name() string { return config.SourceScrape }

// Fetch collects up to six non-video posts. Posts whose transient file is
// missing after download are dropped and the remaining list shifts up.
func (s *ScrapeSource) Fetch(ctx context.Context) ([]models.Post, error) {
	if s.username == "" {
		return nil, fmt.Errorf("instagram username not set: %w", errs.ErrNotConfigured)
	}

	profile, err := s.profiles.FetchProfile(ctx, s.username)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}

	var nodes []instagram.Node
	for _, edge := range profile.Data.User.EdgeOwnerToTimelineMedia.Edges {
		if len(nodes) >= models.MaxSlots {
			break
		}
		if edge.Node.IsVideo || edge.Node.DisplayURL == "" {
			continue
		}
		nodes = append(nodes, edge.Node)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	posts := make([]models.Post, 0, len(nodes))
	for i, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := node.Shortcode
		if name == "" {
			name = node.ID
		}
		path := filepath.Join(s.tempDir, name+".jpg")

		if err := s.download(ctx, node.DisplayURL, path); err != nil {
			s.logger.WithError(err).WarnWithFields("Post download failed", map[string]interface{}{
				"position":  i + 1,
				"shortcode": node.Shortcode,
			})
		}

		if _, err := os.Stat(path); err != nil {
			s.logger.WarnWithFields("Downloaded file missing, post dropped", map[string]interface{}{
				"position":  i + 1,
				"shortcode": node.Shortcode,
			})
			continue
		}

		post := models.Post{
			ID:         node.ID,
			LocalPath:  path,
			Permalink:  instagram.GetPostURL(node.Shortcode),
			Caption:    node.Caption(),
			StagedFrom: node.DisplayURL,
		}
		if node.TakenAtTimestamp > 0 {
			post.Timestamp = time.Unix(node.TakenAtTimestamp, 0).UTC().Format(time.RFC3339)
		}
		posts = append(posts, post)
	}

	return posts, nil
}

func (s *ScrapeSource) download(ctx context.Context, url, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = s.downloader.Download(ctx, url, out)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// Cleanup removes the transient download directory
func (s *ScrapeSource) Cleanup() error {
	if s.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("failed to remove temp directory: %w", err)
	}
	return nil
}
