package source

import (
	"context"
	"fmt"
	"strings"

	"igfeed/pkg/config"
	errs "igfeed/pkg/errors"
	"igfeed/pkg/instagram"
	"igfeed/pkg/logger"
	"igfeed/pkg/models"
)

// MediaFetcher lists an account's media through the Graph API
type MediaFetcher interface {
	FetchMedia(ctx context.Context, userID, accessToken string, limit int) (*instagram.MediaResponse, error)
}

// APISource reads recent media through the Instagram Graph API
type APISource struct {
	client MediaFetcher
	userID string
	token  string
	logger logger.Logger
}

// NewAPISource creates a Graph API source
func NewAPISource(client MediaFetcher, userID, token string, log logger.Logger) *APISource {
	if log == nil {
		log = logger.GetLogger()
	}
	return &APISource{
		client: client,
		userID: strings.TrimSpace(userID),
		token:  strings.TrimSpace(token),
		logger: log,
	}
}

func (s *APISource) Name() string { return config.SourceAPI }

// Fetch returns up to six image posts; videos are skipped
func (s *APISource) Fetch(ctx context.Context) ([]models.Post, error) {
	if s.token == "" || s.token == config.PlaceholderAccessToken ||
		s.userID == "" || s.userID == config.PlaceholderUserID {
		return nil, fmt.Errorf("instagram access token or user id missing: %w", errs.ErrNotConfigured)
	}

	resp, err := s.client.FetchMedia(ctx, s.userID, s.token, instagram.DefaultMediaLimit)
	if err != nil {
		return nil, fmt.Errorf("graph api request failed: %w", err)
	}

	posts := make([]models.Post, 0, models.MaxSlots)
	skipped := 0
	for _, item := range resp.Data {
		if !item.IsImage() {
			skipped++
			continue
		}
		if item.MediaURL == "" {
			s.logger.WarnWithFields("Media item without URL skipped", map[string]interface{}{
				"media_id": item.ID,
			})
			continue
		}
		posts = append(posts, models.Post{
			ID:        item.ID,
			ImageURL:  item.MediaURL,
			Permalink: item.Permalink,
			Caption:   item.Caption,
			Timestamp: item.Timestamp,
		})
	}

	s.logger.DebugWithFields("Graph API media filtered", map[string]interface{}{
		"received": len(resp.Data),
		"images":   len(posts),
		"skipped":  skipped,
	})

	return models.Truncate(posts), nil
}
