package source

import (
	"context"
	"fmt"
	"time"

	"igfeed/pkg/config"
	"igfeed/pkg/models"
)

// PlaceholderURLPattern renders a brand-coloured square labelled with the post number
const PlaceholderURLPattern = "https://via.placeholder.com/600x600/2D4A32/FFFFFF?text=Instagram+Post+%d"

// PlaceholderSource always yields six synthetic posts
type PlaceholderSource struct {
	siteName string
	now      func() time.Time
}

// NewPlaceholderSource creates the last-resort source. now may be nil.
func NewPlaceholderSource(siteName string, now func() time.Time) *PlaceholderSource {
	if now == nil {
		now = time.Now
	}
	return &PlaceholderSource{siteName: siteName, now: now}
}

func (s *PlaceholderSource) Name() string { return config.SourcePlaceholder }

func (s *PlaceholderSource) Fetch(ctx context.Context) ([]models.Post, error) {
	stamp := s.now().Format(time.RFC3339)

	posts := make([]models.Post, 0, models.MaxSlots)
	for i := 1; i <= models.MaxSlots; i++ {
		posts = append(posts, models.Post{
			ID:        fmt.Sprintf("placeholder_%d", i),
			ImageURL:  fmt.Sprintf(PlaceholderURLPattern, i),
			Permalink: fmt.Sprintf("https://instagram.com/p/placeholder_%d", i),
			Caption:   fmt.Sprintf("%s - Post %d", s.siteName, i),
			Timestamp: stamp,
		})
	}
	return posts, nil
}
