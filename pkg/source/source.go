// Package source produces the candidate posts for a gallery refresh.
//
// Each Source yields at most six posts, most recent first. A Selector
// walks an ordered chain of sources and keeps the first non-empty result.
package source

import (
	"context"

	"igfeed/pkg/models"
)

// Source yields candidate posts
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Post, error)
}

// Cleaner is implemented by sources that leave transient files behind
// which must outlive publishing.
type Cleaner interface {
	Cleanup() error
}
