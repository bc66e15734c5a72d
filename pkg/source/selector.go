package source

import (
	"context"
	"errors"
	"fmt"

	errs "igfeed/pkg/errors"
	"igfeed/pkg/logger"
	"igfeed/pkg/models"
)

// Attempt records one step of the fallback chain
type Attempt struct {
	Source string
	Posts  int
	Err    error
}

// Selection is the outcome of walking the chain
type Selection struct {
	Source   string
	Posts    []models.Post
	Attempts []Attempt
}

// Selector tries sources in order, each exactly once
type Selector struct {
	sources []Source
	logger  logger.Logger
}

// NewSelector creates a selector over the ordered sources
func NewSelector(log logger.Logger, sources ...Source) *Selector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Selector{sources: sources, logger: log}
}

// Sources returns the chain in order
func (s *Selector) Sources() []Source {
	return s.sources
}

// Select returns the posts of the first source that yields at least one
// valid post. A source failing or returning nothing moves the chain on.
// ErrInsufficientCandidates stops the chain and is returned as is.
// The returned Selection is non-nil even on error.
func (s *Selector) Select(ctx context.Context) (*Selection, error) {
	sel := &Selection{}

	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return sel, err
		}

		posts, err := src.Fetch(ctx)
		if err == nil {
			posts = s.validPosts(src.Name(), posts)
			if len(posts) == 0 {
				err = errs.ErrNoPosts
			}
		}

		sel.Attempts = append(sel.Attempts, Attempt{Source: src.Name(), Posts: len(posts), Err: err})
		logger.LogSourceAttempt(s.logger, src.Name(), len(posts), err)

		if errors.Is(err, errs.ErrInsufficientCandidates) {
			return sel, fmt.Errorf("%s source rejected the batch: %w", src.Name(), err)
		}
		if err != nil {
			continue
		}

		sel.Source = src.Name()
		sel.Posts = models.Truncate(posts)
		return sel, nil
	}

	return sel, errs.ErrNoPosts
}

func (s *Selector) validPosts(source string, posts []models.Post) []models.Post {
	valid := posts[:0:0]
	for _, p := range posts {
		if err := p.Validate(); err != nil {
			s.logger.WithError(err).WarnWithFields("Invalid post skipped", map[string]interface{}{
				"source": source,
			})
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

// Cleanup releases transient files of every source in the chain
func (s *Selector) Cleanup() error {
	var errList []error
	for _, src := range s.sources {
		if c, ok := src.(Cleaner); ok {
			if err := c.Cleanup(); err != nil {
				errList = append(errList, err)
			}
		}
	}
	return errors.Join(errList...)
}
