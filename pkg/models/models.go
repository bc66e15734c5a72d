package models

import (
	"fmt"
	"time"
)

// MaxSlots is the number of fixed image slots the gallery renders
const MaxSlots = 6

// SlotFilePattern names slot files; the verb is the 1-based slot index
const SlotFilePattern = "instagram-%d.jpg"

// Origin identifies where a post's image bytes come from
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Post is a candidate image plus the metadata shown next to it
type Post struct {
	ID        string `json:"id"`
	ImageURL  string `json:"image_url,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
	Permalink string `json:"permalink"`
	Caption   string `json:"caption"`
	Timestamp string `json:"timestamp"`

	// StagedFrom is the remote URL of an image downloaded into a transient
	// LocalPath. It replaces LocalPath in the publish record.
	StagedFrom string `json:"-"`
}

// Origin reports whether the post is fetched over HTTP or copied from disk
func (p Post) Origin() Origin {
	if p.LocalPath != "" {
		return OriginLocal
	}
	return OriginRemote
}

// Validate checks that exactly one image origin is populated
func (p Post) Validate() error {
	switch {
	case p.ImageURL == "" && p.LocalPath == "":
		return fmt.Errorf("post %q has neither image_url nor local_path", p.ID)
	case p.ImageURL != "" && p.LocalPath != "":
		return fmt.Errorf("post %q has both image_url and local_path", p.ID)
	}
	return nil
}

// Recorded returns the post as written to the publish record. A staged post
// is recorded with the URL it was downloaded from, since its transient file
// is removed after the run.
func (p Post) Recorded() Post {
	if p.StagedFrom != "" {
		p.ImageURL = p.StagedFrom
		p.LocalPath = ""
		p.StagedFrom = ""
	}
	return p
}

// PublishRecord is the sidecar written after each run
type PublishRecord struct {
	LastUpdated time.Time `json:"last_updated"`
	Posts       []Post    `json:"posts"`
}

// SlotFileName returns the file name for a 1-based slot index
func SlotFileName(slot int) string {
	return fmt.Sprintf(SlotFilePattern, slot)
}

// Truncate caps a post list at MaxSlots without copying the backing array
func Truncate(posts []Post) []Post {
	if len(posts) > MaxSlots {
		return posts[:MaxSlots]
	}
	return posts
}
