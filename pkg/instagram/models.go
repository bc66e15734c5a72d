package instagram

// Graph API media types
const (
	MediaTypeImage    = "IMAGE"
	MediaTypeVideo    = "VIDEO"
	MediaTypeCarousel = "CAROUSEL_ALBUM"
)

// MediaResponse is the body of a Graph API /{user-id}/media call
type MediaResponse struct {
	Data   []MediaItem `json:"data"`
	Paging *Paging     `json:"paging,omitempty"`
}

// MediaItem is a single entry of a Graph API media listing
type MediaItem struct {
	ID           string `json:"id"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Permalink    string `json:"permalink"`
	Caption      string `json:"caption,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// IsImage reports whether the item renders as a still image in the gallery
func (m MediaItem) IsImage() bool {
	return m.MediaType == MediaTypeImage || m.MediaType == MediaTypeCarousel
}

// Paging holds Graph API cursors
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// ProfileResponse represents the top-level response of the web profile endpoint
type ProfileResponse struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Data            Data   `json:"data"`
	Status          string `json:"status"`
}

// Data wraps the user information in the response
type Data struct {
	User User `json:"user"`
}

// User represents an Instagram user profile
type User struct {
	ID                       string                   `json:"id"`
	Username                 string                   `json:"username"`
	EdgeOwnerToTimelineMedia EdgeOwnerToTimelineMedia `json:"edge_owner_to_timeline_media"`
}

// EdgeOwnerToTimelineMedia contains the user's media information
type EdgeOwnerToTimelineMedia struct {
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

// PageInfo contains pagination information
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// Edge wraps a single media node
type Edge struct {
	Node Node `json:"node"`
}

// Node represents a single media item (photo or video)
type Node struct {
	ID                 string      `json:"id"`
	Shortcode          string      `json:"shortcode"`
	DisplayURL         string      `json:"display_url"`
	IsVideo            bool        `json:"is_video"`
	TakenAtTimestamp   int64       `json:"taken_at_timestamp"`
	EdgeMediaToCaption CaptionEdge `json:"edge_media_to_caption"`
}

// CaptionEdge holds caption nodes
type CaptionEdge struct {
	Edges []struct {
		Node struct {
			Text string `json:"text"`
		} `json:"node"`
	} `json:"edges"`
}

// Caption returns the first caption text, if any
func (n Node) Caption() string {
	if len(n.EdgeMediaToCaption.Edges) == 0 {
		return ""
	}
	return n.EdgeMediaToCaption.Edges[0].Node.Text
}
