package instagram

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the base URL for the Instagram web app
	BaseURL = "https://www.instagram.com"

	// GraphBaseURL is the base URL for the Instagram Graph API
	GraphBaseURL = "https://graph.instagram.com"

	// ProfileEndpoint is the endpoint pattern for user profiles
	ProfileEndpoint = "/api/v1/users/web_profile_info/"

	// GraphMediaFields is the field selection requested for each media item
	GraphMediaFields = "id,media_type,media_url,thumbnail_url,permalink,caption,timestamp"

	// DefaultMediaLimit matches the gallery slot count
	DefaultMediaLimit = 6

	// MaxMediaLimit is the largest page the Graph API serves
	MaxMediaLimit = 100

	// WebAppID identifies the Instagram web client to the profile endpoint
	WebAppID = "936619743392459"
)

// GetProfileURL constructs the URL for fetching a user's profile
func GetProfileURL(username string) string {
	return profileURL(BaseURL, username)
}

func profileURL(base, username string) string {
	params := url.Values{}
	params.Set("username", username)
	return fmt.Sprintf("%s%s?%s", base, ProfileEndpoint, params.Encode())
}

// GetGraphMediaURL constructs the Graph API media listing URL
func GetGraphMediaURL(userID, accessToken string, limit int) string {
	return graphMediaURL(GraphBaseURL, userID, accessToken, limit)
}

func graphMediaURL(base, userID, accessToken string, limit int) string {
	if limit <= 0 {
		limit = DefaultMediaLimit
	} else if limit > MaxMediaLimit {
		limit = MaxMediaLimit
	}

	params := url.Values{}
	params.Set("fields", GraphMediaFields)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("access_token", accessToken)

	return fmt.Sprintf("%s/%s/media?%s", base, url.PathEscape(userID), params.Encode())
}

// GetPostURL constructs the URL for a specific post
func GetPostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/", BaseURL, shortcode)
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	username = strings.TrimPrefix(username, "@")
	return strings.TrimRight(username, "/ ")
}

// redactURL hides the access token so URLs can be logged
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
