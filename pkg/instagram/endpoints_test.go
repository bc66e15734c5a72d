package instagram

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfileURL(t *testing.T) {
	assert.Equal(t,
		fmt.Sprintf("%s%s?username=testuser", BaseURL, ProfileEndpoint),
		GetProfileURL("testuser"))
}

func TestGetGraphMediaURL(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		expectedLimit string
	}{
		{name: "default limit when zero", limit: 0, expectedLimit: "6"},
		{name: "negative limit uses default", limit: -5, expectedLimit: "6"},
		{name: "custom limit", limit: 25, expectedLimit: "25"},
		{name: "limit exceeds maximum", limit: 500, expectedLimit: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := url.Parse(GetGraphMediaURL("17841400000", "tok", tt.limit))
			require.NoError(t, err)

			assert.Equal(t, "graph.instagram.com", parsed.Host)
			assert.Equal(t, "/17841400000/media", parsed.Path)
			assert.Equal(t, GraphMediaFields, parsed.Query().Get("fields"))
			assert.Equal(t, tt.expectedLimit, parsed.Query().Get("limit"))
			assert.Equal(t, "tok", parsed.Query().Get("access_token"))
		})
	}
}

func TestGetPostURL(t *testing.T) {
	assert.Equal(t, fmt.Sprintf("%s/p/ABC123xyz/", BaseURL), GetPostURL("ABC123xyz"))
	assert.Equal(t, "", GetPostURL(""))
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"cedarandoakboutique", true},
		{"user.name_1", true},
		{"", false},
		{"has space", false},
		{"dash-name", false},
		{"a123456789012345678901234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUsername(tt.username))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "testuser", SanitizeUsername("  @testuser/ "))
	assert.Equal(t, "testuser", SanitizeUsername("testuser"))
}

func TestRedactURL(t *testing.T) {
	redacted := redactURL(GetGraphMediaURL("1", "secret-token", 6))
	assert.NotContains(t, redacted, "secret-token")
	assert.Contains(t, redacted, "access_token=REDACTED")

	plain := "https://example.com/a.jpg"
	assert.Equal(t, plain, redactURL(plain))
}
