package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "igfeed/pkg/errors"
	"igfeed/pkg/logger"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client is the shared HTTP layer for the Graph and web clients and for
// image downloads.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a new HTTP client with the given per-request timeout
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// SetHTTPClient replaces the underlying transport client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// doRequest performs a GET with the configured headers and rejects non-2xx responses.
// The caller owns the returned body.
func (c *Client) doRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	safeURL := redactURL(rawURL)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.WithError(err).ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      safeURL,
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	logger.LogRequest(c.logger, req.Method, safeURL, resp.StatusCode, duration)

	if err := checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkResponseStatus maps a non-2xx response to a typed error
func checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var message string
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		message = "authentication required"
	case http.StatusNotFound:
		message = "resource not found"
	case http.StatusTooManyRequests:
		message = "rate limit exceeded"
	default:
		message = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	}

	return &errs.Error{
		Type:    errs.TypeFromStatus(resp.StatusCode),
		Message: message,
		Code:    resp.StatusCode,
	}
}

// getJSON performs a GET request and decodes the JSON response into target
func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	resp, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.WithError(err).ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          redactURL(rawURL),
			"body_preview": preview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// Download streams the body at url into w and returns the number of bytes copied
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to download image: %v", err),
			Code:    resp.StatusCode,
		}
	}
	if n == 0 {
		return 0, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "empty image body",
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("image downloaded", map[string]interface{}{
		"url":   redactURL(url),
		"bytes": n,
	})
	return n, nil
}

// GraphClient talks to the Instagram Graph API
type GraphClient struct {
	*Client
	baseURL string
}

// NewGraphClient creates a Graph API client
func NewGraphClient(timeout time.Duration, log logger.Logger) *GraphClient {
	c := NewClient(timeout, log)
	c.SetHeader("Accept", "application/json")
	return &GraphClient{Client: c, baseURL: GraphBaseURL}
}

// SetBaseURL points the client at a different API host
func (g *GraphClient) SetBaseURL(base string) {
	g.baseURL = base
}

// FetchMedia lists the most recent media of a user, newest first
func (g *GraphClient) FetchMedia(ctx context.Context, userID, accessToken string, limit int) (*MediaResponse, error) {
	if userID == "" || accessToken == "" {
		return nil, errs.ErrNotConfigured
	}

	var response MediaResponse
	if err := g.getJSON(ctx, graphMediaURL(g.baseURL, userID, accessToken, limit), &response); err != nil {
		return nil, err
	}

	g.logger.DebugWithFields("fetched media listing", map[string]interface{}{
		"user_id": userID,
		"items":   len(response.Data),
	})
	return &response, nil
}

// WebClient reads the public profile JSON served to the Instagram web app
type WebClient struct {
	*Client
	baseURL string
}

// NewWebClient creates a client for the public web profile endpoint
func NewWebClient(timeout time.Duration, userAgent string, log logger.Logger) *WebClient {
	c := NewClient(timeout, log)
	if userAgent != "" {
		c.SetHeader("User-Agent", userAgent)
	}
	c.SetHeaders(map[string]string{
		"Accept":           "*/*",
		"X-IG-App-ID":      WebAppID,
		"X-Requested-With": "XMLHttpRequest",
		"Sec-Fetch-Site":   "same-origin",
		"Sec-Fetch-Mode":   "cors",
	})
	return &WebClient{Client: c, baseURL: BaseURL}
}

// SetBaseURL points the client at a different web host
func (w *WebClient) SetBaseURL(base string) {
	w.baseURL = base
}

// FetchProfile fetches the public profile of username including its latest timeline media
func (w *WebClient) FetchProfile(ctx context.Context, username string) (*ProfileResponse, error) {
	username = SanitizeUsername(username)
	if !IsValidUsername(username) {
		return nil, fmt.Errorf("invalid username %q: %w", username, errs.ErrNotConfigured)
	}

	var response ProfileResponse
	if err := w.getJSON(ctx, profileURL(w.baseURL, username), &response); err != nil {
		return nil, err
	}

	if response.RequiresToLogin {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "Instagram requires authentication to view this profile",
			Code:    http.StatusUnauthorized,
		}
	}

	return &response, nil
}
