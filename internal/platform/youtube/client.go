package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	types "github.com/yungbote/acadboost-backend/internal/domain"
	"github.com/yungbote/acadboost-backend/internal/platform/envutil"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

const (
	defaultBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultMaxResults = 5
	defaultTimeout    = 15 * time.Second
	watchURLPrefix    = "https://www.youtube.com/watch?v="

	missingKeyMessage = "I can't search for videos right now. This might be because the YouTube API key is missing or invalid. However, I can still try to answer your question."
	networkMessage    = "There was a network problem when trying to search YouTube."
	apiErrorPrefix    = "I encountered an error with the YouTube API: "
)

// Client searches YouTube for videos. Search never returns an error; every
// failure comes back as a degraded ToolResult.
type Client interface {
	Search(ctx context.Context, query string) ToolResult
	Enabled() bool
}

type Config struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
	HTTPClient *http.Client
}

type client struct {
	log        *logger.Logger
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// NewClient reads YOUTUBE_API_KEY, YOUTUBE_BASE_URL and
// YOUTUBE_TIMEOUT_SECONDS. A missing key is not an error: the client stays
// usable and reports every search as degraded.
func NewClient(log *logger.Logger) (Client, error) {
	return NewClientWithConfig(log, Config{
		APIKey:  envutil.String("YOUTUBE_API_KEY", ""),
		BaseURL: envutil.String("YOUTUBE_BASE_URL", ""),
		Timeout: envutil.Seconds("YOUTUBE_TIMEOUT_SECONDS", defaultTimeout),
	})
}

func NewClientWithConfig(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > defaultMaxResults {
		maxResults = defaultMaxResults
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	c := &client{
		log:        log.With("service", "YouTubeClient"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: httpClient,
	}
	if c.apiKey == "" {
		c.log.Warn("YOUTUBE_API_KEY not set; video search will report degraded results")
	}
	return c, nil
}

func (c *client) Enabled() bool { return c != nil && c.apiKey != "" }

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *client) Search(ctx context.Context, query string) ToolResult {
	if !c.Enabled() {
		return Degraded(missingKeyMessage)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		c.log.Error("YouTube request build failed", "error", err)
		return Degraded(networkMessage)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("YouTube search transport failure", "query", query, "error", err.Error())
		return Degraded(networkMessage)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status := statusDescription(resp)
		c.log.Warn("YouTube API error",
			"status", resp.StatusCode,
			"status_text", status,
			"body", string(raw),
		)
		return Degraded(apiErrorPrefix + status)
	}
	if readErr != nil {
		c.log.Warn("YouTube search read failure", "error", readErr.Error())
		return Degraded(networkMessage)
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.log.Warn("YouTube search decode failure", "error", err.Error(), "body", string(raw))
		return Degraded(apiErrorPrefix + "unexpected response format")
	}

	videos := make([]types.LinkRecord, 0, c.maxResults)
	for _, item := range decoded.Items {
		if len(videos) >= c.maxResults {
			break
		}
		id := strings.TrimSpace(item.ID.VideoID)
		if id == "" {
			continue
		}
		videos = append(videos, types.LinkRecord{
			Title: item.Snippet.Title,
			URL:   watchURLPrefix + url.QueryEscape(id),
		})
	}
	c.log.Debug("YouTube search ok", "query", query, "results", len(videos))
	return Found(videos)
}

// statusDescription mirrors a fetch statusText: the reason phrase without the code.
func statusDescription(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return text
}
