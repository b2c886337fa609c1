package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

var ErrDisabled = errors.New("ratings client is not configured")

const defaultBaseURL = "https://www.omdbapi.com/"

// TitleRating is an external rating aggregated for one title.
type TitleRating struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
	Max    float64 `json:"max"`
}

// Client fetches external ratings for catalog titles. It caches results
// in memory for a TTL and throttles outbound requests. Without an API
// key every lookup returns ErrDisabled.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	cacheMu  sync.RWMutex
	cache    map[string]*cacheEntry
	cacheTTL time.Duration

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

type cacheEntry struct {
	ratings   []TitleRating
	fetchedAt time.Time
}

// NewClient builds a ratings client. cacheTTLHours below 1 falls back to
// 24 hours.
func NewClient(apiKey string, cacheTTLHours int) *Client {
	if cacheTTLHours <= 0 {
		cacheTTLHours = 24
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		cache:       make(map[string]*cacheEntry),
		cacheTTL:    time.Duration(cacheTTLHours) * time.Hour,
		minInterval: 100 * time.Millisecond,
	}
}

// IsEnabled reports whether lookups will reach the upstream API.
func (c *Client) IsEnabled() bool {
	return c.apiKey != ""
}

// lookupResponse mirrors the OMDb title payload; only rating fields are
// decoded.
type lookupResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDBRating string `json:"imdbRating"`
	Metascore  string `json:"Metascore"`
	Ratings    []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
}

// GetRatings looks up external ratings by title and optional year. The
// empty slice is a valid answer for a title the upstream does not know.
func (c *Client) GetRatings(ctx context.Context, title string, year int) ([]TitleRating, error) {
	if !c.IsEnabled() {
		return nil, ErrDisabled
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is required")
	}

	cacheKey := strings.ToLower(title) + ":" + strconv.Itoa(year)
	c.cacheMu.RLock()
	if entry, ok := c.cache[cacheKey]; ok && time.Since(entry.fetchedAt) < c.cacheTTL {
		c.cacheMu.RUnlock()
		return entry.ratings, nil
	}
	c.cacheMu.RUnlock()

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}

	var result lookupResponse
	err := retry.Do(
		func() error {
			return c.fetch(ctx, params, &result)
		},
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var retryable *retryableError
			return errors.As(err, &retryable)
		}),
	)
	if err != nil {
		return nil, err
	}

	ratings := parseRatings(result)

	c.cacheMu.Lock()
	c.cache[cacheKey] = &cacheEntry{ratings: ratings, fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	log.Printf("[ratings] fetched %d ratings for %q", len(ratings), title)

	return ratings, nil
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) fetch(ctx context.Context, params url.Values, out *lookupResponse) error {
	c.throttleMu.Lock()
	since := time.Since(c.lastRequest)
	if since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
	c.throttleMu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &retryableError{fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &retryableError{fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// parseRatings converts the upstream's string ratings ("8.4", "91%",
// "74/100") into numeric values with their scale.
func parseRatings(result lookupResponse) []TitleRating {
	ratings := []TitleRating{}
	if !strings.EqualFold(result.Response, "True") {
		return ratings
	}

	if value, err := strconv.ParseFloat(result.IMDBRating, 64); err == nil && value > 0 {
		ratings = append(ratings, TitleRating{Source: "imdb", Value: value, Max: 10})
	}
	if value, err := strconv.ParseFloat(result.Metascore, 64); err == nil && value > 0 {
		ratings = append(ratings, TitleRating{Source: "metacritic", Value: value, Max: 100})
	}

	for _, r := range result.Ratings {
		if r.Source != "Rotten Tomatoes" {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimSpace(r.Value), "%")
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			ratings = append(ratings, TitleRating{Source: "tomatoes", Value: value, Max: 100})
		}
	}

	return ratings
}
