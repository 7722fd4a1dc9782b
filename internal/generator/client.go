package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/starford/itinera/internal/models"
)

// Client is a Provider and Places backed by the itinerary backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache // nil disables lookup caching
}

// NewClient creates a backend client. A positive cacheTTL caches the
// auxiliary GET lookups for that long.
func NewClient(baseURL string, httpClient *http.Client, cacheTTL time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
	if cacheTTL > 0 {
		c.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// request sends a JSON request and decodes a JSON response into out.
func (c *Client) request(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("generator: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("generator: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generator: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("generator: decode %s: %w", endpoint, err)
	}
	return nil
}

// errorFromResponse prefers the body's "message", then "error", then the
// status line.
func errorFromResponse(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// Generate calls POST /api/generate-itinerary.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	var res Result
	if err := c.request(ctx, http.MethodPost, "/api/generate-itinerary", map[string]string{"prompt": prompt}, &res); err != nil {
		return nil, err
	}
	if res.Itinerary == nil {
		msg := res.Message
		if msg == "" {
			msg = "backend returned no itinerary"
		}
		return nil, errors.New(msg)
	}
	return &res, nil
}

// cached runs fetch once per key while the entry is fresh.
func cached[T any](c *Client, key string, fetch func() (*T, error)) (*T, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(*T), nil
		}
	}
	v, err := fetch()
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.SetDefault(key, v)
	}
	return v, nil
}

// POIDetails calls GET /api/poi/{placeId}.
func (c *Client) POIDetails(ctx context.Context, placeID string) (*POI, error) {
	return cached(c, "poi:"+placeID, func() (*POI, error) {
		var p POI
		err := c.request(ctx, http.MethodGet, "/api/poi/"+url.PathEscape(placeID), nil, &p)
		return &p, err
	})
}

// SearchPlaces calls GET /api/places/search.
func (c *Client) SearchPlaces(ctx context.Context, query, location string) (*SearchResults, error) {
	q := url.Values{"query": {query}, "location": {location}}.Encode()
	return cached(c, "search:"+q, func() (*SearchResults, error) {
		var r SearchResults
		err := c.request(ctx, http.MethodGet, "/api/places/search?"+q, nil, &r)
		return &r, err
	})
}

// Geocode calls GET /api/geocode.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	q := url.Values{"address": {address}}.Encode()
	return cached(c, "geocode:"+q, func() (*GeocodeResult, error) {
		var r GeocodeResult
		err := c.request(ctx, http.MethodGet, "/api/geocode?"+q, nil, &r)
		return &r, err
	})
}

// UpdateRemoteActivity calls PUT /api/itinerary/{id}/activity.
func (c *Client) UpdateRemoteActivity(ctx context.Context, itineraryID string, dayIndex, activityIndex int, patch models.ActivityPatch) error {
	body := struct {
		DayIndex      int                  `json:"dayIndex"`
		ActivityIndex int                  `json:"activityIndex"`
		Updates       models.ActivityPatch `json:"updates"`
	}{dayIndex, activityIndex, patch}
	return c.request(ctx, http.MethodPut, "/api/itinerary/"+url.PathEscape(itineraryID)+"/activity", body, nil)
}

// SaveRemote calls POST /api/itinerary/save.
func (c *Client) SaveRemote(ctx context.Context, it *models.Itinerary) error {
	return c.request(ctx, http.MethodPost, "/api/itinerary/save", map[string]any{"itinerary": it}, nil)
}

// Verify implementations at compile time.
var (
	_ Provider = (*Client)(nil)
	_ Places   = (*Client)(nil)
	_ Provider = (*Mock)(nil)
	_ Places   = (*Mock)(nil)
)
