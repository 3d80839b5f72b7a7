// Package places is a client for the Google Places Text Search web service.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eatery/models"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// NewClient builds a client authenticated with apiKey. A nil httpClient means
// http.DefaultClient; an empty baseURL means DefaultBaseURL.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  "eatery/1.0",
	}
}

// Request is a text query centred on Location within Radius meters.
type Request struct {
	Query    string
	Location models.Coordinates
	Radius   float64
	OpenNow  bool
}

// StatusError is returned when the provider answers with a status other than
// OK or ZERO_RESULTS.
type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("places: status %s", e.Status)
	}
	return fmt.Sprintf("places: status %s: %s", e.Status, e.Message)
}

// HTTPError is returned for non-200 responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("places: http %d: %s", e.StatusCode, e.Body)
}

// TextSearch fetches the first page of results for req.
func (c *Client) TextSearch(ctx context.Context, req Request) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("location", req.Location.String())
	params.Set("radius", strconv.FormatFloat(req.Radius, 'f', -1, 64))
	if req.OpenNow {
		params.Set("opennow", "true")
	}

	endpoint := fmt.Sprintf("%s/textsearch/json", c.baseURL)
	log.Printf("places request: %s query=%q location=%s", endpoint, req.Query, req.Location)
	params.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("places: text search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("places: decode response: %w", err)
	}

	switch out.Status {
	case StatusOK, StatusZeroResults:
		return &out, nil
	default:
		return nil, &StatusError{Status: out.Status, Message: out.ErrorMessage}
	}
}
