// Package routing is a client for the Google Distance Matrix web service.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"eatery/models"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/distancematrix"

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

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

type Request struct {
	Origins      []models.Coordinates
	Destinations []models.Coordinates
	Mode         Mode
	Units        Units
}

type StatusError struct {
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("routing: status %s", e.Status)
	}
	return fmt.Sprintf("routing: status %s: %s", e.Status, e.Message)
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("routing: http %d: %s", e.StatusCode, e.Body)
}

// DistanceMatrix asks for travel distance and duration from every origin to
// every destination in a single request.
func (c *Client) DistanceMatrix(ctx context.Context, req Request) (*MatrixResponse, error) {
	if len(req.Origins) == 0 || len(req.Destinations) == 0 {
		return nil, fmt.Errorf("routing: origins and destinations are required")
	}

	params := url.Values{}
	params.Set("origins", joinCoordinates(req.Origins))
	params.Set("destinations", joinCoordinates(req.Destinations))
	if req.Mode != "" {
		params.Set("mode", string(req.Mode))
	}
	if req.Units != "" {
		params.Set("units", string(req.Units))
	}

	endpoint := fmt.Sprintf("%s/json", c.baseURL)
	log.Printf("routing request: %s origins=%d destinations=%d mode=%s", endpoint, len(req.Origins), len(req.Destinations), req.Mode)
	params.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("routing: distance matrix: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out MatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("routing: decode response: %w", err)
	}
	if out.Status != StatusOK {
		return nil, &StatusError{Status: out.Status, Message: out.ErrorMessage}
	}
	return &out, nil
}

func joinCoordinates(coords []models.Coordinates) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.String()
	}
	return strings.Join(parts, "|")
}
