package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/pokedex/internal/config"
	"github.com/smallbiznis/pokedex/internal/observability/tracing"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// PageResponse is the part of the PokeAPI listing the seeder reads.
type PageResponse struct {
	Count   int      `json:"count"`
	Next    *string  `json:"next"`
	Results []Result `json:"results"`
}

type Result struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Client fetches the species listing from PokeAPI.
type Client struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	endpoint := strings.TrimSpace(cfg.PokeAPI.URL)
	if endpoint == "" {
		endpoint = config.DefaultPokeAPIURL
	}
	timeout := cfg.PokeAPI.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		client:   tracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
		log:      log.Named("pokeapi.client"),
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

// FetchPage downloads the configured listing page in one request.
func (c *Client) FetchPage(ctx context.Context) (*PageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build pokeapi request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &APIError{Endpoint: c.endpoint, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("pokeapi page fetched",
		zap.String("endpoint", c.endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var page PageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &APIError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return &page, nil
}

// OrdinalFromURL returns the species number embedded in a PokeAPI resource
// url such as https://pokeapi.co/api/v2/pokemon/25/, taken from the second to
// last path segment.
func OrdinalFromURL(raw string) (int, error) {
	segments := strings.Split(raw, "/")
	if len(segments) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResourceURL, raw)
	}
	no, err := strconv.Atoi(segments[len(segments)-2])
	if err != nil || no < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResourceURL, raw)
	}
	return no, nil
}
