package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pricedash/domain/housing"
	"pricedash/internal"
	"pricedash/internal/errors"
	"pricedash/ports"
)

// Client calls the house-price prediction backend. No retries, no caching.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *internal.Logger
}

var _ ports.HousePriceAPI = (*Client)(nil)

// NewClient creates a backend client
func NewClient(config Config, logger *internal.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultConfig().BaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid API base URL %q", config.BaseURL))
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: config.UserAgent,
		http:      httpClient,
		logger:    logger,
	}, nil
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one JSON request and returns the raw body of a 2xx answer.
func (c *Client) do(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("[API] %s %s failed: %v", method, endpoint, err)
		return nil, errors.NetworkError(err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NetworkError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := detailMessage(respRaw)
		c.logger.Warn("[API] %s %s returned %d: %s", method, endpoint, resp.StatusCode, msg)
		return nil, errors.APIError(resp.StatusCode, msg)
	}

	c.logger.Debug("[API] %s %s -> %d (%d bytes)", method, endpoint, resp.StatusCode, len(respRaw))
	return respRaw, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return decode(raw, endpoint, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	raw, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	return decode(raw, endpoint, out)
}

func decode(raw []byte, endpoint string, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.WithCode(errors.CodeExternalService, fmt.Errorf("decode %s: %w", endpoint, err))
	}
	return nil
}

// Info returns the backend banner
func (c *Client) Info(ctx context.Context) (*housing.APIInfo, error) {
	var info housing.APIInfo
	if err := c.getJSON(ctx, "/", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Health checks whether the backend has a model loaded
func (c *Client) Health(ctx context.Context) (*housing.HealthStatus, error) {
	var status housing.HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ModelInfo fetches model type, parameters and feature importance
func (c *Client) ModelInfo(ctx context.Context) (*housing.ModelInfo, error) {
	var info housing.ModelInfo
	if err := c.getJSON(ctx, "/model/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Predict prices a single property
func (c *Client) Predict(ctx context.Context, features housing.Features) (housing.PredictionResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/predict", features)
	if err != nil {
		return housing.PredictionResult{}, err
	}
	return housing.NewPredictionResult(raw), nil
}

// PredictBatch prices several properties in one call
func (c *Client) PredictBatch(ctx context.Context, batch []housing.Features) (housing.PredictionResult, error) {
	if batch == nil {
		batch = []housing.Features{}
	}
	raw, err := c.do(ctx, http.MethodPost, "/predict/batch", batch)
	if err != nil {
		return housing.PredictionResult{}, err
	}
	return housing.NewPredictionResult(raw), nil
}

// StatsOverview fetches dataset-wide price statistics
func (c *Client) StatsOverview(ctx context.Context) (*housing.StatsOverview, error) {
	var overview housing.StatsOverview
	if err := c.getJSON(ctx, "/api/stats/overview", &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// NeighborhoodStats fetches per-neighborhood statistics
func (c *Client) NeighborhoodStats(ctx context.Context) ([]housing.NeighborhoodStats, error) {
	var stats []housing.NeighborhoodStats
	if err := c.getJSON(ctx, "/api/stats/neighborhoods", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// PriceDistribution fetches a sale price histogram; bins <= 0 means 20
func (c *Client) PriceDistribution(ctx context.Context, bins int) (*housing.PriceDistribution, error) {
	if bins <= 0 {
		bins = 20
	}
	var dist housing.PriceDistribution
	if err := c.getJSON(ctx, "/api/stats/price-distribution?bins="+strconv.Itoa(bins), &dist); err != nil {
		return nil, err
	}
	return &dist, nil
}

// ModelComparison fetches candidate model scores, best first
func (c *Client) ModelComparison(ctx context.Context) ([]housing.ModelComparison, error) {
	var models []housing.ModelComparison
	if err := c.getJSON(ctx, "/model/comparison", &models); err != nil {
		return nil, err
	}
	return models, nil
}

// ParseDescription extracts form fields from a free-text description
func (c *Client) ParseDescription(ctx context.Context, description string) (housing.Features, error) {
	var fields housing.Features
	if err := c.postJSON(ctx, "/api/model/parse-description", housing.DescriptionRequest{Description: description}, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Defaults fetches typical values for every model field
func (c *Client) Defaults(ctx context.Context) (housing.Features, error) {
	var fields housing.Features
	if err := c.getJSON(ctx, "/api/stats/defaults", &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
