package feeds

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

	"github.com/sony/gobreaker"

	"github.com/replan-systems/replan/pkg/types"
)

const httpFeedTimeout = 10 * time.Second

// HTTPClient reads all three feeds from a remote inventory/forecasting
// service. All requests share one circuit breaker: once the service starts
// failing, remaining pairs fail fast as pair-level errors instead of each
// waiting out a timeout.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPClient creates a feed client for the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: httpFeedTimeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "feeds",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// CurrentStock fetches the inventory snapshot for a pair.
func (c *HTTPClient) CurrentStock(ctx context.Context, product, location string) (types.Stock, error) {
	var stock types.Stock
	if err := c.getJSON(ctx, "/inventory", product, location, 0, &stock); err != nil {
		return types.Stock{}, fmt.Errorf("inventory feed: %w", err)
	}
	return stock, nil
}

// Demand fetches the per-bucket gross requirement series for a pair.
func (c *HTTPClient) Demand(ctx context.Context, product, location string, buckets int) ([]float64, error) {
	var series []float64
	if err := c.getJSON(ctx, "/demand", product, location, buckets, &series); err != nil {
		return nil, fmt.Errorf("demand feed: %w", err)
	}
	if len(series) < buckets {
		padded := make([]float64, buckets)
		copy(padded, series)
		series = padded
	}
	return series[:buckets], nil
}

// Stats fetches the demand statistics for a pair.
func (c *HTTPClient) Stats(ctx context.Context, product, location string) (types.DemandStats, error) {
	var stats types.DemandStats
	if err := c.getJSON(ctx, "/demand/stats", product, location, 0, &stats); err != nil {
		return types.DemandStats{}, fmt.Errorf("demand stats feed: %w", err)
	}
	return stats, nil
}

// ScheduledReceipts fetches the per-bucket open supply series for a pair.
func (c *HTTPClient) ScheduledReceipts(ctx context.Context, product, location string, buckets int) ([]float64, error) {
	var series []float64
	if err := c.getJSON(ctx, "/receipts", product, location, buckets, &series); err != nil {
		return nil, fmt.Errorf("receipts feed: %w", err)
	}
	if len(series) < buckets {
		padded := make([]float64, buckets)
		copy(padded, series)
		series = padded
	}
	return series[:buckets], nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path, product, location string, buckets int, out interface{}) error {
	q := url.Values{}
	q.Set("product", product)
	q.Set("location", location)
	if buckets > 0 {
		q.Set("buckets", strconv.Itoa(buckets))
	}
	reqURL := c.baseURL + path + "?" + q.Encode()

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
