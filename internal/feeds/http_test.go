package feeds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replan-systems/replan/pkg/types"
)

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "WIDGET-A", r.URL.Query().Get("product"))
		_ = json.NewEncoder(w).Encode(types.Stock{OnHand: 500, Available: 450, Committed: 50})
	})
	mux.HandleFunc("/demand", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]float64{100, 120})
	})
	mux.HandleFunc("/demand/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.DemandStats{Mean: 110, StdDev: 14.1})
	})
	mux.HandleFunc("/receipts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]float64{0, 60})
	})
	return httptest.NewServer(mux)
}

func TestHTTPClientFeeds(t *testing.T) {
	ts := newFeedServer(t)
	defer ts.Close()
	ctx := context.Background()

	c := NewHTTPClient(ts.URL)

	stock, err := c.CurrentStock(ctx, "WIDGET-A", "DC-EAST")
	require.NoError(t, err)
	assert.Equal(t, 450.0, stock.Available)

	stats, err := c.Stats(ctx, "WIDGET-A", "DC-EAST")
	require.NoError(t, err)
	assert.Equal(t, 110.0, stats.Mean)
}

func TestHTTPClientSeriesPadding(t *testing.T) {
	ts := newFeedServer(t)
	defer ts.Close()
	ctx := context.Background()

	c := NewHTTPClient(ts.URL)

	// server returns two buckets; padded out to four
	demand, err := c.Demand(ctx, "WIDGET-A", "DC-EAST", 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 120, 0, 0}, demand)

	// truncated down to one
	demand, err = c.Demand(ctx, "WIDGET-A", "DC-EAST", 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, demand)

	receipts, err := c.ScheduledReceipts(ctx, "WIDGET-A", "DC-EAST", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 60, 0}, receipts)
}

func TestHTTPClientServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown pair", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL)
	_, err := c.CurrentStock(context.Background(), "NOPE", "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory feed")
}
