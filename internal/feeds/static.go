package feeds

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/replan-systems/replan/pkg/types"
)

// Static is an in-memory implementation of all three feed interfaces,
// seedable programmatically or from a YAML data file. Missing demand or
// receipt series resolve to zeros; a missing inventory snapshot is an error
// so bad pair references surface instead of silently planning from zero.
type Static struct {
	mu        sync.RWMutex
	inventory map[string]types.Stock
	demand    map[string][]float64
	stats     map[string]types.DemandStats
	receipts  map[string][]float64
}

// NewStatic creates an empty static feed set.
func NewStatic() *Static {
	return &Static{
		inventory: make(map[string]types.Stock),
		demand:    make(map[string][]float64),
		stats:     make(map[string]types.DemandStats),
		receipts:  make(map[string][]float64),
	}
}

func key(product, location string) string { return product + "@" + location }

// SetStock seeds the inventory snapshot for a pair.
func (s *Static) SetStock(product, location string, stock types.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[key(product, location)] = stock
}

// SetDemand seeds the per-bucket demand series and its statistics for a pair.
func (s *Static) SetDemand(product, location string, series []float64, stats types.DemandStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demand[key(product, location)] = series
	s.stats[key(product, location)] = stats
}

// SetReceipts seeds the per-bucket scheduled receipt series for a pair.
func (s *Static) SetReceipts(product, location string, series []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts[key(product, location)] = series
}

// CurrentStock returns the seeded snapshot for a pair.
func (s *Static) CurrentStock(_ context.Context, product, location string) (types.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stock, ok := s.inventory[key(product, location)]
	if !ok {
		return types.Stock{}, fmt.Errorf("no inventory snapshot for %s@%s", product, location)
	}
	return stock, nil
}

// Demand returns the seeded series resized to the requested bucket count.
func (s *Static) Demand(_ context.Context, product, location string, buckets int) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resize(s.demand[key(product, location)], buckets), nil
}

// Stats returns the seeded demand statistics for a pair.
func (s *Static) Stats(_ context.Context, product, location string) (types.DemandStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats[key(product, location)], nil
}

// ScheduledReceipts returns the seeded series resized to the requested bucket count.
func (s *Static) ScheduledReceipts(_ context.Context, product, location string, buckets int) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resize(s.receipts[key(product, location)], buckets), nil
}

func resize(series []float64, buckets int) []float64 {
	out := make([]float64, buckets)
	copy(out, series)
	return out
}

// dataFile is the YAML shape of a static feed seed file.
type dataFile struct {
	Inventory []struct {
		Product   string  `yaml:"product"`
		Location  string  `yaml:"location"`
		OnHand    float64 `yaml:"onHand"`
		Available float64 `yaml:"available"`
		Committed float64 `yaml:"committed"`
	} `yaml:"inventory"`
	Demand []struct {
		Product  string    `yaml:"product"`
		Location string    `yaml:"location"`
		Series   []float64 `yaml:"series"`
		Mean     float64   `yaml:"mean"`
		StdDev   float64   `yaml:"stdDev"`
	} `yaml:"demand"`
	Receipts []struct {
		Product  string    `yaml:"product"`
		Location string    `yaml:"location"`
		Series   []float64 `yaml:"series"`
	} `yaml:"receipts"`
}

// LoadStatic builds a static feed set from a YAML data file.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feed data file: %w", err)
	}
	var df dataFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("parsing feed data file: %w", err)
	}

	s := NewStatic()
	for _, inv := range df.Inventory {
		s.SetStock(inv.Product, inv.Location, types.Stock{
			OnHand:    inv.OnHand,
			Available: inv.Available,
			Committed: inv.Committed,
		})
	}
	for _, d := range df.Demand {
		s.SetDemand(d.Product, d.Location, d.Series, types.DemandStats{Mean: d.Mean, StdDev: d.StdDev})
	}
	for _, r := range df.Receipts {
		s.SetReceipts(r.Product, r.Location, r.Series)
	}
	return s, nil
}
