package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Settings describes one configured filter.
type Settings struct {
	Enabled  bool
	Settings map[string]any
}

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// executionOrder lists cheap checks first. Filters not listed run after
// these in name order.
var executionOrder = []string{
	"format_filter",
	"size_limit_filter",
	"duration_limit_filter",
	DuplicateTrackFilterName,
}

func orderedNames() []string {
	names := make([]string, 0, len(registry))
	seen := make(map[string]bool, len(registry))
	for _, name := range executionOrder {
		if _, ok := registry[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	for _, name := range Names() {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// BuildChain creates a chain of the enabled filters.
// The duplicate track filter is created with finder since it needs catalog access.
func BuildChain(configs map[string]Settings, finder SongFinder) (*Chain, error) {
	chain := NewChain()

	for _, name := range orderedNames() {
		cfg, ok := configs[name]
		if !ok || !cfg.Enabled {
			continue
		}

		var f Filter
		if name == DuplicateTrackFilterName {
			f = NewDuplicateTrackFilter(finder)
		} else {
			f = registry[name]()
		}

		if err := f.ValidateConfig(cfg.Settings); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		chain.Add(f)
		zlog.Info().Msgf("filter: enabled: name=%s", name)
	}

	for name, cfg := range configs {
		if _, ok := registry[name]; !ok && cfg.Enabled {
			return nil, errors.Newf("unknown filter: %s", name)
		}
	}

	return chain, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the upload.
func (c *Chain) Execute(ctx context.Context, u Upload) Result {
	for _, f := range c.filters {
		result := f.Check(ctx, u)
		if !result.Accepted {
			zlog.Debug().Msgf("filter: rejected: filter=%s code=%s file=%s", f.Name(), result.Code, u.FileName)
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
