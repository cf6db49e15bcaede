package strategy

import (
	"log"

	"FolioScraper/internal/model"
	"FolioScraper/internal/page"
)

// Strategy is one self-contained algorithm for extracting raw records from a
// document set. Strategies only read; they never mutate the page.
type Strategy interface {
	Name() string
	Extract(docs []page.Document) []model.RawRecord
}

// DefaultOrder is the chain used for unrecognized brokers.
var DefaultOrder = []string{"grid", "encoded", "table", "card"}

// Registry holds the strategy chain for each known broker.
type Registry struct {
	byName map[string]Strategy
	chains map[model.Broker][]Strategy
	def    []Strategy
}

// NewRegistry builds a registry from the available strategies and per-broker
// order lists. Unknown strategy names in an order are skipped with a warning
// so a stale config entry cannot take the pipeline down.
func NewRegistry(all []Strategy, orders map[model.Broker][]string) *Registry {
	r := &Registry{
		byName: make(map[string]Strategy),
		chains: make(map[model.Broker][]Strategy),
	}
	for _, s := range all {
		r.byName[s.Name()] = s
	}
	r.def = r.resolve(DefaultOrder)
	for b, names := range orders {
		r.chains[b] = r.resolve(names)
	}
	return r
}

func (r *Registry) resolve(names []string) []Strategy {
	chain := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, ok := r.byName[name]
		if !ok {
			log.Printf("[WARN] unknown strategy %q in chain, skipping", name)
			continue
		}
		chain = append(chain, s)
	}
	return chain
}

// ChainFor returns the ordered strategy chain for a broker, falling back to
// the default order.
func (r *Registry) ChainFor(b model.Broker) []Strategy {
	if chain, ok := r.chains[b]; ok && len(chain) > 0 {
		return chain
	}
	return r.def
}
