// Package source implements the external registry clients. Each client
// normalizes one upstream API into the shared model.SourceRecord shape and
// is registered with a fixed reliability rank. Adding a source means
// implementing Client and registering it — nothing else changes.
package source

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/finprospect/internal/model"
)

// Source names, used as provenance tags on merged fields.
const (
	SourcePRH    = "prh"    // Finnish business information system (primary registry)
	SourceVero   = "vero"   // tax administration export/financial data
	SourceStatFi = "statfi" // Statistics Finland
	SourceNordic = "nordic" // Nordic company aggregator
)

// Fixed reliability ranks. Lower is more reliable; the rank resolves field
// conflicts when two sources report the same company.
const (
	RankPRH    = 1
	RankVero   = 2
	RankStatFi = 3
	RankNordic = 4
)

// ErrNotFound is returned by fetch helpers when the upstream has no record
// for the business id. Clients translate it into a nil record.
var ErrNotFound = eris.New("source: not found")

// Client is one external data source. Implementations are stateless and
// independently swappable. FetchByID returns (nil, nil) when the source has
// no record; a non-nil error means the source was unavailable for this call
// and never carries partial data.
type Client interface {
	Name() string
	Rank() int
	FetchByID(ctx context.Context, businessID string) (*model.SourceRecord, error)
	Search(ctx context.Context, query string) ([]model.SourceRecord, error)
}

// Registry holds the active clients in reliability rank order.
type Registry struct {
	clients []Client
}

// NewRegistry creates a registry. Clients are kept sorted by rank so merge
// precedence follows registration reliability, not registration order.
func NewRegistry(clients ...Client) *Registry {
	sorted := make([]Client, len(clients))
	copy(sorted, clients)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank() < sorted[j].Rank()
	})
	return &Registry{clients: sorted}
}

// Clients returns the clients in rank order (most reliable first).
func (r *Registry) Clients() []Client {
	return r.clients
}

// Names returns the client names in rank order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.clients))
	for i, c := range r.clients {
		names[i] = c.Name()
	}
	return names
}

// RankOf returns the reliability rank for a source name, or a rank below
// every registered client when the name is unknown.
func (r *Registry) RankOf(name string) int {
	for _, c := range r.clients {
		if c.Name() == name {
			return c.Rank()
		}
	}
	return len(r.clients) + 100
}
