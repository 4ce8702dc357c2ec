// Package unify fans a search query out to every registered source and
// folds the results into one deduplicated, ranked list.
package unify

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/finprospect/internal/heuristics"
	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/source"
)

// Defaults for cross-source searches.
const (
	DefaultTimeout    = 20 * time.Second
	DefaultMaxResults = 50
)

// Hit is one deduplicated search result with its derived ownership estimate.
type Hit struct {
	model.SourceRecord
	Rank           int     `json:"rank"`
	HasOwnProducts bool    `json:"has_own_products"`
	Confidence     float64 `json:"confidence"`
}

// Result is the unified outcome of a cross-source search. Failed names any
// source that errored; the hits still cover every source that answered.
type Result struct {
	Hits        []Hit    `json:"hits"`
	Contributed []string `json:"contributed"`
	Failed      []string `json:"failed,omitempty"`
}

// Degraded reports whether some sources failed to answer.
func (r *Result) Degraded() bool {
	return len(r.Failed) > 0
}

// Searcher runs cross-source searches against a source registry.
type Searcher struct {
	registry   *source.Registry
	timeout    time.Duration
	maxResults int
}

// NewSearcher creates a searcher with the default timeout and result cap.
func NewSearcher(registry *source.Registry) *Searcher {
	return &Searcher{
		registry:   registry,
		timeout:    DefaultTimeout,
		maxResults: DefaultMaxResults,
	}
}

// WithLimits overrides the timeout and result cap. Zero values keep the
// current setting.
func (s *Searcher) WithLimits(timeout time.Duration, maxResults int) *Searcher {
	if timeout > 0 {
		s.timeout = timeout
	}
	if maxResults > 0 {
		s.maxResults = maxResults
	}
	return s
}

// SearchAll queries every source in parallel under a shared timeout.
// Partial failure degrades the result, it never fails the whole query;
// only all-sources-failed surfaces as an error. Duplicates (same business
// id from several sources) keep the record from the higher-ranked source.
// Hits are sorted by (reliability rank, confidence desc) and capped.
func (s *Searcher) SearchAll(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	clients := s.registry.Clients()
	perSource := make([][]model.SourceRecord, len(clients))
	errs := make([]error, len(clients))

	g, gctx := errgroup.WithContext(ctx)
	for i, client := range clients {
		g.Go(func() error {
			records, err := client.Search(gctx, query)
			if err != nil {
				errs[i] = err
				zap.L().Warn("unify: source search failed",
					zap.String("source", client.Name()),
					zap.String("query", query),
					zap.Error(err),
				)
				return nil
			}
			perSource[i] = records
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{}
	// byID keeps the first (highest-rank) record per business id; clients
	// are iterated in rank order.
	byID := make(map[string]Hit)
	var order []string
	for i, client := range clients {
		if errs[i] != nil {
			result.Failed = append(result.Failed, client.Name())
			continue
		}
		result.Contributed = append(result.Contributed, client.Name())
		for _, rec := range perSource[i] {
			if rec.BusinessID == "" {
				continue
			}
			if _, seen := byID[rec.BusinessID]; seen {
				continue
			}
			owns, confidence := heuristics.EstimateProductOwnership(rec.Name, rec.IndustryText)
			byID[rec.BusinessID] = Hit{
				SourceRecord:   rec,
				Rank:           client.Rank(),
				HasOwnProducts: owns,
				Confidence:     confidence,
			}
			order = append(order, rec.BusinessID)
		}
	}

	if len(result.Contributed) == 0 {
		return nil, eris.Errorf("unify: all sources failed for query %q", query)
	}

	for _, id := range order {
		result.Hits = append(result.Hits, byID[id])
	}
	sort.SliceStable(result.Hits, func(i, j int) bool {
		if result.Hits[i].Rank != result.Hits[j].Rank {
			return result.Hits[i].Rank < result.Hits[j].Rank
		}
		return result.Hits[i].Confidence > result.Hits[j].Confidence
	})
	if len(result.Hits) > s.maxResults {
		result.Hits = result.Hits[:s.maxResults]
	}

	return result, nil
}
