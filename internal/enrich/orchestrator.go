package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/finprospect/internal/heuristics"
	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/scoring"
	"github.com/sells-group/finprospect/internal/source"
	"github.com/sells-group/finprospect/internal/store"
)

// State is the enrichment workflow state for one company.
type State string

const (
	StatePending   State = "pending"
	StateFetching  State = "fetching"
	StateMerging   State = "merging"
	StateScoring   State = "scoring"
	StatePersisted State = "persisted"
	StateFailed    State = "failed"
)

// SourceOutcome records how one source behaved during a run.
type SourceOutcome struct {
	Source  string `json:"source"`
	Fetched bool   `json:"fetched"` // a record was returned
	Error   string `json:"error,omitempty"`
}

// Result is the outcome of one enrichment run.
type Result struct {
	RunID      string          `json:"run_id"`
	BusinessID string          `json:"business_id"`
	State      State           `json:"state"`
	Created    bool            `json:"created"`
	Company    *model.Company  `json:"company,omitempty"`
	Outcomes   []SourceOutcome `json:"outcomes"`
}

// Degraded reports whether any source failed while others succeeded.
func (r *Result) Degraded() bool {
	for _, o := range r.Outcomes {
		if o.Error != "" {
			return true
		}
	}
	return false
}

// Orchestrator runs the enrichment workflow: fetch from every registered
// source, merge by precedence, score, persist.
type Orchestrator struct {
	registry *source.Registry
	store    store.Store
	now      func() time.Time // injectable for testing
}

// New creates an orchestrator.
func New(registry *source.Registry, st store.Store) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		store:    st,
		now:      time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (o *Orchestrator) WithNow(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Enrich runs the full workflow for one business id. Individual source
// failures are absorbed and recorded; the run fails when no source produced
// a record, or when the persistence write fails. Without new data nothing is
// merged, re-scored or written, so a total source outage never touches a
// stored aggregate. Re-running with identical source responses converges to
// the same aggregate.
func (o *Orchestrator) Enrich(ctx context.Context, businessID string) (*Result, error) {
	if !model.ValidBusinessID(businessID) {
		return nil, eris.Errorf("enrich: invalid business id %q", businessID)
	}

	result := &Result{
		RunID:      uuid.New().String(),
		BusinessID: businessID,
		State:      StatePending,
	}

	existing, err := o.store.GetCompany(ctx, businessID)
	if err != nil {
		result.State = StateFailed
		return result, eris.Wrapf(err, "enrich: load company %s", businessID)
	}

	// Fetch from every source concurrently. Merge waits for all of them to
	// settle; a failed source contributes a nil record, never partial data.
	result.State = StateFetching
	clients := o.registry.Clients()
	records := make([]*model.SourceRecord, len(clients))
	outcomes := make([]SourceOutcome, len(clients))

	g, gctx := errgroup.WithContext(ctx)
	for i, client := range clients {
		g.Go(func() error {
			rec, err := client.FetchByID(gctx, businessID)
			outcomes[i] = SourceOutcome{Source: client.Name(), Fetched: rec != nil}
			if err != nil {
				outcomes[i].Error = err.Error()
				zap.L().Warn("enrich: source unavailable",
					zap.String("business_id", businessID),
					zap.String("source", client.Name()),
					zap.Error(err),
				)
				return nil // absorbed: one source never fails the run
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait() // goroutines only return nil; outcomes carry the errors

	result.Outcomes = outcomes
	if ctx.Err() != nil {
		// Cancelled mid-fetch: discard partial results, write nothing.
		result.State = StateFailed
		return result, eris.Wrap(ctx.Err(), "enrich: cancelled")
	}

	anyRecord := false
	for _, rec := range records {
		if rec != nil {
			anyRecord = true
			break
		}
	}
	if !anyRecord {
		result.State = StateFailed
		return result, eris.Errorf("enrich: no source returned data for %s (attempted: %s)",
			businessID, strings.Join(o.registry.Names(), ", "))
	}

	result.State = StateMerging
	company := existing
	if company == nil {
		company = &model.Company{BusinessID: businessID}
		result.Created = true
	}
	industryText := Merge(company, records)
	if industryText != "" {
		company.Industry = heuristics.ClassifyIndustry(industryText)
	} else if company.Industry == "" {
		company.Industry = heuristics.DefaultIndustryLabel
	}

	result.State = StateScoring
	now := o.now().UTC()
	analysis := scoring.Score(scoring.Input{
		IndustryText:  industryText,
		Turnover:      company.Turnover,
		EmployeeCount: company.EmployeeCount,
		ExportValue:   latestExportValue(records),
		Financials:    company.Financials,
	}, now)
	company.Analysis = analysis
	// Derived together from the same analysis, by invariant.
	company.ProductConfidenceScore = analysis.OverallScore
	company.HasOwnProducts = scoring.HasOwnProducts(analysis.OverallScore)
	markMainProduct(company)
	company.LastVerified = &now

	if err := o.store.UpsertCompany(ctx, company); err != nil {
		result.State = StateFailed
		return result, eris.Wrapf(err, "enrich: persist %s", businessID)
	}

	result.State = StatePersisted
	result.Company = company

	zap.L().Info("enrich: run complete",
		zap.String("run_id", result.RunID),
		zap.String("business_id", businessID),
		zap.Bool("created", result.Created),
		zap.Bool("degraded", result.Degraded()),
		zap.Float64("score", analysis.OverallScore),
		zap.Bool("has_own_products", company.HasOwnProducts),
	)
	return result, nil
}

// latestExportValue picks the export value from the highest-ranked record
// reporting one. Records arrive in rank order.
func latestExportValue(records []*model.SourceRecord) *float64 {
	for _, rec := range records {
		if rec != nil && rec.ExportValue != nil {
			v := *rec.ExportValue
			return &v
		}
	}
	return nil
}

// markMainProduct flags the highest-confidence product as main for companies
// classified as product owners, if no product carries the flag yet.
func markMainProduct(c *model.Company) {
	if !c.HasOwnProducts || len(c.Products) == 0 {
		return
	}
	best := -1
	for i := range c.Products {
		if c.Products[i].IsMainProduct {
			return
		}
		if best < 0 || c.Products[i].Confidence > c.Products[best].Confidence {
			best = i
		}
	}
	c.Products[best].IsMainProduct = true
}
