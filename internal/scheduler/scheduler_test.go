package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finprospect/internal/enrich"
	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/source"
	"github.com/sells-group/finprospect/internal/store"
)

type fakeClient struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeClient) Name() string { return "prh" }
func (f *fakeClient) Rank() int    { return 1 }

func (f *fakeClient) FetchByID(ctx context.Context, businessID string) (*model.SourceRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, businessID)
	f.mu.Unlock()
	return &model.SourceRecord{
		Source:     "prh",
		BusinessID: businessID,
		Name:       "Yritys " + businessID,
	}, nil
}

func (f *fakeClient) Search(ctx context.Context, query string) ([]model.SourceRecord, error) {
	return nil, nil
}

type fakeStore struct {
	mu        sync.Mutex
	companies []model.Company
	queries   int
}

func (f *fakeStore) GetCompany(ctx context.Context, businessID string) (*model.Company, error) {
	return nil, nil
}

func (f *fakeStore) UpsertCompany(ctx context.Context, c *model.Company) error {
	return nil
}

func (f *fakeStore) QueryCompanies(ctx context.Context, flt store.Filter) (*store.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	return &store.Page{Companies: f.companies, Total: len(f.companies)}, nil
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

func TestRunProcessesBatchesWithoutWallClock(t *testing.T) {
	st := &fakeStore{companies: []model.Company{
		{BusinessID: "1111111-1"},
		{BusinessID: "2222222-2"},
	}}
	client := &fakeClient{}
	orch := enrich.New(source.NewRegistry(client), st)

	var mu sync.Mutex
	var sleeps []time.Duration
	ctx, cancel := context.WithCancel(context.Background())

	s := New(Config{}, st, orch).WithSleep(func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		sleeps = append(sleeps, d)
		n := len(sleeps)
		mu.Unlock()
		// warm-up, courtesy delay, then stop at the first interval sleep.
		if n >= 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	})

	err := s.Run(ctx)
	require.NoError(t, err)

	require.Len(t, sleeps, 3)
	assert.Equal(t, time.Minute, sleeps[0])               // warm-up
	assert.Equal(t, 500*time.Millisecond, sleeps[1])      // between companies
	assert.Equal(t, 6*time.Hour, sleeps[2])               // interval
	assert.Equal(t, []string{"1111111-1", "2222222-2"}, client.calls)
}

func TestRunExitsDuringWarmUp(t *testing.T) {
	st := &fakeStore{}
	orch := enrich.New(source.NewRegistry(&fakeClient{}), st)
	ctx, cancel := context.WithCancel(context.Background())

	s := New(Config{}, st, orch).WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	})

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, 0, st.queries)
}

func TestRunBatchSurvivesCompanyFailure(t *testing.T) {
	// An invalid stored id makes Enrich fail; the batch continues.
	st := &fakeStore{companies: []model.Company{
		{BusinessID: "broken"},
		{BusinessID: "2222222-2"},
	}}
	client := &fakeClient{}
	orch := enrich.New(source.NewRegistry(client), st)

	s := New(Config{}, st, orch).WithSleep(func(ctx context.Context, d time.Duration) error {
		return nil
	})
	s.runBatch(context.Background())

	assert.Equal(t, []string{"2222222-2"}, client.calls)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 6*time.Hour, cfg.Interval)
	assert.Equal(t, time.Minute, cfg.WarmUp)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Delay)
}
