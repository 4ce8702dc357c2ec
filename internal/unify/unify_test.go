package unify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/source"
)

type fakeClient struct {
	name    string
	rank    int
	records []model.SourceRecord
	err     error
}

func (f *fakeClient) Name() string { return f.name }
func (f *fakeClient) Rank() int    { return f.rank }

func (f *fakeClient) FetchByID(ctx context.Context, businessID string) (*model.SourceRecord, error) {
	return nil, nil
}

func (f *fakeClient) Search(ctx context.Context, query string) ([]model.SourceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func rec(src, id, name, industry string) model.SourceRecord {
	return model.SourceRecord{Source: src, BusinessID: id, Name: name, IndustryText: industry}
}

func TestSearchAllDedupKeepsHigherRank(t *testing.T) {
	prh := &fakeClient{name: "prh", rank: 1, records: []model.SourceRecord{
		rec("prh", "1234567-8", "Konepaja Virtanen Oy", "Metallituotteiden valmistus"),
	}}
	nordic := &fakeClient{name: "nordic", rank: 4, records: []model.SourceRecord{
		rec("nordic", "1234567-8", "Konepaja Virtanen Ltd", "Metal products"),
		rec("nordic", "7654321-0", "Palvelu Oy", "Konsultointi"),
	}}

	s := NewSearcher(source.NewRegistry(prh, nordic))
	result, err := s.SearchAll(context.Background(), "virtanen")
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)

	byID := map[string]Hit{}
	for _, h := range result.Hits {
		byID[h.BusinessID] = h
	}
	// The duplicate keeps the rank-1 source's fields.
	assert.Equal(t, "prh", byID["1234567-8"].Source)
	assert.Equal(t, "Konepaja Virtanen Oy", byID["1234567-8"].Name)
	assert.Equal(t, 1, byID["1234567-8"].Rank)
	assert.Equal(t, "nordic", byID["7654321-0"].Source)
}

func TestSearchAllPartialFailureDegrades(t *testing.T) {
	prh := &fakeClient{name: "prh", rank: 1, records: []model.SourceRecord{
		rec("prh", "1234567-8", "Konepaja Virtanen Oy", "valmistus"),
	}}
	vero := &fakeClient{name: "vero", rank: 2, err: errors.New("http 503")}

	s := NewSearcher(source.NewRegistry(prh, vero))
	result, err := s.SearchAll(context.Background(), "virtanen")
	require.NoError(t, err)
	assert.True(t, result.Degraded())
	assert.Equal(t, []string{"prh"}, result.Contributed)
	assert.Equal(t, []string{"vero"}, result.Failed)
	assert.Len(t, result.Hits, 1)
}

func TestSearchAllAllSourcesFailed(t *testing.T) {
	prh := &fakeClient{name: "prh", rank: 1, err: errors.New("http 503")}
	vero := &fakeClient{name: "vero", rank: 2, err: errors.New("i/o timeout")}

	s := NewSearcher(source.NewRegistry(prh, vero))
	_, err := s.SearchAll(context.Background(), "virtanen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all sources failed")
}

func TestSearchAllSortsByRankThenConfidence(t *testing.T) {
	prh := &fakeClient{name: "prh", rank: 1, records: []model.SourceRecord{
		rec("prh", "1111111-1", "Palvelu Oy", "konsultointi"),
		rec("prh", "2222222-2", "Valmistus Oy", "valmistus"),
	}}
	nordic := &fakeClient{name: "nordic", rank: 4, records: []model.SourceRecord{
		rec("nordic", "3333333-3", "Tehdas Oy", "tehdas"),
	}}

	s := NewSearcher(source.NewRegistry(prh, nordic))
	result, err := s.SearchAll(context.Background(), "oy")
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)

	// Rank 1 hits first, ordered by confidence descending; rank 4 last.
	assert.Equal(t, "2222222-2", result.Hits[0].BusinessID)
	assert.Equal(t, "1111111-1", result.Hits[1].BusinessID)
	assert.Equal(t, "3333333-3", result.Hits[2].BusinessID)
	assert.Greater(t, result.Hits[0].Confidence, result.Hits[1].Confidence)
}

func TestSearchAllCapsResults(t *testing.T) {
	var records []model.SourceRecord
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("%07d-1", 1000000+i)
		records = append(records, rec("prh", id, "Yritys Oy", ""))
	}
	prh := &fakeClient{name: "prh", rank: 1, records: records}

	s := NewSearcher(source.NewRegistry(prh)).WithLimits(0, 3)
	result, err := s.SearchAll(context.Background(), "yritys")
	require.NoError(t, err)
	assert.Len(t, result.Hits, 3)
}

func TestSearchAllSkipsRecordsWithoutBusinessID(t *testing.T) {
	prh := &fakeClient{name: "prh", rank: 1, records: []model.SourceRecord{
		{Source: "prh", Name: "Nimetön"},
		rec("prh", "1234567-8", "Yritys Oy", ""),
	}}

	s := NewSearcher(source.NewRegistry(prh))
	result, err := s.SearchAll(context.Background(), "yritys")
	require.NoError(t, err)
	assert.Len(t, result.Hits, 1)
}
