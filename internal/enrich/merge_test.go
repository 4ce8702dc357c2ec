package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finprospect/internal/model"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestMergeHigherRankWinsOnConflict(t *testing.T) {
	c := &model.Company{BusinessID: "1234567-8"}
	records := []*model.SourceRecord{
		{Source: "prh", Name: "Oikea Nimi Oy", City: "Helsinki"},
		{Source: "nordic", Name: "Wrong Name Ltd", City: "Espoo", Phone: "+358 40 1111111"},
	}

	Merge(c, records)

	assert.Equal(t, "Oikea Nimi Oy", c.Name)
	assert.Equal(t, "Helsinki", c.City)
	// The lower-rank source still fills fields the higher one lacks.
	assert.Equal(t, "+358 40 1111111", c.Phone)
}

func TestMergeFieldUnionIgnoresOrderForPresence(t *testing.T) {
	// Non-conflicting partial records: whichever order they arrive in, the
	// same set of fields ends up populated.
	a := &model.SourceRecord{Source: "prh", Name: "Yritys Oy"}
	b := &model.SourceRecord{Source: "vero", Turnover: fp(5_000_000)}
	d := &model.SourceRecord{Source: "statfi", EmployeeCount: ip(42)}

	c1 := &model.Company{BusinessID: "1234567-8"}
	Merge(c1, []*model.SourceRecord{a, b, d})

	c2 := &model.Company{BusinessID: "1234567-8"}
	Merge(c2, []*model.SourceRecord{d, b, a})

	assert.Equal(t, c1.Name, c2.Name)
	require.NotNil(t, c1.Turnover)
	require.NotNil(t, c2.Turnover)
	assert.Equal(t, *c1.Turnover, *c2.Turnover)
	require.NotNil(t, c1.EmployeeCount)
	require.NotNil(t, c2.EmployeeCount)
	assert.Equal(t, *c1.EmployeeCount, *c2.EmployeeCount)
}

func TestMergeSkipsNilRecords(t *testing.T) {
	c := &model.Company{BusinessID: "1234567-8", Name: "Vanha Nimi Oy"}
	Merge(c, []*model.SourceRecord{nil, {Source: "vero", Turnover: fp(1_000_000)}, nil})

	// Existing data survives when no record reports the field.
	assert.Equal(t, "Vanha Nimi Oy", c.Name)
	require.NotNil(t, c.Turnover)
	assert.InDelta(t, 1_000_000, *c.Turnover, 1e-9)
}

func TestMergeNeverClearsExistingFields(t *testing.T) {
	c := &model.Company{
		BusinessID: "1234567-8",
		Name:       "Yritys Oy",
		Website:    "https://yritys.fi",
	}
	Merge(c, []*model.SourceRecord{{Source: "prh", Name: "Yritys Oy"}})

	assert.Equal(t, "https://yritys.fi", c.Website)
}

func TestMergeFinancialsAdditiveByYear(t *testing.T) {
	c := &model.Company{BusinessID: "1234567-8"}
	Merge(c, []*model.SourceRecord{{
		Source: "vero",
		FinancialYears: []model.FinancialYear{
			{Year: 2023, Revenue: fp(1_000_000)},
			{Year: 2024, Revenue: fp(1_200_000)},
		},
	}})
	require.Len(t, c.Financials, 2)

	// A later pass updates 2024 in place and adds 2022; nothing is dropped.
	Merge(c, []*model.SourceRecord{{
		Source: "vero",
		FinancialYears: []model.FinancialYear{
			{Year: 2024, Revenue: fp(1_300_000), Profit: fp(150_000)},
			{Year: 2022, Revenue: fp(900_000)},
		},
	}})
	require.Len(t, c.Financials, 3)

	var y2024 *model.FinancialData
	for i := range c.Financials {
		if c.Financials[i].Year == 2024 {
			y2024 = &c.Financials[i]
		}
	}
	require.NotNil(t, y2024)
	assert.InDelta(t, 1_300_000, *y2024.Revenue, 1e-9)
	require.NotNil(t, y2024.HealthScore)
}

func TestMergeProductsDedupBySubstring(t *testing.T) {
	c := &model.Company{BusinessID: "1234567-8"}
	Merge(c, []*model.SourceRecord{{
		Source: "nordic",
		Products: []model.ProductHint{
			{Name: "Vaisala WXT530", Confidence: 0.6},
		},
	}})
	require.Len(t, c.Products, 1)

	Merge(c, []*model.SourceRecord{{
		Source: "nordic",
		Products: []model.ProductHint{
			{Name: "WXT530", Confidence: 0.5},          // substring of existing
			{Name: "vaisala wxt530 pro", Confidence: 0.5}, // superstring, case-insensitive
			{Name: "HMP155", Confidence: 0.5},          // genuinely new
		},
	}})
	require.Len(t, c.Products, 2)
	assert.Equal(t, "Vaisala WXT530", c.Products[0].Name)
	assert.Equal(t, "HMP155", c.Products[1].Name)
}

func TestMergeReturnsHighestRankIndustryText(t *testing.T) {
	c := &model.Company{BusinessID: "1234567-8"}
	text := Merge(c, []*model.SourceRecord{
		{Source: "prh"},
		{Source: "statfi", IndustryText: "Metallituotteiden valmistus"},
		{Source: "nordic", IndustryText: "Metal products"},
	})
	assert.Equal(t, "Metallituotteiden valmistus", text)
}
