package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finprospect/internal/model"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestScoreWeightedSumExact(t *testing.T) {
	a := Score(Input{
		IndustryText:  "Elektroniikkateollisuus ja valmistus",
		Turnover:      fp(12_000_000),
		EmployeeCount: ip(80),
		ExportValue:   fp(4_000_000),
		Financials: []model.FinancialData{
			{Year: 2024, Revenue: fp(12_000_000), Profit: fp(1_500_000), Assets: fp(9_000_000), Liabilities: fp(4_000_000)},
		},
	}, testNow)

	want := WeightIndustry*a.IndustryScore +
		WeightExport*a.ExportScore +
		WeightCompanySize*a.CompanySizeScore +
		WeightFinancial*a.FinancialScore +
		WeightPatent*a.PatentScore
	assert.InDelta(t, want, a.OverallScore, 1e-9)
	assert.Equal(t, AlgorithmVersion, a.AlgorithmVersion)
	assert.Equal(t, testNow, a.AnalyzedAt)
}

func TestScoreAllNilInputsStaysClamped(t *testing.T) {
	a := Score(Input{}, testNow)

	for name, v := range map[string]float64{
		"industry":  a.IndustryScore,
		"export":    a.ExportScore,
		"size":      a.CompanySizeScore,
		"financial": a.FinancialScore,
		"patent":    a.PatentScore,
		"overall":   a.OverallScore,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}

	assert.InDelta(t, 0.3, a.IndustryScore, 1e-9)
	assert.InDelta(t, 0.2, a.ExportScore, 1e-9)
	assert.InDelta(t, 0.3, a.CompanySizeScore, 1e-9)
	assert.InDelta(t, 0.5, a.FinancialScore, 1e-9)
	assert.False(t, HasOwnProducts(a.OverallScore))
}

func TestHasOwnProductsBoundary(t *testing.T) {
	assert.True(t, HasOwnProducts(0.6))
	assert.False(t, HasOwnProducts(0.5999))
	assert.True(t, HasOwnProducts(0.9))
	assert.False(t, HasOwnProducts(0.0))
}

func TestIndustryScoreSoftwareManufacturing(t *testing.T) {
	// "ohjelmisto" and "valmistus" match, "kehitys" is not a keyword:
	// exactly two matches lands the 0.8 tier.
	assert.InDelta(t, 0.8, IndustryScore("Ohjelmistokehitys ja valmistus"), 1e-9)
}

func TestIndustryScoreTiers(t *testing.T) {
	assert.InDelta(t, 1.0, IndustryScore("teknologia tuotanto tehdas"), 1e-9)
	assert.InDelta(t, 0.6, IndustryScore("elektroniikka-alan tukkukauppa"), 1e-9)
	assert.InDelta(t, 0.3, IndustryScore("kiinteistönvälitys"), 1e-9)
	assert.InDelta(t, 0.3, IndustryScore(""), 1e-9)
}

func TestExportScoreThirtyFivePercent(t *testing.T) {
	// 3.0M of 8.5M turnover is 35%, inside the >=25% tier.
	assert.InDelta(t, 0.8, ExportScore(fp(3_000_000), fp(8_500_000)), 1e-9)
}

func TestExportScoreTiers(t *testing.T) {
	assert.InDelta(t, 1.0, ExportScore(fp(5_000_000), fp(10_000_000)), 1e-9)
	assert.InDelta(t, 0.6, ExportScore(fp(1_000_000), fp(10_000_000)), 1e-9)
	assert.InDelta(t, 0.4, ExportScore(fp(500_000), fp(10_000_000)), 1e-9)
	assert.InDelta(t, 0.3, ExportScore(fp(100_000), fp(10_000_000)), 1e-9)
}

func TestExportScoreMissingData(t *testing.T) {
	assert.InDelta(t, 0.2, ExportScore(nil, fp(10_000_000)), 1e-9)
	assert.InDelta(t, 0.2, ExportScore(fp(1_000_000), nil), 1e-9)
	assert.InDelta(t, 0.2, ExportScore(fp(1_000_000), fp(0)), 1e-9)
}

func TestFixedSubScoreScenario(t *testing.T) {
	// Sub-scores [0.8 0.8 0.8 0.8 0.5] through the published formula.
	overall := WeightIndustry*0.8 + WeightExport*0.8 + WeightCompanySize*0.8 +
		WeightFinancial*0.8 + WeightPatent*0.5
	assert.InDelta(t, 0.77, overall, 1e-9)
	assert.True(t, HasOwnProducts(overall))
}

func TestCompanySizeScore(t *testing.T) {
	// 70% turnover tier, 30% employee tier.
	assert.InDelta(t, 0.7*1.0+0.3*1.0, CompanySizeScore(fp(60_000_000), ip(300)), 1e-9)
	assert.InDelta(t, 0.7*0.8+0.3*0.8, CompanySizeScore(fp(12_000_000), ip(80)), 1e-9)
	assert.InDelta(t, 0.7*0.6+0.3*0.6, CompanySizeScore(fp(2_000_000), ip(10)), 1e-9)
	assert.InDelta(t, 0.7*0.2+0.3*0.2, CompanySizeScore(fp(100_000), ip(1)), 1e-9)
	assert.InDelta(t, 0.3, CompanySizeScore(nil, nil), 1e-9)
}

func TestFinancialHealthScoreUsesLatestYear(t *testing.T) {
	financials := []model.FinancialData{
		{Year: 2022, Revenue: fp(1_000_000), Profit: fp(-200_000), Assets: fp(800_000), Liabilities: fp(790_000)},
		{Year: 2024, Revenue: fp(2_000_000), Profit: fp(400_000), Assets: fp(1_500_000), Liabilities: fp(300_000)},
	}
	// 2024: margin 20% -> 1.0 tier, debt ratio 0.2 -> 1.0 tier.
	assert.InDelta(t, 1.0, FinancialHealthScore(financials), 1e-9)
}

func TestFinancialHealthScoreNoHistory(t *testing.T) {
	assert.InDelta(t, 0.5, FinancialHealthScore(nil), 1e-9)
}

func TestYearHealthScoreMissingComponents(t *testing.T) {
	// No figures at all: both components neutral.
	assert.InDelta(t, 0.5, YearHealthScore(model.FinancialData{Year: 2024}), 1e-9)

	// Only the margin is computable; debt stays neutral.
	got := YearHealthScore(model.FinancialData{
		Year: 2024, Revenue: fp(1_000_000), Profit: fp(200_000),
	})
	assert.InDelta(t, 0.6*1.0+0.4*0.5, got, 1e-9)
}

func TestReasoningMentionsStrongSignals(t *testing.T) {
	a := Score(Input{
		IndustryText: "teknologia tuotanto tehdas valmistus",
		Turnover:     fp(60_000_000),
		ExportValue:  fp(40_000_000),
	}, testNow)
	require.NotEmpty(t, a.Reasoning)
	assert.True(t, HasOwnProducts(a.OverallScore))
}
