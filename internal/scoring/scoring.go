// Package scoring computes the product-ownership confidence analysis from a
// merged company aggregate. Five weighted sub-scores, each in [0, 1], combine
// into one overall score and a boolean classification.
package scoring

import (
	"strings"
	"time"

	"github.com/sells-group/finprospect/internal/model"
)

// AlgorithmVersion tags every analysis so historical comparisons stay
// possible when the formula changes.
const AlgorithmVersion = "v1.2"

// Component weights. Must sum to exactly 1.0.
const (
	WeightIndustry    = 0.30
	WeightExport      = 0.25
	WeightCompanySize = 0.20
	WeightFinancial   = 0.15
	WeightPatent      = 0.10
)

// OwnershipThreshold is the overall score at or above which a company is
// classified as selling its own products.
const OwnershipThreshold = 0.6

// PatentScoreNeutral is the fixed placeholder patent/innovation sub-score.
// No patent database is integrated; a real one would be a fifth registry
// client supplying this signal.
const PatentScoreNeutral = 0.5

// Input carries the signals the scoring engine reads from the merged
// aggregate. Nil pointers mean the signal is absent, never zero.
type Input struct {
	IndustryText  string
	Turnover      *float64
	EmployeeCount *int
	ExportValue   *float64
	Financials    []model.FinancialData
}

// Score computes the full ownership analysis for the given signals.
func Score(in Input, now time.Time) *model.OwnershipAnalysis {
	a := &model.OwnershipAnalysis{
		IndustryScore:    IndustryScore(in.IndustryText),
		ExportScore:      ExportScore(in.ExportValue, in.Turnover),
		CompanySizeScore: CompanySizeScore(in.Turnover, in.EmployeeCount),
		FinancialScore:   FinancialHealthScore(in.Financials),
		PatentScore:      PatentScoreNeutral,
		AlgorithmVersion: AlgorithmVersion,
		AnalyzedAt:       now,
	}

	a.OverallScore = WeightIndustry*a.IndustryScore +
		WeightExport*a.ExportScore +
		WeightCompanySize*a.CompanySizeScore +
		WeightFinancial*a.FinancialScore +
		WeightPatent*a.PatentScore

	a.Reasoning = reasoning(a)
	return a
}

// HasOwnProducts applies the fixed classification threshold.
func HasOwnProducts(overall float64) bool {
	return overall >= OwnershipThreshold
}

// industryKeywords are the manufacturing/technology/R&D signals counted by
// IndustryScore. Substring containment, case-insensitive.
var industryKeywords = []string{
	"valmistus", "manufacturing",
	"teknologia", "technology",
	"tuotanto", "production",
	"ohjelmisto", "software",
	"tutkimus", "research",
	"innovaatio", "innovation",
	"tehdas", "factory",
	"elektroniikka", "electronics",
}

// IndustryScore maps the keyword match count in the industry text to fixed
// tiers: 3+ matches 1.0, two 0.8, one 0.6, none 0.3.
func IndustryScore(industryText string) float64 {
	lower := strings.ToLower(industryText)
	matches := 0
	for _, kw := range industryKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	switch {
	case matches >= 3:
		return 1.0
	case matches == 2:
		return 0.8
	case matches == 1:
		return 0.6
	default:
		return 0.3
	}
}

// ExportScore scores export value as a percentage of turnover. Companies
// without export data (or without turnover to relate it to) score a flat 0.2.
func ExportScore(exportValue, turnover *float64) float64 {
	if exportValue == nil || turnover == nil || *turnover <= 0 {
		return 0.2
	}
	pct := *exportValue / *turnover * 100
	switch {
	case pct >= 50:
		return 1.0
	case pct >= 25:
		return 0.8
	case pct >= 10:
		return 0.6
	case pct >= 5:
		return 0.4
	default:
		return 0.3
	}
}

// CompanySizeScore blends the turnover tier (70%) and employee-count tier (30%).
func CompanySizeScore(turnover *float64, employees *int) float64 {
	return 0.7*turnoverTier(turnover) + 0.3*employeeTier(employees)
}

func turnoverTier(turnover *float64) float64 {
	if turnover == nil {
		return 0.3
	}
	switch {
	case *turnover >= 50_000_000:
		return 1.0
	case *turnover >= 10_000_000:
		return 0.8
	case *turnover >= 2_000_000:
		return 0.6
	case *turnover >= 400_000:
		return 0.4
	default:
		return 0.2
	}
}

func employeeTier(employees *int) float64 {
	if employees == nil {
		return 0.3
	}
	switch {
	case *employees >= 250:
		return 1.0
	case *employees >= 50:
		return 0.8
	case *employees >= 10:
		return 0.6
	case *employees >= 3:
		return 0.4
	default:
		return 0.2
	}
}

// FinancialHealthScore blends the latest year's profit-margin tier (60%) and
// debt-ratio tier (40%). With no financial history the score is a neutral 0.5.
func FinancialHealthScore(financials []model.FinancialData) float64 {
	latest := latestYear(financials)
	if latest == nil {
		return 0.5
	}
	return YearHealthScore(*latest)
}

// YearHealthScore computes the per-year health score stored alongside each
// FinancialData row. Missing components fall back to a neutral 0.5.
func YearHealthScore(fy model.FinancialData) float64 {
	margin := 0.5
	if fy.Profit != nil && fy.Revenue != nil && *fy.Revenue > 0 {
		margin = profitMarginTier(*fy.Profit / *fy.Revenue)
	}

	debt := 0.5
	if fy.Liabilities != nil && fy.Assets != nil && *fy.Assets > 0 {
		debt = debtRatioTier(*fy.Liabilities / *fy.Assets)
	}

	return 0.6*margin + 0.4*debt
}

func profitMarginTier(margin float64) float64 {
	switch {
	case margin >= 0.15:
		return 1.0
	case margin >= 0.10:
		return 0.8
	case margin >= 0.05:
		return 0.6
	case margin >= 0:
		return 0.4
	default:
		return 0.2
	}
}

func debtRatioTier(ratio float64) float64 {
	switch {
	case ratio <= 0.3:
		return 1.0
	case ratio <= 0.5:
		return 0.8
	case ratio <= 0.7:
		return 0.6
	case ratio <= 0.9:
		return 0.4
	default:
		return 0.2
	}
}

func latestYear(financials []model.FinancialData) *model.FinancialData {
	var latest *model.FinancialData
	for i := range financials {
		if latest == nil || financials[i].Year > latest.Year {
			latest = &financials[i]
		}
	}
	return latest
}
