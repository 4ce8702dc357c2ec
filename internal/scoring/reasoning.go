package scoring

import (
	"strings"

	"github.com/sells-group/finprospect/internal/model"
)

// strongSignal is the sub-score threshold that earns a sentence in the
// human-readable reasoning.
const strongSignal = 0.7

// reasoning builds the explanation string from fixed template sentences.
func reasoning(a *model.OwnershipAnalysis) string {
	var parts []string

	if a.IndustryScore >= strongSignal {
		parts = append(parts, "Industry classification indicates manufacturing or technology activity.")
	}
	if a.ExportScore >= strongSignal {
		parts = append(parts, "Significant export volume relative to turnover suggests own product lines.")
	}
	if a.CompanySizeScore >= strongSignal {
		parts = append(parts, "Company size supports in-house product development capacity.")
	}
	if a.FinancialScore >= strongSignal {
		parts = append(parts, "Financial position is consistent with a product business.")
	}
	if a.PatentScore >= strongSignal {
		parts = append(parts, "Patent activity signals in-house innovation.")
	}

	switch {
	case a.OverallScore >= 0.8:
		parts = append(parts, "High confidence that the company sells its own products.")
	case a.OverallScore >= OwnershipThreshold:
		parts = append(parts, "Moderate confidence that the company sells its own products.")
	default:
		parts = append(parts, "Signals point to a service or trading business.")
	}

	return strings.Join(parts, " ")
}
