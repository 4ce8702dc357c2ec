package heuristics

import "strings"

// Confidence bounds for the ownership estimate.
const (
	ownershipBase = 0.5
	ownershipMin  = 0.1
	ownershipMax  = 0.95
)

// productIndicators are keywords suggesting the company makes its own
// products, each with its fixed confidence delta. The values are part of
// the scoring contract, not tunable parameters. "tuott" is the stem shared
// by "tuote"/"tuotteiden" plurals; it does not match "tuotanto", which has
// its own entry.
var productIndicators = map[string]float64{
	"valmistus":     0.30,
	"manufacturing": 0.30,
	"tehdas":        0.25,
	"factory":       0.25,
	"teknologia":    0.25,
	"technology":    0.25,
	"ohjelmisto":    0.25,
	"software":      0.25,
	"tuotanto":      0.20,
	"production":    0.20,
	"tuott":         0.20,
	"product":       0.20,
	"laite":         0.20,
	"device":        0.20,
}

// serviceIndicators are keywords suggesting a pure service/trading business,
// each with its fixed confidence penalty.
var serviceIndicators = map[string]float64{
	"konsultointi":   0.25,
	"consulting":     0.25,
	"jälleenmyynti":  0.25,
	"reseller":       0.20,
	"palvelu":        0.20,
	"service":        0.20,
	"vuokraus":       0.20,
	"rental":         0.20,
	"huolto":         0.15,
	"maintenance":    0.15,
	"tukkukauppa":    0.15,
	"wholesale":      0.15,
}

// EstimateProductOwnership scans the combined company name and industry text
// for product vs service indicator keywords. The boolean is true iff strictly
// more product indicators than service indicators matched. Confidence starts
// at 0.5, moves by each matched keyword's delta, and is clamped to [0.1, 0.95].
func EstimateProductOwnership(name, industryText string) (bool, float64) {
	lower := strings.ToLower(name + " " + industryText)

	confidence := ownershipBase
	productHits := 0
	for kw, delta := range productIndicators {
		if strings.Contains(lower, kw) {
			productHits++
			confidence += delta
		}
	}

	serviceHits := 0
	for kw, delta := range serviceIndicators {
		if strings.Contains(lower, kw) {
			serviceHits++
			confidence -= delta
		}
	}

	if confidence < ownershipMin {
		confidence = ownershipMin
	}
	if confidence > ownershipMax {
		confidence = ownershipMax
	}

	return productHits > serviceHits, confidence
}
