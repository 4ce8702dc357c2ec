// Package heuristics holds the pure keyword heuristics used during
// enrichment: industry classification and the product-ownership estimate.
// No I/O, deterministic, fixed tables. Matching is case-insensitive
// substring containment — deliberately not tokenized, so "valmistus"
// matches anywhere inside a longer word.
package heuristics

import "strings"

// DefaultIndustryLabel is returned when no keyword matches.
const DefaultIndustryLabel = "Business Services"

// industryRule maps bilingual (Finnish/English) keywords to one label.
// Finnish keywords are stems, so inflected forms ("elintarvikkeiden")
// still match. First matching rule wins, so order matters.
type industryRule struct {
	keywords []string
	label    string
}

var industryRules = []industryRule{
	{[]string{"valmistus", "manufacturing", "tehdas", "factory", "tuotanto", "production"}, "Manufacturing"},
	{[]string{"ohjelmisto", "software", "teknologia", "technology", "tietotekniikka"}, "Technology"},
	{[]string{"elintarvik", "food", "juoma", "beverage"}, "Food Industry"},
	{[]string{"metalli", "metal", "konepaja", "machinery"}, "Metal Industry"},
	{[]string{"kemia", "chemical", "muovi", "plastic"}, "Chemical Industry"},
	{[]string{"rakennus", "rakentaminen", "construction"}, "Construction"},
	{[]string{"logistiikka", "kuljetus", "logistics", "transport"}, "Logistics"},
	{[]string{"kauppa", "myynti", "retail", "trade"}, "Trade"},
	{[]string{"konsultointi", "consulting"}, "Consulting"},
}

// ClassifyIndustry maps free-text industry description to a fixed label.
// First keyword match wins; unmatched text gets DefaultIndustryLabel.
func ClassifyIndustry(freeText string) string {
	lower := strings.ToLower(freeText)
	for _, rule := range industryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
	}
	return DefaultIndustryLabel
}
