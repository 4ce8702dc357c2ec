package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIndustry(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Metallituotteiden valmistus", "Manufacturing"},
		{"Ohjelmistokehitys", "Technology"},
		{"Elintarvikkeiden tuotanto", "Manufacturing"},
		{"Elintarvikkeiden jalostus", "Food Industry"},
		{"Rakentaminen ja saneeraus", "Construction"},
		{"Tavaraliikenne ja logistiikka", "Logistics"},
		{"Tukkukauppa", "Trade"},
		{"Liikkeenjohdon konsultointi", "Consulting"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyIndustry(tt.text), tt.text)
	}
}

func TestClassifyIndustryUnknownFallsBack(t *testing.T) {
	assert.Equal(t, DefaultIndustryLabel, ClassifyIndustry("Jotain muuta"))
	assert.Equal(t, DefaultIndustryLabel, ClassifyIndustry(""))
}

func TestClassifyIndustryCaseInsensitive(t *testing.T) {
	assert.Equal(t, ClassifyIndustry("valmistus"), ClassifyIndustry("VALMISTUS"))
}
