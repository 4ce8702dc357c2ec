package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateProductOwnershipManufacturer(t *testing.T) {
	// "valmistus" (+0.30) and "tuott" inside "Metallituotteiden" (+0.20)
	// push past the cap.
	owns, conf := EstimateProductOwnership("Konepaja Virtanen Oy", "Metallituotteiden valmistus")
	assert.True(t, owns)
	assert.InDelta(t, 0.95, conf, 1e-9)
}

func TestEstimateProductOwnershipConsultancy(t *testing.T) {
	owns, conf := EstimateProductOwnership("Virtanen Oy", "Liikkeenjohdon konsultointi")
	assert.False(t, owns)
	assert.InDelta(t, 0.25, conf, 1e-9)
}

func TestEstimateProductOwnershipClampsLow(t *testing.T) {
	owns, conf := EstimateProductOwnership("Virtanen Oy",
		"konsultointi palvelu vuokraus huolto tukkukauppa")
	assert.False(t, owns)
	assert.InDelta(t, 0.1, conf, 1e-9)
}

func TestEstimateProductOwnershipNeutral(t *testing.T) {
	owns, conf := EstimateProductOwnership("Yritys Oy", "")
	assert.False(t, owns)
	assert.InDelta(t, 0.5, conf, 1e-9)
}

func TestEstimateProductOwnershipTieIsNotOwnership(t *testing.T) {
	// One product hit and one service hit: deltas cancel, tie means false.
	owns, conf := EstimateProductOwnership("", "tuotteet palvelu")
	assert.False(t, owns)
	assert.InDelta(t, 0.5, conf, 1e-9)
}
