package molsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementLookup(t *testing.T) {
	z, err := ElementForSymbol("C")
	require.NoError(t, err)
	assert.Equal(t, 6, z)
	assert.Equal(t, "C", AbbreviationForElement(6))
	assert.Equal(t, 2, PeriodForElement(6))
	assert.Equal(t, 14, GroupForElement(6))
	assert.InDelta(t, 12.011, MassForElement(6), 0.01)

	_, err = ElementForSymbol("Xx")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrLookup))
}

func TestElementDataOutOfRange(t *testing.T) {
	assert.Equal(t, 0, ElementData(-1).Z)
	assert.Equal(t, 0, ElementData(500).Z)
	assert.Equal(t, "", AbbreviationForElement(0))
}

func TestGuessAtomicNumber(t *testing.T) {
	assert.Equal(t, 1, GuessAtomicNumber(1.008))
	assert.Equal(t, 6, GuessAtomicNumber(12.011))
	assert.Equal(t, 8, GuessAtomicNumber(16.2))
	// anything below half a hydrogen mass is a massless pseudo particle
	assert.Equal(t, 0, GuessAtomicNumber(0.4))
	assert.Equal(t, 0, GuessAtomicNumber(0))
}

func TestGuessAtomicNumberRoundTrip(t *testing.T) {
	for z := 1; z <= 92; z++ {
		m := MassForElement(z)
		if m <= 0 {
			continue
		}
		got := GuessAtomicNumber(m)
		assert.Equal(t, MassForElement(got), m, "element %d", z)
	}
}
