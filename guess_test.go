package molsys

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessBondConnectivityWater(t *testing.T) {
	s := buildMol(t, []int{8, 1, 1}, nil)
	s.Atom(0).X, s.Atom(0).Y, s.Atom(0).Z = 0, 0, 0
	s.Atom(1).X, s.Atom(1).Y = 0.96, 0
	s.Atom(2).X, s.Atom(2).Y = -0.24, 0.93

	require.NoError(t, GuessBondConnectivity(s))
	assert.Equal(t, 2, s.BondCount())
	assert.GreaterOrEqual(t, s.FindBond(0, 1), 0)
	assert.GreaterOrEqual(t, s.FindBond(0, 2), 0)
	// the hydrogens are 1.5 A apart, too far for an H-H bond
	assert.Equal(t, -1, s.FindBond(1, 2))
}

func TestGuessBondConnectivityIgnoresDistantAtoms(t *testing.T) {
	s := buildMol(t, []int{6, 6}, nil)
	s.Atom(1).X = 5
	require.NoError(t, GuessBondConnectivity(s))
	assert.Equal(t, 0, s.BondCount())
}

func TestGuessBondConnectivityTooClose(t *testing.T) {
	// overlapping atoms are a clash, not a bond
	s := buildMol(t, []int{6, 6}, nil)
	s.Atom(1).X = 0.3
	require.NoError(t, GuessBondConnectivity(s))
	assert.Equal(t, 0, s.BondCount())
}

func TestGuessBondConnectivityPrunesOvercoordination(t *testing.T) {
	// a hydrogen wedged between two oxygens keeps only the closer one
	s := buildMol(t, []int{1, 8, 8}, nil)
	s.Atom(1).X = 0.95
	s.Atom(2).X = -1.05
	require.NoError(t, GuessBondConnectivity(s))
	require.Equal(t, 1, s.BondCount())
	assert.GreaterOrEqual(t, s.FindBond(0, 1), 0)
}

func TestGuessHydrogenPositions(t *testing.T) {
	// methanol O-H: the hydrogen ends up opposite the carbon
	s := buildMol(t, []int{6, 8, 1}, [][3]int{{0, 1, 1}, {1, 2, 1}})
	s.Atom(0).X = -1.43
	s.Atom(1).X = 0
	s.Atom(2).X, s.Atom(2).Y = 0.2, 0.9 // somewhere wrong

	GuessHydrogenPositions(s, nil)
	h := s.Atom(2)
	want := RadiusForElement(8) + RadiusForElement(1)
	d := math.Sqrt(h.X*h.X + h.Y*h.Y + h.Z*h.Z)
	assert.InDelta(t, want, d, 1e-9)
	// pointing away from the carbon, along +x
	assert.InDelta(t, want, h.X, 1e-9)
	assert.InDelta(t, 0, h.Y, 1e-9)
}

func TestGuessHydrogenPositionsKeepsLoneHydrogens(t *testing.T) {
	s := buildMol(t, []int{1}, nil)
	s.Atom(0).X = 3
	GuessHydrogenPositions(s, nil)
	assert.Equal(t, 3.0, s.Atom(0).X)
}

func TestGuessHydrogenPositionsSubset(t *testing.T) {
	// water with both hydrogens misplaced; reposition only the first
	s := buildMol(t, []int{8, 1, 1}, [][3]int{{0, 1, 1}, {0, 2, 1}})
	s.Atom(1).X, s.Atom(1).Y = 3, 1
	s.Atom(2).X, s.Atom(2).Y = -3, 1

	GuessHydrogenPositions(s, []int{1})
	want := RadiusForElement(8) + RadiusForElement(1)
	h1, h2 := s.Atom(1), s.Atom(2)
	d1 := math.Sqrt(h1.X*h1.X + h1.Y*h1.Y + h1.Z*h1.Z)
	assert.InDelta(t, want, d1, 1e-9)
	// the other hydrogen keeps its coordinates
	assert.Equal(t, -3.0, h2.X)
	assert.Equal(t, 1.0, h2.Y)
}
