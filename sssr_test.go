package molsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSSRBenzene(t *testing.T) {
	s := benzene(t, kekule)
	rings := GetSSSR(s, nil, false)
	require.Len(t, rings, 1)
	assert.Len(t, rings[0], 6)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, sortedCopy(rings[0]))
}

func TestSSSRAcyclic(t *testing.T) {
	s := buildMol(t, []int{6, 6, 6, 6}, [][3]int{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}})
	assert.Empty(t, GetSSSR(s, nil, false))
}

// naphthalene returns two fused six-rings sharing the 0-5 bond.
func naphthalene(t *testing.T) *System {
	t.Helper()
	zs := make([]int, 10)
	for i := range zs {
		zs[i] = 6
	}
	bonds := [][3]int{
		{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1}, {4, 5, 1}, {5, 0, 1},
		{5, 6, 1}, {6, 7, 1}, {7, 8, 1}, {8, 9, 1}, {9, 0, 1},
	}
	return buildMol(t, zs, bonds)
}

func TestSSSRNaphthalene(t *testing.T) {
	s := naphthalene(t)
	rings := GetSSSR(s, nil, false)
	require.Len(t, rings, 2)
	assert.Len(t, rings[0], 6)
	assert.Len(t, rings[1], 6)

	systems := RingSystems(s, rings)
	require.Len(t, systems, 1)
	assert.ElementsMatch(t, []int{0, 1}, systems[0])
}

func TestSSSRSubset(t *testing.T) {
	s := naphthalene(t)
	// restricting to one ring's atoms hides the other
	rings := GetSSSR(s, []int{0, 1, 2, 3, 4, 5}, false)
	require.Len(t, rings, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, sortedCopy(rings[0]))
}

func TestSSSRSeparateRingSystems(t *testing.T) {
	// two cyclopropanes joined by a chain share no bonds
	zs := make([]int, 7)
	for i := range zs {
		zs[i] = 6
	}
	bonds := [][3]int{
		{0, 1, 1}, {1, 2, 1}, {2, 0, 1},
		{2, 3, 1},
		{3, 4, 1},
		{4, 5, 1}, {5, 6, 1}, {6, 4, 1},
	}
	s := buildMol(t, zs, bonds)
	rings := GetSSSR(s, nil, false)
	require.Len(t, rings, 2)
	assert.Len(t, RingSystems(s, rings), 2)
}

func TestSSSRAllRelevant(t *testing.T) {
	s := benzene(t, kekule)
	// a single ring is always relevant
	assert.Len(t, GetSSSR(s, nil, true), 1)

	// cubane-style bicyclic: two four-rings sharing an edge, plus the
	// dependent six-ring, which larger size keeps out of the relevant set
	zs := make([]int, 6)
	for i := range zs {
		zs[i] = 6
	}
	bonds := [][3]int{
		{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 0, 1},
		{2, 4, 1}, {4, 5, 1}, {5, 3, 1},
	}
	bi := buildMol(t, zs, bonds)
	basis := GetSSSR(bi, nil, false)
	require.Len(t, basis, 2)
	relevant := GetSSSR(bi, nil, true)
	assert.Len(t, relevant, 2)
}
