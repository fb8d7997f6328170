package molsys

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ringAtoms(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestBenzeneAromatic(t *testing.T) {
	s := benzene(t, kekule)
	verdict, counts, err := ClassifyRing(s, ringAtoms(6))
	require.NoError(t, err)
	assert.Equal(t, Aromatic, verdict)
	assert.Equal(t, [4]int{0, 6, 0, 0}, counts)
}

func TestCyclobutadieneAntiaromatic(t *testing.T) {
	zs := []int{6, 6, 6, 6, 1, 1, 1, 1}
	bonds := [][3]int{
		{0, 1, 2}, {1, 2, 1}, {2, 3, 2}, {3, 0, 1},
		{0, 4, 1}, {1, 5, 1}, {2, 6, 1}, {3, 7, 1},
	}
	s := buildMol(t, zs, bonds)
	verdict, counts, err := ClassifyRing(s, ringAtoms(4))
	require.NoError(t, err)
	assert.Equal(t, Antiaromatic, verdict)
	assert.Equal(t, [4]int{0, 4, 0, 0}, counts)
}

func TestPyridineAromatic(t *testing.T) {
	// N0, C1..C5, hydrogens on the carbons only
	zs := []int{7, 6, 6, 6, 6, 6, 1, 1, 1, 1, 1}
	bonds := [][3]int{
		{0, 1, 2}, {1, 2, 1}, {2, 3, 2}, {3, 4, 1}, {4, 5, 2}, {5, 0, 1},
		{1, 6, 1}, {2, 7, 1}, {3, 8, 1}, {4, 9, 1}, {5, 10, 1},
	}
	s := buildMol(t, zs, bonds)
	classes, err := RingAtomClasses(s, ringAtoms(6))
	require.NoError(t, err)
	// the nitrogen's lone pair stays in the plane; it contributes
	// through its ring double bond like the carbons do
	assert.Equal(t, YType, classes[0])
	verdict, _, err := ClassifyRing(s, ringAtoms(6))
	require.NoError(t, err)
	assert.Equal(t, Aromatic, verdict)
}

func TestPyrroleAromatic(t *testing.T) {
	// N0 with H, C1..C4 each with H
	zs := []int{7, 6, 6, 6, 6, 1, 1, 1, 1, 1}
	bonds := [][3]int{
		{0, 1, 1}, {1, 2, 2}, {2, 3, 1}, {3, 4, 2}, {4, 0, 1},
		{0, 5, 1}, {1, 6, 1}, {2, 7, 1}, {3, 8, 1}, {4, 9, 1},
	}
	s := buildMol(t, zs, bonds)
	classes, err := RingAtomClasses(s, ringAtoms(5))
	require.NoError(t, err)
	// the nitrogen donates its lone pair into the pi system
	assert.Equal(t, XType, classes[0])
	verdict, counts, err := ClassifyRing(s, ringAtoms(5))
	require.NoError(t, err)
	assert.Equal(t, Aromatic, verdict)
	assert.Equal(t, [4]int{1, 4, 0, 0}, counts)
}

func TestCyclohexaneNonaromatic(t *testing.T) {
	zs := make([]int, 18)
	var bonds [][3]int
	for i := 0; i < 6; i++ {
		zs[i] = 6
		zs[6+2*i] = 1
		zs[7+2*i] = 1
		bonds = append(bonds, [3]int{i, (i + 1) % 6, 1})
		bonds = append(bonds, [3]int{i, 6 + 2*i, 1})
		bonds = append(bonds, [3]int{i, 7 + 2*i, 1})
	}
	s := buildMol(t, zs, bonds)
	verdict, _, err := ClassifyRing(s, ringAtoms(6))
	require.NoError(t, err)
	assert.Equal(t, Nonaromatic, verdict)
}

func TestClassifyRingAtomTable(t *testing.T) {
	// vsum and bsum cannot both contribute
	assert.Equal(t, InvalidType, ClassifyRingAtom(3, 1, 2, 1, 0))
	// four or more in-plane neighbors leave no p orbital
	assert.Equal(t, InvalidType, ClassifyRingAtom(4, 0, 1, 1, 0))
	// an exocyclic C=C turns a plain carbon into an external donor
	assert.Equal(t, YExtType, ClassifyRingAtom(3, 0, 1, 1, 2))
	// nothing to contribute: an empty orbital
	assert.Equal(t, ZType, ClassifyRingAtom(3, 0, 1, 1, 0))
}

func TestRingNotClosed(t *testing.T) {
	s := buildMol(t, []int{6, 6, 6}, [][3]int{{0, 1, 1}, {1, 2, 1}})
	_, err := RingAtomClasses(s, []int{0, 1, 2})
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrStructure))
}

func TestRingPlanarity(t *testing.T) {
	s := benzene(t, kekule)
	for i := 0; i < 6; i++ {
		ang := 2 * math.Pi * float64(i) / 6
		a := s.Atom(i)
		a.X = 1.39 * math.Cos(ang)
		a.Y = 1.39 * math.Sin(ang)
		a.Z = 0
	}
	assert.InDelta(t, 0, RingPlanarity(s, ringAtoms(6)), 1e-9)

	s.Atom(0).Z = 1.0
	assert.Greater(t, RingPlanarity(s, ringAtoms(6)), 0.1)
}

func TestAnalyzeMarksAromaticity(t *testing.T) {
	s := benzene(t, kekule)
	require.NoError(t, Analyze(s))
	for i := 0; i < 6; i++ {
		assert.True(t, s.Atom(i).Aromatic, "carbon %d", i)
		assert.True(t, s.Bond(s.FindBond(i, (i+1)%6)).Aromatic)
	}
	for i := 6; i < 12; i++ {
		assert.False(t, s.Atom(i).Aromatic, "hydrogen %d", i)
	}

	// analysis is idempotent and clears stale flags
	s.Bond(s.FindBond(0, 1)).Order = 1
	s.Bond(s.FindBond(0, 1)).Order = 2
	require.NoError(t, Analyze(s))
	assert.True(t, s.Atom(0).Aromatic)
}
