package smarts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molsuite/molsys"
)

// mol assembles a one-residue system from atomic numbers and
// (i, j, order) bond triples, analyzed so aromaticity flags are set.
func mol(t *testing.T, zs []int, bonds [][3]int) *molsys.System {
	t.Helper()
	s := molsys.NewSystem()
	chain := s.AddChain("A")
	res, err := s.AddResidue(chain)
	require.NoError(t, err)
	for _, z := range zs {
		id, err := s.AddAtom(res)
		require.NoError(t, err)
		s.Atom(id).AtomicNumber = z
	}
	for _, b := range bonds {
		id, err := s.AddBond(b[0], b[1])
		require.NoError(t, err)
		s.Bond(id).Order = b[2]
	}
	require.NoError(t, molsys.Analyze(s))
	return s
}

func benzene(t *testing.T) *molsys.System {
	zs := make([]int, 12)
	for i := 0; i < 6; i++ {
		zs[i] = 6
		zs[6+i] = 1
	}
	var bonds [][3]int
	orders := []int{2, 1, 2, 1, 2, 1}
	for i := 0; i < 6; i++ {
		bonds = append(bonds, [3]int{i, (i + 1) % 6, orders[i]})
		bonds = append(bonds, [3]int{i, 6 + i, 1})
	}
	return mol(t, zs, bonds)
}

func ethanol(t *testing.T) *molsys.System {
	zs := []int{6, 6, 8, 1, 1, 1, 1, 1, 1}
	bonds := [][3]int{
		{0, 1, 1}, {1, 2, 1},
		{0, 3, 1}, {0, 4, 1}, {0, 5, 1},
		{1, 6, 1}, {1, 7, 1},
		{2, 8, 1},
	}
	return mol(t, zs, bonds)
}

func TestParseBasics(t *testing.T) {
	p, err := Parse("CCO")
	require.NoError(t, err)
	assert.Equal(t, 3, p.AtomCount())
	assert.Equal(t, "CCO", p.Source())
	assert.Empty(t, p.Warnings())
}

func TestParseErrors(t *testing.T) {
	for _, bad := range []string{"C(", "C)", "C1CC", "[C", "[]", "C..C", "=C", "!", "C%"} {
		_, err := Parse(bad)
		assert.Error(t, err, "pattern %q", bad)
		if err != nil {
			assert.True(t, molsys.IsKind(err, molsys.ErrParse), "pattern %q", bad)
		}
	}
}

func TestMatchChain(t *testing.T) {
	s := ethanol(t)
	p, err := Parse("CCO")
	require.NoError(t, err)
	assert.True(t, p.Match(s))

	matches := p.FindMatches(s, nil)
	require.Len(t, matches, 1)
	assert.Equal(t, []int{0, 1, 2}, matches[0])
}

func TestMatchStarts(t *testing.T) {
	s := ethanol(t)
	p, err := Parse("CO")
	require.NoError(t, err)
	assert.Len(t, p.FindMatches(s, nil), 1)
	// constrained to start on the methyl carbon, nothing matches
	assert.Empty(t, p.FindMatches(s, []int{0}))
}

func TestMatchAromatic(t *testing.T) {
	s := benzene(t)
	p, err := Parse("c1ccccc1")
	require.NoError(t, err)
	assert.True(t, p.Match(s))
	// every rotation and direction of the ring
	assert.Len(t, p.FindMatches(s, nil), 12)

	// an aliphatic carbon pattern must not hit the aromatic ring
	p, err = Parse("C1CCCCC1")
	require.NoError(t, err)
	assert.False(t, p.Match(s))
}

func TestMatchBondSymbols(t *testing.T) {
	// propene: C=C-C
	s := mol(t, []int{6, 6, 6, 1, 1, 1, 1, 1, 1},
		[][3]int{{0, 1, 2}, {1, 2, 1},
			{0, 3, 1}, {0, 4, 1}, {1, 5, 1},
			{2, 6, 1}, {2, 7, 1}, {2, 8, 1}})
	for pattern, want := range map[string]bool{
		"C=C":  true,
		"C#C":  false,
		"C~C":  true,
		"C=O":  false,
		"CC=C": true,
	} {
		p, err := Parse(pattern)
		require.NoError(t, err)
		assert.Equal(t, want, p.Match(s), "pattern %q", pattern)
	}
}

func TestMatchBracketPrimitives(t *testing.T) {
	// hydroxide ion next to a water
	s := mol(t, []int{8, 1, 8, 1, 1},
		[][3]int{{0, 1, 1}, {2, 3, 1}, {2, 4, 1}})
	s.Atom(0).FormalCharge = -1

	p, err := Parse("[O-]")
	require.NoError(t, err)
	m := p.FindMatches(s, nil)
	require.Len(t, m, 1)
	assert.Equal(t, []int{0}, m[0])

	p, err = Parse("[OH2]")
	require.NoError(t, err)
	m = p.FindMatches(s, nil)
	require.Len(t, m, 1)
	assert.Equal(t, []int{2}, m[0])

	p, err = Parse("[#8&!-]")
	require.NoError(t, err)
	m = p.FindMatches(s, nil)
	require.Len(t, m, 1)
	assert.Equal(t, []int{2}, m[0])
}

func TestMatchRingBond(t *testing.T) {
	s := benzene(t)
	p, err := Parse("c@c")
	require.NoError(t, err)
	// the six ring bonds, both directions
	assert.Len(t, p.FindMatches(s, nil), 12)

	// a plain chain has no ring bonds
	p, err = Parse("C@C")
	require.NoError(t, err)
	chain := mol(t, []int{6, 6, 6}, [][3]int{{0, 1, 1}, {1, 2, 1}})
	assert.False(t, p.Match(chain))
}

func TestMatchDegreeAndRing(t *testing.T) {
	s := benzene(t)
	p, err := Parse("[cD3]")
	require.NoError(t, err)
	assert.Len(t, p.FindMatches(s, nil), 6)

	p, err = Parse("[R]")
	require.NoError(t, err)
	assert.Len(t, p.FindMatches(s, nil), 6)

	p, err = Parse("[!R]")
	require.NoError(t, err)
	// only the hydrogens are outside the ring
	assert.Len(t, p.FindMatches(s, nil), 6)
}

func TestMatchAlternatives(t *testing.T) {
	s := ethanol(t)
	p, err := Parse("[O,N]")
	require.NoError(t, err)
	assert.Len(t, p.FindMatches(s, nil), 1)
}

func TestBranches(t *testing.T) {
	// isobutane-style center: C(C)(C)C
	s := mol(t, []int{6, 6, 6, 6},
		[][3]int{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}})
	p, err := Parse("C(C)(C)C")
	require.NoError(t, err)
	// 3! orderings of the three branches around the center... from any
	// leaf the center is forced, so matches come from leaf permutations
	assert.Len(t, p.FindMatches(s, nil), 6)
}

func TestWarnings(t *testing.T) {
	p, err := Parse("[C@H1]")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Warnings())

	p, err = Parse("C/C=C/C")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Warnings())
	assert.Equal(t, 4, p.AtomCount())
}
