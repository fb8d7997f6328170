package molsys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildMol assembles a single-residue system from atomic numbers and
// (i, j, order) bond triples.
func buildMol(t *testing.T, zs []int, bonds [][3]int) *System {
	t.Helper()
	s := NewSystem()
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
	return s
}

// benzene returns C6H6 with the given ring bond orders (length 6;
// ring bond k joins carbons k and (k+1)%6). Carbon i is atom i,
// its hydrogen atom 6+i.
func benzene(t *testing.T, orders [6]int) *System {
	t.Helper()
	zs := make([]int, 12)
	for i := 0; i < 6; i++ {
		zs[i] = 6
		zs[6+i] = 1
	}
	var bonds [][3]int
	for i := 0; i < 6; i++ {
		bonds = append(bonds, [3]int{i, (i + 1) % 6, orders[i]})
		bonds = append(bonds, [3]int{i, 6 + i, 1})
	}
	return buildMol(t, zs, bonds)
}

// kekulized alternating orders for a six-ring
var kekule = [6]int{2, 1, 2, 1, 2, 1}
