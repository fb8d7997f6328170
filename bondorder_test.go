package molsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignBenzeneKekulizes(t *testing.T) {
	s := benzene(t, [6]int{1, 1, 1, 1, 1, 1})
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, TotalChargeUnspecified, 0))

	for i := 0; i < 6; i++ {
		assert.Equal(t, 0, s.Atom(i).FormalCharge, "carbon %d", i)
		// every carbon carries exactly one ring double bond
		prev := s.Bond(s.FindBond(i, (i+5)%6)).Order
		next := s.Bond(s.FindBond(i, (i+1)%6)).Order
		assert.Equal(t, 3, prev+next, "carbon %d", i)
		assert.Equal(t, 1, s.Bond(s.FindBond(i, 6+i)).Order)
	}
}

func TestAssignBenzeneResonance(t *testing.T) {
	s := benzene(t, [6]int{1, 1, 1, 1, 1, 1})
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, TotalChargeUnspecified, ComputeResonantCharges))
	for i := 0; i < 6; i++ {
		b := s.Bond(s.FindBond(i, (i+1)%6))
		assert.InDelta(t, 1.5, b.Resonant, 1e-9, "ring bond %d", i)
		assert.InDelta(t, 0, s.Atom(i).ResonantCharge, 1e-9)
	}
}

func TestAssignMethane(t *testing.T) {
	s := buildMol(t, []int{6, 1, 1, 1, 1},
		[][3]int{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}})
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, 0, 0))
	for _, id := range s.Atoms() {
		assert.Equal(t, 0, s.Atom(id).FormalCharge)
	}
}

func TestAssignMethaneCationInfeasible(t *testing.T) {
	s := buildMol(t, []int{6, 1, 1, 1, 1},
		[][3]int{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}})
	err := AssignBondOrderAndFormalCharge(s, nil, 1, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInfeasible))
	// the failed fragment keeps its input state
	for _, bid := range s.Bonds() {
		assert.Equal(t, 1, s.Bond(bid).Order)
	}
	for _, id := range s.Atoms() {
		assert.Equal(t, 0, s.Atom(id).FormalCharge)
	}
}

func TestAssignHydroxide(t *testing.T) {
	s := buildMol(t, []int{8, 1}, [][3]int{{0, 1, 1}})
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, -1, 0))
	assert.Equal(t, -1, s.Atom(0).FormalCharge)
	assert.Equal(t, 0, s.Atom(1).FormalCharge)
}

func TestAssignInfersCharge(t *testing.T) {
	// ammonium: four N-H bonds force a +1 on the nitrogen
	s := buildMol(t, []int{7, 1, 1, 1, 1},
		[][3]int{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}})
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, TotalChargeUnspecified, 0))
	assert.Equal(t, 1, s.Atom(0).FormalCharge)
}

func TestAssignCarbonDioxide(t *testing.T) {
	s := buildMol(t, []int{8, 6, 8}, [][3]int{{0, 1, 1}, {1, 2, 1}})
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, 0, 0))
	assert.Equal(t, 2, s.Bond(s.FindBond(0, 1)).Order)
	assert.Equal(t, 2, s.Bond(s.FindBond(1, 2)).Order)
	for _, id := range s.Atoms() {
		assert.Equal(t, 0, s.Atom(id).FormalCharge)
	}
}

func TestAssignAcetateResonance(t *testing.T) {
	// CH3-COO(-): the two carboxylate oxygens share the double bond
	zs := []int{6, 6, 8, 8, 1, 1, 1}
	bonds := [][3]int{
		{0, 1, 1}, {1, 2, 1}, {1, 3, 1},
		{0, 4, 1}, {0, 5, 1}, {0, 6, 1},
	}
	s := buildMol(t, zs, bonds)
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, -1, ComputeResonantCharges))
	assert.Equal(t, -1, s.Atom(2).FormalCharge+s.Atom(3).FormalCharge)
	assert.InDelta(t, 1.5, s.Bond(s.FindBond(1, 2)).Resonant, 1e-9)
	assert.InDelta(t, 1.5, s.Bond(s.FindBond(1, 3)).Resonant, 1e-9)
	assert.InDelta(t, -0.5, s.Atom(2).ResonantCharge, 1e-9)
	assert.InDelta(t, -0.5, s.Atom(3).ResonantCharge, 1e-9)
}

func TestAssignSubsetLeavesRestAlone(t *testing.T) {
	// water and carbon dioxide in one system; assign only the water
	zs := []int{8, 1, 1, 8, 6, 8}
	bonds := [][3]int{{0, 1, 1}, {0, 2, 1}, {3, 4, 1}, {4, 5, 1}}
	s := buildMol(t, zs, bonds)
	require.NoError(t, AssignBondOrderAndFormalCharge(s, []int{0, 1, 2}, TotalChargeUnspecified, 0))
	assert.Equal(t, 1, s.Bond(s.FindBond(3, 4)).Order)
}

func TestAssignTotalAcrossFragments(t *testing.T) {
	// hydroxide plus ammonium must land on a net charge of zero
	zs := []int{8, 1, 7, 1, 1, 1, 1}
	bonds := [][3]int{
		{0, 1, 1},
		{2, 3, 1}, {2, 4, 1}, {2, 5, 1}, {2, 6, 1},
	}
	s := buildMol(t, zs, bonds)
	require.NoError(t, AssignBondOrderAndFormalCharge(s, nil, 0, 0))
	assert.Equal(t, -1, s.Atom(0).FormalCharge)
	assert.Equal(t, 1, s.Atom(2).FormalCharge)
}

func TestChargeOptions(t *testing.T) {
	// carbon with four bonds has no choice
	opts := chargeOptions(6, 4)
	require.Len(t, opts, 1)
	assert.Equal(t, 0, opts[0].q)
	// trivalent carbon can be an anion or a cation, never neutral
	for _, o := range chargeOptions(6, 3) {
		assert.NotEqual(t, 0, o.q)
	}
	// a hydrogen with two bonds is impossible
	assert.Empty(t, chargeOptions(1, 2))
	// bare sodium gives up its electron
	opts = chargeOptions(11, 0)
	found := false
	for _, o := range opts {
		if o.q == 1 {
			found = true
		}
	}
	assert.True(t, found)
}
