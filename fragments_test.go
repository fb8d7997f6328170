package molsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateFragids(t *testing.T) {
	// two waters and a lone ion
	zs := []int{8, 1, 1, 8, 1, 1, 11}
	bonds := [][3]int{{0, 1, 1}, {0, 2, 1}, {3, 4, 1}, {3, 5, 1}}
	s := buildMol(t, zs, bonds)

	assert.Equal(t, 3, s.UpdateFragids())
	assert.Equal(t, 0, s.Fragid(0))
	assert.Equal(t, 0, s.Fragid(2))
	assert.Equal(t, 1, s.Fragid(3))
	assert.Equal(t, 2, s.Fragid(6))
	assert.Equal(t, -1, s.Fragid(99))
}

func TestFragidsInvalidateOnEdit(t *testing.T) {
	s := buildMol(t, []int{6, 6}, [][3]int{{0, 1, 1}})
	assert.Equal(t, 1, s.UpdateFragids())
	require.NoError(t, s.DelBond(0))
	assert.Equal(t, 2, s.UpdateFragids())
	_, err := s.AddBond(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.UpdateFragids())
}

func TestFragmentAtoms(t *testing.T) {
	zs := []int{8, 1, 1, 11}
	bonds := [][3]int{{0, 1, 1}, {0, 2, 1}}
	s := buildMol(t, zs, bonds)
	frags := s.FragmentAtoms()
	require.Len(t, frags, 2)
	assert.Equal(t, []int{0, 1, 2}, frags[0])
	assert.Equal(t, []int{3}, frags[1])
}

func TestFindDistinctFragments(t *testing.T) {
	// two waters and one ammonia: two distinct topologies
	zs := []int{8, 1, 1, 8, 1, 1, 7, 1, 1, 1}
	bonds := [][3]int{
		{0, 1, 1}, {0, 2, 1},
		{3, 4, 1}, {3, 5, 1},
		{6, 7, 1}, {6, 8, 1}, {6, 9, 1},
	}
	s := buildMol(t, zs, bonds)
	distinct := s.FindDistinctFragments()
	require.Len(t, distinct, 2)
	sizes := make(map[int]int)
	for _, fragids := range distinct {
		sizes[len(fragids)]++
	}
	// one hash with the two waters, one with the ammonia
	assert.Equal(t, map[int]int{1: 1, 2: 1}, sizes)
}
