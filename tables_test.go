package molsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamTableTypes(t *testing.T) {
	p := NewParamTable()
	p.AddProp("fc", FloatType)
	p.AddProp("n", IntType)
	p.AddProp("label", StringType)
	row := p.AddParam()

	require.NoError(t, p.SetFloat(row, "fc", 100.5))
	require.NoError(t, p.SetInt(row, "n", 3))
	require.NoError(t, p.SetString(row, "label", "ca-ca"))
	assert.Equal(t, 100.5, p.Float(row, "fc"))
	assert.Equal(t, int64(3), p.Int(row, "n"))
	assert.Equal(t, "ca-ca", p.String(row, "label"))

	// type mismatches are structural errors
	assert.True(t, IsKind(p.SetFloat(row, "n", 1), ErrStructure))
	// unknown rows and columns are lookup misses
	assert.True(t, IsKind(p.SetFloat(99, "fc", 1), ErrLookup))
	assert.True(t, IsKind(p.SetFloat(row, "nope", 1), ErrLookup))
}

func TestTermTableArity(t *testing.T) {
	s := buildMol(t, []int{6, 6}, [][3]int{{0, 1, 1}})
	tb, err := s.AddTable("angle_harm", 3)
	require.NoError(t, err)
	_, err = tb.AddTerm([]int{0, 1}, UnassignedParam)
	assert.True(t, IsKind(err, ErrStructure))
	_, err = tb.AddTerm([]int{0, 1, 7}, UnassignedParam)
	assert.True(t, IsKind(err, ErrStructure))

	// re-adding an existing table returns it when the arity matches
	again, err := s.AddTable("angle_harm", 3)
	require.NoError(t, err)
	assert.Same(t, tb, again)
	_, err = s.AddTable("angle_harm", 2)
	assert.True(t, IsKind(err, ErrStructure))
}

func TestCoalesceTables(t *testing.T) {
	s := buildMol(t, []int{6, 6, 6}, [][3]int{{0, 1, 1}, {1, 2, 1}})
	tb, err := s.AddTable("stretch_harm", 2)
	require.NoError(t, err)
	params := tb.Params()
	params.AddProp("r0", FloatType)
	r1 := params.AddParam()
	r2 := params.AddParam()
	require.NoError(t, params.SetFloat(r1, "r0", 1.54))
	require.NoError(t, params.SetFloat(r2, "r0", 1.54))
	t1, err := tb.AddTerm([]int{0, 1}, r1)
	require.NoError(t, err)
	t2, err := tb.AddTerm([]int{1, 2}, r2)
	require.NoError(t, err)

	s.CoalesceTables()
	assert.Equal(t, tb.Term(t1).Param, tb.Term(t2).Param)
}

func TestAuxTableRefcount(t *testing.T) {
	s := NewSystem()
	pt := NewParamTable()
	s.AddAuxTable("cmap1", pt)
	assert.Equal(t, []string{"cmap1"}, s.AuxTableNames())
	assert.Same(t, pt, s.AuxTable("cmap1"))

	pt.refs++ // someone else holds it
	assert.True(t, IsKind(s.DelAuxTable("cmap1"), ErrStructure))
	pt.refs--
	require.NoError(t, s.DelAuxTable("cmap1"))
	assert.Nil(t, s.AuxTable("cmap1"))
}
