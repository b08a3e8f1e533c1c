package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressgen/stressgen/internal/gencontext"
	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

func TestPopulateStructTypePoolRespectsNestingDepth(t *testing.T) {
	reg := ir.NewRegistry(true, ir.LangC11)
	policy := genpolicy.Default()
	policy.StructTypeCount = genpolicy.WeightedInt{Min: 10, Max: 10}
	policy.MaxStructDepth = 2

	g := New(reg, policy, 5)
	pool := g.populateStructTypePool()

	require.Len(t, pool, 10)
	for _, st := range pool {
		assert.LessOrEqual(t, st.NestingDepth(), policy.MaxStructDepth)
	}
}

func TestPopulateVariablesFillsAllThreeTables(t *testing.T) {
	reg := ir.NewRegistry(true, ir.LangC11)
	policy := genpolicy.Default()
	policy.InputVarCount = genpolicy.WeightedInt{Min: 3, Max: 3}
	policy.MixedVarCount = genpolicy.WeightedInt{Min: 4, Max: 4}
	policy.OutputVarCount = genpolicy.WeightedInt{Min: 2, Max: 2}

	g := New(reg, policy, 5)
	prog := &Program{
		Input:  gencontext.NewSymbolTable(),
		Mixed:  gencontext.NewSymbolTable(),
		Output: gencontext.NewSymbolTable(),
	}
	g.populateVariables(prog)

	assert.Len(t, prog.Input.Variables, 3)
	assert.Len(t, prog.Mixed.Variables, 4)
	assert.Len(t, prog.Output.Variables, 2)
}

func TestNameGenNeverRepeatsWithinAPrefix(t *testing.T) {
	n := newNameGen()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name := n.next("var_")
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestNameGenKeepsPrefixesIndependent(t *testing.T) {
	n := newNameGen()
	assert.Equal(t, "a0", n.next("a"))
	assert.Equal(t, "b0", n.next("b"))
	assert.Equal(t, "a1", n.next("a"))
}
