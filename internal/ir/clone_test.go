package ir_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressgen/stressgen/internal/ir"
)

func TestCloneExprConstIsIndependentAllocation(t *testing.T) {
	reg := newReg()
	c := ir.NewConst(ir.NewInt(reg, ir.Int, 5))
	clone := ir.CloneExpr(c)

	cc, ok := clone.(*ir.Const)
	require.True(t, ok)
	assert.NotSame(t, c, cc)
	assert.Equal(t, c.Val, cc.Val)
}

func TestCloneExprVarUseSharesUnderlyingVariable(t *testing.T) {
	reg := newReg()
	v := ir.NewVariable("x", ir.Int, ir.NewInt(reg, ir.Int, 1))
	use := ir.NewVarUse(v)

	clone := ir.CloneExpr(use)
	cu, ok := clone.(*ir.VarUse)
	require.True(t, ok)
	assert.NotSame(t, use, cu)
	assert.Same(t, v, cu.Var, "cloned VarUse must keep observing the same live Variable")

	v.SetCurrent(ir.NewInt(reg, ir.Int, 42))
	assert.Equal(t, int64(42), cu.ExprValue().Int64(reg))
}

func TestCloneExprBinaryDeepCopiesChildren(t *testing.T) {
	reg := newReg()
	rng := rand.New(rand.NewPCG(1, 1))
	lhs := ir.NewConst(ir.NewInt(reg, ir.Int, 1))
	rhs := ir.NewConst(ir.NewInt(reg, ir.Int, 2))
	bin, err := ir.NewBinary(reg, rng, ir.BinAdd, lhs, rhs)
	require.NoError(t, err)

	clone := ir.CloneExpr(bin)
	cb, ok := clone.(*ir.Binary)
	require.True(t, ok)
	assert.NotSame(t, bin, cb)
	assert.NotSame(t, bin.Lhs, cb.Lhs)
	assert.NotSame(t, bin.Rhs, cb.Rhs)
	assert.Equal(t, bin.ExprValue(), cb.ExprValue())
}

func TestCloneExprMemberAccessChainIsIndependentSlice(t *testing.T) {
	leaf := ir.NewVariable("leaf", ir.Int, ir.NewInt(newReg(), ir.Int, 0))
	m := ir.NewMemberAccess("s", []ir.AccessStep{{Kind: ir.AccessMember, Name: "a"}}, leaf)

	clone := ir.CloneExpr(m).(*ir.MemberAccess)
	clone.Chain[0].Name = "mutated"

	assert.Equal(t, "a", m.Chain[0].Name, "cloning must not let mutation of the clone's chain reach the original")
	assert.Same(t, leaf, clone.LeafVar)
}
