package emit_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressgen/stressgen/internal/emit"
	"github.com/stressgen/stressgen/internal/ir"
)

func newReg() *ir.Registry { return ir.NewRegistry(true, ir.LangC11) }

func TestExprFullyParenthesizesBinary(t *testing.T) {
	reg := newReg()
	rng := rand.New(rand.NewPCG(1, 1))
	lhs := ir.NewConst(ir.NewInt(reg, ir.Int, 1))
	rhs := ir.NewConst(ir.NewInt(reg, ir.Int, 2))

	b, err := ir.NewBinary(reg, rng, ir.BinAdd, lhs, rhs)
	require.NoError(t, err)

	e := emit.New(reg, ir.LangC11)
	assert.Equal(t, "(1) + (2)", e.Expr(b))
}

func TestConstLiteralSignedMinUsesPlusOneMinusOneTrick(t *testing.T) {
	reg := newReg()
	e := emit.New(reg, ir.LangC11)
	minInt := reg.Get(ir.Int).Min.Int64()
	c := ir.NewConst(ir.NewInt(reg, ir.Int, minInt))

	text := e.Expr(c)
	assert.Contains(t, text, "- 1")
	assert.NotContains(t, text, "-2147483648", "must never print the raw MIN literal directly")
}

func TestConstLiteralBoolSpelling(t *testing.T) {
	reg := newReg()
	e := emit.New(reg, ir.LangC11)
	assert.Equal(t, "true", e.Expr(ir.NewConst(ir.NewInt(reg, ir.Bool, 1))))
	assert.Equal(t, "false", e.Expr(ir.NewConst(ir.NewInt(reg, ir.Bool, 0))))
}

func TestUnaryPostIncSpelling(t *testing.T) {
	reg := newReg()
	v := ir.NewVarUse(ir.NewVariable("x", ir.Int, ir.NewInt(reg, ir.Int, 1)))
	u, err := ir.NewUnary(reg, ir.UnaryPostInc, v)
	require.NoError(t, err)

	e := emit.New(reg, ir.LangC11)
	assert.Equal(t, "(x)++", e.Expr(u))
}

func TestMemberAccessTextChainsDotsAndBrackets(t *testing.T) {
	reg := newReg()
	leaf := ir.NewVariable("leaf", ir.Int, ir.NewInt(reg, ir.Int, 0))
	m := ir.NewMemberAccess("s", []ir.AccessStep{
		{Kind: ir.AccessMember, Name: "a"},
		{Kind: ir.AccessElement, Index: 3},
		{Kind: ir.AccessMember, Name: "b"},
	}, leaf)

	e := emit.New(reg, ir.LangC11)
	assert.Equal(t, "s.a[3].b", e.Expr(m))
}

func TestStructTypeDefSpellsBitFieldAndStatic(t *testing.T) {
	st := &ir.StructType{
		Name: "S",
		Members: []*ir.StructMember{
			{Name: "flag", ScalarType: ir.UInt, IsBitField: true, BitFieldSize: 4},
			{Name: "shared", ScalarType: ir.Int, IsStatic: true},
		},
	}
	e := emit.New(newReg(), ir.LangC11)
	text := e.StructTypeDef(st)
	assert.Contains(t, text, "unsigned int flag : 4;")
	assert.Contains(t, text, "static int shared;")
}

func TestFunctionWrapsScopeInVoidFunction(t *testing.T) {
	reg := newReg()
	scope := ir.NewScope()
	v := ir.NewVariable("x", ir.Int, ir.NewInt(reg, ir.Int, 0))
	scope.Append(ir.NewDecl(reg, v, ir.Int, ir.NewConst(ir.NewInt(reg, ir.Int, 5)), false))

	e := emit.New(reg, ir.LangC11)
	text := e.Function("test_func", scope)
	assert.Contains(t, text, "void test_func(void) {")
	assert.Contains(t, text, "int x = 5;")
}

func TestIfTextEmitsElseOnlyWhenPresent(t *testing.T) {
	reg := newReg()
	e := emit.New(reg, ir.LangC11)

	cond := ir.NewConst(ir.NewInt(reg, ir.Bool, 1))
	then := ir.NewScope()
	noElse := ir.NewIf(cond, then, nil, true)
	assert.NotContains(t, e.Stmt(noElse, 0), "else")

	withElse := ir.NewIf(cond, then, ir.NewScope(), true)
	assert.Contains(t, e.Stmt(withElse, 0), "} else {")
}
