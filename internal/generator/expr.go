package generator

import (
	"github.com/stressgen/stressgen/internal/gencontext"
	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

// nodeChoice enumerates the non-leaf shapes the generator can emit at a
// given recursion point (spec.md §4.9).
type nodeChoice int

const (
	choiceCSE nodeChoice = iota
	choiceUnary
	choiceBinary
	choiceTernary
	choiceCast
)

// generateExpr builds an expression that evaluates to targetTag, inserting
// an implicit cast around whatever "natural" type the recursive build
// produced if it doesn't already match (spec.md §4.5's type propagation
// happening at every construction step).
func (g *Generator) generateExpr(ctx *gencontext.Context, targetTag ir.TypeTag, depth int) (ir.Expr, error) {
	raw, err := g.generateRaw(ctx, targetTag, depth)
	if err != nil {
		return nil, err
	}
	if raw.ExprType() != targetTag {
		return ir.NewTypeCast(g.Reg, raw, targetTag, true), nil
	}
	return raw, nil
}

func (g *Generator) atLeaf(ctx *gencontext.Context, depth int) bool {
	return depth >= ctx.Policy.MaxExprDepth || g.budgetExhausted()
}

func (g *Generator) generateRaw(ctx *gencontext.Context, targetTag ir.TypeTag, depth int) (ir.Expr, error) {
	g.totalExprCount++
	g.funcExprCount++

	if g.atLeaf(ctx, depth) {
		return g.generateLeaf(ctx, targetTag), nil
	}

	switch g.pickNodeChoice(ctx) {
	case choiceCSE:
		if e, ok := ctx.Policy.PickCSETemplate(g.Rng); ok {
			return e, nil
		}
		fallthrough
	case choiceUnary:
		return g.generateUnary(ctx, targetTag, depth)
	case choiceTernary:
		return g.generateTernary(ctx, targetTag, depth)
	case choiceCast:
		return g.generateCast(ctx, targetTag, depth)
	default:
		return g.generateBinary(ctx, targetTag, depth)
	}
}

func (g *Generator) pickNodeChoice(ctx *gencontext.Context) nodeChoice {
	if len(ctx.Policy.CSEPool) > 0 && genpolicy.RollPercent(g.Rng, ctx.Policy.CSEReuseProb) {
		return choiceCSE
	}
	switch g.Rng.IntN(10) {
	case 0:
		return choiceUnary
	case 1:
		return choiceTernary
	case 2:
		return choiceCast
	default:
		return choiceBinary
	}
}

// generateLeaf emits a Const or a reference to a live data object
// (spec.md §4.9's expression-leaf rule).
func (g *Generator) generateLeaf(ctx *gencontext.Context, targetTag ir.TypeTag) ir.Expr {
	if !genpolicy.RollPercent(g.Rng, ctx.Policy.LeafConstProb) {
		if e, ok := g.generateDataUse(ctx); ok {
			return e
		}
	}
	return ir.NewConst(randomValue(g.Reg, targetTag, g.Rng))
}

// generateDataUse references a member of a visible struct instance with
// probability MemberUseProb percent (when one exists), else a visible
// variable.
func (g *Generator) generateDataUse(ctx *gencontext.Context) (ir.Expr, bool) {
	if genpolicy.RollPercent(g.Rng, ctx.Policy.MemberUseProb) {
		if inst, ok := pickVisibleStructInstance(ctx); ok {
			if e, ok := g.memberAccessExpr(inst); ok {
				return e, true
			}
		}
	}
	v, ok := ctx.PickAnyVariable()
	if !ok {
		return nil, false
	}
	return ir.NewVarUse(v), true
}

func pickVisibleStructInstance(ctx *gencontext.Context) (*ir.StructInstance, bool) {
	var all []*ir.StructInstance
	for scope := ctx; scope != nil; scope = scope.Parent {
		all = append(all, scope.Local.StructInstances...)
	}
	all = append(all, ctx.Input.StructInstances...)
	all = append(all, ctx.Mixed.StructInstances...)
	all = append(all, ctx.Output.StructInstances...)
	if len(all) == 0 {
		return nil, false
	}
	return all[ctx.Rng.IntN(len(all))], true
}

// memberAccessExpr walks down through nested struct instances to a scalar
// leaf member, recording the chain walked (spec.md §4.5's MemberAccess).
func (g *Generator) memberAccessExpr(root *ir.StructInstance) (ir.Expr, bool) {
	var chain []ir.AccessStep
	cur := root
	for {
		idx := g.Rng.IntN(len(cur.Type.Members))
		member := cur.Type.Members[idx]
		chain = append(chain, ir.AccessStep{Kind: ir.AccessMember, Name: member.Name, Index: idx})
		obj := cur.Member(idx)
		switch v := obj.(type) {
		case *ir.Variable:
			return ir.NewMemberAccess(root.Name, chain, v), true
		case *ir.StructInstance:
			cur = v
			continue
		default:
			return nil, false
		}
	}
}

func (g *Generator) generateUnary(ctx *gencontext.Context, targetTag ir.TypeTag, depth int) (ir.Expr, error) {
	op := ctx.Policy.PickUnaryOp(g.Rng)
	child, err := g.generateExpr(ctx, targetTag, depth+1)
	if err != nil {
		return nil, err
	}
	return ir.NewUnary(g.Reg, op, child)
}

func (g *Generator) generateBinary(ctx *gencontext.Context, targetTag ir.TypeTag, depth int) (ir.Expr, error) {
	op := ctx.Policy.PickBinaryOp(g.Rng)
	lhs, err := g.generateExpr(ctx, targetTag, depth+1)
	if err != nil {
		return nil, err
	}
	rhs, err := g.generateExpr(ctx, targetTag, depth+1)
	if err != nil {
		return nil, err
	}
	bin, err := ir.NewBinary(g.Reg, g.Rng, op, lhs, rhs)
	if err != nil {
		return nil, err
	}
	if ctx.Policy.CSECount.Max > 0 && len(ctx.Policy.CSEPool) < ctx.Policy.CSECount.Max && genpolicy.RollPercent(g.Rng, 5) {
		ctx.Policy.AddCSETemplate(bin)
	}
	return bin, nil
}

func (g *Generator) generateTernary(ctx *gencontext.Context, targetTag ir.TypeTag, depth int) (ir.Expr, error) {
	cond, err := g.generateExpr(ctx, g.Reg.TruthType(), depth+1)
	if err != nil {
		return nil, err
	}
	lhs, err := g.generateExpr(ctx, targetTag, depth+1)
	if err != nil {
		return nil, err
	}
	rhs, err := g.generateExpr(ctx, targetTag, depth+1)
	if err != nil {
		return nil, err
	}
	return ir.NewConditional(g.Reg, cond, lhs, rhs), nil
}

func (g *Generator) generateCast(ctx *gencontext.Context, targetTag ir.TypeTag, depth int) (ir.Expr, error) {
	sourceTag := ctx.Policy.PickScalarType(g.Rng)
	child, err := g.generateExpr(ctx, sourceTag, depth+1)
	if err != nil {
		return nil, err
	}
	return ir.NewTypeCast(g.Reg, child, targetTag, false), nil
}
