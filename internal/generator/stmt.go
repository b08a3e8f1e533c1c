package generator

import (
	"errors"

	"github.com/stressgen/stressgen/internal/gencontext"
	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

var errNoVariable = errors.New("generator: no variable visible in this scope")

// generateScope builds one Scope's statement list, stopping at the policy's
// sampled length or when the shared budgets run dry (spec.md §4.9).
func (g *Generator) generateScope(ctx *gencontext.Context) (*ir.Scope, error) {
	scope := ir.NewScope()
	n := ctx.Policy.ScopeStmtCount.Sample(g.Rng)
	for i := 0; i < n; i++ {
		if g.budgetExhausted() {
			break
		}
		stmt, err := g.generateStmt(ctx)
		if err != nil {
			return nil, err
		}
		scope.Append(stmt)
	}
	return scope, nil
}

// generateStmt picks a statement kind per policy and builds it
// (spec.md §4.6/§4.9).
func (g *Generator) generateStmt(ctx *gencontext.Context) (ir.Stmt, error) {
	kind := ctx.Policy.WeightedStmtKind(g.Rng)
	if kind == genpolicy.StmtIf && ctx.IfDepth >= ctx.Policy.MaxIfDepth {
		kind = genpolicy.StmtAssign
	}
	switch kind {
	case genpolicy.StmtDecl:
		return g.generateDecl(ctx)
	case genpolicy.StmtIf:
		return g.generateIf(ctx)
	default:
		stmt, err := g.generateAssignStmt(ctx)
		if err != nil {
			// No mixed/output assignment target exists, or building the
			// assignment failed; fall back to a declaration instead.
			return g.generateDecl(ctx)
		}
		return stmt, nil
	}
}

func (g *Generator) generateDecl(ctx *gencontext.Context) (ir.Stmt, error) {
	tag := ctx.Policy.PickScalarType(g.Rng)
	name := g.names.next("var_")
	initExpr, err := g.generateExpr(ctx, tag, 0)
	if err != nil {
		return nil, err
	}
	v := ir.NewVariable(name, tag, initExpr.ExprValue())
	decl := ir.NewDecl(g.Reg, v, tag, initExpr, false)
	ctx.Local.AddVariable(v)
	return decl, nil
}

func (g *Generator) generateAssignStmt(ctx *gencontext.Context) (ir.Stmt, error) {
	lhs, ok := pickAssignTarget(ctx)
	if !ok {
		return nil, errNoVariable
	}
	rhs, err := g.generateExpr(ctx, lhs.ExprType(), 0)
	if err != nil {
		return nil, err
	}
	assign, err := ir.NewAssign(g.Reg, g.Rng, lhs, rhs, ctx.IsTaken())
	if err != nil {
		return nil, err
	}
	return ir.NewExprStmt(assign), nil
}

// pickAssignTarget chooses an assignment-statement lhs restricted to a
// mixed or output variable, a member of a mixed/output struct, or an
// element of a mixed/output array (spec.md §4.6); extern input variables
// and locals are never targets, since only mixed/output state is meant to
// reach the checksum. The mixed-vs-output table and the shape within it
// are sampled from the policy (spec.md §4.7's OutDataCategoryID/
// OutDataTypeID); a kind with no matching instance in the chosen table
// falls back to a plain variable the way the original's
// check_ctx_for_zero_size does, and an entirely empty table falls back to
// the other one.
func pickAssignTarget(ctx *gencontext.Context) (ir.Expr, bool) {
	primary, secondary := ctx.Mixed, ctx.Output
	if !genpolicy.RollPercent(ctx.Rng, ctx.Policy.OutMixProb) {
		primary, secondary = ctx.Output, ctx.Mixed
	}
	kind := ctx.Policy.PickOutDataKind(ctx.Rng)

	for _, tbl := range []*gencontext.SymbolTable{primary, secondary} {
		if targets := collectAssignTargets(tbl, kind); len(targets) > 0 {
			return targets[ctx.Rng.IntN(len(targets))], true
		}
		if targets := collectAssignTargets(tbl, genpolicy.OutDataVar); len(targets) > 0 {
			return targets[ctx.Rng.IntN(len(targets))], true
		}
	}
	return nil, false
}

// collectAssignTargets returns every lvalue expression of the requested
// shape available in tbl.
func collectAssignTargets(tbl *gencontext.SymbolTable, kind genpolicy.OutDataKind) []ir.Expr {
	var out []ir.Expr
	switch kind {
	case genpolicy.OutDataVar:
		for _, v := range tbl.Variables {
			out = append(out, ir.NewVarUse(v))
		}
	case genpolicy.OutDataVarInArray:
		for _, arr := range tbl.ArrayInstances {
			if !arr.Type.IsScalarElem() {
				continue
			}
			for _, leaf := range ir.ArrayLeaves(arr) {
				out = append(out, leaf)
			}
		}
	case genpolicy.OutDataStruct:
		for _, si := range tbl.StructInstances {
			for _, leaf := range ir.StructLeaves(si.Name, si) {
				out = append(out, leaf)
			}
		}
	case genpolicy.OutDataStructInArray:
		for _, arr := range tbl.ArrayInstances {
			if arr.Type.IsScalarElem() {
				continue
			}
			for _, leaf := range ir.ArrayLeaves(arr) {
				out = append(out, leaf)
			}
		}
	}
	return out
}

func (g *Generator) generateIf(ctx *gencontext.Context) (ir.Stmt, error) {
	cond, err := g.generateExpr(ctx, g.Reg.TruthType(), 0)
	if err != nil {
		return nil, err
	}

	thenCtx := ctx.Descend(gencontext.ScopeIfThen, !cond.ExprValue().IsZero())
	thenScope, err := g.generateScope(thenCtx)
	if err != nil {
		return nil, err
	}

	var elseScope *ir.Scope
	if genpolicy.RollPercent(g.Rng, 50) {
		elseCtx := ctx.Descend(gencontext.ScopeIfElse, cond.ExprValue().IsZero())
		elseScope, err = g.generateScope(elseCtx)
		if err != nil {
			return nil, err
		}
	}

	return ir.NewIf(cond, thenScope, elseScope, ctx.IsTaken()), nil
}
