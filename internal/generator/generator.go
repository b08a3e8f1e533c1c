// Package generator implements the top-down recursive random construction
// of expression and statement trees described in spec.md §4.9: it turns a
// seed, a Registry, and a GenPolicy into a complete, UB-free IR ready for
// the emitter.
package generator

import (
	"math/rand/v2"

	"github.com/stressgen/stressgen/internal/gencontext"
	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

// Program is the fully generated, UB-free intermediate representation: the
// three extern symbol tables plus one generated function body
// (spec.md §4.9/§4.11).
type Program struct {
	Seed   uint64
	Reg    *ir.Registry
	Policy *genpolicy.Policy

	Input  *gencontext.SymbolTable
	Mixed  *gencontext.SymbolTable
	Output *gencontext.SymbolTable

	StructTypes []*ir.StructType
	Body        *ir.Scope
}

// Generator holds the shared, single-threaded mutable state of one
// generation run: the random source, expression-count budgets, and the
// name generator (spec.md §4.9/§5).
type Generator struct {
	Reg    *ir.Registry
	Policy *genpolicy.Policy
	Rng    *rand.Rand

	names *nameGen

	totalExprCount int
	funcExprCount  int
}

// New returns a Generator seeded deterministically from seed.
func New(reg *ir.Registry, policy *genpolicy.Policy, seed uint64) *Generator {
	return &Generator{
		Reg:    reg,
		Policy: policy,
		Rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		names:  newNameGen(),
	}
}

// Generate runs the full pipeline: populate the three extern symbol
// tables, then recursively build one function body (spec.md §4.9's
// "the top generator fills three symbol tables ... then recursively
// builds a scope").
func (g *Generator) Generate(seed uint64) (*Program, error) {
	prog := &Program{
		Seed:   seed,
		Reg:    g.Reg,
		Policy: g.Policy,
		Input:  gencontext.NewSymbolTable(),
		Mixed:  gencontext.NewSymbolTable(),
		Output: gencontext.NewSymbolTable(),
	}

	prog.StructTypes = g.populateStructTypePool()
	g.populateVariables(prog)
	g.populateStructInstances(prog)
	g.populateArrayInstances(prog)

	ctx := gencontext.NewRoot(g.Rng, g.Policy, prog.Input, prog.Mixed, prog.Output)
	g.funcExprCount = 0
	body, err := g.generateScope(ctx)
	if err != nil {
		return nil, err
	}
	prog.Body = body
	return prog, nil
}

func (g *Generator) budgetExhausted() bool {
	return g.totalExprCount >= g.Policy.MaxTotalExprs || g.funcExprCount >= g.Policy.MaxFuncExprs
}
