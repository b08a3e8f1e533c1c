package gencontext

import (
	"math/rand/v2"

	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

// ScopeKind distinguishes the reason a child Context was created, mirroring
// spec.md §4.8/§4.9's statement-kind-driven descent.
type ScopeKind int

const (
	ScopeFunction ScopeKind = iota
	ScopeIfThen
	ScopeIfElse
)

// Context is the scope-local generation state threaded through recursive
// generation: immutable extern tables, a mutable local symbol table, the
// enclosing parent, nesting counters, and whether this scope actually
// executes (spec.md §4.8).
type Context struct {
	Rng *rand.Rand

	// Input/mixed/output tables are populated once at the top and shared
	// by reference down the whole tree; they are never mutated after the
	// top-level generator finishes populating them.
	Input  *SymbolTable
	Mixed  *SymbolTable
	Output *SymbolTable

	Local *SymbolTable

	Parent *Context
	Kind   ScopeKind

	ScopeDepth int
	IfDepth    int
	Taken      bool

	Policy *genpolicy.Policy
}

// NewRoot creates the top-level context: no parent, depth zero, always
// taken, holding the freshly populated extern tables.
func NewRoot(rng *rand.Rand, policy *genpolicy.Policy, input, mixed, output *SymbolTable) *Context {
	return &Context{
		Rng:    rng,
		Input:  input,
		Mixed:  mixed,
		Output: output,
		Local:  NewSymbolTable(),
		Taken:  true,
		Policy: policy,
	}
}

// Descend creates a child context for a nested scope: a fresh local symbol
// table (so locals declared inside the child scope don't leak back out),
// the same extern tables and policy by default, and depth/taken derived
// from kind and cond (spec.md §4.8's "child = new(parent, kind)").
func (c *Context) Descend(kind ScopeKind, takenHere bool) *Context {
	child := &Context{
		Rng:    c.Rng,
		Input:  c.Input,
		Mixed:  c.Mixed,
		Output: c.Output,
		Local:  NewSymbolTable(),
		Parent: c,
		Kind:   kind,
		Policy: c.Policy,
	}
	child.ScopeDepth = c.ScopeDepth + 1
	if kind == ScopeIfThen || kind == ScopeIfElse {
		child.IfDepth = c.IfDepth + 1
	} else {
		child.IfDepth = c.IfDepth
	}
	child.Taken = c.Taken && takenHere
	return child
}

// WithPolicy returns a shallow copy of c using policy instead of c.Policy,
// letting a caller apply a single-statement pattern (spec.md §4.7) without
// affecting sibling statements.
func (c *Context) WithPolicy(policy *genpolicy.Policy) *Context {
	cp := *c
	cp.Policy = policy
	return &cp
}

// IsTaken reports whether code generated in this context actually executes
// at runtime (spec.md §4.8's "query taken").
func (c *Context) IsTaken() bool { return c.Taken }

// VisibleVariables returns every scalar variable reachable from this
// context: locals in this scope and every ancestor scope, plus the mixed
// and output extern tables (inputs are read-only so they are included too;
// spec.md §4.8/§3 draw no distinction for use-expression purposes).
func (c *Context) VisibleVariables() []*ir.Variable {
	var out []*ir.Variable
	for scope := c; scope != nil; scope = scope.Parent {
		out = append(out, scope.Local.Variables...)
	}
	out = append(out, c.Input.Variables...)
	out = append(out, c.Mixed.Variables...)
	out = append(out, c.Output.Variables...)
	return out
}

// PickAnyVariable returns a uniformly chosen variable from the full
// visibility set, or ok=false if nothing is visible yet.
func (c *Context) PickAnyVariable() (v *ir.Variable, ok bool) {
	all := c.VisibleVariables()
	if len(all) == 0 {
		return nil, false
	}
	return all[c.Rng.IntN(len(all))], true
}
