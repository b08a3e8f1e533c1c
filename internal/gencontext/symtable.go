// Package gencontext implements the scope-local generation state: symbol
// tables of live data objects plus the Context chain that threads policy,
// nesting depth, and reachability through recursive generation
// (spec.md §4.8/§3's SymbolTable).
package gencontext

import (
	"math/rand/v2"

	"github.com/stressgen/stressgen/internal/ir"
)

// SymbolTable buckets every data object a scope can see: free-standing
// scalar variables, struct types available for instantiation, struct
// instances, and array instances (spec.md §3).
type SymbolTable struct {
	Variables       []*ir.Variable
	StructTypes     []*ir.StructType
	StructInstances []*ir.StructInstance
	ArrayInstances  []*ir.ArrayInstance
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

func (t *SymbolTable) AddVariable(v *ir.Variable)              { t.Variables = append(t.Variables, v) }
func (t *SymbolTable) AddStructType(st *ir.StructType)         { t.StructTypes = append(t.StructTypes, st) }
func (t *SymbolTable) AddStructInstance(s *ir.StructInstance)  { t.StructInstances = append(t.StructInstances, s) }
func (t *SymbolTable) AddArrayInstance(a *ir.ArrayInstance)    { t.ArrayInstances = append(t.ArrayInstances, a) }

// PickVariable returns a uniformly chosen variable visible in this table,
// or ok=false if none exist.
func (t *SymbolTable) PickVariable(rng *rand.Rand) (v *ir.Variable, ok bool) {
	if len(t.Variables) == 0 {
		return nil, false
	}
	return t.Variables[rng.IntN(len(t.Variables))], true
}

// PickStructInstance returns a uniformly chosen struct instance, or
// ok=false if none exist.
func (t *SymbolTable) PickStructInstance(rng *rand.Rand) (s *ir.StructInstance, ok bool) {
	if len(t.StructInstances) == 0 {
		return nil, false
	}
	return t.StructInstances[rng.IntN(len(t.StructInstances))], true
}

// PickArrayInstance returns a uniformly chosen array instance, or
// ok=false if none exist.
func (t *SymbolTable) PickArrayInstance(rng *rand.Rand) (a *ir.ArrayInstance, ok bool) {
	if len(t.ArrayInstances) == 0 {
		return nil, false
	}
	return t.ArrayInstances[rng.IntN(len(t.ArrayInstances))], true
}

// HasAnyObject reports whether the table holds at least one usable object
// of any kind (used by the generator to decide whether a data leaf is even
// possible, spec.md §4.9).
func (t *SymbolTable) HasAnyObject() bool {
	return len(t.Variables) > 0 || len(t.StructInstances) > 0 || len(t.ArrayInstances) > 0
}
