package generator

import (
	"strconv"

	"github.com/stressgen/stressgen/internal/gencontext"
	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

// populateStructTypePool builds the shared pool of struct types available
// to every table (spec.md §4.9/original's form_extern_sym_table: struct
// types are generated once and shared across input/mixed/output). Types
// are built shallowest-first so nested members can reference an
// already-built type without ever cycling.
func (g *Generator) populateStructTypePool() []*ir.StructType {
	n := g.Policy.StructTypeCount.Sample(g.Rng)
	pool := make([]*ir.StructType, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, g.genStructType(pool))
	}
	return pool
}

// genStructType builds one struct type; nested struct-typed members are
// drawn only from pool (types already built), which bounds nesting depth
// naturally without recursion into not-yet-built types.
func (g *Generator) genStructType(pool []*ir.StructType) *ir.StructType {
	name := g.names.next("Struct")
	memberCount := g.Policy.StructMemberCount.Sample(g.Rng)
	if memberCount < 1 {
		memberCount = 1
	}
	st := &ir.StructType{Name: name, Members: make([]*ir.StructMember, 0, memberCount)}
	for i := 0; i < memberCount; i++ {
		st.Members = append(st.Members, g.genStructMember(pool, st, i))
	}
	return st
}

func (g *Generator) genStructMember(pool []*ir.StructType, owner *ir.StructType, index int) *ir.StructMember {
	memberName := "m" + strconv.Itoa(index)
	if len(pool) > 0 && owner.NestingDepth() < g.Policy.MaxStructDepth && genpolicy.RollPercent(g.Rng, 20) {
		nested := pool[g.Rng.IntN(len(pool))]
		if nested.NestingDepth()+1 <= g.Policy.MaxStructDepth {
			return &ir.StructMember{Name: memberName, StructType: nested}
		}
	}

	tag := g.Policy.PickScalarType(g.Rng)
	m := &ir.StructMember{Name: memberName, ScalarType: tag}
	if tag.IsInteger() && genpolicy.RollPercent(g.Rng, g.Policy.BitFieldProb) {
		width := g.Policy.BitFieldWidth.Sample(g.Rng)
		if width < 1 {
			width = 1
		}
		if width > 32 {
			width = 32
		}
		m.IsBitField = true
		m.BitFieldSize = width
		if !g.Reg.Lang.IsCpp() {
			// C restricts bit-field base types to int/unsigned int.
			if tag.IsSigned() {
				m.ScalarType = ir.Int
			} else {
				m.ScalarType = ir.UInt
			}
		}
	}
	if genpolicy.RollPercent(g.Rng, g.Policy.StaticMemberProb) {
		m.IsStatic = true
	}
	return m
}

// populateVariables fills the input/mixed/output scalar variable tables.
func (g *Generator) populateVariables(prog *Program) {
	fill := func(table *gencontext.SymbolTable, prefix string, count int) {
		for i := 0; i < count; i++ {
			tag := g.Policy.PickScalarType(g.Rng)
			name := g.names.next(prefix)
			v := ir.NewVariable(name, tag, randomValue(g.Reg, tag, g.Rng))
			table.AddVariable(v)
		}
	}
	fill(prog.Input, "var_inp_", g.Policy.InputVarCount.Sample(g.Rng))
	fill(prog.Mixed, "var_mix_", g.Policy.MixedVarCount.Sample(g.Rng))
	fill(prog.Output, "var_out_", g.Policy.OutputVarCount.Sample(g.Rng))
}

// populateStructInstances instantiates a handful of struct instances per
// table from the shared type pool, sharing static-member storage across
// every instance of the same type (spec.md §3/§4.4).
func (g *Generator) populateStructInstances(prog *Program) {
	if len(prog.StructTypes) == 0 {
		return
	}
	staticByType := make(map[*ir.StructType]*map[int]ir.DataObject, len(prog.StructTypes))
	sharedStatic := func(st *ir.StructType) *map[int]ir.DataObject {
		m, ok := staticByType[st]
		if !ok {
			fresh := make(map[int]ir.DataObject)
			m = &fresh
			staticByType[st] = m
		}
		return m
	}
	newInit := func(tag ir.TypeTag) ir.Value { return randomValue(g.Reg, tag, g.Rng) }

	fill := func(table *gencontext.SymbolTable, prefix string, count int) {
		for i := 0; i < count; i++ {
			st := prog.StructTypes[g.Rng.IntN(len(prog.StructTypes))]
			name := g.names.next(prefix)
			inst := ir.NewStructInstance(g.Reg, name, st, sharedStatic(st), newInit)
			table.AddStructInstance(inst)
		}
	}
	fill(prog.Input, "struct_inp_", g.Policy.StructTypeCount.Sample(g.Rng))
	fill(prog.Mixed, "struct_mix_", g.Policy.StructTypeCount.Sample(g.Rng))
	fill(prog.Output, "struct_out_", g.Policy.StructTypeCount.Sample(g.Rng))
}

// populateArrayInstances builds a handful of array instances per table,
// picking a kind per policy and filling every element eagerly (spec.md
// §3/§4.4 allows lazy fill; the generator fills immediately since every
// element needs an initial value up front for the checksum to be stable).
func (g *Generator) populateArrayInstances(prog *Program) {
	newInit := func(tag ir.TypeTag) ir.Value { return randomValue(g.Reg, tag, g.Rng) }

	fillOne := func(table *gencontext.SymbolTable, prefix string) {
		count := g.Policy.ArrayCount.Sample(g.Rng)
		for i := 0; i < count; i++ {
			at := g.genArrayType(prog.StructTypes)
			name := g.names.next(prefix)
			inst := ir.NewArrayInstance(name, at)
			for e := 0; e < at.Count; e++ {
				if at.IsScalarElem() {
					inst.SetElem(e, ir.NewVariable(inst.ElemName(e), at.ElemScalar, newInit(at.ElemScalar)))
				} else {
					statics := make(map[int]ir.DataObject)
					inst.SetElem(e, ir.NewStructInstance(g.Reg, inst.ElemName(e), at.ElemStruct, &statics, newInit))
				}
			}
			table.AddArrayInstance(inst)
		}
	}
	fillOne(prog.Input, "arr_inp_")
	fillOne(prog.Mixed, "arr_mix_")
	fillOne(prog.Output, "arr_out_")
}

func (g *Generator) genArrayType(structPool []*ir.StructType) *ir.ArrayType {
	at := &ir.ArrayType{
		Count: g.Policy.ArraySize.Sample(g.Rng),
		Kind:  g.Policy.PickArrayKind(g.Rng),
	}
	if at.Count < 1 {
		at.Count = 1
	}
	if len(structPool) > 0 && genpolicy.RollPercent(g.Rng, 20) {
		at.ElemStruct = structPool[g.Rng.IntN(len(structPool))]
	} else {
		at.ElemScalar = g.Policy.PickScalarType(g.Rng)
	}
	return at
}
