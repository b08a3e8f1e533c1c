// Package genpolicy holds the tunable probability distributions and scalar
// bounds that steer generation (spec.md §4.7). A Policy is plain data: it
// never consults a random source itself and is cheap to clone, so the
// generator can restrict a copy before recursing into a subtree without
// disturbing the original.
package genpolicy

import (
	"math/rand/v2"

	"github.com/stressgen/stressgen/internal/ir"
)

// SimilarOpPattern picks one operator family and constrains a statement's
// operator choice to it (spec.md §4.7).
type SimilarOpPattern int

const (
	SimilarOpNone SimilarOpPattern = iota
	SimilarOpAdditive
	SimilarOpBitwise
	SimilarOpLogic
	SimilarOpMul
	SimilarOpBitShift
	SimilarOpAddMul
)

// ConstUsePattern constrains how often a leaf resolves to a constant
// instead of a variable use (spec.md §4.7).
type ConstUsePattern int

const (
	ConstUseUnconstrained ConstUsePattern = iota
	ConstUseAllConst
	ConstUseHalfConst
)

// StmtKind enumerates the statement shapes the generator may emit
// (spec.md §4.6/§4.9).
type StmtKind int

const (
	StmtAssign StmtKind = iota
	StmtIf
	StmtDecl
	numStmtKinds
)

// OutDataKind enumerates the shape of an assignment target: a plain
// variable, an element of an array, a struct, or an element of an array of
// structs (spec.md §4.6/§4.7's OutDataTypeID).
type OutDataKind int

const (
	OutDataVar OutDataKind = iota
	OutDataVarInArray
	OutDataStruct
	OutDataStructInArray
	numOutDataKinds
)

// WeightedInt is a discrete [Min, Max] range sampled uniformly; Policy
// uses it for every "count" knob (scope length, struct/array counts, ...)
// since the source's Probability<T> tables reduce to uniform ranges for
// scalar bounds (spec.md §4.7).
type WeightedInt struct {
	Min, Max int
}

// Sample draws a value in [w.Min, w.Max] inclusive. A degenerate range
// (Max <= Min) always returns Min.
func (w WeightedInt) Sample(rng *rand.Rand) int {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + rng.IntN(w.Max-w.Min+1)
}

// Policy is a self-contained, clonable set of generation knobs.
type Policy struct {
	// Scalars and operators.
	AllowedScalarTypes []ir.TypeTag
	AllowedUnaryOps    []ir.UnaryOp
	AllowedBinaryOps   []ir.BinaryOp

	// Statement shape.
	StmtKindWeights [numStmtKinds]int // relative weight per StmtKind
	ScopeStmtCount  WeightedInt
	MaxIfDepth      int

	// Expression shape and budgets.
	MaxExprDepth    int
	MaxTotalExprs   int
	MaxFuncExprs    int
	LeafConstProb   int // percent chance a leaf is a Const rather than a VarUse/MemberAccess
	CSECount        WeightedInt
	CSEReuseProb    int // percent chance a non-leaf node reuses a CSE template instead of building fresh

	// Data object population.
	InputVarCount  WeightedInt
	MixedVarCount  WeightedInt
	OutputVarCount WeightedInt

	StructTypeCount      WeightedInt
	MaxStructDepth       int
	StructMemberCount    WeightedInt
	StaticMemberProb     int // percent
	BitFieldProb         int // percent chance a member is a bit-field
	BitFieldWidth        WeightedInt

	ArrayCount     WeightedInt
	ArraySize      WeightedInt
	ArrayDepth     WeightedInt
	ArrayKindProb  map[ir.ArrayKind]int // relative weights, need not sum to 100

	MemberUseProb int // percent chance a struct member access is taken vs. skipped

	// Assignment target selection (spec.md §4.6/§4.7's OutDataCategoryID/
	// OutDataTypeID): which symbol table an assignment statement's lhs comes
	// from, and what shape of object within that table.
	OutMixProb         int // percent chance the target table is mixed rather than output
	OutDataKindWeights [numOutDataKinds]int

	// Pattern state, recorded so nested recursion can observe what's
	// already active (spec.md §4.7).
	ActiveSimilarOp SimilarOpPattern
	ActiveConstUse  ConstUsePattern

	// CSEPool holds previously generated expressions available for reuse;
	// the generator appends to it as new common subexpressions come into
	// scope and clones from it on CSE-reuse decisions (spec.md §4.9).
	// Excluded from the CBOR cache: it is live generation-time IR, not
	// resolved configuration.
	CSEPool []ir.Expr `cbor:"-"`
}

// Default returns the baseline policy, grounded on the distributions in
// the original tool's gen_policy.cpp defaults.
func Default() *Policy {
	return &Policy{
		AllowedScalarTypes: []ir.TypeTag{
			ir.Bool, ir.Char, ir.UChar, ir.Short, ir.UShort,
			ir.Int, ir.UInt, ir.Long, ir.ULong, ir.LLong, ir.ULLong,
		},
		AllowedUnaryOps: []ir.UnaryOp{
			ir.UnaryPlus, ir.UnaryMinus, ir.UnaryLogicalNot, ir.UnaryBitNot,
			ir.UnaryPreInc, ir.UnaryPreDec, ir.UnaryPostInc, ir.UnaryPostDec,
		},
		AllowedBinaryOps: []ir.BinaryOp{
			ir.BinAdd, ir.BinSub, ir.BinMul, ir.BinDiv, ir.BinMod,
			ir.BinShl, ir.BinShr, ir.BinBitAnd, ir.BinBitOr, ir.BinBitXor,
			ir.BinLogicalAnd, ir.BinLogicalOr,
			ir.BinEq, ir.BinNe, ir.BinLt, ir.BinLe, ir.BinGt, ir.BinGe,
		},
		StmtKindWeights: [numStmtKinds]int{StmtAssign: 60, StmtIf: 25, StmtDecl: 15},
		ScopeStmtCount:  WeightedInt{Min: 5, Max: 10},
		MaxIfDepth:      3,

		MaxExprDepth:  5,
		MaxTotalExprs: 5000,
		MaxFuncExprs:  1000,
		LeafConstProb: 30,
		CSECount:      WeightedInt{Min: 0, Max: 5},
		CSEReuseProb:  10,

		InputVarCount:  WeightedInt{Min: 20, Max: 60},
		MixedVarCount:  WeightedInt{Min: 20, Max: 60},
		OutputVarCount: WeightedInt{Min: 10, Max: 40},

		StructTypeCount:   WeightedInt{Min: 0, Max: 6},
		MaxStructDepth:    2,
		StructMemberCount: WeightedInt{Min: 1, Max: 10},
		StaticMemberProb:  20,
		BitFieldProb:      20,
		BitFieldWidth:     WeightedInt{Min: 8, Max: 24},

		ArrayCount: WeightedInt{Min: 0, Max: 6},
		ArraySize:  WeightedInt{Min: 10, Max: 1000},
		ArrayDepth: WeightedInt{Min: 1, Max: 4},
		ArrayKindProb: map[ir.ArrayKind]int{
			ir.ArrayKindCArray:   25,
			ir.ArrayKindVector:   25,
			ir.ArrayKindStdArray: 25,
			ir.ArrayKindValarray: 25,
		},

		MemberUseProb: 80,

		// The original's gen_policy.cpp default only carries VAR:70/STRUCT:30
		// for out_data_type_prob, with no weight on record for either
		// array-element variant; OutMixProb's mix-vs-output split has no
		// recorded default at all. Both are filled in here as a documented
		// assumption (see DESIGN.md) rather than left at zero, so array and
		// struct assignment targets actually get exercised.
		OutMixProb:         50,
		OutDataKindWeights: [numOutDataKinds]int{OutDataVar: 50, OutDataVarInArray: 15, OutDataStruct: 25, OutDataStructInArray: 10},

		ActiveSimilarOp: SimilarOpNone,
		ActiveConstUse:  ConstUseUnconstrained,
	}
}

// Clone returns a deep copy: slices and maps get fresh backing storage so
// mutating the copy (as every pattern method does) never reaches back into
// the original (spec.md §4.7's "applies by cloning").
func (p *Policy) Clone() *Policy {
	cp := *p
	cp.AllowedScalarTypes = append([]ir.TypeTag(nil), p.AllowedScalarTypes...)
	cp.AllowedUnaryOps = append([]ir.UnaryOp(nil), p.AllowedUnaryOps...)
	cp.AllowedBinaryOps = append([]ir.BinaryOp(nil), p.AllowedBinaryOps...)
	cp.ArrayKindProb = make(map[ir.ArrayKind]int, len(p.ArrayKindProb))
	for k, v := range p.ArrayKindProb {
		cp.ArrayKindProb[k] = v
	}
	// CSEPool is intentionally shared by reference: templates are meant to
	// be visible to every descendant context, not forked per subtree.
	cp.CSEPool = p.CSEPool
	return &cp
}

// WithSimilarOperatorPattern returns a clone restricted to one operator
// family, per spec.md §4.7's "similar operator" single-statement pattern.
func (p *Policy) WithSimilarOperatorPattern(pattern SimilarOpPattern) *Policy {
	cp := p.Clone()
	cp.ActiveSimilarOp = pattern
	switch pattern {
	case SimilarOpAdditive, SimilarOpAddMul:
		cp.AllowedUnaryOps = []ir.UnaryOp{ir.UnaryPlus, ir.UnaryMinus}
		cp.AllowedBinaryOps = []ir.BinaryOp{ir.BinAdd, ir.BinSub}
		if pattern == SimilarOpAddMul {
			cp.AllowedBinaryOps = append(cp.AllowedBinaryOps, ir.BinMul)
		}
	case SimilarOpBitwise, SimilarOpBitShift:
		cp.AllowedUnaryOps = []ir.UnaryOp{ir.UnaryBitNot}
		cp.AllowedBinaryOps = []ir.BinaryOp{ir.BinBitAnd, ir.BinBitXor, ir.BinBitOr}
		if pattern == SimilarOpBitShift {
			cp.AllowedBinaryOps = append(cp.AllowedBinaryOps, ir.BinShl, ir.BinShr)
		}
	case SimilarOpLogic:
		cp.AllowedUnaryOps = []ir.UnaryOp{ir.UnaryLogicalNot}
		cp.AllowedBinaryOps = []ir.BinaryOp{ir.BinLogicalAnd, ir.BinLogicalOr}
	case SimilarOpMul:
		cp.AllowedBinaryOps = []ir.BinaryOp{ir.BinMul}
	}
	return cp
}

// WithConstUsePattern returns a clone that biases (or forces) leaves toward
// constants, per spec.md §4.7's "constant use" pattern.
func (p *Policy) WithConstUsePattern(pattern ConstUsePattern) *Policy {
	cp := p.Clone()
	cp.ActiveConstUse = pattern
	switch pattern {
	case ConstUseAllConst:
		cp.LeafConstProb = 100
	case ConstUseHalfConst:
		cp.LeafConstProb = 50
	}
	return cp
}

// WeightedStmtKind picks a StmtKind according to StmtKindWeights; a policy
// with every weight zero always returns StmtAssign.
func (p *Policy) WeightedStmtKind(rng *rand.Rand) StmtKind {
	total := 0
	for _, w := range p.StmtKindWeights {
		total += w
	}
	if total <= 0 {
		return StmtAssign
	}
	r := rng.IntN(total)
	for k, w := range p.StmtKindWeights {
		if r < w {
			return StmtKind(k)
		}
		r -= w
	}
	return StmtAssign
}

// PickOutDataKind picks an OutDataKind according to OutDataKindWeights; a
// policy with every weight zero always returns OutDataVar.
func (p *Policy) PickOutDataKind(rng *rand.Rand) OutDataKind {
	total := 0
	for _, w := range p.OutDataKindWeights {
		total += w
	}
	if total <= 0 {
		return OutDataVar
	}
	r := rng.IntN(total)
	for k, w := range p.OutDataKindWeights {
		if r < w {
			return OutDataKind(k)
		}
		r -= w
	}
	return OutDataVar
}

// PickScalarType returns a uniformly chosen allowed scalar type.
func (p *Policy) PickScalarType(rng *rand.Rand) ir.TypeTag {
	return p.AllowedScalarTypes[rng.IntN(len(p.AllowedScalarTypes))]
}

// PickUnaryOp returns a uniformly chosen allowed unary operator.
func (p *Policy) PickUnaryOp(rng *rand.Rand) ir.UnaryOp {
	return p.AllowedUnaryOps[rng.IntN(len(p.AllowedUnaryOps))]
}

// PickBinaryOp returns a uniformly chosen allowed binary operator.
func (p *Policy) PickBinaryOp(rng *rand.Rand) ir.BinaryOp {
	return p.AllowedBinaryOps[rng.IntN(len(p.AllowedBinaryOps))]
}

// PickArrayKind samples ArrayKindProb's weighted distribution.
func (p *Policy) PickArrayKind(rng *rand.Rand) ir.ArrayKind {
	total := 0
	for _, w := range p.ArrayKindProb {
		total += w
	}
	if total <= 0 {
		return ir.ArrayKindCArray
	}
	r := rng.IntN(total)
	// Map iteration order is randomized by Go itself, which would make
	// this non-deterministic; iterate kinds in a fixed order instead.
	for _, k := range []ir.ArrayKind{ir.ArrayKindCArray, ir.ArrayKindVector, ir.ArrayKindStdArray, ir.ArrayKindValarray} {
		w := p.ArrayKindProb[k]
		if r < w {
			return k
		}
		r -= w
	}
	return ir.ArrayKindCArray
}

// RollPercent reports true with probability pct/100 (pct outside [0,100]
// saturates).
func RollPercent(rng *rand.Rand, pct int) bool {
	if pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	return rng.IntN(100) < pct
}

// AddCSETemplate registers e as a reusable common subexpression.
func (p *Policy) AddCSETemplate(e ir.Expr) {
	p.CSEPool = append(p.CSEPool, e)
}

// PickCSETemplate returns a clone of a random pool entry, or ok=false if
// the pool is empty.
func (p *Policy) PickCSETemplate(rng *rand.Rand) (e ir.Expr, ok bool) {
	if len(p.CSEPool) == 0 {
		return nil, false
	}
	tpl := p.CSEPool[rng.IntN(len(p.CSEPool))]
	return ir.CloneExpr(tpl), true
}
