package ir

import (
	"math/big"
	"math/rand/v2"

	"github.com/stressgen/stressgen/internal/xerrors"
)

// Expr is any node in the expression tree. Every node carries both a
// static type and a live evaluated value (spec.md §3).
type Expr interface {
	ExprType() TypeTag
	ExprValue() Value
}

// ---- Const ----

// Const is a literal value.
type Const struct {
	Tag TypeTag
	Val Value
}

func (c *Const) ExprType() TypeTag { return c.Tag }
func (c *Const) ExprValue() Value  { return c.Val }

// NewConst builds a constant node. Constants are never UB.
func NewConst(v Value) *Const { return &Const{Tag: v.Tag, Val: v} }

// ---- VarUse ----

// VarUse references a scalar variable directly.
type VarUse struct {
	Var *Variable
}

func (u *VarUse) ExprType() TypeTag { return u.Var.Tag }
func (u *VarUse) ExprValue() Value  { return u.Var.Current }

func NewVarUse(v *Variable) *VarUse { return &VarUse{Var: v} }

// ---- MemberAccess ----

// AccessKind distinguishes a struct-member step from an array-element step
// within a MemberAccess chain.
type AccessKind int

const (
	AccessMember AccessKind = iota
	AccessElement
)

// AccessStep is one hop in a member/element access chain, carrying enough
// to let the emitter print either `.name` or `[index]`.
type AccessStep struct {
	Kind  AccessKind
	Name  string
	Index int
}

// MemberAccess is a chain of member/element accesses rooted at a named
// struct or array instance, resolved at derivation time to a leaf scalar
// variable (spec.md §4.5: "carries either a direct struct reference or a
// parent MemberExpr" — here flattened to a chain since the leaf is always
// resolved before the node is published; struct-valued intermediate nodes
// are never independently assignable, per spec.md §9's open question).
type MemberAccess struct {
	RootName string
	Chain    []AccessStep
	LeafVar  *Variable
}

func (m *MemberAccess) ExprType() TypeTag { return m.LeafVar.Tag }
func (m *MemberAccess) ExprValue() Value  { return m.LeafVar.Current }

func NewMemberAccess(rootName string, chain []AccessStep, leaf *Variable) *MemberAccess {
	return &MemberAccess{RootName: rootName, Chain: chain, LeafVar: leaf}
}

// ---- TypeCast ----

// TypeCast converts its child's value to Target. Implicit casts are
// inserted by the construction discipline (spec.md §4.5) and have Implicit
// set; Implicit is false for a cast the generator requested explicitly.
type TypeCast struct {
	Child    Expr
	Target   TypeTag
	Implicit bool
	val      Value
}

func (c *TypeCast) ExprType() TypeTag { return c.Target }
func (c *TypeCast) ExprValue() Value  { return c.val }

// NewTypeCast builds a cast node, evaluating the child's value converted
// to Target. CastTo never raises UB (spec.md §4.1).
func NewTypeCast(reg *Registry, child Expr, target TypeTag, implicit bool) *TypeCast {
	return &TypeCast{Child: child, Target: target, Implicit: implicit, val: child.ExprValue().CastTo(reg, target)}
}

// wrapImplicit wraps e in an implicit TypeCast to target, unless it is
// already of that type.
func wrapImplicit(reg *Registry, e Expr, target TypeTag) Expr {
	if e.ExprType() == target {
		return e
	}
	return NewTypeCast(reg, e, target, true)
}

// promotionTarget applies spec.md §4.2's integral promotion to e. A
// MemberAccess naming a bit-field follows the bit-field-specific rule
// (promote by current value, not declared type); every other expression
// follows the plain per-type rule.
func promotionTarget(reg *Registry, e Expr) TypeTag {
	if ma, ok := e.(*MemberAccess); ok && ma.LeafVar.IsBitField() {
		return reg.BitFieldPromotionTarget(e.ExprValue(), e.ExprType())
	}
	return reg.IntegralPromotionTarget(e.ExprType())
}

// ---- Unary ----

type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryLogicalNot
	UnaryBitNot
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	case UnaryLogicalNot:
		return "!"
	case UnaryBitNot:
		return "~"
	case UnaryPreInc:
		return "++(pre)"
	case UnaryPreDec:
		return "--(pre)"
	case UnaryPostInc:
		return "(post)++"
	case UnaryPostDec:
		return "(post)--"
	default:
		return "?"
	}
}

// Unary is a unary operator node.
type Unary struct {
	Op    UnaryOp
	Child Expr
	tag   TypeTag
	val   Value
}

func (u *Unary) ExprType() TypeTag { return u.tag }
func (u *Unary) ExprValue() Value  { return u.val }

var unaryComplement = map[UnaryOp]UnaryOp{
	UnaryMinus:   UnaryPlus,
	UnaryPreInc:  UnaryPreDec,
	UnaryPreDec:  UnaryPreInc,
	UnaryPostInc: UnaryPostDec,
	UnaryPostDec: UnaryPostInc,
}

// NewUnary builds a unary node, applying type propagation (spec.md §4.5)
// then value propagation with rebuild-on-UB (spec.md §4.5).
func NewUnary(reg *Registry, op UnaryOp, child Expr) (*Unary, error) {
	switch op {
	case UnaryPlus, UnaryMinus, UnaryBitNot:
		promoted := promotionTarget(reg, child)
		if child.ExprType().IsFP() {
			promoted = child.ExprType()
		}
		child = wrapImplicit(reg, child, promoted)
	case UnaryLogicalNot:
		child = wrapImplicit(reg, child, reg.TruthType())
	case UnaryPreInc, UnaryPreDec, UnaryPostInc, UnaryPostDec:
		// Operates on the lvalue's own declared type; no promotion.
	}

	u := &Unary{Op: op, Child: child, tag: child.ExprType()}
	if op == UnaryLogicalNot {
		u.tag = reg.TruthType()
	}

	for {
		val := evalUnary(reg, u.Op, u.Child.ExprValue(), u.tag)
		if val.UB == NoUB {
			u.val = val
			return u, nil
		}
		next, ok := unaryComplement[u.Op]
		if !ok {
			return nil, xerrors.Newf(xerrors.ErrRebuildFailed, "unary %s produced UB %s with no rebuild rule", u.Op, val.UB)
		}
		u.Op = next
	}
}

func evalUnary(reg *Registry, op UnaryOp, v Value, resultTag TypeTag) Value {
	switch op {
	case UnaryPlus:
		return v.Pos(reg)
	case UnaryMinus:
		return v.Neg(reg)
	case UnaryBitNot:
		return v.BitNot(reg)
	case UnaryLogicalNot:
		return v.LogicalNot(reg, resultTag)
	case UnaryPreInc, UnaryPostInc:
		return v.Inc(reg)
	case UnaryPreDec, UnaryPostDec:
		return v.Dec(reg)
	default:
		panic("ir: unknown unary op")
	}
}

// ---- Binary ----

type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinLogicalAnd
	BinLogicalOr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

func (op BinaryOp) String() string {
	names := map[BinaryOp]string{
		BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
		BinShl: "<<", BinShr: ">>", BinBitAnd: "&", BinBitOr: "|", BinBitXor: "^",
		BinLogicalAnd: "&&", BinLogicalOr: "||",
		BinEq: "==", BinNe: "!=", BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	}
	if s, ok := names[op]; ok {
		return s
	}
	return "?"
}

func (op BinaryOp) isShift() bool    { return op == BinShl || op == BinShr }
func (op BinaryOp) isLogical() bool  { return op == BinLogicalAnd || op == BinLogicalOr }
func (op BinaryOp) isRelational() bool {
	switch op {
	case BinEq, BinNe, BinLt, BinLe, BinGt, BinGe:
		return true
	default:
		return false
	}
}
func (op BinaryOp) isArithOrBitwise() bool {
	switch op {
	case BinAdd, BinSub, BinMul, BinDiv, BinMod, BinBitAnd, BinBitOr, BinBitXor:
		return true
	default:
		return false
	}
}

// Binary is a binary operator node.
type Binary struct {
	Op       BinaryOp
	Lhs, Rhs Expr
	tag      TypeTag
	val      Value
}

func (b *Binary) ExprType() TypeTag { return b.tag }
func (b *Binary) ExprValue() Value  { return b.val }

// NewBinary builds a binary node: type propagation (usual arithmetic
// conversion / shift / logical / FP rules, spec.md §4.5), then value
// propagation with rebuild-on-UB (spec.md §4.5).
func NewBinary(reg *Registry, rng *rand.Rand, op BinaryOp, lhs, rhs Expr) (*Binary, error) {
	lhs, rhs, resultTag := propagateBinaryTypes(reg, op, lhs, rhs)

	b := &Binary{Op: op, Lhs: lhs, Rhs: rhs, tag: resultTag}

	for {
		val, err := evalBinary(reg, b.Op, b.Lhs.ExprValue(), b.Rhs.ExprValue(), b.tag)
		if err != nil {
			return nil, err
		}
		if val.UB == NoUB {
			b.val = val
			return b, nil
		}
		if err := b.rebuild(reg, rng, val.UB); err != nil {
			return nil, err
		}
	}
}

// propagateBinaryTypes applies spec.md §4.5's type rules and returns the
// (possibly cast-wrapped) operands plus the node's result type.
func propagateBinaryTypes(reg *Registry, op BinaryOp, lhs, rhs Expr) (Expr, Expr, TypeTag) {
	if op.isLogical() {
		tt := reg.TruthType()
		return wrapImplicit(reg, lhs, tt), wrapImplicit(reg, rhs, tt), tt
	}
	if op.isShift() {
		// Each side integrally promoted independently; no common type.
		lp := promotionTarget(reg, lhs)
		rp := promotionTarget(reg, rhs)
		lhs = wrapImplicit(reg, lhs, lp)
		rhs = wrapImplicit(reg, rhs, rp)
		return lhs, rhs, lp
	}

	lt, rt := lhs.ExprType(), rhs.ExprType()
	if lt.IsFP() || rt.IsFP() {
		common := reg.FPConversion(lt, rt)
		lhs = wrapImplicit(reg, lhs, common)
		rhs = wrapImplicit(reg, rhs, common)
		if op.isRelational() {
			return lhs, rhs, reg.TruthType()
		}
		return lhs, rhs, common
	}

	lp := promotionTarget(reg, lhs)
	rp := promotionTarget(reg, rhs)
	lhs = wrapImplicit(reg, lhs, lp)
	rhs = wrapImplicit(reg, rhs, rp)
	common := reg.UsualArithmeticConversion(lp, rp)
	lhs = wrapImplicit(reg, lhs, common)
	rhs = wrapImplicit(reg, rhs, common)
	if op.isRelational() {
		return lhs, rhs, reg.TruthType()
	}
	return lhs, rhs, common
}

func evalBinary(reg *Registry, op BinaryOp, l, r Value, resultTag TypeTag) (Value, error) {
	switch op {
	case BinAdd:
		return l.Add(reg, r), nil
	case BinSub:
		return l.Sub(reg, r), nil
	case BinMul:
		return l.Mul(reg, r), nil
	case BinDiv:
		return l.Div(reg, r), nil
	case BinMod:
		return l.Mod(reg, r), nil
	case BinShl:
		return l.Shl(reg, r), nil
	case BinShr:
		return l.Shr(reg, r), nil
	case BinBitAnd:
		return l.BitAnd(reg, r), nil
	case BinBitOr:
		return l.BitOr(reg, r), nil
	case BinBitXor:
		return l.BitXor(reg, r), nil
	case BinLogicalAnd:
		return l.LogicalAnd(reg, r, resultTag), nil
	case BinLogicalOr:
		return l.LogicalOr(reg, r, resultTag), nil
	case BinEq:
		return l.Eq(reg, r, resultTag), nil
	case BinNe:
		return l.Ne(reg, r, resultTag), nil
	case BinLt:
		return l.Lt(reg, r, resultTag), nil
	case BinLe:
		return l.Le(reg, r, resultTag), nil
	case BinGt:
		return l.Gt(reg, r, resultTag), nil
	case BinGe:
		return l.Ge(reg, r, resultTag), nil
	default:
		return Value{}, xerrors.Newf(xerrors.ErrInvalidIR, "unknown binary op %d", int(op))
	}
}

// rebuild applies spec.md §4.5's deterministic, no-backtracking rebuild
// strategy for the UB code just observed, mutating b in place.
func (b *Binary) rebuild(reg *Registry, rng *rand.Rand, ub UBCode) error {
	switch b.Op {
	case BinAdd:
		b.Op = BinSub
	case BinSub:
		b.Op = BinAdd
	case BinMul:
		if ub == SignOvfMin {
			b.Op = BinSub
		} else {
			b.Op = BinDiv
		}
	case BinDiv, BinMod:
		if ub == ZeroDiv {
			b.Op = BinMul
		} else {
			b.Op = BinSub
		}
	case BinShl, BinShr:
		return b.rebuildShift(reg, rng, ub)
	default:
		// Comparisons and bitwise ops never reach here (never UB).
		return xerrors.Newf(xerrors.ErrRebuildFailed, "no rebuild rule for op %s with UB %s", b.Op, ub)
	}
	return nil
}

// rebuildShift implements spec.md §4.5's shift rebuild: for a too-large or
// negative rhs, wrap rhs as `rhs + const` so it lands in-range; for a
// negative lhs, wrap lhs as `lhs + TYPE_MAX`.
func (b *Binary) rebuildShift(reg *Registry, rng *rand.Rand, ub UBCode) error {
	lhsTag := b.Lhs.ExprType()
	d := reg.Get(lhsTag)

	if ub == NegShift {
		maxConst := NewConst(Value{Tag: lhsTag, bits: fromBig(d.Max, d)})
		newLhs, err := NewBinary(reg, rng, BinAdd, b.Lhs, maxConst)
		if err != nil {
			return err
		}
		b.Lhs = newLhs
		return nil
	}

	// ShiftRhsNeg or ShiftRhsLarge: pick a fresh, valid target shift amount
	// and wrap rhs as (rhs + k) so it evaluates to exactly that target.
	bound := d.Width
	if b.Op == BinShl && d.Signed {
		lb := b.Lhs.ExprValue().Big(reg)
		if lb.Sign() != 0 {
			bound = d.Width - msb(lb)
		}
	}
	if bound < 1 {
		bound = 1
	}
	target := rng.IntN(bound)

	rhsTag := b.Rhs.ExprType()
	rhsVal := b.Rhs.ExprValue().Int64(reg)
	k := int64(target) - rhsVal
	kConst := NewConst(NewInt(reg, rhsTag, k))
	newRhs, err := NewBinary(reg, rng, BinAdd, b.Rhs, kConst)
	if err != nil {
		return err
	}
	b.Rhs = newRhs
	return nil
}

// ---- Conditional (ternary) ----

// Conditional is `cond ? lhs : rhs`. Cond is truth-typed; lhs/rhs undergo
// usual arithmetic conversion so the whole expression has one static type
// (spec.md §4.5).
type Conditional struct {
	Cond, Lhs, Rhs Expr
	tag            TypeTag
	val            Value
}

func (c *Conditional) ExprType() TypeTag { return c.tag }
func (c *Conditional) ExprValue() Value  { return c.val }

// NewConditional builds a ternary node. Never introduces new UB: lhs/rhs
// are already-published, UB-free nodes; only a cast and a copy occur here.
func NewConditional(reg *Registry, cond, lhs, rhs Expr) *Conditional {
	cond = wrapImplicit(reg, cond, reg.TruthType())

	lt, rt := lhs.ExprType(), rhs.ExprType()
	var common TypeTag
	if lt.IsFP() || rt.IsFP() {
		common = reg.FPConversion(lt, rt)
	} else {
		common = reg.UsualArithmeticConversion(lt, rt)
	}
	lhs = wrapImplicit(reg, lhs, common)
	rhs = wrapImplicit(reg, rhs, common)

	c := &Conditional{Cond: cond, Lhs: lhs, Rhs: rhs, tag: common}
	if !cond.ExprValue().IsZero() {
		c.val = lhs.ExprValue()
	} else {
		c.val = rhs.ExprValue()
	}
	return c
}

// ---- Assign ----

// Assign is `lhs = rhs`. Rhs is wrapped in an implicit cast to lhs's type
// (spec.md §4.5). Taken records whether the enclosing scope is actually
// executed, controlling whether value propagation mutates the lhs's live
// value (spec.md §4.6/glossary).
type Assign struct {
	Lhs, Rhs Expr
	Taken    bool
	val      Value
}

func (a *Assign) ExprType() TypeTag { return a.Lhs.ExprType() }
func (a *Assign) ExprValue() Value  { return a.val }

// lvalue is implemented by expression nodes that name a mutable storage
// location: VarUse and MemberAccess.
type lvalue interface {
	Expr
	store(v Value)
}

func (u *VarUse) store(v Value)       { u.Var.SetCurrent(v) }
func (m *MemberAccess) store(v Value) { m.LeafVar.SetCurrent(v) }

// NewAssign builds an assignment statement-expression. If lhs names a
// bit-field whose declared range can't represent rhs's cast value, rhs is
// rewritten as `(rhs - rhs) + k` for a random k within the field's range,
// so the emitted expression still syntactically mentions rhs while
// evaluating in-range (spec.md §4.5).
func NewAssign(reg *Registry, rng *rand.Rand, lhs, rhs Expr, taken bool) (*Assign, error) {
	lv, ok := lhs.(lvalue)
	if !ok {
		return nil, xerrors.New(xerrors.ErrInvalidIR, "assignment lhs is not an lvalue")
	}

	castRhs := wrapImplicit(reg, rhs, lhs.ExprType())

	if ma, isMember := lhs.(*MemberAccess); isMember && ma.LeafVar.IsBitField() {
		minV, maxV := ma.LeafVar.Range(reg)
		castVal := castRhs.ExprValue().Big(reg)
		inRange := minV.Cmp(castVal) <= 0 && castVal.Cmp(maxV) <= 0
		if !inRange {
			zero, err := NewBinary(reg, rng, BinSub, rhs, rhs)
			if err != nil {
				return nil, err
			}
			k := randInRange(rng, minV, maxV)
			kConst := NewConst(NewInt(reg, ma.LeafVar.Tag, k))
			wrapped, err := NewBinary(reg, rng, BinAdd, zero, kConst)
			if err != nil {
				return nil, err
			}
			castRhs = wrapImplicit(reg, wrapped, lhs.ExprType())
		}
	}

	a := &Assign{Lhs: lhs, Rhs: castRhs, Taken: taken, val: castRhs.ExprValue()}
	if taken {
		lv.store(a.val)
	}
	return a, nil
}

// randInRange picks a uniform random integer in [minV, maxV] (both
// guaranteed to fit int64 for any bit-field width this core generates).
func randInRange(rng *rand.Rand, minV, maxV *big.Int) int64 {
	lo, hi := minV.Int64(), maxV.Int64()
	span := hi - lo + 1
	if span <= 0 {
		return lo
	}
	return lo + rng.Int64N(span)
}
