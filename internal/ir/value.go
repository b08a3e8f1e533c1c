package ir

import "math/big"

// UBCode classifies the undefined-behavior category, if any, that an
// arithmetic operator detected while computing a result (spec.md §3).
type UBCode int

const (
	NoUB UBCode = iota
	NullPtr
	SignOvf
	SignOvfMin
	ZeroDiv
	ShiftRhsNeg
	ShiftRhsLarge
	NegShift
	NoMember
)

func (u UBCode) String() string {
	switch u {
	case NoUB:
		return "NoUB"
	case NullPtr:
		return "NullPtr"
	case SignOvf:
		return "SignOvf"
	case SignOvfMin:
		return "SignOvfMin"
	case ZeroDiv:
		return "ZeroDiv"
	case ShiftRhsNeg:
		return "ShiftRhsNeg"
	case ShiftRhsLarge:
		return "ShiftRhsLarge"
	case NegShift:
		return "NegShift"
	case NoMember:
		return "NoMember"
	default:
		return "UBCode(?)"
	}
}

// Value is a tagged value: one of the scalar C-representable values plus a
// type tag and a UB code. The active representation is bits (reinterpreted
// per the tag's width/signedness) for integer kinds, or f for FP kinds.
// Arithmetic methods never mutate their receiver or argument; they return a
// new Value. Invariant: if UB != NoUB, the numeric payload is unspecified
// and must not be read by the caller (spec.md §4.1).
type Value struct {
	Tag  TypeTag
	bits uint64
	f    float64
	UB   UBCode
}

// NewInt builds an integer Value of the given tag from a signed int64,
// masked/wrapped to the tag's width.
func NewInt(reg *Registry, tag TypeTag, v int64) Value {
	d := reg.Get(tag)
	return Value{Tag: tag, bits: fromBig(big.NewInt(v), d)}
}

// NewUint builds an integer Value of the given tag from a uint64, masked
// to the tag's width.
func NewUint(reg *Registry, tag TypeTag, v uint64) Value {
	d := reg.Get(tag)
	bi := new(big.Int).SetUint64(v)
	return Value{Tag: tag, bits: fromBig(bi, d)}
}

// NewFloat builds an FP Value of the given tag.
func NewFloat(tag TypeTag, v float64) Value {
	return Value{Tag: tag, f: v}
}

// Int64 returns the value reinterpreted as a signed int64. Valid for
// integer tags only, and only when UB == NoUB.
func (v Value) Int64(reg *Registry) int64 {
	return toBig(v.bits, reg.Get(v.Tag)).Int64()
}

// Uint64 returns the raw width-masked bit pattern. Valid for integer tags.
func (v Value) Uint64() uint64 { return v.bits }

// Float64 returns the FP payload. Valid for FP tags only.
func (v Value) Float64() float64 { return v.f }

// Big returns the value's exact mathematical value as a big.Int. Valid for
// integer tags only.
func (v Value) Big(reg *Registry) *big.Int {
	return toBig(v.bits, reg.Get(v.Tag))
}

// IsZero reports whether the value (integer or FP) is numerically zero.
func (v Value) IsZero() bool {
	if v.Tag.IsFP() {
		return v.f == 0
	}
	return v.bits == 0
}

// toBig reinterprets a width-masked raw bit pattern as its exact
// mathematical value, sign-extending for signed descriptors.
func toBig(raw uint64, d *Descriptor) *big.Int {
	if !d.Signed {
		return new(big.Int).SetUint64(raw)
	}
	signBit := uint64(1) << uint(d.Width-1)
	if d.Width == 64 {
		return big.NewInt(int64(raw))
	}
	if raw&signBit == 0 {
		return new(big.Int).SetUint64(raw)
	}
	v := new(big.Int).SetUint64(raw)
	full := new(big.Int).Lsh(big.NewInt(1), uint(d.Width))
	return v.Sub(v, full)
}

// fromBig wraps a mathematical value into the width-masked raw bit pattern
// a descriptor's representation uses (two's complement, modulo 2^width).
func fromBig(val *big.Int, d *Descriptor) uint64 {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(d.Width))
	m := new(big.Int).Mod(val, mod)
	return m.Uint64()
}

// fits reports whether val lies within the descriptor's representable
// range (used to classify signed overflow; unsigned never overflows).
func fits(val *big.Int, d *Descriptor) bool {
	return d.Min.Cmp(val) <= 0 && val.Cmp(d.Max) <= 0
}

// ---- arithmetic: +, -, * ----

func (v Value) Add(reg *Registry, rhs Value) Value {
	if v.Tag.IsFP() {
		return Value{Tag: v.Tag, f: v.f + rhs.f}
	}
	d := reg.Get(v.Tag)
	sum := new(big.Int).Add(v.Big(reg), rhs.Big(reg))
	if d.Signed && !fits(sum, d) {
		return Value{Tag: v.Tag, UB: SignOvf}
	}
	return Value{Tag: v.Tag, bits: fromBig(sum, d)}
}

func (v Value) Sub(reg *Registry, rhs Value) Value {
	if v.Tag.IsFP() {
		return Value{Tag: v.Tag, f: v.f - rhs.f}
	}
	d := reg.Get(v.Tag)
	diff := new(big.Int).Sub(v.Big(reg), rhs.Big(reg))
	if d.Signed && !fits(diff, d) {
		return Value{Tag: v.Tag, UB: SignOvf}
	}
	return Value{Tag: v.Tag, bits: fromBig(diff, d)}
}

func (v Value) Mul(reg *Registry, rhs Value) Value {
	if v.Tag.IsFP() {
		return Value{Tag: v.Tag, f: v.f * rhs.f}
	}
	d := reg.Get(v.Tag)
	if d.Signed && v.Big(reg).Cmp(d.Min) == 0 && rhs.Big(reg).Cmp(big.NewInt(-1)) == 0 {
		return Value{Tag: v.Tag, UB: SignOvfMin}
	}
	if d.Signed && rhs.Big(reg).Cmp(d.Min) == 0 && v.Big(reg).Cmp(big.NewInt(-1)) == 0 {
		return Value{Tag: v.Tag, UB: SignOvfMin}
	}
	prod := new(big.Int).Mul(v.Big(reg), rhs.Big(reg))
	if d.Signed && !fits(prod, d) {
		return Value{Tag: v.Tag, UB: SignOvf}
	}
	return Value{Tag: v.Tag, bits: fromBig(prod, d)}
}

// Div implements `/`. ZeroDiv on divisor zero; SignOvf on MIN / -1.
func (v Value) Div(reg *Registry, rhs Value) Value {
	if v.Tag.IsFP() {
		// FP division by zero is not classified as UB by this core (spec.md §9).
		return Value{Tag: v.Tag, f: v.f / rhs.f}
	}
	d := reg.Get(v.Tag)
	if rhs.IsZero() {
		return Value{Tag: v.Tag, UB: ZeroDiv}
	}
	lb, rb := v.Big(reg), rhs.Big(reg)
	if d.Signed && (lb.Cmp(d.Min) == 0 && rb.Cmp(big.NewInt(-1)) == 0) {
		return Value{Tag: v.Tag, UB: SignOvf}
	}
	q := new(big.Int).Quo(lb, rb)
	return Value{Tag: v.Tag, bits: fromBig(q, d)}
}

// Mod implements `%`. Integer-only; same UB classification as Div.
func (v Value) Mod(reg *Registry, rhs Value) Value {
	d := reg.Get(v.Tag)
	if rhs.IsZero() {
		return Value{Tag: v.Tag, UB: ZeroDiv}
	}
	lb, rb := v.Big(reg), rhs.Big(reg)
	if d.Signed && (lb.Cmp(d.Min) == 0 && rb.Cmp(big.NewInt(-1)) == 0) {
		return Value{Tag: v.Tag, UB: SignOvf}
	}
	r := new(big.Int).Rem(lb, rb)
	return Value{Tag: v.Tag, bits: fromBig(r, d)}
}

// ---- bitwise: &, |, ^, ~ (never UB) ----

func (v Value) BitAnd(reg *Registry, rhs Value) Value {
	d := reg.Get(v.Tag)
	r := new(big.Int).And(v.Big(reg), rhs.Big(reg))
	return Value{Tag: v.Tag, bits: fromBig(r, d)}
}

func (v Value) BitOr(reg *Registry, rhs Value) Value {
	d := reg.Get(v.Tag)
	r := new(big.Int).Or(v.Big(reg), rhs.Big(reg))
	return Value{Tag: v.Tag, bits: fromBig(r, d)}
}

func (v Value) BitXor(reg *Registry, rhs Value) Value {
	d := reg.Get(v.Tag)
	r := new(big.Int).Xor(v.Big(reg), rhs.Big(reg))
	return Value{Tag: v.Tag, bits: fromBig(r, d)}
}

func (v Value) BitNot(reg *Registry) Value {
	d := reg.Get(v.Tag)
	r := new(big.Int).Not(v.Big(reg))
	return Value{Tag: v.Tag, bits: fromBig(r, d)}
}

// ---- shifts: <<, >> ----

// msb returns the zero-based bit position of the highest set bit of a
// non-negative value, or -1 if the value is zero.
func msb(v *big.Int) int {
	return v.BitLen() - 1
}

// Shl implements `<<` (spec.md §4.1).
func (v Value) Shl(reg *Registry, rhs Value) Value {
	return v.shift(reg, rhs, true)
}

// Shr implements `>>` (spec.md §4.1).
func (v Value) Shr(reg *Registry, rhs Value) Value {
	return v.shift(reg, rhs, false)
}

func (v Value) shift(reg *Registry, rhs Value, left bool) Value {
	d := reg.Get(v.Tag)
	rd := reg.Get(rhs.Tag)
	lb := v.Big(reg)
	rb := rhs.Big(reg)

	if d.Signed && lb.Sign() < 0 {
		return Value{Tag: v.Tag, UB: NegShift}
	}
	if rd.Signed && rb.Sign() < 0 {
		return Value{Tag: v.Tag, UB: ShiftRhsNeg}
	}
	if rb.Cmp(big.NewInt(int64(d.Width))) >= 0 {
		return Value{Tag: v.Tag, UB: ShiftRhsLarge}
	}
	if left && d.Signed {
		// msb(lhs) + rhs must stay within the lhs width (spec.md §4.1).
		var maxAvail int64
		if lb.Sign() == 0 {
			maxAvail = int64(d.Width)
		} else {
			maxAvail = int64(d.Width) - int64(msb(lb))
		}
		if rb.Cmp(big.NewInt(maxAvail)) >= 0 {
			return Value{Tag: v.Tag, UB: ShiftRhsLarge}
		}
	}

	shiftAmt := uint(rb.Uint64())
	var res *big.Int
	if left {
		res = new(big.Int).Lsh(lb, shiftAmt)
	} else {
		res = new(big.Int).Rsh(lb, shiftAmt)
	}
	return Value{Tag: v.Tag, bits: fromBig(res, d)}
}

// ---- unary ----

func (v Value) Neg(reg *Registry) Value {
	if v.Tag.IsFP() {
		return Value{Tag: v.Tag, f: -v.f}
	}
	d := reg.Get(v.Tag)
	if d.Signed && v.Big(reg).Cmp(d.Min) == 0 {
		return Value{Tag: v.Tag, UB: SignOvf}
	}
	r := new(big.Int).Neg(v.Big(reg))
	return Value{Tag: v.Tag, bits: fromBig(r, d)}
}

func (v Value) Pos(reg *Registry) Value { return v }

// LogicalNot implements unary `!`; result is always 0 or 1 in the tag's
// truth type (caller passes the already-converted operand/result tag).
func (v Value) LogicalNot(reg *Registry, resultTag TypeTag) Value {
	truthy := !v.IsZero()
	if truthy {
		return NewInt(reg, resultTag, 0)
	}
	return NewInt(reg, resultTag, 1)
}

// Inc/Dec mirror +1/-1 overflow semantics (spec.md §4.1).
func (v Value) Inc(reg *Registry) Value { return v.Add(reg, NewInt(reg, v.Tag, 1)) }
func (v Value) Dec(reg *Registry) Value { return v.Sub(reg, NewInt(reg, v.Tag, 1)) }

// ---- logical && || (operands already converted to truth type) ----

func (v Value) LogicalAnd(reg *Registry, rhs Value, resultTag TypeTag) Value {
	if !v.IsZero() && !rhs.IsZero() {
		return NewInt(reg, resultTag, 1)
	}
	return NewInt(reg, resultTag, 0)
}

func (v Value) LogicalOr(reg *Registry, rhs Value, resultTag TypeTag) Value {
	if !v.IsZero() || !rhs.IsZero() {
		return NewInt(reg, resultTag, 1)
	}
	return NewInt(reg, resultTag, 0)
}

// ---- comparisons (never UB); resultTag is bool (C++) or int (C) ----

func (v Value) cmp(reg *Registry, rhs Value) int {
	if v.Tag.IsFP() {
		switch {
		case v.f < rhs.f:
			return -1
		case v.f > rhs.f:
			return 1
		default:
			return 0
		}
	}
	return v.Big(reg).Cmp(rhs.Big(reg))
}

func boolResult(reg *Registry, resultTag TypeTag, b bool) Value {
	if b {
		return NewInt(reg, resultTag, 1)
	}
	return NewInt(reg, resultTag, 0)
}

func (v Value) Eq(reg *Registry, rhs Value, resultTag TypeTag) Value {
	if v.Tag.IsFP() {
		return boolResult(reg, resultTag, v.f == rhs.f)
	}
	return boolResult(reg, resultTag, v.cmp(reg, rhs) == 0)
}

func (v Value) Ne(reg *Registry, rhs Value, resultTag TypeTag) Value {
	return boolResult(reg, resultTag, v.cmp(reg, rhs) != 0)
}

func (v Value) Lt(reg *Registry, rhs Value, resultTag TypeTag) Value {
	return boolResult(reg, resultTag, v.cmp(reg, rhs) < 0)
}

func (v Value) Le(reg *Registry, rhs Value, resultTag TypeTag) Value {
	return boolResult(reg, resultTag, v.cmp(reg, rhs) <= 0)
}

func (v Value) Gt(reg *Registry, rhs Value, resultTag TypeTag) Value {
	return boolResult(reg, resultTag, v.cmp(reg, rhs) > 0)
}

func (v Value) Ge(reg *Registry, rhs Value, resultTag TypeTag) Value {
	return boolResult(reg, resultTag, v.cmp(reg, rhs) >= 0)
}

// CastTo implements implicit/explicit conversion to a new tag: wrap for
// unsigned, truncate/extend for integer-to-integer, and the usual
// (unspecified-rounding) conversion for integer<->FP. Never raises UB
// (spec.md §4.1).
func (v Value) CastTo(reg *Registry, newTag TypeTag) Value {
	if v.Tag == newTag {
		return v
	}
	d := reg.Get(newTag)
	switch {
	case !v.Tag.IsFP() && !newTag.IsFP():
		return Value{Tag: newTag, bits: fromBig(v.Big(reg), d)}
	case v.Tag.IsFP() && newTag.IsFP():
		return Value{Tag: newTag, f: v.f}
	case v.Tag.IsFP() && !newTag.IsFP():
		bi, _ := big.NewFloat(v.f).Int(nil)
		return Value{Tag: newTag, bits: fromBig(bi, d)}
	default: // integer -> FP
		f := new(big.Float).SetInt(v.Big(reg))
		fv, _ := f.Float64()
		return Value{Tag: newTag, f: fv}
	}
}
