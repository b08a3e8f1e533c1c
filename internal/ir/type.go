// Package ir implements the typed value model, the integer promotion and
// usual-arithmetic-conversion rules, and the expression/statement tree that
// together form the semantic core of the generated programs.
package ir

import (
	"fmt"
	"math/big"
)

// TypeTag identifies a scalar type. Order matches the target language's
// integer conversion rank for the integer kinds: bool < char < short <
// int < long < long long, with signed/unsigned pairs sharing a rank.
type TypeTag int

const (
	Bool TypeTag = iota
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LLong
	ULLong

	Float
	Double
	LDouble

	maxTypeTag
)

func (t TypeTag) String() string {
	switch t {
	case Bool:
		return "bool"
	case Char:
		return "char"
	case UChar:
		return "unsigned char"
	case Short:
		return "short"
	case UShort:
		return "unsigned short"
	case Int:
		return "int"
	case UInt:
		return "unsigned int"
	case Long:
		return "long"
	case ULong:
		return "unsigned long"
	case LLong:
		return "long long"
	case ULLong:
		return "unsigned long long"
	case Float:
		return "float"
	case Double:
		return "double"
	case LDouble:
		return "long double"
	default:
		return fmt.Sprintf("TypeTag(%d)", int(t))
	}
}

// IsInteger reports whether the tag names an integer scalar kind.
func (t TypeTag) IsInteger() bool { return t >= Bool && t <= ULLong }

// IsFP reports whether the tag names a floating-point scalar kind.
func (t TypeTag) IsFP() bool { return t >= Float && t <= LDouble }

// IsSigned reports whether the tag names a signed integer kind. FP kinds
// report true (they behave as signed for promotion purposes).
func (t TypeTag) IsSigned() bool {
	switch t {
	case Char, Short, Int, Long, LLong, Float, Double, LDouble:
		return true
	default:
		return false
	}
}

// LangMode selects the target language standard, which affects only a
// handful of leaf decisions: the result type of comparisons (bool in C++,
// int in C) and the emitted source file extension.
type LangMode int

const (
	LangC99 LangMode = iota
	LangC11
	LangCpp98
	LangCpp03
	LangCpp11
	LangCpp14
	LangCpp17
)

func (m LangMode) String() string {
	switch m {
	case LangC99:
		return "c99"
	case LangC11:
		return "c11"
	case LangCpp98:
		return "c++98"
	case LangCpp03:
		return "c++03"
	case LangCpp11:
		return "c++11"
	case LangCpp14:
		return "c++14"
	case LangCpp17:
		return "c++17"
	default:
		return "c11"
	}
}

// IsCpp reports whether this mode targets a C++ standard.
func (m LangMode) IsCpp() bool { return m >= LangCpp98 }

// FileExt returns the source file extension used for this language mode.
func (m LangMode) FileExt() string {
	if m.IsCpp() {
		return "cpp"
	}
	return "c"
}

// Descriptor describes one scalar type: its bit width, signedness,
// representable range, literal suffix, and conversion rank.
type Descriptor struct {
	Tag           TypeTag
	Width         int // bits
	Signed        bool
	Min           *big.Int
	Max           *big.Int
	LiteralSuffix string
	Rank          int
}

// Registry owns one canonical descriptor per scalar type tag, parameterized
// by the process-wide long-mode and language-mode flags (spec.md §6).
type Registry struct {
	LongMode64 bool
	Lang       LangMode
	descs      map[TypeTag]*Descriptor
}

// NewRegistry builds a Registry for the given long-bit-width mode and
// language mode.
func NewRegistry(longMode64 bool, lang LangMode) *Registry {
	r := &Registry{LongMode64: longMode64, Lang: lang, descs: make(map[TypeTag]*Descriptor)}
	r.init()
	return r
}

func bi(v int64) *big.Int { return big.NewInt(v) }

func unsignedMax(width int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return max.Sub(max, big.NewInt(1))
}

func signedMin(width int) *big.Int {
	min := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	return min.Neg(min)
}

func signedMax(width int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	return max.Sub(max, big.NewInt(1))
}

func (r *Registry) init() {
	longWidth := 32
	if r.LongMode64 {
		longWidth = 64
	}

	add := func(tag TypeTag, width int, signed bool, suffix string, rank int) {
		d := &Descriptor{Tag: tag, Width: width, Signed: signed, LiteralSuffix: suffix, Rank: rank}
		if signed {
			d.Min, d.Max = signedMin(width), signedMax(width)
		} else {
			d.Min, d.Max = big.NewInt(0), unsignedMax(width)
		}
		r.descs[tag] = d
	}

	// Integer ranks: bool < char < short < int < long < long long;
	// signed/unsigned share rank.
	add(Bool, 1, false, "", 0)
	add(Char, 8, true, "", 1)
	add(UChar, 8, false, "u", 1)
	add(Short, 16, true, "", 2)
	add(UShort, 16, false, "u", 2)
	add(Int, 32, true, "", 3)
	add(UInt, 32, false, "u", 3)
	add(Long, longWidth, true, "l", 4)
	add(ULong, longWidth, false, "ul", 4)
	add(LLong, 64, true, "ll", 5)
	add(ULLong, 64, false, "ull", 5)

	// FP kinds carry no integer rank; width is nominal (used by emit only).
	add(Float, 32, true, "f", -1)
	add(Double, 64, true, "", -1)
	add(LDouble, 80, true, "l", -1)
}

// Get returns the descriptor for tag. It panics on an unknown tag: an
// unknown TypeTag reaching this point is a programmer error, not a value
// the caller can recover from; callers that accept externally-controlled
// tags must validate with Valid first.
func (r *Registry) Get(tag TypeTag) *Descriptor {
	d, ok := r.descs[tag]
	if !ok {
		panic(fmt.Sprintf("ir: unknown type tag %d", int(tag)))
	}
	return d
}

// Valid reports whether tag names a scalar type this registry knows.
func (r *Registry) Valid(tag TypeTag) bool {
	_, ok := r.descs[tag]
	return ok
}

// IntegralPromotionTarget implements spec.md §4.2's integral_promotion_target:
// a tag already at or above int rank promotes to itself; a narrower integer
// type promotes to int if int can represent its full range, else to
// unsigned int. Bit-field members follow a different rule entirely (their
// value, not their declared type, decides) — see BitFieldPromotionTarget.
func (r *Registry) IntegralPromotionTarget(tag TypeTag) TypeTag {
	if tag.IsFP() {
		return tag
	}
	d := r.Get(tag)
	if d.Rank >= r.Get(Int).Rank {
		return tag
	}
	if r.CanRepresent(tag, Int) {
		return Int
	}
	return UInt
}

// BitFieldPromotionTarget implements spec.md §4.2/§4.5's bit-field-specific
// integral promotion rule: a bit-field promotes to int if its current value
// fits in int, else to unsigned int if it fits there, else it keeps its own
// declared type. This looks at the live value rather than the declared base
// type, since a bit-field's usable range is narrower than it (e.g. an
// `unsigned int : 4` bit-field always fits in int even though unsigned int
// itself does not).
func (r *Registry) BitFieldPromotionTarget(v Value, tag TypeTag) TypeTag {
	val := v.Big(r)
	if fits(val, r.Get(Int)) {
		return Int
	}
	if fits(val, r.Get(UInt)) {
		return UInt
	}
	return tag
}

// CanRepresent reports whether every value representable in type a is also
// representable in type b (spec.md §4.2's can_represent).
func (r *Registry) CanRepresent(a, b TypeTag) bool {
	da, db := r.Get(a), r.Get(b)
	return db.Min.Cmp(da.Min) <= 0 && da.Max.Cmp(db.Max) <= 0
}

// CorrespondingUnsigned returns the unsigned integer type of equal rank to
// tag (spec.md §4.2's corresponding_unsigned).
func (r *Registry) CorrespondingUnsigned(tag TypeTag) TypeTag {
	switch tag {
	case Bool:
		return Bool
	case Char:
		return UChar
	case UChar:
		return UChar
	case Short:
		return UShort
	case UShort:
		return UShort
	case Int:
		return UInt
	case UInt:
		return UInt
	case Long:
		return ULong
	case ULong:
		return ULong
	case LLong:
		return ULLong
	case ULLong:
		return ULLong
	default:
		panic(fmt.Sprintf("ir: CorrespondingUnsigned called with non-integer tag %v", tag))
	}
}

// TruthType returns the type a condition/logical result converts to:
// bool under C++ modes, int under C modes (spec.md §4.1's comparison rule).
func (r *Registry) TruthType() TypeTag {
	if r.Lang.IsCpp() {
		return Bool
	}
	return Int
}

// UsualArithmeticConversion implements spec.md §4.5's rule (b)-(e) for two
// already-integrally-promoted integer operand types, returning the common
// type both sides convert to.
func (r *Registry) UsualArithmeticConversion(a, b TypeTag) TypeTag {
	if a == b {
		return a
	}
	da, db := r.Get(a), r.Get(b)

	// (b) same signedness -> cast lower rank to higher rank type.
	if da.Signed == db.Signed {
		if da.Rank >= db.Rank {
			return a
		}
		return b
	}

	var signedTag, unsignedTag TypeTag
	if da.Signed {
		signedTag, unsignedTag = a, b
	} else {
		signedTag, unsignedTag = b, a
	}
	ds, du := r.Get(signedTag), r.Get(unsignedTag)

	// (c) unsigned side rank >= signed side rank -> cast signed to unsigned.
	if du.Rank >= ds.Rank {
		return unsignedTag
	}
	// (d) signed side can represent all unsigned values -> cast unsigned to signed.
	if r.CanRepresent(unsignedTag, signedTag) {
		return signedTag
	}
	// (e) otherwise both cast to the signed side's corresponding unsigned.
	return r.CorrespondingUnsigned(signedTag)
}

// FPConversion implements spec.md §4.5's FP path: if either operand is FP,
// the other promotes to FP; if both are FP, to the wider kind.
func (r *Registry) FPConversion(a, b TypeTag) TypeTag {
	fpRank := func(t TypeTag) int {
		switch t {
		case Float:
			return 0
		case Double:
			return 1
		case LDouble:
			return 2
		default:
			return -1
		}
	}
	if a.IsFP() && b.IsFP() {
		if fpRank(a) >= fpRank(b) {
			return a
		}
		return b
	}
	if a.IsFP() {
		return a
	}
	return b
}
