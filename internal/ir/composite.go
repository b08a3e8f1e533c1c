package ir

import "math/big"

// StructMember describes one member of a StructType: its type, name, and
// (for bit-fields) declared width plus derived min/max (spec.md §3).
type StructMember struct {
	Name       string
	ScalarType TypeTag  // valid when StructType == nil
	StructType *StructType
	IsStatic   bool

	IsBitField   bool
	BitFieldSize int // width in bits; base type restricted to int/unsigned int in C (spec.md §4.3)
}

// BitFieldRange returns the member's representable [min, max] given its
// declared width and base-type signedness, clamped to the bit-field width
// (spec.md §3's "Bit-field variables additionally clamp min/max").
func (m *StructMember) BitFieldRange(reg *Registry) (min, max *big.Int) {
	signed := reg.Get(m.ScalarType).Signed
	if signed {
		return signedMin(m.BitFieldSize), signedMax(m.BitFieldSize)
	}
	return big.NewInt(0), unsignedMax(m.BitFieldSize)
}

// StructType is an ordered list of members with a derived nesting depth:
// 0 if it has no struct-typed members, else 1 + max(child depth)
// (spec.md §3).
type StructType struct {
	Name    string
	Members []*StructMember
}

// NestingDepth computes the struct's nesting depth per spec.md §3.
func (s *StructType) NestingDepth() int {
	depth := 0
	for _, m := range s.Members {
		if m.StructType != nil {
			if d := m.StructType.NestingDepth() + 1; d > depth {
				depth = d
			}
		}
	}
	return depth
}

// MemberIndex returns the index of the member named name, or -1.
func (s *StructType) MemberIndex(name string) int {
	for i, m := range s.Members {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// ArrayKind selects the syntactic and subscript convention used at emit
// time; it never changes semantics (spec.md §3).
type ArrayKind int

const (
	ArrayKindCArray ArrayKind = iota
	ArrayKindVector
	ArrayKindStdArray
	ArrayKindValarray
)

func (k ArrayKind) String() string {
	switch k {
	case ArrayKindCArray:
		return "c_array"
	case ArrayKindVector:
		return "vector"
	case ArrayKindStdArray:
		return "std_array"
	case ArrayKindValarray:
		return "valarray"
	default:
		return "c_array"
	}
}

// ArrayType describes a fixed-length collection of a scalar or struct
// element type (spec.md §3).
type ArrayType struct {
	ElemScalar TypeTag // valid when ElemStruct == nil
	ElemStruct *StructType
	Count      int
	Kind       ArrayKind
}

// IsScalarElem reports whether the array's elements are scalar (as opposed
// to struct).
func (a *ArrayType) IsScalarElem() bool { return a.ElemStruct == nil }
