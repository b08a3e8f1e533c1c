package ir

import (
	"fmt"
	"math/big"
)

// DataObject is any named storage location: a scalar variable, a struct
// instance, or an array instance (spec.md §3).
type DataObject interface {
	ObjName() string
}

// Variable is a scalar data object: a plain local/global/extern variable,
// or (when BitFieldWidth > 0) the storage backing a struct bit-field
// member (spec.md §3).
type Variable struct {
	Name          string
	Tag           TypeTag
	BitFieldWidth int // 0 means "not a bit-field"
	Extern        bool

	Initial Value
	Current Value
	Changed bool
}

func (v *Variable) ObjName() string { return v.Name }

// NewVariable creates a plain scalar variable with the given initial value
// as both its initial and current value.
func NewVariable(name string, tag TypeTag, initial Value) *Variable {
	return &Variable{Name: name, Tag: tag, Initial: initial, Current: initial}
}

// IsBitField reports whether this variable backs a bit-field member.
func (v *Variable) IsBitField() bool { return v.BitFieldWidth > 0 }

// Range returns the variable's representable [min, max], clamped to the
// bit-field width when applicable (spec.md §3).
func (v *Variable) Range(reg *Registry) (minV, maxV *big.Int) {
	if v.IsBitField() {
		if reg.Get(v.Tag).Signed {
			return signedMin(v.BitFieldWidth), signedMax(v.BitFieldWidth)
		}
		return big.NewInt(0), unsignedMax(v.BitFieldWidth)
	}
	d := reg.Get(v.Tag)
	return d.Min, d.Max
}

// SetCurrent updates the variable's live value and marks it changed.
func (v *Variable) SetCurrent(val Value) {
	v.Current = val
	v.Changed = true
}

// StructInstance is a named instance of a StructType, owning one
// DataObject per member (recursively, for nested struct members). Static
// members are resolved through the struct type's shared storage so every
// instance observes the same current value (spec.md §3/§4.4).
type StructInstance struct {
	Name    string
	Type    *StructType
	Members []DataObject // parallel to Type.Members

	// staticStorage is shared across all instances of Type, keyed by
	// member index; lazily populated on first instantiation.
	staticStorage *map[int]DataObject
}

func (s *StructInstance) ObjName() string { return s.Name }

// NewStructInstance allocates member storage depth-first; static members
// are shared across all instances of the same StructType via sharedStatic.
func NewStructInstance(reg *Registry, name string, st *StructType, sharedStatic *map[int]DataObject, newInit func(tag TypeTag) Value) *StructInstance {
	inst := &StructInstance{Name: name, Type: st, Members: make([]DataObject, len(st.Members)), staticStorage: sharedStatic}
	for i, m := range st.Members {
		memberName := name + "." + m.Name
		if m.IsStatic {
			if existing, ok := (*sharedStatic)[i]; ok {
				inst.Members[i] = existing
				continue
			}
			obj := buildMember(reg, memberName, m, sharedStatic, newInit)
			(*sharedStatic)[i] = obj
			inst.Members[i] = obj
			continue
		}
		inst.Members[i] = buildMember(reg, memberName, m, sharedStatic, newInit)
	}
	return inst
}

func buildMember(reg *Registry, memberName string, m *StructMember, sharedStatic *map[int]DataObject, newInit func(tag TypeTag) Value) DataObject {
	if m.StructType != nil {
		nestedStatics := make(map[int]DataObject)
		return NewStructInstance(reg, memberName, m.StructType, &nestedStatics, newInit)
	}
	v := &Variable{Name: memberName, Tag: m.ScalarType}
	if m.IsBitField {
		v.BitFieldWidth = m.BitFieldSize
	}
	v.Initial = newInit(m.ScalarType)
	v.Current = v.Initial
	return v
}

// Member returns the data object for member index i.
func (s *StructInstance) Member(i int) DataObject { return s.Members[i] }

// ArrayInstance is a named instance of an ArrayType; elements are generated
// lazily to match the element count (spec.md §3/§4.4).
type ArrayInstance struct {
	Name     string
	Type     *ArrayType
	elements []DataObject
}

func (a *ArrayInstance) ObjName() string { return a.Name }

// NewArrayInstance allocates an empty element slice sized to the array
// type's element count; elements are filled via SetElem on demand.
func NewArrayInstance(name string, at *ArrayType) *ArrayInstance {
	return &ArrayInstance{Name: name, Type: at, elements: make([]DataObject, at.Count)}
}

// Elem returns element i, or nil if not yet generated.
func (a *ArrayInstance) Elem(i int) DataObject { return a.elements[i] }

// SetElem installs the data object for element i.
func (a *ArrayInstance) SetElem(i int, obj DataObject) { a.elements[i] = obj }

// ElemName synthesizes the default printed name for element i: the
// container name plus a bracketed index. Emit may choose a different
// subscript convention per the array kind and policy (spec.md §4.4).
func (a *ArrayInstance) ElemName(i int) string {
	return fmt.Sprintf("%s[%d]", a.Name, i)
}

// NumGenerated reports how many elements have been filled so far.
func (a *ArrayInstance) NumGenerated() int {
	n := 0
	for _, e := range a.elements {
		if e != nil {
			n++
		}
	}
	return n
}
