package ir

// StructLeaves returns a MemberAccess for every leaf scalar member reachable
// from inst, in declaration order, recursing into nested struct-typed
// members (spec.md §4.3/§4.4). rootName is the printed name of inst itself.
func StructLeaves(rootName string, inst *StructInstance) []*MemberAccess {
	var out []*MemberAccess
	var walk func(prefix []AccessStep, cur *StructInstance)
	walk = func(prefix []AccessStep, cur *StructInstance) {
		for i, m := range cur.Type.Members {
			chain := append(append([]AccessStep(nil), prefix...), AccessStep{Kind: AccessMember, Name: m.Name})
			switch obj := cur.Member(i).(type) {
			case *StructInstance:
				walk(chain, obj)
			case *Variable:
				out = append(out, NewMemberAccess(rootName, chain, obj))
			}
		}
	}
	walk(nil, inst)
	return out
}

// ArrayLeaves returns a MemberAccess for every leaf scalar reachable through
// arr's elements, in declaration order: the element itself for a scalar
// array, or every leaf of a struct-typed element recursed the same way
// StructLeaves does (spec.md §4.4).
func ArrayLeaves(arr *ArrayInstance) []*MemberAccess {
	var out []*MemberAccess
	for i := 0; i < arr.Type.Count; i++ {
		base := []AccessStep{{Kind: AccessElement, Index: i}}
		switch obj := arr.Elem(i).(type) {
		case *Variable:
			out = append(out, NewMemberAccess(arr.Name, base, obj))
		case *StructInstance:
			var walk func(prefix []AccessStep, cur *StructInstance)
			walk = func(prefix []AccessStep, cur *StructInstance) {
				for j, m := range cur.Type.Members {
					chain := append(append([]AccessStep(nil), prefix...), AccessStep{Kind: AccessMember, Name: m.Name})
					switch mobj := cur.Member(j).(type) {
					case *StructInstance:
						walk(chain, mobj)
					case *Variable:
						out = append(out, NewMemberAccess(arr.Name, chain, mobj))
					}
				}
			}
			walk(base, obj)
		}
	}
	return out
}
