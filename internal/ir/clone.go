package ir

// CloneExpr returns a structurally independent copy of e: every node is a
// fresh allocation, but leaf nodes keep referencing the same underlying
// Variable/DataObject, so a cloned common-subexpression still observes
// that variable's live value (spec.md §4.5/§4.9's CSE reuse).
func CloneExpr(e Expr) Expr {
	switch n := e.(type) {
	case *Const:
		cp := *n
		return &cp
	case *VarUse:
		cp := *n
		return &cp
	case *MemberAccess:
		cp := *n
		cp.Chain = append([]AccessStep(nil), n.Chain...)
		return &cp
	case *TypeCast:
		cp := *n
		cp.Child = CloneExpr(n.Child)
		return &cp
	case *Unary:
		cp := *n
		cp.Child = CloneExpr(n.Child)
		return &cp
	case *Binary:
		cp := *n
		cp.Lhs = CloneExpr(n.Lhs)
		cp.Rhs = CloneExpr(n.Rhs)
		return &cp
	case *Conditional:
		cp := *n
		cp.Cond = CloneExpr(n.Cond)
		cp.Lhs = CloneExpr(n.Lhs)
		cp.Rhs = CloneExpr(n.Rhs)
		return &cp
	case *Assign:
		cp := *n
		cp.Lhs = CloneExpr(n.Lhs)
		cp.Rhs = CloneExpr(n.Rhs)
		return &cp
	default:
		panic("ir: CloneExpr: unknown node type")
	}
}
