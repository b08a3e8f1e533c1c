package ir

// Stmt is any node in the statement tree (spec.md §3/§4.6).
type Stmt interface {
	stmtNode()
}

// Decl declares a local data object with an optional initializer
// expression. Extern declarations carry no initializer (spec.md §4.6).
type Decl struct {
	Object      DataObject
	Initializer Expr // nil for Extern
	Extern      bool
}

func (*Decl) stmtNode() {}

// NewDecl records obj's declaration, wrapping init in an implicit cast to
// the declared scalar type when both are present (spec.md §4.6). Struct
// and array declarations pass a nil TypeTag-less initializer.
func NewDecl(reg *Registry, obj DataObject, tag TypeTag, init Expr, extern bool) *Decl {
	d := &Decl{Object: obj, Extern: extern}
	if !extern && init != nil {
		d.Initializer = wrapImplicit(reg, init, tag)
	}
	return d
}

// ExprStmt wraps an expression used for effect — in practice always an
// Assign (spec.md §4.6).
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

func NewExprStmt(e Expr) *ExprStmt { return &ExprStmt{Expr: e} }

// Scope is an ordered sequence of statements (spec.md §3).
type Scope struct {
	Stmts []Stmt
}

func (*Scope) stmtNode() {}

func NewScope() *Scope { return &Scope{} }

func (s *Scope) Append(stmt Stmt) { s.Stmts = append(s.Stmts, stmt) }

// If is a conditional with a precomputed taken-flag on each branch
// (spec.md §4.6).
type If struct {
	Cond  Expr
	Then  *Scope
	Else  *Scope // nil if no else branch
	Taken bool   // whether *this* If's enclosing scope is taken
}

func (*If) stmtNode() {}

// NewIf builds an if-statement. cond has already been evaluated (it is a
// published Expr); taken records whether the enclosing scope executes
// this statement at all.
func NewIf(cond Expr, then, els *Scope, taken bool) *If {
	return &If{Cond: cond, Then: then, Else: els, Taken: taken}
}

// ThenTaken reports whether the then-branch actually executes:
// parent.taken && cond (spec.md §4.6).
func (i *If) ThenTaken() bool {
	return i.Taken && !i.Cond.ExprValue().IsZero()
}

// ElseTaken reports whether the else-branch actually executes:
// parent.taken && !cond (spec.md §4.6).
func (i *If) ElseTaken() bool {
	return i.Taken && i.Cond.ExprValue().IsZero()
}
