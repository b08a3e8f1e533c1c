// Package emit serializes a generated ir.Scope and its extern symbol
// tables into target-language source text. It carries no generation
// state: every method is a pure function of the IR it's handed
// (spec.md §4.10).
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stressgen/stressgen/internal/gencontext"
	"github.com/stressgen/stressgen/internal/ir"
)

// Emitter prints IR as source text for one target language mode.
type Emitter struct {
	Reg  *ir.Registry
	Lang ir.LangMode
}

// New returns an Emitter for the given registry/language pair.
func New(reg *ir.Registry, lang ir.LangMode) *Emitter {
	return &Emitter{Reg: reg, Lang: lang}
}

// typeName returns the C/C++ spelling of a scalar tag, or "int" for any tag
// that is neither integer nor floating-point.
func (e *Emitter) typeName(tag ir.TypeTag) string {
	if tag.IsFP() || tag.IsInteger() {
		return tag.String()
	}
	return "int"
}

// Expr serializes an expression node with full parenthesization so the
// result never depends on the target compiler's operator precedence
// (spec.md §4.10).
func (e *Emitter) Expr(expr ir.Expr) string {
	switch n := expr.(type) {
	case *ir.Const:
		return e.constLiteral(n)
	case *ir.VarUse:
		return n.Var.Name
	case *ir.MemberAccess:
		return e.memberAccessText(n)
	case *ir.TypeCast:
		return fmt.Sprintf("(%s) (%s)", e.typeName(n.Target), e.Expr(n.Child))
	case *ir.Unary:
		return e.unaryText(n)
	case *ir.Binary:
		return fmt.Sprintf("(%s) %s (%s)", e.Expr(n.Lhs), n.Op.String(), e.Expr(n.Rhs))
	case *ir.Conditional:
		return fmt.Sprintf("((%s) ? (%s) : (%s))", e.Expr(n.Cond), e.Expr(n.Lhs), e.Expr(n.Rhs))
	case *ir.Assign:
		return fmt.Sprintf("(%s) = (%s)", e.Expr(n.Lhs), e.Expr(n.Rhs))
	default:
		return fmt.Sprintf("/* unknown expr node %T */", expr)
	}
}

func (e *Emitter) memberAccessText(n *ir.MemberAccess) string {
	var b strings.Builder
	b.WriteString(n.RootName)
	for _, step := range n.Chain {
		if step.Kind == ir.AccessElement {
			fmt.Fprintf(&b, "[%d]", step.Index)
		} else {
			b.WriteString(".")
			b.WriteString(step.Name)
		}
	}
	return b.String()
}

func (e *Emitter) unaryText(n *ir.Unary) string {
	child := e.Expr(n.Child)
	switch n.Op {
	case ir.UnaryPostInc:
		return fmt.Sprintf("(%s)++", child)
	case ir.UnaryPostDec:
		return fmt.Sprintf("(%s)--", child)
	case ir.UnaryPreInc:
		return fmt.Sprintf("++(%s)", child)
	case ir.UnaryPreDec:
		return fmt.Sprintf("--(%s)", child)
	default:
		return fmt.Sprintf("%s(%s)", n.Op.String(), child)
	}
}

// constLiteral spells a constant, using the "(MIN+1 - 1)" trick for a
// signed minimum to avoid the unary-minus-of-a-literal warning
// (spec.md §4.10).
func (e *Emitter) constLiteral(c *ir.Const) string {
	tag := c.Tag
	suffix := e.Reg.Get(tag).LiteralSuffix

	if tag == ir.Bool {
		if c.Val.IsZero() {
			return "false"
		}
		return "true"
	}
	if tag.IsFP() {
		return strconv.FormatFloat(c.Val.Float64(), 'g', -1, 64)
	}

	d := e.Reg.Get(tag)
	if d.Signed {
		v := c.Val.Int64(e.Reg)
		if v == d.Min.Int64() {
			return fmt.Sprintf("(%d%s - 1%s)", v+1, suffix, suffix)
		}
		return fmt.Sprintf("%d%s", v, suffix)
	}
	return fmt.Sprintf("%d%s", c.Val.Uint64(), suffix)
}

// Stmt serializes one statement at the given indentation depth.
func (e *Emitter) Stmt(stmt ir.Stmt, indent int) string {
	pad := strings.Repeat("    ", indent)
	switch s := stmt.(type) {
	case *ir.Decl:
		return e.declText(s, pad)
	case *ir.ExprStmt:
		return fmt.Sprintf("%s%s;", pad, e.Expr(s.Expr))
	case *ir.Scope:
		return e.Scope(s, indent)
	case *ir.If:
		return e.ifText(s, indent)
	default:
		return fmt.Sprintf("%s/* unknown stmt node %T */", pad, stmt)
	}
}

func (e *Emitter) declText(d *ir.Decl, pad string) string {
	v, ok := d.Object.(*ir.Variable)
	if !ok {
		return pad + "/* unsupported non-scalar declaration */"
	}
	extern := ""
	if d.Extern {
		extern = "extern "
	}
	if d.Initializer == nil {
		return fmt.Sprintf("%s%s%s %s;", pad, extern, e.typeName(v.Tag), v.Name)
	}
	return fmt.Sprintf("%s%s%s %s = %s;", pad, extern, e.typeName(v.Tag), v.Name, e.Expr(d.Initializer))
}

func (e *Emitter) ifText(i *ir.If, indent int) string {
	pad := strings.Repeat("    ", indent)
	var b strings.Builder
	fmt.Fprintf(&b, "%sif (%s) {\n", pad, e.Expr(i.Cond))
	b.WriteString(e.Scope(i.Then, indent+1))
	b.WriteString("\n")
	if i.Else != nil {
		fmt.Fprintf(&b, "%s} else {\n", pad)
		b.WriteString(e.Scope(i.Else, indent+1))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s}", pad)
	return b.String()
}

// Scope serializes every statement in s, one per line.
func (e *Emitter) Scope(s *ir.Scope, indent int) string {
	lines := make([]string, 0, len(s.Stmts))
	for _, stmt := range s.Stmts {
		lines = append(lines, e.Stmt(stmt, indent))
	}
	return strings.Join(lines, "\n")
}

// Function serializes one void function named name wrapping body.
func (e *Emitter) Function(name string, body *ir.Scope) string {
	var b strings.Builder
	fmt.Fprintf(&b, "void %s(void) {\n", name)
	b.WriteString(e.Scope(body, 1))
	b.WriteString("\n}\n")
	return b.String()
}

// ExternDecl spells an extern declaration for one scalar variable.
func (e *Emitter) ExternDecl(v *ir.Variable) string {
	return fmt.Sprintf("extern %s %s;", e.typeName(v.Tag), v.Name)
}

// VariableDef spells a variable's storage definition with its initial
// value.
func (e *Emitter) VariableDef(v *ir.Variable) string {
	return fmt.Sprintf("%s %s = %s;", e.typeName(v.Tag), v.Name, e.constLiteral(ir.NewConst(v.Initial)))
}

// StructTypeDef spells a struct type's definition, including bit-field
// widths.
func (e *Emitter) StructTypeDef(st *ir.StructType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", st.Name)
	for _, m := range st.Members {
		static := ""
		if m.IsStatic {
			static = "static "
		}
		if m.StructType != nil {
			fmt.Fprintf(&b, "    %sstruct %s %s;\n", static, m.StructType.Name, m.Name)
			continue
		}
		if m.IsBitField {
			fmt.Fprintf(&b, "    %s%s %s : %d;\n", static, e.typeName(m.ScalarType), m.Name, m.BitFieldSize)
			continue
		}
		fmt.Fprintf(&b, "    %s%s %s;\n", static, e.typeName(m.ScalarType), m.Name)
	}
	fmt.Fprintf(&b, "};")
	return b.String()
}

// TableExternDecls spells extern declarations for every variable in a
// symbol table (scalars only; struct/array instances are emitted through
// their own defs since extern storage for them is rarely exercised by the
// checksum path).
func (e *Emitter) TableExternDecls(t *gencontext.SymbolTable) []string {
	out := make([]string, 0, len(t.Variables))
	for _, v := range t.Variables {
		out = append(out, e.ExternDecl(v))
	}
	return out
}
