// Package harness assembles the four fixed-form artifacts around a
// generated function: a declarations header, a definitions file, a
// function file, and a driver that hashes every mixed/output value in
// order and prints the result (spec.md §4.11).
package harness

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/stressgen/stressgen/internal/emit"
	"github.com/stressgen/stressgen/internal/gencontext"
	"github.com/stressgen/stressgen/internal/generator"
	"github.com/stressgen/stressgen/internal/ir"
)

// Artifacts holds the four generated source files plus the digest computed
// over the same value stream the emitted driver will hash at runtime.
type Artifacts struct {
	DeclHeader  string
	Definitions string
	Function    string
	Driver      string

	// Digest is a blake2b-256 checksum over the mixed/output values in
	// emission order, computed at generation time so a test can assert
	// reproducibility without compiling and running the emitted program
	// (spec.md's checksum contract, enriched beyond the original's
	// runtime-only hash).
	Digest string
}

const funcName = "test_func"

// Build assembles every artifact for prog.
func Build(prog *generator.Program) *Artifacts {
	e := emit.New(prog.Reg, prog.Reg.Lang)

	a := &Artifacts{}
	a.DeclHeader = buildDeclHeader(e, prog)
	a.Definitions = buildDefinitions(e, prog)
	a.Function = e.Function(funcName, prog.Body)
	a.Driver = buildDriver(e, prog)
	a.Digest = digest(prog)
	return a
}

func buildDeclHeader(e *emit.Emitter, prog *generator.Program) string {
	var b strings.Builder
	b.WriteString("#ifndef INIT_H\n#define INIT_H\n\n")
	for _, st := range prog.StructTypes {
		b.WriteString(e.StructTypeDef(st))
		b.WriteString("\n\n")
	}
	for _, decl := range e.TableExternDecls(prog.Input) {
		b.WriteString(decl)
		b.WriteString("\n")
	}
	for _, decl := range e.TableExternDecls(prog.Mixed) {
		b.WriteString(decl)
		b.WriteString("\n")
	}
	for _, decl := range e.TableExternDecls(prog.Output) {
		b.WriteString(decl)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nvoid %s(void);\nvoid %s_init(void);\nvoid %s_checksum(unsigned long long *seed);\n", funcName, funcName, funcName)
	b.WriteString("\n#endif\n")
	return b.String()
}

func buildDefinitions(e *emit.Emitter, prog *generator.Program) string {
	var b strings.Builder
	b.WriteString("#include \"init.h\"\n\n")
	for _, v := range prog.Input.Variables {
		b.WriteString(e.VariableDef(v))
		b.WriteString("\n")
	}
	for _, v := range prog.Mixed.Variables {
		b.WriteString(e.VariableDef(v))
		b.WriteString("\n")
	}
	for _, v := range prog.Output.Variables {
		b.WriteString(e.VariableDef(v))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nvoid %s_init(void) {\n}\n", funcName)
	return b.String()
}

// checksumTargets returns every value the driver must feed through hash(),
// in the order the original's SymbolTable::emit_variable_check /
// emit_struct_check / emit_array_check walk produces: plain variables for
// mix then out, then every struct instance's members (recursing into
// nested structs) for mix then out, then every array's elements (recursing
// into struct-typed elements) for mix then out. Static struct members are
// not deduplicated: the original hashes them once per struct instance that
// carries them, even though instances of the same type share the storage.
func checksumTargets(mix, out *gencontext.SymbolTable) []ir.Expr {
	var targets []ir.Expr
	for _, v := range mix.Variables {
		targets = append(targets, ir.NewVarUse(v))
	}
	for _, v := range out.Variables {
		targets = append(targets, ir.NewVarUse(v))
	}
	for _, tbl := range []*gencontext.SymbolTable{mix, out} {
		for _, si := range tbl.StructInstances {
			for _, leaf := range ir.StructLeaves(si.Name, si) {
				targets = append(targets, leaf)
			}
		}
	}
	for _, tbl := range []*gencontext.SymbolTable{mix, out} {
		for _, ai := range tbl.ArrayInstances {
			for _, leaf := range ir.ArrayLeaves(ai) {
				targets = append(targets, leaf)
			}
		}
	}
	return targets
}

func buildDriver(e *emit.Emitter, prog *generator.Program) string {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n#include \"init.h\"\n\n")
	b.WriteString("static void hash(unsigned long long *seed, unsigned long long v) {\n")
	b.WriteString("    *seed ^= v + 0x9e3779b9ULL + ((*seed) << 6) + ((*seed) >> 2);\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "void %s_checksum(unsigned long long *seed) {\n", funcName)
	for _, target := range checksumTargets(prog.Mixed, prog.Output) {
		fmt.Fprintf(&b, "    hash(seed, (unsigned long long) %s);\n", e.Expr(target))
	}
	b.WriteString("}\n\n")

	b.WriteString("int main(void) {\n")
	fmt.Fprintf(&b, "    unsigned long long seed = 0;\n    %s_init();\n    %s();\n    %s_checksum(&seed);\n", funcName, funcName, funcName)
	b.WriteString("    printf(\"%llu\\n\", seed);\n    return 0;\n}\n")
	return b.String()
}

// digest hashes the same ordered value stream the emitted driver's
// hash() calls will produce, letting generation-time tests assert
// determinism without invoking a compiler (spec.md §4.11's checksum
// contract, plus this tool's own blake2b-based generation-time check).
func digest(prog *generator.Program) string {
	h, _ := blake2b.New256(nil)
	for _, target := range checksumTargets(prog.Mixed, prog.Output) {
		fmt.Fprintf(h, "%d:%d;", target.ExprType(), target.ExprValue().Uint64())
	}
	return hex.EncodeToString(h.Sum(nil))
}
