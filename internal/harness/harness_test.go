package harness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/generator"
	"github.com/stressgen/stressgen/internal/harness"
	"github.com/stressgen/stressgen/internal/ir"
)

func build(t *testing.T, seed uint64) *harness.Artifacts {
	t.Helper()
	reg := ir.NewRegistry(true, ir.LangC11)
	prog, err := generator.New(reg, genpolicy.Default(), seed).Generate(seed)
	require.NoError(t, err)
	return harness.Build(prog)
}

func TestBuildDeclHeaderHasGuardAndPrototypes(t *testing.T) {
	a := build(t, 1)
	assert.Contains(t, a.DeclHeader, "#ifndef INIT_H")
	assert.Contains(t, a.DeclHeader, "#endif")
	assert.Contains(t, a.DeclHeader, "void test_func(void);")
	assert.Contains(t, a.DeclHeader, "void test_func_checksum(unsigned long long *seed);")
}

func TestBuildDefinitionsIncludesHeaderAndInit(t *testing.T) {
	a := build(t, 1)
	assert.Contains(t, a.Definitions, "#include \"init.h\"")
	assert.Contains(t, a.Definitions, "void test_func_init(void) {")
}

func TestBuildDriverHashMatchesSpecFormula(t *testing.T) {
	a := build(t, 1)
	assert.Contains(t, a.Driver, "*seed ^= v + 0x9e3779b9ULL + ((*seed) << 6) + ((*seed) >> 2);")
	assert.Contains(t, a.Driver, "int main(void) {")
}

func TestDigestIsStableForSameSeed(t *testing.T) {
	a1 := build(t, 42)
	a2 := build(t, 42)
	assert.Equal(t, a1.Digest, a2.Digest)
	assert.Len(t, a1.Digest, 64) // 32-byte blake2b-256 digest, hex-encoded
}
