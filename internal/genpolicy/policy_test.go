package genpolicy_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

func TestCloneIsIndependent(t *testing.T) {
	base := genpolicy.Default()
	clone := base.Clone()

	clone.AllowedBinaryOps = append(clone.AllowedBinaryOps, ir.BinMod)
	clone.ArrayKindProb[ir.ArrayKindCArray] = 999

	assert.NotEqual(t, len(base.AllowedBinaryOps), len(clone.AllowedBinaryOps))
	assert.NotEqual(t, base.ArrayKindProb[ir.ArrayKindCArray], clone.ArrayKindProb[ir.ArrayKindCArray])
}

func TestCloneSharesCSEPoolByReference(t *testing.T) {
	base := genpolicy.Default()
	base.AddCSETemplate(ir.NewConst(ir.NewInt(ir.NewRegistry(true, ir.LangC11), ir.Int, 1)))

	clone := base.Clone()
	assert.Len(t, clone.CSEPool, 1)

	clone.AddCSETemplate(ir.NewConst(ir.NewInt(ir.NewRegistry(true, ir.LangC11), ir.Int, 2)))
	assert.Len(t, base.CSEPool, 2, "CSEPool must be shared by reference across clones")
}

func TestWithSimilarOperatorPatternRestrictsOpsWithoutMutatingOriginal(t *testing.T) {
	base := genpolicy.Default()
	restricted := base.WithSimilarOperatorPattern(genpolicy.SimilarOpAdditive)

	assert.ElementsMatch(t, []ir.BinaryOp{ir.BinAdd, ir.BinSub}, restricted.AllowedBinaryOps)
	assert.Equal(t, genpolicy.SimilarOpAdditive, restricted.ActiveSimilarOp)
	assert.Equal(t, genpolicy.SimilarOpNone, base.ActiveSimilarOp, "original must be untouched")
	assert.Greater(t, len(base.AllowedBinaryOps), len(restricted.AllowedBinaryOps))
}

func TestWithConstUsePatternForcesAllConst(t *testing.T) {
	base := genpolicy.Default()
	forced := base.WithConstUsePattern(genpolicy.ConstUseAllConst)

	assert.Equal(t, 100, forced.LeafConstProb)
	assert.NotEqual(t, 100, base.LeafConstProb)
}

func TestWeightedIntSampleStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	w := genpolicy.WeightedInt{Min: 5, Max: 9}
	for i := 0; i < 200; i++ {
		v := w.Sample(rng)
		assert.GreaterOrEqual(t, v, 5)
		assert.LessOrEqual(t, v, 9)
	}
}

func TestWeightedIntDegenerateRangeReturnsMin(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	w := genpolicy.WeightedInt{Min: 5, Max: 5}
	assert.Equal(t, 5, w.Sample(rng))
}

func TestRollPercentSaturatesAtBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	assert.False(t, genpolicy.RollPercent(rng, 0))
	assert.True(t, genpolicy.RollPercent(rng, 100))
}

func TestPickCSETemplateEmptyPool(t *testing.T) {
	p := genpolicy.Default()
	rng := rand.New(rand.NewPCG(1, 1))
	_, ok := p.PickCSETemplate(rng)
	assert.False(t, ok)
}
