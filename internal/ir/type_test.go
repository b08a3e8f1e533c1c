package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stressgen/stressgen/internal/ir"
)

func TestIntegralPromotionTargetPromotesNarrowToInt(t *testing.T) {
	reg := newReg()
	assert.Equal(t, ir.Int, reg.IntegralPromotionTarget(ir.Short))
	assert.Equal(t, ir.Int, reg.IntegralPromotionTarget(ir.Char))
	assert.Equal(t, ir.Int, reg.IntegralPromotionTarget(ir.Int))
}

func TestIntegralPromotionTargetLeavesWideTypesAlone(t *testing.T) {
	reg := newReg()
	assert.Equal(t, ir.Long, reg.IntegralPromotionTarget(ir.Long))
	assert.Equal(t, ir.ULLong, reg.IntegralPromotionTarget(ir.ULLong))
}

func TestUsualArithmeticConversionSameSignednessPicksHigherRank(t *testing.T) {
	reg := newReg()
	assert.Equal(t, ir.Long, reg.UsualArithmeticConversion(ir.Int, ir.Long))
	assert.Equal(t, ir.ULLong, reg.UsualArithmeticConversion(ir.ULLong, ir.UInt))
}

// S5 case (c): int + unsigned int at equal rank converts to unsigned.
func TestUsualArithmeticConversionEqualRankUnsignedWins(t *testing.T) {
	reg := newReg()
	assert.Equal(t, ir.UInt, reg.UsualArithmeticConversion(ir.Int, ir.UInt))
}

// S5 case (e) tie-break: in 64-bit long mode, unsigned long and long long
// are both 64-bit but rank 4 vs 5; long long can't represent every
// unsigned long value, so both fall to long long's corresponding
// unsigned (unsigned long long).
func TestUsualArithmeticConversionFallsToCorrespondingUnsigned(t *testing.T) {
	reg := ir.NewRegistry(true, ir.LangCpp17) // 64-bit long mode
	assert.Equal(t, ir.ULLong, reg.UsualArithmeticConversion(ir.ULong, ir.LLong))
}

// Case (c): when the unsigned side outranks the signed side, the signed
// side simply converts to the unsigned type.
func TestUsualArithmeticConversionHigherUnsignedRankWins(t *testing.T) {
	reg := ir.NewRegistry(false, ir.LangCpp17) // 32-bit long mode
	assert.Equal(t, ir.ULLong, reg.UsualArithmeticConversion(ir.Long, ir.ULLong))
}

func TestCorrespondingUnsignedMapsEachSignedRank(t *testing.T) {
	reg := newReg()
	assert.Equal(t, ir.UChar, reg.CorrespondingUnsigned(ir.Char))
	assert.Equal(t, ir.UShort, reg.CorrespondingUnsigned(ir.Short))
	assert.Equal(t, ir.UInt, reg.CorrespondingUnsigned(ir.Int))
	assert.Equal(t, ir.ULong, reg.CorrespondingUnsigned(ir.Long))
	assert.Equal(t, ir.ULLong, reg.CorrespondingUnsigned(ir.LLong))
}

func TestTruthTypeDependsOnLangMode(t *testing.T) {
	cpp := ir.NewRegistry(true, ir.LangCpp17)
	c := ir.NewRegistry(true, ir.LangC11)
	assert.Equal(t, ir.Bool, cpp.TruthType())
	assert.Equal(t, ir.Int, c.TruthType())
}

func TestFPConversionWidensToDouble(t *testing.T) {
	reg := newReg()
	assert.Equal(t, ir.Double, reg.FPConversion(ir.Float, ir.Double))
	assert.Equal(t, ir.Double, reg.FPConversion(ir.Double, ir.Int))
}

func TestLongModeChangesLongWidth(t *testing.T) {
	r32 := ir.NewRegistry(false, ir.LangC11)
	r64 := ir.NewRegistry(true, ir.LangC11)
	assert.Equal(t, 32, r32.Get(ir.Long).Width)
	assert.Equal(t, 64, r64.Get(ir.Long).Width)
}

func TestFileExtAndIsCpp(t *testing.T) {
	assert.Equal(t, "c", ir.LangC11.FileExt())
	assert.False(t, ir.LangC11.IsCpp())
	assert.Equal(t, "cpp", ir.LangCpp17.FileExt())
	assert.True(t, ir.LangCpp17.IsCpp())
}
