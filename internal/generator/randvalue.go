package generator

import (
	"math/rand/v2"

	"github.com/stressgen/stressgen/internal/ir"
)

// randomValue produces a uniformly chosen, in-range literal value for tag,
// used to seed variable initial values and constant leaves (spec.md §4.9).
// Full-width 64-bit types read straight from the generator's 64-bit random
// stream; narrower types compute an exact span so every representable
// value is equally likely.
func randomValue(reg *ir.Registry, tag ir.TypeTag, rng *rand.Rand) ir.Value {
	if tag.IsFP() {
		return ir.NewFloat(tag, (rng.Float64()*2-1)*1000)
	}
	d := reg.Get(tag)
	if d.Width == 64 {
		bits := rng.Uint64()
		if d.Signed {
			return ir.NewInt(reg, tag, int64(bits))
		}
		return ir.NewUint(reg, tag, bits)
	}
	span := d.Max.Int64() - d.Min.Int64() + 1
	v := d.Min.Int64() + rng.Int64N(span)
	if d.Signed {
		return ir.NewInt(reg, tag, v)
	}
	return ir.NewUint(reg, tag, uint64(v))
}
