package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressgen/stressgen/internal/config"
	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/ir"
)

func TestLoadPolicyCacheMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.cbor")
	policy, ok, err := config.LoadPolicyCache(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, policy)
}

func TestPolicyCacheRoundTripsResolvedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.cbor")
	original := genpolicy.Default()
	original.MaxTotalExprs = 777
	original.AddCSETemplate(ir.NewConst(ir.NewInt(ir.NewRegistry(true, ir.LangC11), ir.Int, 1)))

	require.NoError(t, config.SavePolicyCache(path, original))

	loaded, ok, err := config.LoadPolicyCache(path)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, original.MaxTotalExprs, loaded.MaxTotalExprs)
	assert.Equal(t, original.LeafConstProb, loaded.LeafConstProb)
	assert.Equal(t, original.InputVarCount, loaded.InputVarCount)
	assert.Empty(t, loaded.CSEPool, "CSEPool is excluded from the cache; it is generation-time state")
}
