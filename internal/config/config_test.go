package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stressgen/stressgen/internal/config"
)

func sampleDoc() config.Document {
	scalar := 5
	return config.Document{
		"max_total_exprs": {Value: config.Distribution{Kind: "uniform", Scalar: &scalar}, Descr: "expression budget"},
		"leaf_const_prob": {Value: config.Distribution{Kind: "normal", Mean: 30, Dev: 10}, Descr: "leaf constant probability"},
	}
}

func TestDistributionJSONRoundTripsScalarAndNamed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	doc := sampleDoc()

	require.NoError(t, config.Save(path, doc))
	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(doc, loaded))
}

func TestDistributionMarshalsBareScalar(t *testing.T) {
	doc := sampleDoc()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, config.Save(path, doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"max_total_exprs"`)
	assert.Contains(t, string(raw), `"value": 5`)
}

func TestYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	doc := sampleDoc()

	require.NoError(t, config.SaveYAML(path, doc))
	loaded, err := config.LoadYAML(path)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(doc, loaded))
}

func TestValidateRejectsMissingValueField(t *testing.T) {
	bad := []byte(`{"opt": {"descr": "no value field"}}`)
	err := config.Validate(bad)
	assert.Error(t, err)
}

func TestValidateAcceptsScalarAndObjectForms(t *testing.T) {
	good := []byte(`{"opt_a": {"value": 5}, "opt_b": {"value": "normal", "mean": 1, "dev": 2}}`)
	assert.NoError(t, config.Validate(good))
}

func TestSuggestOptionFindsClosestMatch(t *testing.T) {
	known := []string{"max_total_exprs", "leaf_const_prob", "max_if_depth"}
	assert.Equal(t, "max_total_exprs", config.SuggestOption("max_total_expr", known))
}

func TestUnknownOptionErrorIncludesSuggestion(t *testing.T) {
	known := []string{"max_total_exprs"}
	err := config.UnknownOptionError("max_total_expr", known)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean")
}

func TestPatchEncodeDecodeRoundTrips(t *testing.T) {
	doc := sampleDoc()
	patches := []config.Patch{
		{Option: "max_total_exprs", Op: config.PatchSetValue, Value: "10"},
		{Option: "leaf_const_prob", Op: config.PatchSetMean, Value: "40"},
	}

	encoded, err := config.EncodePatches(doc, patches)
	require.NoError(t, err)

	decoded, err := config.DecodePatches(doc, encoded)
	require.NoError(t, err)

	reencoded, err := config.EncodePatches(doc, decoded)
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestApplyPatchesMutatesDocument(t *testing.T) {
	doc := sampleDoc()
	patches := []config.Patch{{Option: "max_total_exprs", Op: config.PatchSetValue, Value: "99"}}

	require.NoError(t, config.ApplyPatches(doc, patches))
	assert.Equal(t, 99, *doc["max_total_exprs"].Value.Scalar)
}

func TestApplyPatchUnknownOptionErrors(t *testing.T) {
	doc := sampleDoc()
	err := config.Patch{Option: "nope", Op: config.PatchSetValue, Value: "1"}.Apply(doc)
	assert.Error(t, err)
}
