package config

import (
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/xerrors"
)

// SavePolicyCache persists a fully materialized policy (every distribution
// resolved, every patch applied) to a compact CBOR cache file next to the
// JSON config, so repeated runs against the same config skip re-parsing
// and re-validating JSON (spec.md §6's configuration layer, enriched by
// this tool's own cache path).
func SavePolicyCache(path string, policy *genpolicy.Policy) error {
	data, err := cbor.Marshal(policy)
	if err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "encoding policy cache", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "writing policy cache", err)
	}
	return nil
}

// LoadPolicyCache reads back a policy cached by SavePolicyCache. ok is
// false (with a nil error) if the cache file doesn't exist yet.
func LoadPolicyCache(path string) (policy *genpolicy.Policy, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, xerrors.Wrap(xerrors.ErrConfig, "reading policy cache", err)
	}
	var p genpolicy.Policy
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, false, xerrors.Wrap(xerrors.ErrConfig, "decoding policy cache", err)
	}
	return &p, true, nil
}
