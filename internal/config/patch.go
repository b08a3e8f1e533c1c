package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stressgen/stressgen/internal/xerrors"
)

// PatchOp names the kind of change a Patch applies (spec.md §6's JSON
// patches).
type PatchOp int

const (
	PatchSetValue PatchOp = iota
	PatchSetMean
	PatchSetDev
)

func (op PatchOp) String() string {
	switch op {
	case PatchSetValue:
		return "value"
	case PatchSetMean:
		return "mean"
	case PatchSetDev:
		return "dev"
	default:
		return "?"
	}
}

// Patch overrides one field of one option (spec.md §6).
type Patch struct {
	Option string
	Op     PatchOp
	Value  string
}

// Apply mutates doc in place according to p.
func (p Patch) Apply(doc Document) error {
	opt, ok := doc[p.Option]
	if !ok {
		return xerrors.Newf(xerrors.ErrConfig, "patch references unknown option %q", p.Option)
	}
	switch p.Op {
	case PatchSetValue:
		if n, err := strconv.Atoi(p.Value); err == nil {
			opt.Value = Distribution{Kind: "uniform", Scalar: &n}
		} else {
			opt.Value.Kind = p.Value
			opt.Value.Scalar = nil
		}
	case PatchSetMean:
		f, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return xerrors.Wrap(xerrors.ErrConfig, "patch mean is not numeric", err)
		}
		opt.Value.Mean = f
	case PatchSetDev:
		f, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return xerrors.Wrap(xerrors.ErrConfig, "patch dev is not numeric", err)
		}
		opt.Value.Dev = f
	}
	doc[p.Option] = opt
	return nil
}

// ApplyPatches applies every patch in order, stopping at the first error.
func ApplyPatches(doc Document, patches []Patch) error {
	for _, p := range patches {
		if err := p.Apply(doc); err != nil {
			return err
		}
	}
	return nil
}

// optionIndex builds a stable index of option names for the compact
// numeric encoding (spec.md §6: "action IDs and option IDs are replaced
// by numeric indices").
func optionIndex(doc Document) ([]string, map[string]int) {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	// Sort for determinism: map iteration order is randomized, but the
	// compact encoding must be reproducible across runs.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return names, index
}

// EncodePatches renders patches as the compact textual form: one `#`
// separated record per patch (opID#optionID#value), `|` separated between
// patches (spec.md §6).
func EncodePatches(doc Document, patches []Patch) (string, error) {
	_, index := optionIndex(doc)
	records := make([]string, 0, len(patches))
	for _, p := range patches {
		id, ok := index[p.Option]
		if !ok {
			return "", xerrors.Newf(xerrors.ErrConfig, "encoding patch: unknown option %q", p.Option)
		}
		records = append(records, fmt.Sprintf("%d#%d#%s", int(p.Op), id, p.Value))
	}
	return strings.Join(records, "|"), nil
}

// DecodePatches parses the compact textual form produced by EncodePatches
// back into Patch values against doc's current option index.
func DecodePatches(doc Document, encoded string) ([]Patch, error) {
	names, _ := optionIndex(doc)
	if encoded == "" {
		return nil, nil
	}
	var out []Patch
	for _, rec := range strings.Split(encoded, "|") {
		fields := strings.SplitN(rec, "#", 3)
		if len(fields) != 3 {
			return nil, xerrors.Newf(xerrors.ErrConfig, "malformed patch record %q", rec)
		}
		opID, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, xerrors.Wrap(xerrors.ErrConfig, "malformed patch op id", err)
		}
		optID, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, xerrors.Wrap(xerrors.ErrConfig, "malformed patch option id", err)
		}
		if optID < 0 || optID >= len(names) {
			return nil, xerrors.Newf(xerrors.ErrConfig, "patch option id %d out of range", optID)
		}
		out = append(out, Patch{Option: names[optID], Op: PatchOp(opID), Value: fields[2]})
	}
	return out, nil
}
