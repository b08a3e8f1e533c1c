package config

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/stressgen/stressgen/internal/xerrors"
)

// optionSchema is the JSON Schema every option entry must satisfy: an
// object with a required value of any JSON shape, plus an optional string
// descr and optional numeric mean and dev alongside value.
const optionSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["value"],
    "properties": {
      "descr": {"type": "string"},
      "value": {},
      "mean": {"type": "number"},
      "dev": {"type": "number"}
    }
  }
}`

var compiledSchema *jsonschema.Schema

func schema() (*jsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	const url = "schema://stressgen-config.json"
	if err := compiler.AddResource(url, strings.NewReader(optionSchema)); err != nil {
		return nil, err
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}
	compiledSchema = s
	return s, nil
}

// Validate checks raw JSON config bytes against the option schema before
// they're ever unmarshaled into a Document (spec.md §6).
func Validate(data []byte) error {
	s, err := schema()
	if err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "compiling config schema", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "parsing config JSON for validation", err)
	}
	if err := s.Validate(v); err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "config failed schema validation", err)
	}
	return nil
}

// SuggestOption returns the closest known option name to an unrecognized
// key the user typed, or "" if nothing is close enough (spec.md §6's
// config layer; "did you mean" ergonomics).
func SuggestOption(unknown string, known []string) string {
	ranks := fuzzy.RankFindFold(unknown, known)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// UnknownOptionError builds a config error naming the closest suggestion,
// if any.
func UnknownOptionError(key string, known []string) error {
	suggestion := SuggestOption(key, known)
	if suggestion == "" {
		return xerrors.Newf(xerrors.ErrConfig, "unknown option %q", key)
	}
	return xerrors.Newf(xerrors.ErrConfig, "unknown option %q (did you mean %q?)", key, suggestion)
}
