// Package config loads, validates, and round-trips the JSON option
// document described in spec.md §6: a map of option name to value/descr,
// where a value may be a plain scalar or a probability distribution
// (uniform, or normal with mean/dev percentages).
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stressgen/stressgen/internal/xerrors"
)

// Distribution is either a plain scalar ("value": 5) or a named
// distribution with parameters ("value": "normal", "mean": 50, "dev": 10)
// (spec.md §6).
type Distribution struct {
	Kind  string  `json:"value" yaml:"value"`
	Mean  float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Dev   float64 `json:"dev,omitempty" yaml:"dev,omitempty"`
	Scalar *int   `json:"-" yaml:"-"`
}

// UnmarshalJSON accepts either a bare number (a fixed scalar) or an object
// with value/mean/dev (spec.md §6's two distribution shapes).
func (d *Distribution) UnmarshalJSON(data []byte) error {
	var scalar int
	if err := json.Unmarshal(data, &scalar); err == nil {
		d.Kind = "uniform"
		d.Scalar = &scalar
		return nil
	}
	type alias Distribution
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Distribution(a)
	return nil
}

func (d Distribution) MarshalJSON() ([]byte, error) {
	if d.Scalar != nil {
		return json.Marshal(*d.Scalar)
	}
	type alias Distribution
	return json.Marshal(alias(d))
}

// MarshalYAML/UnmarshalYAML mirror the JSON methods above: yaml.v3 does not
// consult json.Marshaler, so the scalar-vs-named shape needs its own pair.
func (d Distribution) MarshalYAML() (interface{}, error) {
	if d.Scalar != nil {
		return *d.Scalar, nil
	}
	type alias Distribution
	return alias(d), nil
}

func (d *Distribution) UnmarshalYAML(value *yaml.Node) error {
	var scalar int
	if err := value.Decode(&scalar); err == nil {
		d.Kind = "uniform"
		d.Scalar = &scalar
		return nil
	}
	type alias Distribution
	var a alias
	if err := value.Decode(&a); err != nil {
		return err
	}
	*d = Distribution(a)
	return nil
}

// Option is one entry in the configuration document: its current value
// and a human-readable description (spec.md §6).
type Option struct {
	Value Distribution `json:"value" yaml:"value"`
	Descr string       `json:"descr,omitempty" yaml:"descr,omitempty"`
}

// Document is the full configuration: option name -> Option.
type Document map[string]Option

// Load reads a JSON configuration document from path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrConfig, "reading config file", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrConfig, "parsing config JSON", err)
	}
	return doc, nil
}

// Save writes doc to path as indented JSON.
func Save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "marshaling config JSON", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "writing config file", err)
	}
	return nil
}

// LoadYAML reads the same document shape from a YAML file — a convenience
// alternate format alongside the canonical JSON (spec.md §6 names JSON as
// canonical; YAML is carried for editing convenience only).
func LoadYAML(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrConfig, "reading YAML config file", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrConfig, "parsing config YAML", err)
	}
	return doc, nil
}

// SaveYAML writes doc to path as YAML.
func SaveYAML(path string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "marshaling config YAML", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.Wrap(xerrors.ErrConfig, "writing YAML config file", err)
	}
	return nil
}

// String renders an option's distribution for error messages and logs.
func (o Option) String() string {
	if o.Value.Scalar != nil {
		return fmt.Sprintf("%d", *o.Value.Scalar)
	}
	if o.Value.Kind == "normal" {
		return fmt.Sprintf("normal(mean=%.1f%%, dev=%.1f%%)", o.Value.Mean, o.Value.Dev)
	}
	return o.Value.Kind
}
