// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package loader reads RuleSet documents from YAML, the authoring format
// spec.md assumes throughout.
package loader

import (
	"fmt"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/meddsl/meddsl/internal/ruleset"
)

// FromYAML decodes a RuleSet document from raw YAML bytes.
func FromYAML(content []byte) (ruleset.RuleSet, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return ruleset.RuleSet{}, oops.Code("YAML_INVALID").Wrap(err)
	}
	rs, err := ruleset.FromRaw(normalize(raw).(map[string]any))
	if err != nil {
		return ruleset.RuleSet{}, oops.Code("RULESET_DECODE_FAILED").Wrap(err)
	}
	return rs, nil
}

// FromFile reads a RuleSet document from a YAML file on disk.
func FromFile(path string) (ruleset.RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ruleset.RuleSet{}, oops.Code("FILE_READ_FAILED").With("path", path).Wrap(err)
	}
	rs, err := FromYAML(content)
	if err != nil {
		return ruleset.RuleSet{}, oops.Wrapf(err, "loading %s", path)
	}
	return rs, nil
}

// normalize walks a yaml.v3-decoded value converting any
// map[string]interface{} nested map keyed by non-string types (yaml.v3
// itself always produces string keys for mapping nodes, but nested
// map[interface{}]interface{} values can still surface from custom
// !!map tags) and recursing into slices, so downstream code only ever
// sees map[string]any/[]any/scalars, matching ruleset.FromRaw's
// expectations.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[toString(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return val
	}
}

func toString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
