// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package casevalidate checks an incoming case record against a JSON
// Schema before it ever reaches interpreter.Execute. Case validation is
// kept outside the core on purpose: the interpreter only ever sees a
// map[string]value.Value it trusts has already been shaped correctly.
package casevalidate

import (
	"bytes"
	"errors"

	jsonschemav6 "github.com/santhosh-tekuri/jsonschema/v6"
)

// Violation is a single schema validation failure, shaped like the
// "<path>: <message>" lines the mddsl CaseValidator produced.
type Violation struct {
	Path    string
	Message string
}

// Validator validates case documents against a compiled JSON Schema.
type Validator struct {
	schema *jsonschemav6.Schema
}

// New compiles the given JSON Schema document (as raw bytes) into a
// reusable Validator.
func New(schemaName string, schemaJSON []byte) (*Validator, error) {
	compiler := jsonschemav6.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	sch, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, err
	}
	return &Validator{schema: sch}, nil
}

// Validate checks a case document, returning every violation found (never
// just the first). A nil/empty slice means the case is valid.
func (v *Validator) Validate(caseDoc map[string]any) []Violation {
	err := v.schema.Validate(caseDoc)
	if err == nil {
		return nil
	}
	var violations []Violation
	var ve *jsonschemav6.ValidationError
	if errors.As(err, &ve) {
		collect(ve, &violations)
		if len(violations) > 0 {
			return violations
		}
	}
	return []Violation{{Path: "root", Message: err.Error()}}
}

func collect(ve *jsonschemav6.ValidationError, out *[]Violation) {
	if ve == nil {
		return
	}
	if len(ve.Causes) == 0 {
		*out = append(*out, Violation{Path: "root", Message: ve.Error()})
		return
	}
	for _, cause := range ve.Causes {
		collect(cause, out)
	}
}
