package linter

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"

	"github.com/invopop/jsonschema"
	jsonschemav6 "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/meddsl/meddsl/internal/ruleset"
)

// actionDoc and friends exist purely so invopop/jsonschema has a Go type to
// reflect the RuleSet document shape (spec.md §6) from. They are never
// used to decode a document — ruleset.FromRaw does that directly against
// map[string]any — only to generate the schema the linter validates
// against.
type actionDoc struct {
	Type string `json:"type" jsonschema:"required"`
}

type nodeDoc struct {
	ID        string      `json:"id" jsonschema:"required"`
	Type      string      `json:"type" jsonschema:"required,enum=decision,enum=action"`
	When      string      `json:"when,omitempty"`
	GotoTrue  string      `json:"goto_true,omitempty"`
	GotoFalse string      `json:"goto_false,omitempty"`
	Next      string      `json:"next,omitempty"`
	Actions   []actionDoc `json:"actions,omitempty"`
	Cite      []string    `json:"cite,omitempty"`
}

type metaDoc struct {
	Profile string `json:"profile" jsonschema:"required"`
	Version string `json:"version,omitempty"`
	Entry   string `json:"entry,omitempty"`
}

type ruleSetDoc struct {
	Meta  metaDoc   `json:"meta" jsonschema:"required"`
	Nodes []nodeDoc `json:"nodes" jsonschema:"required"`
}

const schemaResourceName = "ruleset.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschemav6.Schema
	schemaBuildErr error
)

// GenerateSchema reflects ruleSetDoc into a JSON Schema document. Exposed
// so a CLI subcommand can publish the schema for external authoring tools,
// mirroring the RuleSet schema spec.md §6 says the linter consumes.
func GenerateSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&ruleSetDoc{})
	return json.MarshalIndent(schema, "", "  ")
}

func getCompiledSchema() (*jsonschemav6.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := GenerateSchema()
		if err != nil {
			schemaBuildErr = err
			return
		}
		compiler := jsonschemav6.NewCompiler()
		if err := compiler.AddResource(schemaResourceName, bytes.NewReader(raw)); err != nil {
			schemaBuildErr = err
			return
		}
		sch, err := compiler.Compile(schemaResourceName)
		if err != nil {
			schemaBuildErr = err
			return
		}
		compiledSchema = sch
	})
	return compiledSchema, schemaBuildErr
}

// lintSchema validates the raw document against the reflected RuleSet
// schema. Every failure becomes a SCHEMA_ERROR diagnostic; schema
// compilation failure itself (a programming defect, not an authoring one)
// is reported the same way rather than panicking.
func lintSchema(rs ruleset.RuleSet) []Diagnostic {
	sch, err := getCompiledSchema()
	if err != nil {
		return []Diagnostic{{Tag: TagSchemaError, Message: "failed to compile ruleset schema: " + err.Error()}}
	}

	if err := sch.Validate(rs.Raw); err != nil {
		return schemaDiagnostics(err)
	}
	return nil
}

func schemaDiagnostics(err error) []Diagnostic {
	var ve *jsonschemav6.ValidationError
	if errors.As(err, &ve) {
		var diags []Diagnostic
		collectValidationErrors(ve, &diags)
		if len(diags) > 0 {
			return diags
		}
	}
	return []Diagnostic{{Tag: TagSchemaError, Message: err.Error()}}
}

func collectValidationErrors(ve *jsonschemav6.ValidationError, out *[]Diagnostic) {
	if ve == nil {
		return
	}
	if len(ve.Causes) == 0 {
		*out = append(*out, Diagnostic{Tag: TagSchemaError, Message: ve.Error()})
		return
	}
	for _, cause := range ve.Causes {
		collectValidationErrors(cause, out)
	}
}
