// Package validation checks stored documents against their JSON schemas.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/profile.schema.json
var profileSchema []byte

// SchemaValidator validates YAML documents against a compiled JSON schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
	name   string
}

// NewProfileSchemaValidator compiles the profile document schema.
func NewProfileSchemaValidator() (*SchemaValidator, error) {
	return NewSchemaValidator("profile.schema.json", profileSchema)
}

// NewSchemaValidator compiles schemaBytes under the given resource name.
func NewSchemaValidator(name string, schemaBytes []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(name, bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &SchemaValidator{schema: schema, name: name}, nil
}

// ValidateYAML converts a YAML document to JSON and validates it.
// Violations come back as *apperrors.ValidationError with one detail
// per failing location.
func (v *SchemaValidator) ValidateYAML(data []byte) error {
	jsonBytes, err := yaml.YAMLToJSON(data)
	if err != nil {
		return apperrors.NewValidationError("document", fmt.Sprintf("invalid YAML: %v", err))
	}

	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return apperrors.NewValidationError("document", fmt.Sprintf("invalid document: %v", err))
	}

	if err := v.schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return apperrors.NewValidationError("document",
				"does not match "+v.name, collectMessages(validationErr)...)
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// collectMessages flattens a validation error tree into "location: message" lines.
func collectMessages(err *jsonschema.ValidationError) []string {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}
