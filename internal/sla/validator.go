package sla

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Validator handles SLA definition validation
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a new validator with the given schema file
func NewValidator(schemaPath string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateDirectory loads and validates all SLA files in a directory
func (v *Validator) ValidateDirectory(dirPath string) []ValidationError {
	slaFiles, loadErrors := LoadFromDirectory(dirPath)

	var allErrors []ValidationError
	allErrors = append(allErrors, loadErrors...)

	if len(slaFiles) == 0 {
		return allErrors
	}

	for _, slaFile := range slaFiles {
		schemaErrors := v.validateSchema(slaFile.File, slaFile.SLA)
		allErrors = append(allErrors, schemaErrors...)
	}

	allErrors = append(allErrors, validateExtraRules(slaFiles)...)

	return allErrors
}

// validateSchema validates a single SLA against the JSON schema
func (v *Validator) validateSchema(file string, def *SLA) []ValidationError {
	var errors []ValidationError

	// Round-trip through YAML to get plain maps for schema validation
	yamlBytes, err := yaml.Marshal(def)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to marshal SLA: %v", err),
		})
		return errors
	}

	var jsonData interface{}
	if err := yaml.Unmarshal(yamlBytes, &jsonData); err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to convert to JSON: %v", err),
		})
		return errors
	}

	if err := v.schema.Validate(jsonData); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			errors = append(errors, extractSchemaErrors(file, validationErr)...)
		} else {
			errors = append(errors, ValidationError{
				File:    file,
				Message: err.Error(),
			})
		}
	}

	return errors
}

// extractSchemaErrors converts JSON schema validation errors to ValidationErrors
func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError

	path := strings.Join(err.InstanceLocation, ".")
	if path == "" {
		path = "(root)"
	}

	errors = append(errors, ValidationError{
		File:    file,
		Path:    path,
		Message: err.Error(),
	})

	for _, cause := range err.Causes {
		errors = append(errors, extractSchemaErrors(file, cause)...)
	}

	return errors
}

// validateExtraRules applies the structural invariants that the JSON schema
// cannot express: cross-file duplicate SLA ids plus everything Validate checks.
func validateExtraRules(slaFiles []SLAWithFile) []ValidationError {
	var errors []ValidationError

	idSeen := make(map[string]string)
	for _, slaFile := range slaFiles {
		id := slaFile.SLA.ID
		if prevFile, exists := idSeen[id]; exists {
			errors = append(errors, ValidationError{
				File:    slaFile.File,
				Path:    "id",
				Message: fmt.Sprintf("duplicate SLA id %q (also in %s)", id, filepath.Base(prevFile)),
			})
		} else {
			idSeen[id] = slaFile.File
		}

		if err := slaFile.SLA.Validate(); err != nil {
			errors = append(errors, ValidationError{
				File:    slaFile.File,
				Message: err.Error(),
			})
		}
	}

	return errors
}
