package task

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskman/internal/utils"
)

//go:embed tasks.schema.json
var builtinSchema string

// BuiltinSchema returns the JSON Schema the task file is validated against
// when no schema file is configured.
func BuiltinSchema() string {
	return builtinSchema
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// Err joins the validation errors, or returns nil when the data is valid.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Validator checks raw task file contents against a JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
	source string
}

// DefaultValidator returns a validator for the built-in schema.
func DefaultValidator() *Validator {
	return &Validator{
		schema: jsonschema.MustCompileString("tasks.schema.json", builtinSchema),
		source: "builtin",
	}
}

// NewValidator compiles the schema file at schemaPath. An empty path
// selects the built-in schema.
func NewValidator(schemaPath string) (*Validator, error) {
	if schemaPath == "" {
		return DefaultValidator(), nil
	}

	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return &Validator{schema: schema, source: absPath}, nil
}

// Source returns "builtin" or the absolute path of the schema file.
func (v *Validator) Source() string {
	return v.source
}

// Validate parses data as JSON and validates it against the schema. A
// syntax error is reported as a single error with an empty path.
func (v *Validator) Validate(data []byte) *ValidationResult {
	result := &ValidationResult{Valid: true}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("parse task file: %w", err),
		})
		return result
	}

	if err := v.schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
