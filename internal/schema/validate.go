package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationResult is the outcome of validating one value.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// RecordIssue lists the problems found in one record.
type RecordIssue struct {
	Index  int      `json:"index"`
	Errors []string `json:"errors"`
}

// Validator validates JSON values against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewRecordValidator compiles RecordSchema.
func NewRecordValidator() (*Validator, error) {
	doc, err := SchemaToMap(RecordSchema())
	if err != nil {
		return nil, err
	}
	return compileSchema(doc)
}

// NewValidator compiles a raw JSON Schema document.
func NewValidator(schemaJSON []byte) (*Validator, error) {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON Schema: %w", err)
	}
	return compileSchema(doc)
}

func compileSchema(doc any) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	// Add the schema as a resource (doc must be valid json value, not io.Reader)
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// ValidateValue validates a value against the schema. Null object members
// are treated as absent.
func (v *Validator) ValidateValue(value any) *ValidationResult {
	normalized, err := normalizeValue(value)
	if err != nil {
		return &ValidationResult{Errors: []string{err.Error()}}
	}

	if err := v.schema.Validate(normalized); err != nil {
		return &ValidationResult{Errors: extractValidationErrors(err)}
	}
	return &ValidationResult{Valid: true}
}

// Check validates each record and returns the issues of the invalid ones, in
// input order.
func (v *Validator) Check(records []any) []RecordIssue {
	issues := []RecordIssue{}
	for i, rec := range records {
		if res := v.ValidateValue(rec); !res.Valid {
			issues = append(issues, RecordIssue{Index: i, Errors: res.Errors})
		}
	}
	return issues
}

// normalizeValue converts value to plain JSON types and drops null members.
func normalizeValue(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %s", err.Error())
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %s", err.Error())
	}
	return dropNulls(out), nil
}

func dropNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			if item == nil {
				delete(val, k)
				continue
			}
			val[k] = dropNulls(item)
		}
	case []any:
		for i, item := range val {
			val[i] = dropNulls(item)
		}
	}
	return v
}

// extractValidationErrors extracts human-readable error messages from a validation error.
func extractValidationErrors(err error) []string {
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}

	return []string{err.Error()}
}

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens a ValidationError into "path: message"
// lines, deduplicated and sorted by path.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	errorsByPath := make(map[string][]string)
	collectErrors(err, errorsByPath)

	paths := make([]string, 0, len(errorsByPath))
	for path := range errorsByPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range errorsByPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// Skip $ref and schema reference messages - they're not useful errors
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
