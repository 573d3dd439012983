package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is the subset of JSON Schema used to describe job variables.
// Unlisted properties are always allowed because Zeebe hands every process
// variable to the worker.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string              `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	MinItems    *int                `json:"minItems,omitempty"`
	MaxItems    *int                `json:"maxItems,omitempty"`
	Items       *Property           `json:"items,omitempty"`      // For array validation
	Properties  map[string]Property `json:"properties,omitempty"` // For nested objects
	Required    []string            `json:"required,omitempty"`   // For nested objects
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Float and Int build the pointer bounds of a Property.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }

// ValidateDocument checks document against schema with gojsonschema.
// document may be raw JSON ([]byte or json.RawMessage) or any Go value.
func ValidateDocument(schema JSONSchema, document interface{}) (*ValidationResult, error) {
	var docLoader gojsonschema.JSONLoader
	switch d := document.(type) {
	case []byte:
		docLoader = gojsonschema.NewBytesLoader(d)
	case json.RawMessage:
		docLoader = gojsonschema.NewBytesLoader(d)
	case string:
		docLoader = gojsonschema.NewStringLoader(d)
	default:
		docLoader = gojsonschema.NewGoLoader(d)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), docLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldName(desc),
			Message: desc.Description(),
			Code:    errorCode(desc.Type()),
		})
	}
	return out, nil
}

// fieldName reports the offending property. Required errors are raised on
// the parent object, so the missing property is appended.
func fieldName(desc gojsonschema.ResultError) string {
	field := desc.Field()
	prop, ok := desc.Details()["property"].(string)
	if desc.Type() != "required" || !ok {
		return field
	}
	if field == "(root)" {
		return prop
	}
	return field + "." + prop
}

// errorCode maps gojsonschema result types onto stable upper-case codes.
func errorCode(resultType string) string {
	switch resultType {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "pattern":
		return "PATTERN_MISMATCH"
	case "string_gte":
		return "MIN_LENGTH_VIOLATION"
	case "string_lte":
		return "MAX_LENGTH_VIOLATION"
	case "number_gte":
		return "MINIMUM_VIOLATION"
	case "number_lte":
		return "MAXIMUM_VIOLATION"
	case "array_min_items":
		return "MIN_ITEMS_VIOLATION"
	case "array_max_items":
		return "MAX_ITEMS_VIOLATION"
	}
	return strings.ToUpper(resultType)
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a field and anything nested under it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var activityNaming = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)

// ValidateActivityNaming validates activity ID follows naming convention
func ValidateActivityNaming(activityID string) error {
	if !activityNaming.MatchString(activityID) {
		return fmt.Errorf("activity ID must follow format: domain.subdomain.action (e.g., feedback.reply.send)")
	}
	return nil
}

// GetSchemaFromJSON parses JSON schema from string
func GetSchemaFromJSON(schemaJSON string) (JSONSchema, error) {
	var schema JSONSchema
	err := json.Unmarshal([]byte(schemaJSON), &schema)
	return schema, err
}
