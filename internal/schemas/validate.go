// Package schemas validates documents and events against the embedded JSON Schemas.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/resume-extractor/internal/events"
	"github.com/jonathan/resume-extractor/internal/types"
	schemafiles "github.com/jonathan/resume-extractor/schemas"
)

// ResolveSchemaPath finds relativePath from the working directory or up to two
// parents of it, so commands and tests can run from any package directory.
// Returns the absolute path, or "" if nothing exists.
func ResolveSchemaPath(relativePath string) string {
	for _, candidate := range []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	} {
		absPath, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err == nil {
			return absPath
		}
	}
	return ""
}

// ValidationError lists every schema violation found in a document
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one violation, located by its JSON field path
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError is returned when the schema itself cannot be read or compiled
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// embedded caches compiled schemas by name
var embedded sync.Map // map[string]*gojsonschema.Schema

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbsPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}
	if _, err := os.Stat(schemaAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", schemaAbsPath)
	}

	data, err := os.ReadFile(jsonPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", jsonPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}

	schema, err := compile(schemaAbsPath, gojsonschema.NewReferenceLoader("file://"+filepath.ToSlash(schemaAbsPath)))
	if err != nil {
		return err
	}
	return check(schema, gojsonschema.NewBytesLoader(data))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := compile("(string schema)", gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return err
	}
	return check(schema, gojsonschema.NewStringLoader(jsonContent))
}

// ValidateEmbedded validates data against one of the embedded schemas. Each
// schema is compiled once per process.
func ValidateEmbedded(schemaName string, data []byte) error {
	schema, err := embeddedSchema(schemaName)
	if err != nil {
		return err
	}
	return check(schema, gojsonschema.NewBytesLoader(data))
}

// ValidateDocument checks a document against the sectioned document schema
func ValidateDocument(doc *types.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return ValidateEmbedded(schemafiles.SectionedDocument, data)
}

// ValidateEvent checks an event payload against the extraction event schema
func ValidateEvent(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return ValidateEmbedded(schemafiles.ExtractionEvent, data)
}

func embeddedSchema(name string) (*gojsonschema.Schema, error) {
	if s, ok := embedded.Load(name); ok {
		return s.(*gojsonschema.Schema), nil
	}

	raw, err := schemafiles.Read(name)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema not embedded", Cause: err}
	}
	schema, err := compile(name, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}
	s, _ := embedded.LoadOrStore(name, schema)
	return s.(*gojsonschema.Schema), nil
}

func compile(name string, loader gojsonschema.JSONLoader) (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
	}
	return schema, nil
}

func check(schema *gojsonschema.Schema, doc gojsonschema.JSONLoader) error {
	result, err := schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("failed to parse JSON document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
