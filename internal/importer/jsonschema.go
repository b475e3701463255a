package importer

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "taskup-import.json"

// ValidationError ties a problem to a location in the import document.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// SchemaError collects every schema violation found in one document.
type SchemaError struct {
	Problems []error
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "import document does not match schema: " + strings.Join(msgs, "; ")
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("loading import schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

func validateAgainstSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("parsing import file: %w", err)
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	out := &SchemaError{}
	collectSchemaErrors(&out.Problems, ve)
	return out
}

func collectSchemaErrors(dst *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*dst = append(*dst, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(dst, cause)
	}
}

// jsonPointerToPath turns "/tasks/0/title" into "tasks[0].title".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
