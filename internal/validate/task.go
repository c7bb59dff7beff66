// Package validate turns raw request input into model values, reporting
// problems per field.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

var ErrValidation = errors.New("validation error")

// bodyField is reported when the problem belongs to the document as a whole.
const bodyField = "body"

// requiredFields are checked by hand so each absent key gets its own entry;
// the schema only checks types.
var requiredFields = []string{"id", "title", "description", "completed", "due_date"}

const taskSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"id":          {"type": "integer"},
		"title":       {"type": "string"},
		"description": {"type": "string"},
		"completed":   {"type": "boolean"},
		"due_date":    {"type": "string"}
	}
}`

var taskSchema = jsonschema.MustCompileString("task.schema.json", taskSchemaJSON)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed. It matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// ParseTask checks raw against the task shape. Unknown keys are ignored.
func ParseTask(raw []byte) (model.Task, error) {
	var task model.Task

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return task, fieldError(bodyField, "empty request body")
		}
		return task, fieldError(bodyField, "invalid json: %v", err)
	}
	if dec.More() {
		return task, fieldError(bodyField, "invalid json: unexpected data after top-level value")
	}

	result := &ValidationError{}
	if err := taskSchema.Validate(doc); err != nil {
		collectSchemaErrors(result, err)
	}

	obj, isObject := doc.(map[string]any)
	if isObject {
		for _, name := range requiredFields {
			if _, ok := obj[name]; !ok {
				result.Fields = append(result.Fields, FieldError{Field: name, Message: "missing required field"})
			}
		}
	}

	if len(result.Fields) > 0 {
		sort.SliceStable(result.Fields, func(i, j int) bool {
			return result.Fields[i].Field < result.Fields[j].Field
		})
		return task, result
	}

	return taskFromObject(obj)
}

// taskFromObject builds a Task from a document that already passed the
// schema, so every value has the expected JSON type.
func taskFromObject(obj map[string]any) (model.Task, error) {
	id, err := integer(obj["id"].(json.Number))
	if err != nil {
		return model.Task{}, fieldError("id", "%v", err)
	}

	return model.Task{
		ID:          id,
		Title:       obj["title"].(string),
		Description: obj["description"].(string),
		Completed:   obj["completed"].(bool),
		DueDate:     obj["due_date"].(string),
	}, nil
}

// integer accepts integral numbers in any notation, e.g. 1, 1.0 or 1e2.
func integer(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, but got %s", n)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("integer %s out of range", n)
	}
	return int64(f), nil
}

// ParseID parses a path parameter holding a task id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fieldError("id", "expected integer, but got %q", s)
	}
	return id, nil
}

func collectSchemaErrors(result *ValidationError, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Fields = append(result.Fields, FieldError{Field: bodyField, Message: err.Error()})
		return
	}
	collectCauses(result, ve)
}

func collectCauses(result *ValidationError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Fields = append(result.Fields, FieldError{
			Field:   pointerToField(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}

	for _, cause := range err.Causes {
		collectCauses(result, cause)
	}
}

// pointerToField converts a JSON pointer such as "/due_date" to "due_date".
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return bodyField
	}

	parts := strings.Split(ptr, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}
