package formatter

import (
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// exportSchema describes the parts of `task export` output the widget reads.
// Unknown fields are allowed.
const exportSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id":          {"type": ["integer", "string"]},
      "description": {"type": "string"},
      "project":     {"type": "string"},
      "due":         {"type": "string", "pattern": "^[0-9]{8}T[0-9]{6}Z$"},
      "tags":        {"type": "array", "items": {"type": "string"}},
      "urgency":     {"type": ["number", "string"]}
    }
  }
}`

var compiledExportSchema = jsonschema.MustCompileString("taskwarrior-export.schema.json", exportSchema)

// validateExport checks a decoded payload against the export schema.
func validateExport(doc any) error {
	err := compiledExportSchema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return payloadErr(err)
	}
	leaf := firstLeaf(ve)
	if leaf.InstanceLocation == "" {
		return payloadErr(errors.New(leaf.Message))
	}
	return &PayloadError{Index: -1, Field: leaf.InstanceLocation, Err: errors.New(leaf.Message)}
}

// firstLeaf walks to the first cause without causes of its own, which is the
// most specific message the validator produced.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// SchemaText returns the export schema, for `taskwidget payload --schema`.
func SchemaText() string {
	return fmt.Sprintln(exportSchema)
}
