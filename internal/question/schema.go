package question

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// servicePayloadSchema is the JSON Schema the external generation
// service's response must satisfy before it is mapped to a candidate
// body. Unknown fields are tolerated; the shape of the known fields is
// not.
const servicePayloadSchema = `{
	"type": "object",
	"required": ["prompt", "answer"],
	"properties": {
		"prompt": {"type": "string", "minLength": 1},
		"options": {
			"type": ["array", "null"],
			"items": {"type": ["string", "number", "null"]}
		},
		"answer": {"type": ["string", "number", "boolean"]},
		"explanation": {"type": "string"},
		"unit": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}}
	}
}`

var compiledServiceSchema = gojsonschema.NewStringLoader(servicePayloadSchema)

// CheckServicePayload validates a raw JSON document returned by the
// external generation service against the expected payload shape.
func CheckServicePayload(raw []byte) error {
	result, err := gojsonschema.Validate(compiledServiceSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("payload shape invalid: %s", strings.Join(msgs, "; "))
}
