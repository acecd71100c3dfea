package evaluator

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const evaluationSchemaURL = "schema://evaluation.json"

const evaluationSchema = `{
  "type": "object",
  "required": ["score"],
  "properties": {
    "score": {"type": ["number", "string"]},
    "technical_accuracy": {"type": ["number", "string"]},
    "depth": {"type": ["number", "string"]},
    "practical_application": {"type": ["number", "string"]},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "improvements": {"type": "array", "items": {"type": "string"}},
    "overall_feedback": {"type": "string"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(evaluationSchema), &doc); err != nil {
			schemaErr = fmt.Errorf("parse evaluation schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(evaluationSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add evaluation schema: %w", err)
			return
		}

		compiledSchema, schemaErr = c.Compile(evaluationSchemaURL)
	})
	return compiledSchema, schemaErr
}

// validatePayload checks a decoded LLM payload against the evaluation schema.
func validatePayload(payload any) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
