package blueprints

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validateSchema checks that doc is a JSON object that compiles as a JSON Schema.
func validateSchema(name string, doc []byte) error {
	var probe map[string]any
	if err := json.Unmarshal(doc, &probe); err != nil {
		return fmt.Errorf("decode schema: %w", err)
	}
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	if _, err := compiler.Compile(url); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return nil
}
