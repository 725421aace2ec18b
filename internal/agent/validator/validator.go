// Package validator checks the slot extractor's structured output against
// the action whitelist before anything executes.
package validator

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"reservation-agent/internal/models"
)

// Validator holds the compiled output schema. The whitelist enum is injected
// from models so validator and executor always agree on the action set.
type Validator struct {
	schema *gojsonschema.Schema
}

func New() (*Validator, error) {
	schemaMap := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"intent", "slots", "plan", "natural_response"},
		"properties": map[string]interface{}{
			"intent":           map[string]interface{}{"type": "string"},
			"natural_response": map[string]interface{}{"type": "string"},
			"plan": map[string]interface{}{
				// a null plan is treated as empty downstream
				"type": []interface{}{"array", "null"},
				"items": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"action"},
					"properties": map[string]interface{}{
						"action": map[string]interface{}{
							"type": "string",
							"enum": toInterfaceSlice(models.ActionNames()),
						},
					},
				},
			},
		},
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("compile output schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate reports whether the structured output is acceptable: all four
// top-level fields present, plan a sequence of objects, and every step's
// action a whitelist member. Callers treat a rejection as a parse failure.
func (v *Validator) Validate(output map[string]interface{}) (bool, []string) {
	if output == nil {
		return false, []string{"output is nil"}
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(output))
	if err != nil {
		return false, []string{fmt.Sprintf("validation error: %v", err)}
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return false, errs
	}

	return true, nil
}

// Describe summarizes validation failures for debug payloads.
func Describe(errs []string) string {
	return strings.Join(errs, "; ")
}

func toInterfaceSlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
