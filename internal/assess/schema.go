package assess

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	stringArray = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	str         = map[string]any{"type": "string"}
)

// replySchemas is the JSON Schema each endpoint's reply must satisfy. They
// constrain the fields the client reads and leave room for extra fields.
var replySchemas = map[Endpoint]map[string]any{
	EndpointEvaluate: {
		"type":     "object",
		"required": []any{"correct", "score"},
		"properties": map[string]any{
			"correct":        map[string]any{"type": "boolean"},
			"feedback":       str,
			"score":          map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"nextDifficulty": str,
			"suggestions":    stringArray,
			"provider":       str,
		},
	},
	EndpointGenerate: {
		"type":     "object",
		"required": []any{"question"},
		"properties": map[string]any{
			"question":      map[string]any{"type": "string", "minLength": 1},
			"type":          str,
			"options":       stringArray,
			"correctAnswer": map[string]any{"type": []any{"integer", "string", "null"}},
			"explanation":   str,
			"provider":      str,
		},
	},
	EndpointExplain: {
		"type":     "object",
		"required": []any{"explanation"},
		"properties": map[string]any{
			"explanation":     str,
			"key_concepts":    stringArray,
			"examples":        stringArray,
			"common_mistakes": stringArray,
			"practice_tips":   stringArray,
			"next_steps":      str,
		},
	},
	EndpointConversation: {
		"type":     "object",
		"required": []any{"response"},
		"properties": map[string]any{
			"response":            str,
			"response_type":       str,
			"suggested_questions": stringArray,
			"resources":           stringArray,
			"confidence_level":    str,
		},
	},
	EndpointLearningPath: {
		"type": "object",
		"properties": map[string]any{
			"recommended_subjects": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"subject": str, "priority": str, "reason": str},
				},
			},
			"learning_sequence": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic":          str,
						"difficulty":     str,
						"estimated_time": str,
						"prerequisites":  stringArray,
					},
				},
			},
			"goals":               stringArray,
			"study_tips":          stringArray,
			"progress_milestones": stringArray,
		},
	},
	EndpointErrorAnalysis: {
		"type": "object",
		"properties": map[string]any{
			"error_patterns": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"pattern": str, "frequency": str, "root_cause": str},
				},
			},
			"targeted_remediation": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error_type":           str,
						"remediation_strategy": str,
						"practice_exercises":   stringArray,
					},
				},
			},
			"learning_gaps":     stringArray,
			"recommended_focus": stringArray,
			"encouragement":     str,
		},
	},
	EndpointProviderStatus: {
		"type": "object",
		"additionalProperties": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"available": map[string]any{"type": "boolean"},
				"type":      str,
			},
		},
	},
}

// schemaCache caches compiled JSON schemas by endpoint.
var schemaCache sync.Map // map[Endpoint]*jsonschema.Schema

// validateReply checks raw JSON against the endpoint's schema.
// Returns *ErrInvalidResponse on failure.
func validateReply(e Endpoint, raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Endpoint: e, Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(e)
	if err != nil {
		return &ErrInvalidResponse{Endpoint: e, Content: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if compiled == nil {
		return nil
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Endpoint: e, Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// compiledSchema returns a cached compiled schema, or nil when the endpoint
// declares none.
func compiledSchema(e Endpoint) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(e); ok {
		return cached.(*jsonschema.Schema), nil
	}
	def, ok := replySchemas[e]
	if !ok {
		return nil, nil
	}

	// The compiler wants a parsed JSON value, so round-trip the definition.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://assess/%s.json", e)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(e, compiled)
	return compiled, nil
}
