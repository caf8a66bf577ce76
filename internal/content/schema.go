package content

import "github.com/malu-oliver/agent-financeiro/internal/llm"

// ContentSchema defines the JSON schema for educational content.
var ContentSchema = &llm.Schema{
	Name:        "financial-education",
	Description: "Personalized financial education text split into paragraphs",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"paragraphs": map[string]any{
				"type":        "array",
				"description": "Exactly three paragraphs of plain prose",
				"items":       map[string]any{"type": "string"},
				"minItems":    1,
			},
		},
		"required":             []any{"paragraphs"},
		"additionalProperties": false,
	},
}
