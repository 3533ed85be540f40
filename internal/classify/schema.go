package classify

import "github.com/mlcompare/mlcompare/internal/llm"

// labelSchema restricts structured output to a list drawn from labels.
func labelSchema(labels []string) *llm.Schema {
	enum := make([]any, len(labels))
	for i, l := range labels {
		enum[i] = l
	}
	return &llm.Schema{
		Name:        "reflection-labels",
		Description: "Issue labels that best represent a student's course reflection",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"labels": map[string]any{
					"type":        "array",
					"description": "One or more labels from the candidate list",
					"items": map[string]any{
						"type": "string",
						"enum": enum,
					},
				},
			},
			"required":             []any{"labels"},
			"additionalProperties": false,
		},
	}
}
