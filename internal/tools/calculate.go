package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Knetic/govaluate"
)

// Calculate evaluates a plain mathematical expression.
func Calculate() Tool {
	return Tool{
		Name:        "calculate",
		Description: "Calculate a mathematical expression.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"expression": {"type": "string", "description": "Mathematical expression to evaluate."}
			},
			"required": ["expression"]
		}`),
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			var args struct {
				Expression string `json:"expression"`
			}
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			return evaluate(args.Expression, nil)
		},
	}
}

// CalculateWithSubstitutes evaluates an expression after substituting
// the provided variable values.
func CalculateWithSubstitutes() Tool {
	return Tool{
		Name:        "calculateWithSubstitutes",
		Description: "Calculate a mathematical expression with substitutes.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"expression": {"type": "string", "description": "Mathematical expression to evaluate."},
				"values": {"type": "object", "description": "Values to substitute into the expression. Example: {\"x\": 5}"}
			},
			"required": ["expression", "values"]
		}`),
		Run: func(ctx context.Context, rawArgs string) (string, error) {
			var args struct {
				Expression string                 `json:"expression"`
				Values     map[string]interface{} `json:"values"`
			}
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
			return evaluate(args.Expression, args.Values)
		},
	}
}

func evaluate(expression string, values map[string]interface{}) (string, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return "", fmt.Errorf("failed to parse expression: %w", err)
	}
	result, err := expr.Evaluate(values)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate expression: %w", err)
	}
	return fmt.Sprintf("%v", result), nil
}
