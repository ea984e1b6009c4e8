// Package tools provides the built-in functions the language model can
// call during a dialogue round.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"VoiceChat/internal/backend"
)

// Tool is one callable function exposed to the model. Parameters is a
// JSON schema object describing the arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Run         func(ctx context.Context, rawArgs string) (string, error)
}

var noParameters = json.RawMessage(`{"type":"object","properties":{}}`)

// Registry holds the fixed set of tools for a run. Tools are
// registered at startup and never change afterwards.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(logger *slog.Logger, tools ...Tool) *Registry {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Registry{tools: tools, byName: byName, logger: logger}
}

// Definitions returns the tool declarations to send with a completion
// request.
func (r *Registry) Definitions() []backend.ToolDef {
	defs := make([]backend.ToolDef, len(r.tools))
	for i, t := range r.tools {
		defs[i] = backend.ToolDef{
			Type: "function",
			Function: backend.FunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return defs
}

// Run executes the named tool with the model-provided JSON arguments.
func (r *Registry) Run(ctx context.Context, name, rawArgs string) (string, error) {
	tool, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("tool %s was not found", name)
	}

	r.logger.Info("running tool", "tool", name)
	result, err := tool.Run(ctx, rawArgs)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}
	if result == "" {
		return "", fmt.Errorf("tool %s did not return a result", name)
	}
	return result, nil
}
