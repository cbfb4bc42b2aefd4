package tools

import "context"

type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type ToolCallResult struct {
	Output string `json:"output"`
}

// ToolHandler executes a single tool call. Handlers report recoverable
// problems through the result output, not through the error return; an error
// is reserved for failures the handler could not describe itself.
type ToolHandler func(ctx context.Context, toolCall ToolCall) (*ToolCallResult, error)

// Tool describes one capability offered to the model. Parameters is a JSON
// schema object advertised verbatim to the provider.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Handler     ToolHandler    `json:"-"`
}

func ResultSuccess(output string) *ToolCallResult {
	return &ToolCallResult{Output: output}
}

func ResultError(msg string) *ToolCallResult {
	return &ToolCallResult{Output: msg}
}
