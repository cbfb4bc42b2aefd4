package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Registry holds the fixed set of tools an agent may call and dispatches
// calls to them. It is stateless across calls and safe for concurrent use.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(toolList ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool, len(toolList)),
	}
	for _, t := range toolList {
		if _, exists := r.tools[t.Name]; exists {
			continue
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Call executes a tool call and always returns a textual result. The output
// is fed back into the model's input, so every failure mode degrades to a
// descriptive string instead of an error: an unknown tool name, a handler
// error, or an empty output all produce text the model can act on.
func (r *Registry) Call(ctx context.Context, toolCall ToolCall) string {
	name := toolCall.Function.Name

	tool, exists := r.tools[name]
	if !exists {
		slog.Debug("Unknown tool requested", "tool", name)
		return fmt.Sprintf("Unknown tool %q. Available tools: %s.", name, strings.Join(r.order, ", "))
	}

	res, err := tool.Handler(ctx, toolCall)
	if err != nil {
		slog.Error("Error calling tool", "tool", name, "error", err)
		return fmt.Sprintf("Error calling tool %s: %v", name, err)
	}

	if res == nil || strings.TrimSpace(res.Output) == "" {
		return "(no output)"
	}

	slog.Debug("Tool call completed", "tool", name, "output_length", len(res.Output))
	return res.Output
}
