// Package provider abstracts the model backend behind a minimal
// request/response surface. The runtime depends only on this interface, so
// tests substitute scripted providers and the backend can change without
// touching the agent loop.
package provider

import (
	"context"

	"github.com/YNCK000/strudel-studio/pkg/chat"
	"github.com/YNCK000/strudel-studio/pkg/tools"
)

// StopReason is the provider-reported reason a model turn ended. Providers
// normalize their native values to these; the runtime treats anything else
// as a completed turn.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is one complete model turn. Content and ToolCalls can both be
// present in the same turn.
type Response struct {
	Content    string
	ToolCalls  []tools.ToolCall
	StopReason StopReason
}

// Provider produces model turns. CreateMessage blocks until the model has
// produced a full response or the context is done.
type Provider interface {
	CreateMessage(ctx context.Context, system string, messages []chat.Message, toolList []tools.Tool) (*Response, error)
}
