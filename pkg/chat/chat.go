package chat

import "github.com/YNCK000/strudel-studio/pkg/tools"

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

// Message is one role-tagged turn in a conversation.
type Message struct {
	Role       MessageRole      `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []tools.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	CreatedAt  string           `json:"created_at,omitempty"`
}

func UserMessage(content string) Message {
	return Message{
		Role:    MessageRoleUser,
		Content: content,
	}
}

func AssistantMessage(content string) Message {
	return Message{
		Role:    MessageRoleAssistant,
		Content: content,
	}
}
