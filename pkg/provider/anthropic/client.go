// Package anthropic implements the model provider on top of the official
// Anthropic SDK.
package anthropic

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/YNCK000/strudel-studio/pkg/chat"
	"github.com/YNCK000/strudel-studio/pkg/environment"
	"github.com/YNCK000/strudel-studio/pkg/provider"
	"github.com/YNCK000/strudel-studio/pkg/tools"
)

const (
	apiKeyEnv        = "ANTHROPIC_API_KEY"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// Config selects the model and endpoint. Zero values fall back to defaults.
type Config struct {
	Model     string
	BaseURL   string
	MaxTokens int64
}

// Client talks to the Anthropic Messages API.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClient builds a provider from the environment. The API key is resolved
// eagerly so a missing credential fails at startup, not on the first request.
func NewClient(ctx context.Context, cfg Config, env environment.Provider) (*Client, error) {
	key, ok := env.Get(ctx, apiKeyEnv)
	if !ok || key == "" {
		return nil, &environment.RequiredEnvError{Missing: []string{apiKeyEnv}}
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     cmp.Or(cfg.Model, defaultModel),
		maxTokens: cmp.Or(cfg.MaxTokens, defaultMaxTokens),
	}, nil
}

func (c *Client) CreateMessage(ctx context.Context, system string, messages []chat.Message, toolList []tools.Tool) (*provider.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  convertMessages(messages),
		Tools:     convertTools(toolList),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	slog.Debug("Creating message", "model", c.model, "messages", len(messages), "tools", len(toolList))

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyErr(err)
	}

	resp := &provider.Response{
		StopReason: provider.StopReason(msg.StopReason),
	}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Content += b.Text
		case anthropic.ToolUseBlock:
			resp.ToolCalls = append(resp.ToolCalls, tools.ToolCall{
				ID:   b.ID,
				Type: "function",
				Function: tools.FunctionCall{
					Name:      b.Name,
					Arguments: string(b.Input),
				},
			})
		}
	}

	slog.Debug("Message created", "stop_reason", msg.StopReason, "tool_calls", len(resp.ToolCalls))
	return resp, nil
}

// convertMessages maps the session transcript to the Messages API shape.
// Tool results must arrive as user messages directly after the assistant
// turn that issued the calls, so consecutive tool messages are folded into
// one user message.
func convertMessages(messages []chat.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	for i := 0; i < len(messages); i++ {
		msg := messages[i]
		switch msg.Role {
		case chat.MessageRoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))

		case chat.MessageRoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Function.Name,
						Input: parseArguments(tc.Function.Arguments),
					},
				})
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}

		case chat.MessageRoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for ; i < len(messages) && messages[i].Role == chat.MessageRoleTool; i++ {
				blocks = append(blocks, anthropic.NewToolResultBlock(messages[i].ToolCallID, messages[i].Content, false))
			}
			i--
			out = append(out, anthropic.NewUserMessage(blocks...))

		case chat.MessageRoleSystem:
			// System content travels in the dedicated params field.
		}
	}

	return out
}

func parseArguments(arguments string) any {
	var input map[string]any
	if err := json.Unmarshal([]byte(arguments), &input); err != nil {
		return map[string]any{}
	}
	return input
}

func convertTools(toolList []tools.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(toolList))
	for _, t := range toolList {
		properties := t.Parameters["properties"]
		var required []string
		if r, ok := t.Parameters["required"].([]string); ok {
			required = r
		}

		p := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &p})
	}
	return out
}

// classifyErr maps transport failures onto the provider error taxonomy so
// callers can tell a transient rejection from a misconfigured credential.
func classifyErr(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return &provider.RateLimitError{Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &provider.AuthenticationError{Err: err}
		}
	}
	return fmt.Errorf("anthropic request failed: %w", err)
}
