package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/YNCK000/strudel-studio/pkg/tools"
	"github.com/YNCK000/strudel-studio/pkg/validator"
)

type validateArgs struct {
	Code string `json:"code"`
}

// NewValidateTool returns the tool that runs the static pattern checks.
// A failed validation is still a successful tool call; the report is the
// model's feedback channel, not an error condition.
func NewValidateTool() tools.Tool {
	return tools.Tool{
		Name:        "validate_strudel_code",
		Description: "Validate Strudel pattern code: checks JavaScript syntax, required tempo setting, playability and known non-existent methods. Always call this before presenting a final pattern.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "The complete Strudel pattern code to validate.",
				},
			},
			"required": []string{"code"},
		},
		Handler: func(_ context.Context, toolCall tools.ToolCall) (*tools.ToolCallResult, error) {
			var args validateArgs
			if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}

			if strings.TrimSpace(args.Code) == "" {
				return tools.ResultError("No code provided. Pass the complete Strudel pattern in the code argument."), nil
			}

			return tools.ResultSuccess(validator.FormatReport(validator.Validate(args.Code))), nil
		},
	}
}
