// Package builtin provides the tools exposed to the model during pattern
// generation.
package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/YNCK000/strudel-studio/pkg/reference"
	"github.com/YNCK000/strudel-studio/pkg/tools"
)

type genreArgs struct {
	Genre string `json:"genre"`
}

// NewGenreLookupTool returns the tool that serves the embedded genre guides.
// The schema advertises the known genres as an enum so well-behaved models
// never guess, but unknown keys still get a recoverable answer.
func NewGenreLookupTool() tools.Tool {
	keys := reference.Keys()
	genreEnum := make([]any, len(keys))
	for i, k := range keys {
		genreEnum[i] = k
	}

	return tools.Tool{
		Name:        "lookup_genre_reference",
		Description: "Look up the style guide for a music genre: typical tempo, drum patterns, bass, chords and arrangement advice with Strudel examples.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"genre": map[string]any{
					"type":        "string",
					"description": "The genre to look up.",
					"enum":        genreEnum,
				},
			},
			"required": []string{"genre"},
		},
		Handler: func(_ context.Context, toolCall tools.ToolCall) (*tools.ToolCallResult, error) {
			var args genreArgs
			if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}

			doc, ok := reference.Lookup(args.Genre)
			if !ok {
				return tools.ResultSuccess(fmt.Sprintf("Unknown genre %q. Available genres: %s. Proceed without genre-specific guidance.", args.Genre, strings.Join(reference.Keys(), ", "))), nil
			}
			return tools.ResultSuccess(doc), nil
		},
	}
}
