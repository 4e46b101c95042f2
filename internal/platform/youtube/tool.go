package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/yungbote/acadboost-backend/internal/pkg/errors"
	"github.com/yungbote/acadboost-backend/internal/platform/openai"
)

const ToolName = "searchYoutube"

type searchArgs struct {
	Query string `json:"query"`
}

// SearchTool exposes c as a model-callable capability. The result is always a
// ToolResult so the model sees either videos or a degraded message.
func SearchTool(c Client) openai.Tool {
	return openai.Tool{
		Name:        ToolName,
		Description: "Searches YouTube for relevant videos based on a query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query for YouTube.",
				},
			},
			"required":             []string{"query"},
			"additionalProperties": false,
		},
		Call: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args searchArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("%w: %s arguments: %v", apperrors.ErrInvalidArgument, ToolName, err)
			}
			if strings.TrimSpace(args.Query) == "" {
				return nil, fmt.Errorf("%w: %s requires a non-empty query", apperrors.ErrInvalidArgument, ToolName)
			}
			return c.Search(ctx, args.Query), nil
		},
	}
}
