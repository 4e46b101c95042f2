package flows

import (
	"github.com/yungbote/acadboost-backend/internal/ai/schema"
	"github.com/yungbote/acadboost-backend/internal/pkg/httpx"
)

const (
	ReasonDroppedElements = "dropped_elements"
	ReasonSchemaViolation = "schema_violation"
	ReasonNoOutput        = "no_output"
	ReasonRateLimited     = "rate_limited"
	ReasonModelError      = "model_error"
)

const (
	MessageSchemaFailure = "I had a problem formatting my response. The AI model returned data that didn't match the expected structure. Please try again."
	MessageRateLimited   = "The AI service is temporarily unavailable due to API limits. Please try again later."
	MessageModelFailure  = "I encountered an issue while trying to help. Please try again."
)

// Outcome describes how Normalize arrived at its output.
type Outcome struct {
	Degraded   bool
	Reason     string
	Violations []schema.Violation
}

// Normalize maps whatever the model produced, or the failure that prevented
// it, onto a fully populated value of shape. The result always validates:
// list fields are never absent and the primary text field is never empty.
func Normalize(shape schema.Shape, raw map[string]any, failure error) (map[string]any, Outcome) {
	if failure != nil {
		reason, msg := ReasonModelError, MessageModelFailure
		if httpx.IsRateLimited(failure) {
			reason, msg = ReasonRateLimited, MessageRateLimited
		}
		return fallback(shape, msg), Outcome{Degraded: true, Reason: reason}
	}
	if raw == nil {
		return fallback(shape, MessageSchemaFailure), Outcome{Degraded: true, Reason: ReasonNoOutput}
	}

	out, err := shape.Validate(raw)
	if err != nil {
		verr, _ := schema.AsValidationError(err)
		if verr != nil && verr.Droppable() {
			fillDefaults(shape, out)
			return out, Outcome{Reason: ReasonDroppedElements, Violations: verr.Violations}
		}
		o := Outcome{Degraded: true, Reason: ReasonSchemaViolation}
		if verr != nil {
			o.Violations = verr.Violations
		}
		return fallback(shape, MessageSchemaFailure), o
	}
	fillDefaults(shape, out)
	return out, Outcome{}
}

// PrimaryField is the first required text field of shape, the one that
// carries the fallback message.
func PrimaryField(shape schema.Shape) string {
	for _, f := range shape.Fields {
		if f.Kind == schema.String && f.Required {
			return f.Name
		}
	}
	for _, f := range shape.Fields {
		if f.Kind == schema.String {
			return f.Name
		}
	}
	return ""
}

func fallback(shape schema.Shape, msg string) map[string]any {
	out := map[string]any{}
	if primary := PrimaryField(shape); primary != "" {
		out[primary] = msg
	}
	fillDefaults(shape, out)
	return out
}

func fillDefaults(shape schema.Shape, out map[string]any) {
	for _, f := range shape.Fields {
		if _, ok := out[f.Name]; ok {
			continue
		}
		switch f.Kind {
		case schema.StringList:
			out[f.Name] = []string{}
		case schema.LinkList:
			out[f.Name] = []map[string]any{}
		default:
			out[f.Name] = ""
		}
	}
}
