package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Tool is a capability the model may invoke by name during a structured
// generation. Call receives the raw JSON arguments the model produced and its
// result is serialized back to the model as JSON.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Call        func(ctx context.Context, args json.RawMessage) (any, error)
}

// Tools is the capability table, keyed by tool name.
type Tools map[string]Tool

func NewTools(list ...Tool) Tools {
	out := make(Tools, len(list))
	for _, t := range list {
		if t.Name == "" {
			continue
		}
		out[t.Name] = t
	}
	return out
}

func (t Tools) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t Tools) definitions() []map[string]any {
	if len(t) == 0 {
		return nil
	}
	defs := make([]map[string]any, 0, len(t))
	for _, name := range t.Names() {
		tool := t[name]
		params := tool.Parameters
		if params == nil {
			params = map[string]any{
				"type":                 "object",
				"properties":           map[string]any{},
				"additionalProperties": false,
			}
		}
		defs = append(defs, map[string]any{
			"type":        "function",
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  params,
			"strict":      true,
		})
	}
	return defs
}

type toolFailure struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// invoke runs the named tool and returns its JSON-encoded result. Tool
// failures are reported to the model as {"error":true,"message":...}.
func (t Tools) invoke(ctx context.Context, name string, args json.RawMessage) string {
	tool, ok := t[name]
	if !ok || tool.Call == nil {
		return encodeToolOutput(toolFailure{Error: true, Message: fmt.Sprintf("unknown tool %q", name)})
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	res, err := tool.Call(ctx, args)
	if err != nil {
		return encodeToolOutput(toolFailure{Error: true, Message: err.Error()})
	}
	return encodeToolOutput(res)
}

func encodeToolOutput(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(toolFailure{Error: true, Message: "tool result could not be encoded"})
	}
	return string(b)
}
