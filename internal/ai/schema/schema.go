package schema

import (
	"fmt"
	"net/url"
	"strings"
)

type Kind string

const (
	String     Kind = "string"
	StringList Kind = "string_list"
	LinkList   Kind = "link_list"
)

// Field declares one named value of a flow input or output.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	NonEmpty    bool
	Description string
}

// Shape is the declared structure of a flow input or output object.
type Shape struct {
	Name   string
	Fields []Field
}

func (s Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks candidate against the shape. The returned map holds only the
// declared fields that passed; list elements that failed are left out of it.
// Keys outside the shape are discarded. A non-nil error is always a *ValidationError.
func (s Shape) Validate(candidate map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.Fields))
	verr := &ValidationError{Shape: s.Name}

	for _, f := range s.Fields {
		raw, present := candidate[f.Name]
		if !present || raw == nil {
			if f.Required {
				verr.add(f.Name, -1, RuleRequired, "is required")
			}
			continue
		}
		switch f.Kind {
		case String:
			str, ok := raw.(string)
			if !ok {
				verr.add(f.Name, -1, RuleType, fmt.Sprintf("expected string, got %T", raw))
				continue
			}
			if f.NonEmpty && strings.TrimSpace(str) == "" {
				verr.add(f.Name, -1, RuleNonEmpty, "must not be empty")
				continue
			}
			out[f.Name] = str
		case StringList:
			items, ok := asList(raw)
			if !ok {
				verr.add(f.Name, -1, RuleType, fmt.Sprintf("expected array of strings, got %T", raw))
				continue
			}
			vals := make([]string, 0, len(items))
			for i, item := range items {
				str, ok := item.(string)
				if !ok {
					verr.add(f.Name, i, RuleType, fmt.Sprintf("expected string, got %T", item))
					continue
				}
				vals = append(vals, str)
			}
			out[f.Name] = vals
		case LinkList:
			items, ok := asList(raw)
			if !ok {
				verr.add(f.Name, -1, RuleType, fmt.Sprintf("expected array of links, got %T", raw))
				continue
			}
			links := make([]map[string]any, 0, len(items))
			for i, item := range items {
				link, ok := validateLink(verr, f.Name, i, item)
				if ok {
					links = append(links, link)
				}
			}
			out[f.Name] = links
		default:
			verr.add(f.Name, -1, RuleType, fmt.Sprintf("unsupported kind %q", f.Kind))
		}
	}

	if len(verr.Violations) > 0 {
		return out, verr
	}
	return out, nil
}

func validateLink(verr *ValidationError, field string, idx int, item any) (map[string]any, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		verr.add(field, idx, RuleType, fmt.Sprintf("expected {title,url} object, got %T", item))
		return nil, false
	}
	title, ok := obj["title"].(string)
	if !ok {
		verr.add(field, idx, RuleRequired, "title is required")
		return nil, false
	}
	u, ok := obj["url"].(string)
	if !ok {
		verr.add(field, idx, RuleRequired, "url is required")
		return nil, false
	}
	if !ValidURL(u) {
		verr.add(field, idx, RuleURL, fmt.Sprintf("malformed url %q", u))
		return nil, false
	}
	return map[string]any{"title": title, "url": u}, true
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// ValidURL reports whether s is an absolute http(s) URL with a host.
func ValidURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || validate.Var(s, "url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// JSONSchema renders the shape as a strict structured-output schema.
// Strict mode wants every property listed as required, so optional fields are
// expressed by the model returning an empty string or array instead of omitting them.
func (s Shape) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = f.jsonSchema()
		required = append(required, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (f Field) jsonSchema() map[string]any {
	var out map[string]any
	switch f.Kind {
	case StringList:
		out = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	case LinkList:
		out = map[string]any{
			"type":  "array",
			"items": linkSchema(),
		}
	default:
		out = map[string]any{"type": "string"}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	return out
}

func linkSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "description": "The title of the web page."},
			"url":   map[string]any{"type": "string", "description": "The URL of the resource."},
		},
		"required":             []string{"title", "url"},
		"additionalProperties": false,
	}
}
