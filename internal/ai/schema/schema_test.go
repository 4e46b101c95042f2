package schema

import (
	"strings"
	"testing"
)

var chatShape = Shape{
	Name: "educhat_output",
	Fields: []Field{
		{Name: "answer", Kind: String, Required: true, NonEmpty: true},
		{Name: "youtubeSearchSuggestions", Kind: StringList},
		{Name: "webLinks", Kind: LinkList},
	},
}

func TestValidateAcceptsWellFormedOutput(t *testing.T) {
	out, err := chatShape.Validate(map[string]any{
		"answer":                   "Go is a language.",
		"youtubeSearchSuggestions": []any{"go tutorial", "go concurrency"},
		"webLinks": []any{
			map[string]any{"title": "Go", "url": "https://go.dev"},
		},
		"extra": "dropped",
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out["answer"] != "Go is a language." {
		t.Fatalf("answer=%v", out["answer"])
	}
	if got := out["youtubeSearchSuggestions"].([]string); len(got) != 2 {
		t.Fatalf("suggestions=%v", got)
	}
	if got := out["webLinks"].([]map[string]any); len(got) != 1 || got[0]["url"] != "https://go.dev" {
		t.Fatalf("links=%v", got)
	}
	if _, ok := out["extra"]; ok {
		t.Fatalf("undeclared key kept")
	}
}

func TestValidateMissingRequiredField(t *testing.T) {
	_, err := chatShape.Validate(map[string]any{"webLinks": []any{}})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) != 1 || verr.Violations[0].Field != "answer" || verr.Violations[0].Rule != RuleRequired {
		t.Fatalf("violations=%+v", verr.Violations)
	}
	if verr.Droppable() {
		t.Fatalf("missing required field must not be droppable")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("error text=%q", err.Error())
	}
}

func TestValidateTypeMismatchAndBlank(t *testing.T) {
	_, err := chatShape.Validate(map[string]any{
		"answer":                   "   ",
		"youtubeSearchSuggestions": "not a list",
	})
	verr, _ := AsValidationError(err)
	if verr == nil || len(verr.Violations) != 2 {
		t.Fatalf("violations=%+v", verr)
	}
	rules := map[string]string{}
	for _, v := range verr.Violations {
		rules[v.Field] = v.Rule
	}
	if rules["answer"] != RuleNonEmpty || rules["youtubeSearchSuggestions"] != RuleType {
		t.Fatalf("rules=%v", rules)
	}
}

func TestValidateBadLinkIsDroppable(t *testing.T) {
	out, err := chatShape.Validate(map[string]any{
		"answer": "ok",
		"webLinks": []any{
			map[string]any{"title": "bad", "url": "not a url"},
			map[string]any{"title": "ftp", "url": "ftp://example.com/file"},
			map[string]any{"title": "good", "url": "https://example.com/page"},
		},
	})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError")
	}
	if !verr.Droppable() {
		t.Fatalf("element violations should be droppable: %+v", verr.Violations)
	}
	links := out["webLinks"].([]map[string]any)
	if len(links) != 1 || links[0]["title"] != "good" {
		t.Fatalf("links=%v", links)
	}
	for _, v := range verr.Violations {
		if v.Rule != RuleURL {
			t.Fatalf("rule=%s", v.Rule)
		}
	}
}

func TestValidURL(t *testing.T) {
	cases := map[string]bool{
		"https://www.youtube.com/watch?v=abc": true,
		"http://example.com":                  true,
		"example.com":                         false,
		"http://":                             false,
		"mailto:someone@example.com":          false,
		"":                                    false,
	}
	for in, want := range cases {
		if got := ValidURL(in); got != want {
			t.Fatalf("ValidURL(%q)=%v want=%v", in, got, want)
		}
	}
}

func TestJSONSchemaIsStrict(t *testing.T) {
	s := chatShape.JSONSchema()
	if s["additionalProperties"] != false {
		t.Fatalf("additionalProperties=%v", s["additionalProperties"])
	}
	req := s["required"].([]string)
	if len(req) != 3 {
		t.Fatalf("required=%v", req)
	}
	props := s["properties"].(map[string]any)
	links := props["webLinks"].(map[string]any)
	if links["type"] != "array" {
		t.Fatalf("webLinks=%v", links)
	}
}

type studyInput struct {
	LearningGoals string `json:"learningGoals" validate:"required,nonblank"`
	QuizResults   string `json:"quizResults"`
}

func TestValidateStruct(t *testing.T) {
	if err := ValidateStruct("study_plan_input", studyInput{LearningGoals: "learn go"}); err != nil {
		t.Fatalf("ValidateStruct: %v", err)
	}
	err := ValidateStruct("study_plan_input", studyInput{LearningGoals: "  "})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Violations[0].Field != "learningGoals" || verr.Violations[0].Rule != RuleNonEmpty {
		t.Fatalf("violations=%+v", verr.Violations)
	}
}
