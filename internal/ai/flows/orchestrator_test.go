package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/acadboost-backend/internal/ai/schema"
	types "github.com/yungbote/acadboost-backend/internal/domain"
	apperrors "github.com/yungbote/acadboost-backend/internal/pkg/errors"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
	"github.com/yungbote/acadboost-backend/internal/platform/openai"
	"github.com/yungbote/acadboost-backend/internal/platform/youtube"
)

type fakeModel struct {
	out       map[string]any
	err       error
	toolCalls []string

	calls      int
	system     string
	user       string
	schemaName string
	tools      openai.Tools
}

func (m *fakeModel) GenerateJSONWithTools(ctx context.Context, system, user, schemaName string, schema map[string]any, tools openai.Tools) (map[string]any, error) {
	m.calls++
	m.system, m.user, m.schemaName, m.tools = system, user, schemaName, tools
	for _, name := range m.toolCalls {
		if t, ok := tools[name]; ok {
			_, _ = t.Call(ctx, json.RawMessage(`{"query":"recursion explained"}`))
		}
	}
	return m.out, m.err
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []*types.FlowRun
}

func (r *fakeRecorder) Record(ctx context.Context, run *types.FlowRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRecorder) last(t *testing.T) *types.FlowRun {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs) == 0 {
		t.Fatalf("no flow run recorded")
	}
	return r.runs[len(r.runs)-1]
}

type stubSearch struct{ queries []string }

func (s *stubSearch) Search(ctx context.Context, query string) youtube.ToolResult {
	s.queries = append(s.queries, query)
	return youtube.Found([]types.LinkRecord{{Title: "Recursion", URL: "https://www.youtube.com/watch?v=r"}})
}
func (s *stubSearch) Enabled() bool { return true }

func newTestOrchestrator(t *testing.T, m Model) (*Orchestrator, *fakeRecorder) {
	t.Helper()
	rec := &fakeRecorder{}
	tools := openai.NewTools(youtube.SearchTool(&stubSearch{}))
	o, err := NewOrchestrator(logger.Nop(), m, tools, rec)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o, rec
}

func TestRunFillsAbsentListFields(t *testing.T) {
	m := &fakeModel{out: map[string]any{"answer": "Recursion is a function calling itself."}}
	o, rec := newTestOrchestrator(t, m)

	res, err := o.Run(context.Background(), FlowEduChat, map[string]any{"query": "What is recursion?"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Degraded {
		t.Fatalf("unexpected degraded result: %s", res.Reason)
	}
	if s, ok := res.Output["youtubeSearchSuggestions"].([]string); !ok || s == nil || len(s) != 0 {
		t.Fatalf("suggestions=%#v", res.Output["youtubeSearchSuggestions"])
	}
	if l, ok := res.Output["webLinks"].([]map[string]any); !ok || l == nil || len(l) != 0 {
		t.Fatalf("webLinks=%#v", res.Output["webLinks"])
	}
	if run := rec.last(t); run.Status != types.FlowRunStatusOK || run.FlowID != string(FlowEduChat) || run.InputFingerprint == "" {
		t.Fatalf("run=%+v", run)
	}
}

func TestRunFallsBackWhenAnswerMissing(t *testing.T) {
	m := &fakeModel{out: map[string]any{
		"youtubeSearchSuggestions": []any{"recursion"},
		"webLinks":                 []any{map[string]any{"title": "x", "url": "https://example.com"}},
	}}
	o, rec := newTestOrchestrator(t, m)

	res, err := o.Run(context.Background(), FlowEduChat, map[string]any{"query": "What is recursion?"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Degraded || res.Reason != ReasonSchemaViolation {
		t.Fatalf("info=%+v", res.RunInfo)
	}
	if res.Output["answer"] != MessageSchemaFailure {
		t.Fatalf("answer=%v", res.Output["answer"])
	}
	if len(res.Output["youtubeSearchSuggestions"].([]string)) != 0 || len(res.Output["webLinks"].([]map[string]any)) != 0 {
		t.Fatalf("fallback lists not empty: %v", res.Output)
	}
	run := rec.last(t)
	if run.Status != types.FlowRunStatusDegraded || len(run.Violations) == 0 {
		t.Fatalf("run=%+v", run)
	}
}

func TestRunSummarizesLongMaterial(t *testing.T) {
	material := strings.Repeat("Cells divide through mitosis and meiosis. ", 700)
	m := &fakeModel{out: map[string]any{"summary": "Cells divide in two ways."}}
	o, _ := newTestOrchestrator(t, m)

	res, err := o.Run(context.Background(), FlowSummarize, map[string]any{"courseMaterial": material})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s, _ := res.Output["summary"].(string); strings.TrimSpace(s) == "" {
		t.Fatalf("summary empty")
	}
	if !strings.Contains(m.user, strings.TrimSpace(material)) {
		t.Fatalf("course material was not passed through intact")
	}
	if m.schemaName != "course_summary_v1" {
		t.Fatalf("schemaName=%s", m.schemaName)
	}
	if len(m.tools) != 0 {
		t.Fatalf("summarize should not be granted tools: %v", m.tools.Names())
	}
}

func TestRunEmptySummaryFallsBack(t *testing.T) {
	m := &fakeModel{out: map[string]any{"summary": "  "}}
	o, _ := newTestOrchestrator(t, m)
	res, err := o.Run(context.Background(), FlowSummarize, map[string]any{"courseMaterial": "atoms"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Degraded || res.Output["summary"] != MessageSchemaFailure {
		t.Fatalf("res=%+v", res)
	}
}

func TestRunRejectsEmptyQueryBeforeInvocation(t *testing.T) {
	m := &fakeModel{out: map[string]any{"answer": "x"}}
	o, rec := newTestOrchestrator(t, m)

	_, err := o.Run(context.Background(), FlowEduChat, map[string]any{"query": ""})
	verr, ok := schema.AsValidationError(err)
	if !ok || verr.Violations[0].Field != "query" {
		t.Fatalf("err=%v", err)
	}
	if m.calls != 0 {
		t.Fatalf("model invoked %d times", m.calls)
	}
	if run := rec.last(t); run.Status != types.FlowRunStatusRejected {
		t.Fatalf("status=%s", run.Status)
	}

	svc := NewService(o)
	if _, _, err := svc.EduChat(context.Background(), EduChatInput{Query: "   "}); err == nil {
		t.Fatalf("typed wrapper accepted blank query")
	}
	if m.calls != 0 {
		t.Fatalf("model invoked %d times", m.calls)
	}
}

func TestRunDropsMalformedLinks(t *testing.T) {
	m := &fakeModel{out: map[string]any{
		"answer":                   "Recursion repeats.",
		"youtubeSearchSuggestions": []any{"recursion basics", "recursion in python"},
		"webLinks": []any{
			map[string]any{"title": "Broken", "url": "not a url"},
			map[string]any{"title": "Wikipedia", "url": "https://en.wikipedia.org/wiki/Recursion"},
		},
	}}
	o, _ := newTestOrchestrator(t, m)

	res, err := o.Run(context.Background(), FlowEduChat, map[string]any{"query": "recursion"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Degraded || res.Reason != ReasonDroppedElements {
		t.Fatalf("info=%+v", res.RunInfo)
	}
	links := res.Output["webLinks"].([]map[string]any)
	if len(links) != 1 || links[0]["title"] != "Wikipedia" {
		t.Fatalf("links=%v", links)
	}
	if res.Output["answer"] != "Recursion repeats." {
		t.Fatalf("answer=%v", res.Output["answer"])
	}
}

type tooManyRequests struct{}

func (tooManyRequests) Error() string       { return "openai http error: Too Many Requests" }
func (tooManyRequests) HTTPStatusCode() int { return 429 }

func TestRunMapsModelFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
		msg    string
	}{
		{"rate limit", tooManyRequests{}, ReasonRateLimited, MessageRateLimited},
		{"rate limit text", errors.New("Rate limit reached for requests"), ReasonRateLimited, MessageRateLimited},
		{"unrelated 429 text", errors.New("prompt is 4290 tokens over the limit"), ReasonModelError, MessageModelFailure},
		{"quota", errors.New("You exceeded your current quota exceeded for this month"), ReasonRateLimited, MessageRateLimited},
		{"transport", errors.New("dial tcp 10.0.0.1:443: connection refused"), ReasonModelError, MessageModelFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, _ := newTestOrchestrator(t, &fakeModel{err: tc.err})
			res, err := o.Run(context.Background(), FlowStudyPlan, map[string]any{
				"learningGoals":   "Pass linear algebra",
				"currentProgress": "Week 3",
				"quizResults":     "Vectors 80%",
			})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !res.Degraded || res.Reason != tc.reason || res.Output["studyPlan"] != tc.msg {
				t.Fatalf("res=%+v", res)
			}
			if strings.Contains(res.Output["studyPlan"].(string), tc.err.Error()) {
				t.Fatalf("raw provider error surfaced")
			}
		})
	}
}

func TestRunRecordsCancellationWithoutDegrading(t *testing.T) {
	o, rec := newTestOrchestrator(t, &fakeModel{err: fmt.Errorf("openai request: %w", context.Canceled)})

	res, err := o.Run(context.Background(), FlowRecommendations, map[string]any{
		"learningPatterns": "Evenings",
		"quizResults":      "Loops 60%",
		"areasOfInterest":  "Data",
		"contentCatalog":   "Intro to Python",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v res=%+v", err, res)
	}
	if res.Degraded || res.Output != nil {
		t.Fatalf("interrupted run produced output: %+v", res)
	}
	if run := rec.last(t); run.Status != types.FlowRunStatusCancelled {
		t.Fatalf("run=%+v", run)
	}
}

func TestRunWithEndedContextIsInterrupted(t *testing.T) {
	m := &fakeModel{out: map[string]any{"answer": "Recursion is a function calling itself."}}
	o, rec := newTestOrchestrator(t, m)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := o.Run(ctx, FlowEduChat, map[string]any{"query": "What is recursion?"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
	if run := rec.last(t); run.Status != types.FlowRunStatusCancelled {
		t.Fatalf("run=%+v", run)
	}
}

func TestRunRecordsPromptFingerprint(t *testing.T) {
	m := &fakeModel{out: map[string]any{"answer": "Recursion is a function calling itself."}}
	o, rec := newTestOrchestrator(t, m)
	run := func(query string) string {
		t.Helper()
		if _, err := o.Run(context.Background(), FlowEduChat, map[string]any{"query": query}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return rec.last(t).PromptFingerprint
	}

	first := run("What is recursion?")
	if first == "" {
		t.Fatalf("prompt fingerprint not recorded")
	}
	if again := run("What is recursion?"); again != first {
		t.Fatalf("same prompt, different fingerprint")
	}
	if other := run("What is a stack?"); other == first {
		t.Fatalf("rendered prompt changed but fingerprint did not")
	}
}

func TestRunCountsToolCalls(t *testing.T) {
	m := &fakeModel{
		out:       map[string]any{"answer": "See the videos.", "youtubeSearchSuggestions": []any{}, "webLinks": []any{}},
		toolCalls: []string{youtube.ToolName, youtube.ToolName},
	}
	o, rec := newTestOrchestrator(t, m)

	res, err := o.Run(context.Background(), FlowEduChat, map[string]any{"query": "recursion"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ToolCalls != 2 {
		t.Fatalf("toolCalls=%d", res.ToolCalls)
	}
	if names := m.tools.Names(); len(names) != 1 || names[0] != youtube.ToolName {
		t.Fatalf("granted=%v", names)
	}
	if rec.last(t).ToolCalls != 2 {
		t.Fatalf("recorded tool calls=%d", rec.last(t).ToolCalls)
	}
}

func TestRunUnknownFlow(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeModel{})
	if _, err := o.Run(context.Background(), "nope", map[string]any{}); !errors.Is(err, apperrors.ErrUnknownFlow) {
		t.Fatalf("err=%v", err)
	}
}

func TestServiceRecommendationsParsesItems(t *testing.T) {
	m := &fakeModel{out: map[string]any{
		"recommendedContent": "Here you go:\n1. Data Structures & Algorithms - Shore up the 65% quiz area.\n2. Machine Learning Basics - Matches your interests.\n",
	}}
	o, _ := newTestOrchestrator(t, m)
	svc := NewService(o)

	out, info, err := svc.RecommendPersonalizedContent(context.Background(), RecommendationsInput{
		LearningPatterns: "Prefers video content and hands-on projects.",
		QuizResults:      "Scored high in Python basics (95%), but lower in data structures (65%).",
		AreasOfInterest:  "Machine Learning, Data Science.",
		ContentCatalog:   "1. Introduction to Python. 2. Data Structures & Algorithms.",
	})
	if err != nil {
		t.Fatalf("RecommendPersonalizedContent: %v", err)
	}
	if info.Degraded {
		t.Fatalf("unexpected degraded")
	}
	if len(out.Items) != 2 || out.Items[0].Title != "Data Structures & Algorithms" || out.Items[1].Description != "Matches your interests." {
		t.Fatalf("items=%+v", out.Items)
	}
}

func TestServiceEduChatTypedOutput(t *testing.T) {
	m := &fakeModel{out: map[string]any{
		"answer":                   "Binary search halves the range.",
		"youtubeSearchSuggestions": []any{"binary search"},
		"webLinks":                 []any{map[string]any{"title": "Go", "url": "https://go.dev"}},
	}}
	o, _ := newTestOrchestrator(t, m)
	out, _, err := NewService(o).EduChat(context.Background(), EduChatInput{Query: "binary search"})
	if err != nil {
		t.Fatalf("EduChat: %v", err)
	}
	if out.Answer == "" || len(out.YoutubeSearchSuggestions) != 1 || len(out.WebLinks) != 1 || out.WebLinks[0].URL != "https://go.dev" {
		t.Fatalf("out=%+v", out)
	}
}
