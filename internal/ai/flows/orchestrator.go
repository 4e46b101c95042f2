package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/yungbote/acadboost-backend/internal/ai/prompts"
	"github.com/yungbote/acadboost-backend/internal/ai/schema"
	types "github.com/yungbote/acadboost-backend/internal/domain"
	apperrors "github.com/yungbote/acadboost-backend/internal/pkg/errors"
	"github.com/yungbote/acadboost-backend/internal/pkg/fingerprint"
	"github.com/yungbote/acadboost-backend/internal/platform/ctxutil"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
	"github.com/yungbote/acadboost-backend/internal/platform/openai"
)

// Model is the structured-generation boundary. tools may be empty.
type Model interface {
	GenerateJSONWithTools(ctx context.Context, system string, user string, schemaName string, schema map[string]any, tools openai.Tools) (map[string]any, error)
}

// RunRecorder persists the audit row of a flow invocation.
type RunRecorder interface {
	Record(ctx context.Context, run *types.FlowRun) error
}

type RunInfo struct {
	Degraded  bool   `json:"degraded"`
	Reason    string `json:"reason,omitempty"`
	ToolCalls int    `json:"toolCalls"`
}

type Result struct {
	Output map[string]any
	RunInfo
}

type Orchestrator struct {
	log    *logger.Logger
	model  Model
	tools  openai.Tools
	defs   map[FlowID]Definition
	runs   RunRecorder
	tracer trace.Tracer
}

// NewOrchestrator wires the built-in flows. runs may be nil.
func NewOrchestrator(log *logger.Logger, model Model, tools openai.Tools, runs RunRecorder) (*Orchestrator, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if model == nil {
		return nil, fmt.Errorf("model required")
	}
	o := &Orchestrator{
		log:    log.With("service", "FlowOrchestrator"),
		model:  model,
		tools:  tools,
		defs:   Definitions(),
		runs:   runs,
		tracer: otel.Tracer("github.com/yungbote/acadboost-backend/internal/ai/flows"),
	}
	for _, d := range o.defs {
		for _, name := range d.Tools {
			if _, ok := tools[name]; !ok {
				o.log.Warn("Flow tool not registered; flow will run without it", "flow", string(d.ID), "tool", name)
			}
		}
	}
	return o, nil
}

func (o *Orchestrator) Definition(id FlowID) (Definition, bool) {
	d, ok := o.defs[id]
	return d, ok
}

// Run executes flow id. The only errors returned are caller errors: an unknown
// flow, input that fails the flow's input shape, a prompt that cannot be
// rendered from validated input, or a caller context that ended before the
// model answered (wrapping the context error). Model and tool failures degrade
// into a fallback output instead.
func (o *Orchestrator) Run(ctx context.Context, id FlowID, input map[string]any) (Result, error) {
	def, ok := o.defs[id]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownFlow, id)
	}

	ctx, span := o.tracer.Start(ctx, "ai.flow.run", trace.WithAttributes(
		attribute.String("ai.flow.id", string(id)),
	))
	defer span.End()

	start := time.Now()
	log := o.log.With("flow", string(id), "trace_id", traceID(ctx, span))
	run := &types.FlowRun{
		FlowID:     string(id),
		PromptName: string(def.Prompt),
		TraceID:    traceID(ctx, span),
		CreatedAt:  start.UTC(),
	}

	validIn, err := def.Input.Validate(input)
	if err != nil {
		run.InputFingerprint = fingerprint.JSON(input)
		run.Status = types.FlowRunStatusRejected
		run.Reason = err.Error()
		if verr, ok := schema.AsValidationError(err); ok {
			run.Violations = violationsJSON(verr.Violations)
		}
		span.SetStatus(codes.Error, "invalid flow input")
		o.record(ctx, log, run, start)
		return Result{}, err
	}
	run.InputFingerprint = fingerprint.JSON(validIn)

	p, err := prompts.Build(def.Prompt, prompts.Input(validIn))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt render failed")
		log.Error("Prompt render failed", "error", err)
		return Result{}, fmt.Errorf("render %s: %w", def.Prompt, err)
	}
	run.PromptVersion = p.Version
	run.PromptFingerprint = p.Fingerprint()

	var toolCalls int32
	granted := o.grantTools(def, &toolCalls)

	raw, genErr := o.model.GenerateJSONWithTools(ctx, p.System, p.User, p.SchemaName, def.Output.JSONSchema(), granted)
	if cause := interruption(ctx, genErr); cause != nil {
		run.Status = types.FlowRunStatusCancelled
		run.Reason = cause.Error()
		run.ToolCalls = int(atomic.LoadInt32(&toolCalls))
		span.SetStatus(codes.Error, "flow interrupted")
		log.Info("Flow interrupted before the model answered", "error", cause.Error())
		o.record(ctx, log, run, start)
		return Result{}, fmt.Errorf("flow %s interrupted: %w", id, cause)
	}
	if genErr != nil {
		span.RecordError(genErr)
		log.Error("Model invocation failed", "error", genErr.Error())
	}

	out, outcome := Normalize(def.Output, raw, genErr)
	if len(outcome.Violations) > 0 {
		log.Warn("Model output failed validation",
			"reason", outcome.Reason,
			"violations", len(outcome.Violations),
			"detail", (&schema.ValidationError{Shape: def.Output.Name, Violations: outcome.Violations}).Error(),
		)
		run.Violations = violationsJSON(outcome.Violations)
	}
	if def.Derive != nil {
		out = def.Derive(out)
	}

	res := Result{
		Output: out,
		RunInfo: RunInfo{
			Degraded:  outcome.Degraded,
			Reason:    outcome.Reason,
			ToolCalls: int(atomic.LoadInt32(&toolCalls)),
		},
	}

	run.Status = types.FlowRunStatusOK
	if res.Degraded {
		run.Status = types.FlowRunStatusDegraded
	}
	run.Reason = res.Reason
	run.ToolCalls = res.ToolCalls

	span.SetAttributes(
		attribute.Bool("ai.flow.degraded", res.Degraded),
		attribute.String("ai.flow.reason", res.Reason),
		attribute.Int("ai.flow.tool_calls", res.ToolCalls),
	)
	o.record(ctx, log, run, start)
	return res, nil
}

// grantTools resolves the flow's declared tools and counts their invocations.
func (o *Orchestrator) grantTools(def Definition, counter *int32) openai.Tools {
	if len(def.Tools) == 0 {
		return nil
	}
	granted := make(openai.Tools, len(def.Tools))
	for _, name := range def.Tools {
		t, ok := o.tools[name]
		if !ok || t.Call == nil {
			continue
		}
		call := t.Call
		t.Call = func(ctx context.Context, args json.RawMessage) (any, error) {
			atomic.AddInt32(counter, 1)
			return call(ctx, args)
		}
		granted[name] = t
	}
	return granted
}

func (o *Orchestrator) record(ctx context.Context, log *logger.Logger, run *types.FlowRun, start time.Time) {
	run.DurationMS = time.Since(start).Milliseconds()
	log.Info("Flow run finished",
		"status", run.Status,
		"reason", run.Reason,
		"tool_calls", run.ToolCalls,
		"duration_ms", run.DurationMS,
	)
	if o.runs == nil {
		return
	}
	// The audit write must not be cut short by a client that already disconnected.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.runs.Record(rctx, run); err != nil {
		log.Warn("Flow run record failed", "error", err.Error())
	}
}

// interruption reports the context error when the caller stopped waiting. An
// ended context is not a model outcome and must not be normalized into one.
func interruption(ctx context.Context, genErr error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if errors.Is(genErr, context.Canceled) {
		return context.Canceled
	}
	return nil
}

func traceID(ctx context.Context, span trace.Span) string {
	if id := ctxutil.TraceID(ctx); id != "" {
		return id
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

func violationsJSON(vs []schema.Violation) datatypes.JSON {
	if len(vs) == 0 {
		return nil
	}
	b, err := json.Marshal(vs)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
