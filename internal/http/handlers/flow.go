package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/acadboost-backend/internal/ai/cache"
	"github.com/yungbote/acadboost-backend/internal/ai/flows"
	"github.com/yungbote/acadboost-backend/internal/ai/schema"
	"github.com/yungbote/acadboost-backend/internal/data/repos"
	"github.com/yungbote/acadboost-backend/internal/http/response"
	"github.com/yungbote/acadboost-backend/internal/platform/apierr"
	"github.com/yungbote/acadboost-backend/internal/platform/ctxutil"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

// PlacementDashboardRecommendations is the UI slot whose recommendations are
// memoized per session.
const PlacementDashboardRecommendations = "dashboard-recommendations"

type FlowHandler struct {
	log     *logger.Logger
	flows   *flows.Service
	cache   *cache.Cache
	courses repos.CourseRepo
	runs    repos.FlowRunRepo
}

func NewFlowHandler(log *logger.Logger, flowService *flows.Service, responseCache *cache.Cache, courses repos.CourseRepo, runs repos.FlowRunRepo) *FlowHandler {
	return &FlowHandler{
		log:     log.With("handler", "FlowHandler"),
		flows:   flowService,
		cache:   responseCache,
		courses: courses,
		runs:    runs,
	}
}

type studyPlanResponse struct {
	flows.StudyPlanOutput
	Run flows.RunInfo `json:"run"`
}

type summarizeResponse struct {
	flows.SummarizeOutput
	Run flows.RunInfo `json:"run"`
}

type eduChatResponse struct {
	flows.EduChatOutput
	Run flows.RunInfo `json:"run"`
}

type recommendationsResponse struct {
	flows.RecommendationsOutput
	Error  string        `json:"error,omitempty"`
	Cached bool          `json:"cached"`
	Run    flows.RunInfo `json:"run"`
}

func (h *FlowHandler) StudyPlan(c *gin.Context) {
	var in flows.StudyPlanInput
	if !bindJSON(c, &in, false) {
		return
	}
	out, info, err := h.flows.GenerateStudyPlan(c.Request.Context(), in)
	if err != nil {
		h.fail(c, flows.FlowStudyPlan, err)
		return
	}
	response.RespondOK(c, studyPlanResponse{StudyPlanOutput: out, Run: info})
}

func (h *FlowHandler) Summarize(c *gin.Context) {
	var in flows.SummarizeInput
	if !bindJSON(c, &in, false) {
		return
	}
	out, info, err := h.flows.SummarizeCourseMaterial(c.Request.Context(), in)
	if err != nil {
		h.fail(c, flows.FlowSummarize, err)
		return
	}
	response.RespondOK(c, summarizeResponse{SummarizeOutput: out, Run: info})
}

func (h *FlowHandler) EduChat(c *gin.Context) {
	var in flows.EduChatInput
	if !bindJSON(c, &in, false) {
		return
	}
	out, info, err := h.flows.EduChat(c.Request.Context(), in)
	if err != nil {
		h.fail(c, flows.FlowEduChat, err)
		return
	}
	response.RespondOK(c, eduChatResponse{EduChatOutput: out, Run: info})
}

// Recommendations serves the dashboard slot. The body is optional; a blank
// catalogue is filled from the course table. Results, including terminal
// failures, are memoized for the caller's session.
func (h *FlowHandler) Recommendations(c *gin.Context) {
	var in flows.RecommendationsInput
	if !bindJSON(c, &in, true) {
		return
	}
	ctx := c.Request.Context()
	if strings.TrimSpace(in.ContentCatalog) == "" && h.courses != nil {
		catalog, err := h.courses.CatalogText(ctx, nil)
		if err != nil {
			h.log.Error("Load catalogue failed", "error", err)
			response.RespondError(c, http.StatusInternalServerError, "load_catalog_failed", err)
			return
		}
		in.ContentCatalog = catalog
	}

	var fresh *flows.RunInfo
	fetch := func(ctx context.Context) (cache.Entry, error) {
		out, info, err := h.flows.RecommendPersonalizedContent(ctx, in)
		if err != nil {
			return cache.Entry{}, err
		}
		fresh = &info
		if info.Degraded {
			return cache.Failure(out.RecommendedContent), nil
		}
		return cache.Success(map[string]any{
			"recommendedContent": out.RecommendedContent,
			"items":              out.Items,
		}), nil
	}

	session := ctxutil.SessionID(ctx)
	var (
		entry cache.Entry
		hit   bool
		err   error
	)
	if h.cache != nil {
		entry, hit, err = h.cache.ReadThrough(ctx, session, cache.Key(PlacementDashboardRecommendations, in.Fields()), fetch)
	} else {
		entry, err = fetch(ctx)
	}
	if err != nil {
		h.fail(c, flows.FlowRecommendations, err)
		return
	}

	resp := recommendationsResponse{Cached: hit}
	if fresh != nil {
		resp.Run = *fresh
	} else {
		resp.Run = flows.RunInfo{Degraded: entry.Failed()}
	}
	if entry.Failed() {
		resp.RecommendedContent = entry.ErrorMessage
		resp.Items = []flows.RecommendationItem{}
		resp.Error = entry.ErrorMessage
	} else {
		resp.RecommendationsOutput = decodeRecommendations(entry.Output)
	}
	response.RespondOK(c, resp)
}

// ClearSession drops every memoized response of the caller's session.
func (h *FlowHandler) ClearSession(c *gin.Context) {
	session := ctxutil.SessionID(c.Request.Context())
	if session == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_session", errors.New("X-Session-Id header is required"))
		return
	}
	if h.cache != nil {
		if err := h.cache.Clear(c.Request.Context(), session); err != nil {
			h.log.Error("Clear session failed", "error", err, "session_id", session)
			response.RespondError(c, http.StatusInternalServerError, "clear_session_failed", err)
			return
		}
	}
	response.RespondOK(c, gin.H{"cleared": true})
}

// ListRuns returns recent flow runs, optionally for one ?flow=, newest first.
func (h *FlowHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		response.RespondError(c, http.StatusNotFound, "runs_unavailable", errors.New("flow run log is not configured"))
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	flowID := strings.TrimSpace(c.Query("flow"))
	if flowID != "" {
		if _, ok := h.flows.Orchestrator().Definition(flows.FlowID(flowID)); !ok {
			response.RespondError(c, http.StatusBadRequest, "unknown_flow", errors.New("unknown flow "+flowID))
			return
		}
	}

	ctx := c.Request.Context()
	runs, err := h.runs.ListRecent(ctx, nil, flowID, limit)
	if err != nil {
		h.log.Error("List flow runs failed", "error", err, "flow", flowID)
		response.RespondError(c, http.StatusInternalServerError, "load_runs_failed", err)
		return
	}
	counts, err := h.runs.CountByStatus(ctx, nil, flowID)
	if err != nil {
		h.log.Error("Count flow runs failed", "error", err, "flow", flowID)
		response.RespondError(c, http.StatusInternalServerError, "load_runs_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs, "counts": counts})
}

// fail maps a flow error onto the API envelope. Only caller-input problems
// reach here as 4xx; recoverable model failures arrive as degraded output.
// An interrupted flow is retryable and answers 503.
func (h *FlowHandler) fail(c *gin.Context, flow flows.FlowID, err error) {
	if verr, ok := schema.AsValidationError(err); ok {
		response.RespondAPIError(c, "flow_failed", apierr.BadRequest("invalid_flow_input", verr))
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		h.log.Info("Flow interrupted", "flow", string(flow), "error", err)
		response.RespondAPIError(c, "flow_failed", apierr.New(http.StatusServiceUnavailable, "flow_interrupted", errors.New("the request was interrupted before the flow finished")))
		return
	}
	h.log.Error("Flow failed", "flow", string(flow), "error", err)
	response.RespondAPIError(c, "flow_failed", apierr.Internal("flow_failed", errors.New("the request could not be processed")))
}

// bindJSON decodes the request body into dst. With optional set an empty
// body is accepted and leaves dst at its zero value.
func bindJSON(c *gin.Context, dst any, optional bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if optional && errors.Is(err, io.EOF) {
		return true
	}
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	return false
}

// decodeRecommendations rebuilds typed output from a cached entry, which comes
// back as generic JSON from remote stores.
func decodeRecommendations(m map[string]any) flows.RecommendationsOutput {
	var out flows.RecommendationsOutput
	if b, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(b, &out)
	}
	if out.Items == nil {
		out.Items = []flows.RecommendationItem{}
	}
	return out
}
