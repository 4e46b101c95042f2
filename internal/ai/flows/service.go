package flows

import (
	"context"

	"github.com/yungbote/acadboost-backend/internal/ai/schema"
	types "github.com/yungbote/acadboost-backend/internal/domain"
)

type StudyPlanInput struct {
	LearningGoals   string `json:"learningGoals" validate:"nonblank"`
	CurrentProgress string `json:"currentProgress"`
	QuizResults     string `json:"quizResults"`
}

type StudyPlanOutput struct {
	StudyPlan string `json:"studyPlan"`
}

type RecommendationsInput struct {
	LearningPatterns string `json:"learningPatterns"`
	QuizResults      string `json:"quizResults"`
	AreasOfInterest  string `json:"areasOfInterest"`
	ContentCatalog   string `json:"contentCatalog" validate:"nonblank"`
}

type RecommendationsOutput struct {
	RecommendedContent string               `json:"recommendedContent"`
	Items              []RecommendationItem `json:"items"`
}

type SummarizeInput struct {
	CourseMaterial string `json:"courseMaterial" validate:"nonblank"`
}

type SummarizeOutput struct {
	Summary string `json:"summary"`
}

type EduChatInput struct {
	Query string `json:"query" validate:"nonblank"`
}

type EduChatOutput struct {
	Answer                   string             `json:"answer"`
	YoutubeSearchSuggestions []string           `json:"youtubeSearchSuggestions"`
	WebLinks                 []types.LinkRecord `json:"webLinks"`
}

func (in StudyPlanInput) Fields() map[string]any {
	return map[string]any{
		"learningGoals":   in.LearningGoals,
		"currentProgress": in.CurrentProgress,
		"quizResults":     in.QuizResults,
	}
}

func (in RecommendationsInput) Fields() map[string]any {
	return map[string]any{
		"learningPatterns": in.LearningPatterns,
		"quizResults":      in.QuizResults,
		"areasOfInterest":  in.AreasOfInterest,
		"contentCatalog":   in.ContentCatalog,
	}
}

// Service exposes the flows as typed calls.
type Service struct {
	orch *Orchestrator
}

func NewService(orch *Orchestrator) *Service {
	return &Service{orch: orch}
}

func (s *Service) Orchestrator() *Orchestrator { return s.orch }

func (s *Service) GenerateStudyPlan(ctx context.Context, in StudyPlanInput) (StudyPlanOutput, RunInfo, error) {
	if err := schema.ValidateStruct(studyPlanDefinition.Input.Name, in); err != nil {
		return StudyPlanOutput{}, RunInfo{}, err
	}
	res, err := s.orch.Run(ctx, FlowStudyPlan, in.Fields())
	if err != nil {
		return StudyPlanOutput{}, RunInfo{}, err
	}
	return StudyPlanOutput{StudyPlan: stringField(res.Output, "studyPlan")}, res.RunInfo, nil
}

func (s *Service) RecommendPersonalizedContent(ctx context.Context, in RecommendationsInput) (RecommendationsOutput, RunInfo, error) {
	if err := schema.ValidateStruct(recommendationsDefinition.Input.Name, in); err != nil {
		return RecommendationsOutput{}, RunInfo{}, err
	}
	res, err := s.orch.Run(ctx, FlowRecommendations, in.Fields())
	if err != nil {
		return RecommendationsOutput{}, RunInfo{}, err
	}
	items, _ := res.Output["items"].([]RecommendationItem)
	if items == nil {
		items = []RecommendationItem{}
	}
	return RecommendationsOutput{
		RecommendedContent: stringField(res.Output, "recommendedContent"),
		Items:              items,
	}, res.RunInfo, nil
}

func (s *Service) SummarizeCourseMaterial(ctx context.Context, in SummarizeInput) (SummarizeOutput, RunInfo, error) {
	if err := schema.ValidateStruct(summarizeDefinition.Input.Name, in); err != nil {
		return SummarizeOutput{}, RunInfo{}, err
	}
	res, err := s.orch.Run(ctx, FlowSummarize, map[string]any{"courseMaterial": in.CourseMaterial})
	if err != nil {
		return SummarizeOutput{}, RunInfo{}, err
	}
	return SummarizeOutput{Summary: stringField(res.Output, "summary")}, res.RunInfo, nil
}

func (s *Service) EduChat(ctx context.Context, in EduChatInput) (EduChatOutput, RunInfo, error) {
	if err := schema.ValidateStruct(eduChatDefinition.Input.Name, in); err != nil {
		return EduChatOutput{}, RunInfo{}, err
	}
	res, err := s.orch.Run(ctx, FlowEduChat, map[string]any{"query": in.Query})
	if err != nil {
		return EduChatOutput{}, RunInfo{}, err
	}
	out := EduChatOutput{
		Answer:                   stringField(res.Output, "answer"),
		YoutubeSearchSuggestions: []string{},
		WebLinks:                 []types.LinkRecord{},
	}
	if v, ok := res.Output["youtubeSearchSuggestions"].([]string); ok {
		out.YoutubeSearchSuggestions = v
	}
	if v, ok := res.Output["webLinks"].([]map[string]any); ok {
		for _, link := range v {
			out.WebLinks = append(out.WebLinks, types.LinkRecord{
				Title: stringField(link, "title"),
				URL:   stringField(link, "url"),
			})
		}
	}
	return out, res.RunInfo, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
