package flows

import (
	"github.com/yungbote/acadboost-backend/internal/ai/prompts"
	"github.com/yungbote/acadboost-backend/internal/ai/schema"
	"github.com/yungbote/acadboost-backend/internal/platform/youtube"
)

type FlowID string

const (
	FlowStudyPlan       FlowID = "generateStudyPlan"
	FlowRecommendations FlowID = "recommendPersonalizedContent"
	FlowSummarize       FlowID = "summarizeCourseMaterial"
	FlowEduChat         FlowID = "educhat"
)

// Definition binds a flow to its prompt, its input and output shapes, and the
// tools the model may call while producing the output.
type Definition struct {
	ID     FlowID
	Prompt prompts.PromptName
	Input  schema.Shape
	Output schema.Shape
	Tools  []string
	// Derive adds fields computed from the normalized output. It must accept
	// fallback outputs too.
	Derive func(out map[string]any) map[string]any
}

var studyPlanDefinition = Definition{
	ID:     FlowStudyPlan,
	Prompt: prompts.PromptStudyPlan,
	Input: schema.Shape{
		Name: "generate_study_plan_input",
		Fields: []schema.Field{
			{Name: "learningGoals", Kind: schema.String, Required: true, NonEmpty: true},
			{Name: "currentProgress", Kind: schema.String, Required: true},
			{Name: "quizResults", Kind: schema.String, Required: true},
		},
	},
	Output: schema.Shape{
		Name: "study_plan_v1",
		Fields: []schema.Field{
			{Name: "studyPlan", Kind: schema.String, Required: true, NonEmpty: true,
				Description: "A personalized study plan based on the user input."},
		},
	},
}

var recommendationsDefinition = Definition{
	ID:     FlowRecommendations,
	Prompt: prompts.PromptRecommendations,
	Input: schema.Shape{
		Name: "recommend_personalized_content_input",
		Fields: []schema.Field{
			{Name: "learningPatterns", Kind: schema.String, Required: true},
			{Name: "quizResults", Kind: schema.String, Required: true},
			{Name: "areasOfInterest", Kind: schema.String, Required: true},
			{Name: "contentCatalog", Kind: schema.String, Required: true, NonEmpty: true},
		},
	},
	Output: schema.Shape{
		Name: "recommendations_v1",
		Fields: []schema.Field{
			{Name: "recommendedContent", Kind: schema.String, Required: true, NonEmpty: true,
				Description: "A list of recommended content items, tailored to the user's learning patterns, quiz results, and areas of interest."},
		},
	},
	Derive: deriveRecommendationItems,
}

var summarizeDefinition = Definition{
	ID:     FlowSummarize,
	Prompt: prompts.PromptSummarize,
	Input: schema.Shape{
		Name: "summarize_course_material_input",
		Fields: []schema.Field{
			{Name: "courseMaterial", Kind: schema.String, Required: true, NonEmpty: true},
		},
	},
	Output: schema.Shape{
		Name: "course_summary_v1",
		Fields: []schema.Field{
			{Name: "summary", Kind: schema.String, Required: true, NonEmpty: true,
				Description: "A concise summary of the course material."},
		},
	},
}

var eduChatDefinition = Definition{
	ID:     FlowEduChat,
	Prompt: prompts.PromptEduChat,
	Input: schema.Shape{
		Name: "educhat_input",
		Fields: []schema.Field{
			{Name: "query", Kind: schema.String, Required: true, NonEmpty: true},
		},
	},
	Output: schema.Shape{
		Name: "educhat_v1",
		Fields: []schema.Field{
			{Name: "answer", Kind: schema.String, Required: true, NonEmpty: true,
				Description: "A comprehensive and helpful answer to the user's query."},
			{Name: "youtubeSearchSuggestions", Kind: schema.StringList,
				Description: "A list of 2-3 relevant YouTube search query suggestions for the user to explore."},
			{Name: "webLinks", Kind: schema.LinkList,
				Description: "A list of relevant browser links."},
		},
	},
	Tools: []string{youtube.ToolName},
}

// Definitions returns the built-in flows keyed by id.
func Definitions() map[FlowID]Definition {
	out := map[FlowID]Definition{}
	for _, d := range []Definition{
		studyPlanDefinition,
		recommendationsDefinition,
		summarizeDefinition,
		eduChatDefinition,
	} {
		out[d.ID] = d
	}
	return out
}
