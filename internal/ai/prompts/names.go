package prompts

type PromptName string

const (
	PromptStudyPlan       PromptName = "generate_study_plan"
	PromptRecommendations PromptName = "recommend_personalized_content"
	PromptSummarize       PromptName = "summarize_course_material"
	PromptEduChat         PromptName = "educhat"
)
