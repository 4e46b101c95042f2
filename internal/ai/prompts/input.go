package prompts

// Input holds the named values a prompt template may reference as {{.field}}.
// Templates render with missingkey=error, so every referenced key must be present.
type Input map[string]any
