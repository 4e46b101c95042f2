package promptstyle

import "strings"

const marker = "ACADBOOST_PROMPT_STYLE_V1"

// ApplySystem prepends a short guidance block to system prompts. It is applied
// once; a prompt that already carries the marker is returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" {
		return base
	}
	if strings.Contains(base, marker) {
		return base
	}
	mode = strings.ToLower(strings.TrimSpace(mode))

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are a careful assistant for AcadBoost, a learning platform for students.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nUse provided inputs as grounding; do not invent courses, scores or citations.")
	switch mode {
	case "json":
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
		b.WriteString("\nWhen a field has nothing to report, return an empty string or an empty array.")
	case "tools":
		b.WriteString("\nCall a tool only when its result would improve the answer.")
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	default:
		b.WriteString("\nBe concise and structured when helpful.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return strings.TrimSpace(b.String())
}
