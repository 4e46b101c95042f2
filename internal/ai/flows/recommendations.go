package flows

import (
	"regexp"
	"strings"
)

// RecommendationItem is one numbered line of recommendedContent.
type RecommendationItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var numberedLine = regexp.MustCompile(`^\d+\.\s*`)

// ParseRecommendationItems reads lines shaped like "1. Title - description".
// Lines without a leading number are skipped.
func ParseRecommendationItems(text string) []RecommendationItem {
	items := []RecommendationItem{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !numberedLine.MatchString(line) {
			continue
		}
		rest := numberedLine.ReplaceAllString(line, "")
		parts := strings.SplitN(rest, " - ", 2)
		title := strings.TrimSpace(strings.Trim(strings.TrimSpace(parts[0]), "*"))
		if title == "" {
			title = "Untitled"
		}
		desc := "No description"
		if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
			desc = strings.TrimSpace(parts[1])
		}
		items = append(items, RecommendationItem{Title: title, Description: desc})
	}
	return items
}

func deriveRecommendationItems(out map[string]any) map[string]any {
	text, _ := out["recommendedContent"].(string)
	out["items"] = ParseRecommendationItems(text)
	return out
}
