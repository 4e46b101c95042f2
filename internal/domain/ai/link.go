package ai

// LinkRecord is a titled link returned to learners. URL must be an absolute http(s) URL.
type LinkRecord struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
