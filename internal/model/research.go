package model

// SearchResult is one entry from a web search listing
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// SourceItem is a fetched page that contributed to the research
type SourceItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

// ResearchBundle aggregates what was learned about a topic for one request.
// Sources keep search rank order.
type ResearchBundle struct {
	Topic         string       `json:"topic"`
	Sources       []SourceItem `json:"sources"`
	KeyConcepts   []string     `json:"key_concepts"`
	RelatedTopics []string     `json:"related_topics"`
}

// EmptyResearch is what callers get when nothing could be gathered.
func EmptyResearch(topic string) *ResearchBundle {
	return &ResearchBundle{
		Topic:         topic,
		Sources:       []SourceItem{},
		KeyConcepts:   []string{},
		RelatedTopics: []string{},
	}
}
