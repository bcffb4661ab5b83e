package model

import "strings"

// FallbackMarker tags the prose fields produced by the built-in template.
const FallbackMarker = "[FALLBACK TEMPLATE]"

// MethodFallback is the generation method reported for template plans.
const MethodFallback = "FALLBACK"

// Milestone is one week of a study plan
type Milestone struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Week           int      `json:"week"`
	Tasks          []string `json:"tasks"`
	EstimatedHours int      `json:"estimated_hours"`
}

// ResourceItem is a recommended learning resource
type ResourceItem struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// QuizItem is a single self-assessment question
type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Plan is the canonical study plan returned to callers.
// Resources is nil when the caller did not ask for resources, which drops
// the key from the JSON encoding entirely.
type Plan struct {
	Topic              string         `json:"topic"`
	Summary            string         `json:"summary"`
	DurationWeeks      int            `json:"duration_weeks"`
	LearningObjectives []string       `json:"learning_objectives"`
	KeyConcepts        []string       `json:"key_concepts"`
	Milestones         []Milestone    `json:"milestones"`
	Resources          []ResourceItem `json:"resources,omitempty"`
	Recommendations    string         `json:"recommendations,omitempty"`
	Prerequisites      []string       `json:"prerequisites,omitempty"`
	Quiz               []QuizItem     `json:"quiz,omitempty"`
}

// HasFallbackMarker reports whether the summary carries the template marker.
func (p *Plan) HasFallbackMarker() bool {
	return strings.Contains(p.Summary, FallbackMarker)
}

// ProviderInfo identifies the backend that produced a plan
type ProviderInfo struct {
	ProviderID string `json:"provider_id"`
	ModelID    string `json:"model_id"`
}

// GenerationResult is a plan plus how it was produced.
type GenerationResult struct {
	Plan             *Plan        `json:"plan"`
	GenerationMethod string       `json:"generation_method"`
	IsFallback       bool         `json:"is_fallback"`
	Provider         ProviderInfo `json:"provider"`
}

// MergeUnique appends values not already present in base, keeping first-seen
// order, and caps the result at limit entries (limit <= 0 means no cap).
func MergeUnique(base, extra []string, limit int) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
