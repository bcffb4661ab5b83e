package model

import (
	"fmt"
	"strings"
)

const (
	MinDepth      = 1
	MaxDepth      = 5
	DefaultDepth  = 3
	MinWeeks      = 1
	MaxWeeks      = 52
	DefaultWeeks  = 4
	MaxObjectives = 10
	DefaultLang   = "en"
)

// GenerationOptions carries the user's preferences for one plan.
type GenerationOptions struct {
	Topic             string   `json:"topic"`
	DepthLevel        int      `json:"depth_level"`
	DurationWeeks     int      `json:"duration_weeks"`
	IncludeResources  bool     `json:"include_resources"`
	LearningStyle     string   `json:"learning_style,omitempty"`
	PriorKnowledge    string   `json:"prior_knowledge,omitempty"`
	Goals             []string `json:"goals,omitempty"`
	GenerateGoals     bool     `json:"generate_goals"`
	AdditionalContext string   `json:"additional_context,omitempty"`
	Language          string   `json:"language,omitempty"`
}

// DefaultOptions returns options with every default applied. Decode request
// bodies into this value so absent fields keep their defaults. DepthLevel
// stays zero so the pipeline can apply its configured research depth.
func DefaultOptions() GenerationOptions {
	return GenerationOptions{
		DurationWeeks:    DefaultWeeks,
		IncludeResources: true,
		Language:         DefaultLang,
	}
}

// Normalize trims strings and clamps numeric fields into range.
func (o *GenerationOptions) Normalize() {
	o.Topic = strings.TrimSpace(o.Topic)
	o.LearningStyle = strings.TrimSpace(o.LearningStyle)
	o.PriorKnowledge = strings.TrimSpace(o.PriorKnowledge)
	o.AdditionalContext = strings.TrimSpace(o.AdditionalContext)
	o.Language = strings.ToLower(strings.TrimSpace(o.Language))
	if o.Language == "" {
		o.Language = DefaultLang
	}
	o.DepthLevel = ClampDepth(o.DepthLevel)
	o.DurationWeeks = ClampWeeks(o.DurationWeeks)

	var goals []string
	for _, g := range o.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	o.Goals = goals
}

// Validate reports the first invalid field.
func (o *GenerationOptions) Validate() error {
	if strings.TrimSpace(o.Topic) == "" {
		return &ValidationError{Field: "topic", Message: "topic is required"}
	}
	return nil
}

// ClampDepth maps any integer into [MinDepth, MaxDepth]; zero means default.
func ClampDepth(d int) int {
	if d == 0 {
		return DefaultDepth
	}
	return min(max(d, MinDepth), MaxDepth)
}

// ClampWeeks maps any integer into [MinWeeks, MaxWeeks]; zero means default.
func ClampWeeks(w int) int {
	if w == 0 {
		return DefaultWeeks
	}
	return min(max(w, MinWeeks), MaxWeeks)
}

// ValidationError is returned for unusable caller input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
