package planner

import (
	"fmt"
	"strings"

	"github.com/pep299/study-planner/internal/model"
)

var basePhases = []string{
	"Fundamentals and Core Concepts",
	"Intermediate Concepts and Applications",
	"Advanced Topics and Practical Skills",
	"Projects and Real-world Implementation",
}

const (
	phaseFurtherSkills  = "Further Skills Development"
	phaseSpecialization = "Specialization and Mastery"
)

func marked(s string) string {
	return model.FallbackMarker + " " + s
}

// phaseFor returns the curriculum focus of week i in an n-week plan.
func phaseFor(i, n int) string {
	if i <= len(basePhases) {
		return basePhases[i-1]
	}
	if 2*i <= n {
		return phaseFurtherSkills
	}
	return phaseSpecialization
}

// BuildFallback produces the built-in template plan. It makes no external
// calls and returns the same plan for the same inputs.
func BuildFallback(topic string, weeks int) *model.Plan {
	if weeks < 1 {
		weeks = 1
	}

	milestones := make([]model.Milestone, 0, weeks)
	for i := 1; i <= weeks; i++ {
		focus := phaseFor(i, weeks)
		milestones = append(milestones, model.Milestone{
			Title:       marked(fmt.Sprintf("Week %d: %s", i, focus)),
			Description: marked(fmt.Sprintf("Focus on %s related to %s", strings.ToLower(focus), topic)),
			Week:        i,
			Tasks: []string{
				fmt.Sprintf("Study materials on %s %s", topic, strings.ToLower(focus)),
				"Complete practice exercises",
				"Review and solidify understanding",
			},
			EstimatedHours: 10 + i%2,
		})
	}

	return &model.Plan{
		Topic:         topic,
		Summary:       marked(fmt.Sprintf("A structured %d-week study plan for mastering %s, covering fundamentals through advanced concepts.", weeks, topic)),
		DurationWeeks: weeks,
		LearningObjectives: []string{
			"Understand the core principles of " + topic,
			"Develop practical skills in applying " + topic,
			"Build projects that demonstrate mastery of " + topic,
			"Establish a foundation for continued learning in " + topic,
		},
		KeyConcepts: []string{
			topic + " fundamentals",
			topic + " methodologies",
			topic + " best practices",
			topic + " applications",
		},
		Milestones: milestones,
		Resources: []model.ResourceItem{
			{
				Title:       topic + " - Comprehensive Guide",
				Type:        "book",
				Description: marked("A thorough introduction to the subject"),
			},
			{
				Title:       "Practical " + topic,
				Type:        "online course",
				Description: marked("Hands-on course with practical exercises"),
			},
			{
				Title:       topic + " Community Forum",
				Type:        "community",
				Description: marked("Connect with others studying the same topic"),
			},
		},
		Recommendations: marked("Focus on consistent daily practice. Alternate between theoretical study and practical application. Consider joining study groups or finding a mentor in this field."),
	}
}

// FallbackResult wraps BuildFallback as a generation result.
func FallbackResult(topic string, weeks int) *model.GenerationResult {
	return &model.GenerationResult{
		Plan:             BuildFallback(topic, weeks),
		GenerationMethod: model.MethodFallback,
		IsFallback:       true,
		Provider:         model.ProviderInfo{ProviderID: strings.ToLower(model.MethodFallback)},
	}
}
