package planner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pep299/study-planner/internal/model"
)

const (
	maxPromptSources  = 5
	maxPromptConcepts = 8
	maxSourceExcerpt  = 300
	notSpecified      = "Not specified"
)

// BuildPrompt renders the plan request sent to a provider.
func BuildPrompt(bundle *model.ResearchBundle, opts model.GenerationOptions) string {
	if bundle == nil {
		bundle = model.EmptyResearch(opts.Topic)
	}

	var sources strings.Builder
	for i, src := range bundle.Sources {
		if i == maxPromptSources {
			break
		}
		title := src.Title
		if title == "" {
			title = "Unknown"
		}
		fmt.Fprintf(&sources, "Source %d: %s - %s...\n\n", i+1, title, excerpt(src.Summary, maxSourceExcerpt))
	}

	concepts := bundle.KeyConcepts
	if len(concepts) > maxPromptConcepts {
		concepts = concepts[:maxPromptConcepts]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert educational consultant creating a comprehensive study plan for the topic: %s.\n\n", opts.Topic)
	b.WriteString("RESEARCH DATA:\n")
	b.WriteString(sources.String())
	fmt.Fprintf(&b, "\nKEY CONCEPTS: %s\n\n", strings.Join(concepts, ", "))
	fmt.Fprintf(&b, "RELATED TOPICS: %s\n\n", strings.Join(bundle.RelatedTopics, ", "))
	b.WriteString("PARAMETERS:\n")
	fmt.Fprintf(&b, "- Duration: %d weeks\n", opts.DurationWeeks)
	fmt.Fprintf(&b, "- Depth Level: %d/%d\n", opts.DepthLevel, model.MaxDepth)
	fmt.Fprintf(&b, "- Learning Style: %s\n", orNotSpecified(opts.LearningStyle))
	fmt.Fprintf(&b, "- Prior Knowledge: %s\n\n", orNotSpecified(opts.PriorKnowledge))
	b.WriteString("Create a detailed, structured study plan following this JSON format:\n")
	b.WriteString(planShape(opts.DurationWeeks))
	b.WriteString("\nReturn ONLY the valid JSON object, nothing else. Ensure all JSON is properly formatted and valid.\n")
	return b.String()
}

func planShape(weeks int) string {
	return fmt.Sprintf(`{
  "topic": "The main topic",
  "summary": "A concise summary of what will be studied and why it's valuable",
  "duration_weeks": %d,
  "learning_objectives": ["Objective 1", "Objective 2", "Objective 3"],
  "key_concepts": ["Concept 1", "Concept 2", "Concept 3"],
  "milestones": [
    {
      "title": "Week 1: Foundation",
      "description": "Description of what will be covered",
      "week": 1,
      "tasks": ["Task 1", "Task 2", "Task 3"],
      "estimated_hours": 10
    }
  ],
  "resources": [
    {
      "title": "Resource Title",
      "url": "https://example.com/resource",
      "type": "article/book/video/course",
      "description": "Brief description of the resource"
    }
  ],
  "recommendations": "Additional personalized recommendations based on learning style"
}
`, weeks)
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
