package enrich

import (
	"fmt"
	"strings"
)

func priorOrUnknown(prior string) string {
	if prior == "" {
		return "Not specified"
	}
	return prior
}

func prerequisitesPrompt(topic, prior string) string {
	return fmt.Sprintf(`What are the prerequisites for studying %s?
Learner's prior knowledge: %s

List 3 to 6 short prerequisite items. Respond with a JSON object of the form:
{"prerequisites": ["item 1", "item 2"]}
Return ONLY the JSON object.`, topic, priorOrUnknown(prior))
}

func quizPrompt(topic string, concepts []string) string {
	covered := "the fundamentals of " + topic
	if len(concepts) > 0 {
		covered = strings.Join(concepts, "; ")
	}
	return fmt.Sprintf(`Write a short multiple-choice quiz to check understanding of %s.
Cover these key concepts: %s

Write 3 to 5 questions. Respond with a JSON object of the form:
{"quiz": [{"question": "...", "options": ["A", "B", "C", "D"], "answer": "A"}]}
Return ONLY the JSON object.`, topic, covered)
}

func goalsPrompt(topic string, weeks int, prior string) string {
	return fmt.Sprintf(`Suggest 3 to 5 specific, measurable learning goals for studying %s over %d weeks.
Learner's prior knowledge: %s

Respond with a JSON object of the form:
{"goals": ["goal 1", "goal 2", "goal 3"]}
Return ONLY the JSON object.`, topic, weeks, priorOrUnknown(prior))
}

func translatePrompt(text, language string) string {
	return fmt.Sprintf(`Translate the following text to %s. Respond with a JSON object of the form:
{"translated_text": "..."}

%s`, language, text)
}
