package enrich

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/study-planner/internal/model"
	"github.com/pep299/study-planner/internal/planner"
	"github.com/pep299/study-planner/internal/provider/providertest"
)

const (
	prereqMarker    = "prerequisites for studying"
	quizMarker      = "multiple-choice quiz"
	goalsMarker     = "learning goals"
	translateMarker = "Translate the following"
)

func basePlan() *model.GenerationResult {
	return &model.GenerationResult{
		Plan: &model.Plan{
			Topic:              "Go",
			Summary:            "[Generated using: OLLAMA] Learn Go",
			DurationWeeks:      2,
			LearningObjectives: []string{"Write Go programs"},
			KeyConcepts:        []string{"goroutines", "channels"},
			Resources:          []model.ResourceItem{{Title: "Tour of Go", Type: "course"}},
			Recommendations:    "Practice daily",
		},
		GenerationMethod: "OLLAMA",
	}
}

func baseOptions() model.GenerationOptions {
	opts := model.DefaultOptions()
	opts.Topic = "Go"
	opts.DurationWeeks = 2
	opts.Normalize()
	return opts
}

func happyFake() *providertest.Fake {
	return &providertest.Fake{Rules: []providertest.Rule{
		{Contains: prereqMarker, Reply: providertest.Reply{Text: `{"prerequisites": ["Basic programming", "Command line use"]}`}},
		{Contains: quizMarker, Reply: providertest.Reply{Text: `Sure! {"quiz": [{"question": "What is a goroutine?", "options": ["A thread", "A lightweight thread"], "answer": "A lightweight thread"}]}`}},
		{Contains: goalsMarker, Reply: providertest.Reply{Text: `{"goals": ["Build a CLI", "Write Go programs", "Use channels", "Test code", "Profile code", "Ship a service"]}`}},
		{Contains: translateMarker, Reply: providertest.Reply{Text: `{"translated_text": "Aprende Go"}`}},
	}}
}

func TestEnrichAttachesAllPasses(t *testing.T) {
	result := basePlan()
	opts := baseOptions()
	opts.GenerateGoals = true

	NewEnricher(happyFake(), true, 0, nil).Enrich(context.Background(), result, opts)
	plan := result.Plan

	assert.Equal(t, []string{"Basic programming", "Command line use"}, plan.Prerequisites)
	require.Len(t, plan.Quiz, 1)
	assert.Equal(t, "What is a goroutine?", plan.Quiz[0].Question)
	assert.Equal(t, "A lightweight thread", plan.Quiz[0].Answer)

	// at most 5 generated goals, unioned with existing objectives
	assert.Equal(t, []string{"Write Go programs", "Build a CLI", "Use channels", "Test code", "Profile code"}, plan.LearningObjectives)
	assert.NotEmpty(t, plan.Resources)
	assert.Equal(t, "[Generated using: OLLAMA] Learn Go", plan.Summary)
}

func TestEnrichQuizFailureIsIsolated(t *testing.T) {
	fake := happyFake()
	fake.Rules[1].Reply = providertest.Failure(500, "boom")

	result := basePlan()
	opts := baseOptions()
	opts.GenerateGoals = true
	NewEnricher(fake, true, 0, nil).Enrich(context.Background(), result, opts)
	plan := result.Plan

	require.Len(t, plan.Quiz, 1)
	assert.Equal(t, "Review the key concepts of Go", plan.Quiz[0].Question)
	assert.Empty(t, plan.Quiz[0].Options)
	assert.NotNil(t, plan.Quiz[0].Options)
	assert.Empty(t, plan.Quiz[0].Answer)

	assert.Equal(t, []string{"Basic programming", "Command line use"}, plan.Prerequisites)
	assert.Contains(t, plan.LearningObjectives, "Build a CLI")
}

func TestEnrichGoalFailureUsesTemplatedGoals(t *testing.T) {
	fake := happyFake()
	fake.Rules[2].Reply = providertest.Reply{Text: "I'd rather not."}

	result := basePlan()
	opts := baseOptions()
	opts.GenerateGoals = true
	NewEnricher(fake, true, 0, nil).Enrich(context.Background(), result, opts)

	assert.Equal(t, []string{
		"Understand the core principles of Go",
		"Develop practical skills in applying Go",
		"Build a small project using Go",
	}, result.Plan.LearningObjectives)
}

func TestEnrichExplicitGoalsAreCapped(t *testing.T) {
	result := basePlan()
	opts := baseOptions()
	for i := 0; i < 15; i++ {
		opts.Goals = append(opts.Goals, "goal "+string(rune('a'+i)))
	}
	opts.Goals = append(opts.Goals, "Write Go programs")

	NewEnricher(happyFake(), true, 0, nil).Enrich(context.Background(), result, opts)

	objectives := result.Plan.LearningObjectives
	assert.Len(t, objectives, model.MaxObjectives)
	assert.Equal(t, "Write Go programs", objectives[0])
	assert.Equal(t, "goal a", objectives[1])
}

func TestEnrichDropsResourcesAndAppendsContext(t *testing.T) {
	result := basePlan()
	opts := baseOptions()
	opts.IncludeResources = false
	opts.AdditionalContext = "Evenings only"

	NewEnricher(happyFake(), true, 0, nil).Enrich(context.Background(), result, opts)

	assert.Nil(t, result.Plan.Resources)
	assert.Equal(t, "Practice daily\n\nAdditional context considered: Evenings only", result.Plan.Recommendations)

	encoded, err := json.Marshal(result.Plan)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), `"resources"`)
}

func TestEnrichContextWithoutRecommendations(t *testing.T) {
	result := basePlan()
	result.Plan.Recommendations = ""
	opts := baseOptions()
	opts.AdditionalContext = "Visual learner"

	NewEnricher(happyFake(), true, 0, nil).Enrich(context.Background(), result, opts)
	assert.Equal(t, "Additional context considered: Visual learner", result.Plan.Recommendations)
}

func TestEnrichTranslatesSummaryKeepingTag(t *testing.T) {
	fake := happyFake()
	result := basePlan()
	opts := baseOptions()
	opts.Language = "es"

	NewEnricher(fake, true, 0, nil).Enrich(context.Background(), result, opts)
	assert.Equal(t, "[Generated using: OLLAMA] Aprende Go", result.Plan.Summary)

	var translatePrompt string
	for _, p := range fake.Prompts() {
		if strings.Contains(p, translateMarker) {
			translatePrompt = p
		}
	}
	assert.Contains(t, translatePrompt, "to es")
	assert.NotContains(t, translatePrompt, "[Generated using")
}

func TestEnrichTranslationFailureKeepsOriginal(t *testing.T) {
	fake := happyFake()
	fake.Rules[3].Reply = providertest.Failure(429, "rate limited")
	result := planner.FallbackResult("Go", 2)
	opts := baseOptions()
	opts.Language = "fr"

	NewEnricher(fake, true, 0, nil).Enrich(context.Background(), result, opts)
	assert.True(t, result.Plan.HasFallbackMarker())
	assert.Equal(t, planner.BuildFallback("Go", 2).Summary, result.Plan.Summary)
}

func TestEnrichDisabledUsesPlaceholders(t *testing.T) {
	fake := happyFake()
	result := planner.FallbackResult("Python Programming", 4)
	opts := model.DefaultOptions()
	opts.Topic = "Python Programming"
	opts.GenerateGoals = true
	opts.Language = "de"
	opts.Normalize()

	NewEnricher(fake, false, 0, nil).Enrich(context.Background(), result, opts)
	plan := result.Plan

	assert.Empty(t, fake.Prompts())
	assert.Equal(t, []string{"Basic familiarity with Python Programming concepts"}, plan.Prerequisites)
	require.Len(t, plan.Quiz, 1)
	assert.Equal(t, "Review the key concepts of Python Programming", plan.Quiz[0].Question)
	assert.Len(t, plan.LearningObjectives, 3)
	assert.Len(t, plan.Resources, 3)
	assert.True(t, result.IsFallback == plan.HasFallbackMarker())
}

func TestEnrichNilProvider(t *testing.T) {
	result := basePlan()
	NewEnricher(nil, true, 0, nil).Enrich(context.Background(), result, baseOptions())
	assert.Len(t, result.Plan.Prerequisites, 1)
}

func TestDecodeStrings(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"keyed object", `{"prerequisites": ["a", "b"]}`, []string{"a", "b"}, false},
		{"bare array in prose", `Here: ["x", "y", "x"] done`, []string{"x", "y"}, false},
		{"other key falls back to array", `{"items": ["p"]}`, []string{"p"}, false},
		{"bullets", "- first\n* second\n3. third\n", []string{"first", "second", "third"}, false},
		{"broken json", `{"prerequisites": [`, nil, true},
		{"empty", "   ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeStrings(tt.raw, "prerequisites")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitTag(t *testing.T) {
	tag, body := splitTag("[FALLBACK TEMPLATE] A plan")
	assert.Equal(t, "[FALLBACK TEMPLATE]", tag)
	assert.Equal(t, "A plan", body)

	tag, body = splitTag("Plain summary")
	assert.Empty(t, tag)
	assert.Equal(t, "Plain summary", body)
}
