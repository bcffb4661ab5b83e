package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/model"
	"github.com/pep299/study-planner/internal/planner"
	"github.com/pep299/study-planner/internal/provider"
)

const maxGeneratedGoals = 5

// ErrDisabled is returned by Translate when generation is turned off
var ErrDisabled = errors.New("generation disabled")

// Enricher layers secondary generation passes onto a base plan
type Enricher struct {
	provider provider.Provider
	enabled  bool
	timeout  time.Duration
	log      *logger.Logger
}

// NewEnricher creates an enricher. With enabled false or a nil provider
// every pass yields its placeholder.
func NewEnricher(p provider.Provider, enabled bool, timeout time.Duration, log *logger.Logger) *Enricher {
	if timeout <= 0 {
		timeout = planner.DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Enricher{
		provider: p,
		enabled:  enabled && p != nil,
		timeout:  timeout,
		log:      log.With("component", "enrich"),
	}
}

// Enrich attaches prerequisites, a quiz, merged objectives and an optional
// translated summary to result.Plan, then applies the resource and context
// options. Sub-call failures degrade to placeholders and are only logged.
func (e *Enricher) Enrich(ctx context.Context, result *model.GenerationResult, opts model.GenerationOptions) {
	if result == nil || result.Plan == nil {
		return
	}
	plan := result.Plan
	topic := opts.Topic
	if topic == "" {
		topic = plan.Topic
	}

	var (
		prerequisites []string
		quiz          []model.QuizItem
		objectives    = plan.LearningObjectives
		summary       = plan.Summary
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := e.prerequisites(gctx, topic, opts.PriorKnowledge)
		if err != nil {
			e.log.Warn("prerequisites unavailable, using placeholder", "topic", topic, "error", err)
			items = []string{fmt.Sprintf("Basic familiarity with %s concepts", topic)}
		}
		prerequisites = items
		return nil
	})

	g.Go(func() error {
		items, err := e.quiz(gctx, topic, plan.KeyConcepts)
		if err != nil {
			e.log.Warn("quiz unavailable, using placeholder", "topic", topic, "error", err)
			items = []model.QuizItem{{
				Question: fmt.Sprintf("Review the key concepts of %s", topic),
				Options:  []string{},
			}}
		}
		quiz = items
		return nil
	})

	switch {
	case opts.GenerateGoals:
		g.Go(func() error {
			goals, err := e.goals(gctx, topic, opts.DurationWeeks, opts.PriorKnowledge)
			if err != nil {
				e.log.Warn("goal generation failed, using templated goals", "topic", topic, "error", err)
				objectives = templatedGoals(topic)
				return nil
			}
			objectives = model.MergeUnique(plan.LearningObjectives, goals, model.MaxObjectives)
			return nil
		})
	case len(opts.Goals) > 0:
		objectives = model.MergeUnique(plan.LearningObjectives, opts.Goals, model.MaxObjectives)
	}

	if opts.Language != "" && opts.Language != model.DefaultLang {
		g.Go(func() error {
			translated, err := e.translateSummary(gctx, plan.Summary, opts.Language)
			if err != nil {
				e.log.Warn("summary translation failed, keeping original", "language", opts.Language, "error", err)
				return nil
			}
			summary = translated
			return nil
		})
	}

	_ = g.Wait()

	plan.Prerequisites = prerequisites
	plan.Quiz = quiz
	plan.LearningObjectives = objectives
	plan.Summary = summary

	if !opts.IncludeResources {
		plan.Resources = nil
	}
	if opts.AdditionalContext != "" {
		note := "Additional context considered: " + opts.AdditionalContext
		if plan.Recommendations == "" {
			plan.Recommendations = note
		} else {
			plan.Recommendations += "\n\n" + note
		}
	}
}

// Translate renders text in the target language
func (e *Enricher) Translate(ctx context.Context, text, language string) (string, error) {
	if !e.enabled {
		return "", ErrDisabled
	}
	raw, err := e.call(ctx, translatePrompt(text, language))
	if err != nil {
		return "", err
	}
	return decodeTranslation(raw)
}

func (e *Enricher) call(ctx context.Context, prompt string) (string, error) {
	if !e.enabled {
		return "", ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.provider.GenerateText(ctx, prompt)
}

func (e *Enricher) prerequisites(ctx context.Context, topic, prior string) ([]string, error) {
	raw, err := e.call(ctx, prerequisitesPrompt(topic, prior))
	if err != nil {
		return nil, err
	}
	return decodeStrings(raw, "prerequisites")
}

func (e *Enricher) quiz(ctx context.Context, topic string, concepts []string) ([]model.QuizItem, error) {
	raw, err := e.call(ctx, quizPrompt(topic, concepts))
	if err != nil {
		return nil, err
	}
	items, err := decodeList[model.QuizItem](raw, "quiz")
	if err != nil {
		return nil, err
	}

	var out []model.QuizItem
	for _, q := range items {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			continue
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, errEmptyList
	}
	return out, nil
}

func (e *Enricher) goals(ctx context.Context, topic string, weeks int, prior string) ([]string, error) {
	raw, err := e.call(ctx, goalsPrompt(topic, weeks, prior))
	if err != nil {
		return nil, err
	}
	goals, err := decodeStrings(raw, "goals")
	if err != nil {
		return nil, err
	}
	if len(goals) > maxGeneratedGoals {
		goals = goals[:maxGeneratedGoals]
	}
	return goals, nil
}

// translateSummary keeps a leading "[...]" tag untranslated.
func (e *Enricher) translateSummary(ctx context.Context, summary, language string) (string, error) {
	tag, body := splitTag(summary)
	translated, err := e.Translate(ctx, body, language)
	if err != nil {
		return "", err
	}
	if tag == "" {
		return translated, nil
	}
	return tag + " " + translated, nil
}

func splitTag(s string) (string, string) {
	if !strings.HasPrefix(s, "[") {
		return "", s
	}
	end := strings.Index(s, "]")
	if end == -1 {
		return "", s
	}
	return s[:end+1], strings.TrimSpace(s[end+1:])
}

func templatedGoals(topic string) []string {
	return []string{
		"Understand the core principles of " + topic,
		"Develop practical skills in applying " + topic,
		"Build a small project using " + topic,
	}
}
