package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/model"
	"github.com/pep299/study-planner/internal/provider"
)

// DefaultTimeout bounds a single plan generation call
const DefaultTimeout = 60 * time.Second

// Synthesizer turns research into a plan through a provider
type Synthesizer struct {
	timeout time.Duration
	log     *logger.Logger
}

// NewSynthesizer creates a synthesizer. A non-positive timeout uses
// DefaultTimeout.
func NewSynthesizer(timeout time.Duration, log *logger.Logger) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Synthesizer{timeout: timeout, log: log.With("component", "planner")}
}

// Synthesize makes one generation attempt. On any failure it returns the
// error and no plan; the caller decides whether to fall back.
func (s *Synthesizer) Synthesize(ctx context.Context, bundle *model.ResearchBundle, opts model.GenerationOptions, p provider.Provider) (*model.GenerationResult, error) {
	desc := p.Describe()
	prompt := BuildPrompt(bundle, opts)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := p.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating plan with %s: %w", desc.ProviderID, err)
	}
	s.log.Debug("provider responded",
		"provider", desc.ProviderID,
		"model", desc.ModelID,
		"response_length", len(raw),
		"duration", time.Since(start).String(),
	)

	plan, err := DecodePlan(raw, opts.Topic, opts.DurationWeeks)
	if err != nil {
		return nil, fmt.Errorf("reading plan from %s: %w", desc.ProviderID, err)
	}

	result := &model.GenerationResult{
		Plan:             plan,
		GenerationMethod: desc.Method(),
		Provider:         model.ProviderInfo{ProviderID: desc.ProviderID, ModelID: desc.ModelID},
	}
	if plan.HasFallbackMarker() {
		result.GenerationMethod = model.MethodFallback
		result.IsFallback = true
		return result, nil
	}

	plan.Summary = fmt.Sprintf("[Generated using: %s] %s", result.GenerationMethod, plan.Summary)
	return result, nil
}
