package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pep299/study-planner/internal/cache"
	"github.com/pep299/study-planner/internal/config"
	"github.com/pep299/study-planner/internal/enrich"
	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/model"
	"github.com/pep299/study-planner/internal/planner"
	"github.com/pep299/study-planner/internal/provider"
	"github.com/pep299/study-planner/internal/research"
)

// State is a step of one generation run
type State string

const (
	StateStart        State = "START"
	StateResearching  State = "RESEARCHING"
	StateSynthesizing State = "SYNTHESIZING"
	StateFallback     State = "FALLBACK"
	StateEnriching    State = "ENRICHING"
	StateDone         State = "DONE"
)

// Researcher gathers web findings for a topic
type Researcher interface {
	Research(ctx context.Context, topic string, depth int) *model.ResearchBundle
}

// Options wires a Service
type Options struct {
	Researcher      Researcher
	Provider        provider.Provider
	UseAIGeneration bool
	ProviderTimeout time.Duration
	DefaultDepth    int
	Pages           *cache.Manager
}

// Service runs the study plan pipeline
type Service struct {
	researcher   Researcher
	provider     provider.Provider
	useAI        bool
	defaultDepth int
	synth        *planner.Synthesizer
	enricher     *enrich.Enricher
	pages        *cache.Manager
	log          *logger.Logger
}

// New creates a pipeline service
func New(opts Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	useAI := opts.UseAIGeneration && opts.Provider != nil
	return &Service{
		researcher:   opts.Researcher,
		provider:     opts.Provider,
		useAI:        useAI,
		defaultDepth: opts.DefaultDepth,
		synth:        planner.NewSynthesizer(opts.ProviderTimeout, log),
		enricher:     enrich.NewEnricher(opts.Provider, useAI, opts.ProviderTimeout, log),
		pages:        opts.Pages,
		log:          log.With("component", "pipeline"),
	}
}

// NewFromConfig builds the page cache, research client and provider from
// configuration. An unknown provider name is returned as an error.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewNop()
	}

	p, err := provider.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	pages, err := cache.NewManager(ctx, cfg.CacheType, cfg.CacheBucket, cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}

	researcher := research.NewClient(research.Options{
		SearchURL:     cfg.SearchURL,
		SearchTimeout: cfg.SearchTimeoutDuration(),
		FetchTimeout:  cfg.FetchTimeoutDuration(),
		MaxConcurrent: cfg.MaxConcurrentFetches,
		Pages:         pages,
	}, log)

	desc := p.Describe()
	log.Info("pipeline configured",
		"provider", desc.ProviderID,
		"model", desc.ModelID,
		"ai_generation", cfg.UseAIGeneration,
		"cache", cfg.CacheType,
	)

	return New(Options{
		Researcher:      researcher,
		Provider:        p,
		UseAIGeneration: cfg.UseAIGeneration,
		ProviderTimeout: cfg.ProviderTimeoutDuration(),
		DefaultDepth:    cfg.ResearchDepth,
		Pages:           pages,
	}, log), nil
}

// Generate produces a complete plan. Only invalid options are reported as
// errors; generation failures fall back to the template plan.
func (s *Service) Generate(ctx context.Context, opts model.GenerationOptions) (*model.GenerationResult, error) {
	if opts.DepthLevel == 0 {
		opts.DepthLevel = s.defaultDepth
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := s.log.With("run_id", uuid.NewString(), "topic", opts.Topic)
	log.Info("generating study plan",
		"state", StateStart,
		"depth", opts.DepthLevel,
		"weeks", opts.DurationWeeks,
		"learning_style", opts.LearningStyle,
		"prior_knowledge", opts.PriorKnowledge,
	)

	var result *model.GenerationResult
	if s.useAI {
		log.Info("researching topic", "state", StateResearching)
		bundle := s.research(ctx, opts.Topic, opts.DepthLevel)

		desc := s.provider.Describe()
		log.Info("synthesizing plan", "state", StateSynthesizing, "provider", desc.ProviderID, "model", desc.ModelID)
		res, err := s.synth.Synthesize(ctx, bundle, opts, s.provider)
		if err != nil {
			log.Warn("synthesis failed", "error", err)
		} else {
			result = res
		}
	} else {
		log.Warn("AI generation disabled, using template plan")
	}

	if result == nil {
		log.Info("building template plan", "state", StateFallback)
		result = planner.FallbackResult(opts.Topic, opts.DurationWeeks)
	}

	log.Info("enriching plan", "state", StateEnriching)
	s.enricher.Enrich(ctx, result, opts)

	log.Info("study plan ready",
		"state", StateDone,
		"method", result.GenerationMethod,
		"is_fallback", result.IsFallback,
		"milestones", len(result.Plan.Milestones),
		"duration", time.Since(start).String(),
	)
	return result, nil
}

// Research returns the research bundle for a topic
func (s *Service) Research(ctx context.Context, topic string, depth int) (*model.ResearchBundle, error) {
	opts := model.GenerationOptions{Topic: topic, DepthLevel: depth}
	if opts.DepthLevel == 0 {
		opts.DepthLevel = s.defaultDepth
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return s.research(ctx, opts.Topic, opts.DepthLevel), nil
}

func (s *Service) research(ctx context.Context, topic string, depth int) *model.ResearchBundle {
	if s.researcher == nil {
		return model.EmptyResearch(topic)
	}
	if bundle := s.researcher.Research(ctx, topic, depth); bundle != nil {
		return bundle
	}
	return model.EmptyResearch(topic)
}

// Translate renders text in another language through the provider
func (s *Service) Translate(ctx context.Context, text, language string) (string, error) {
	if text == "" {
		return "", &model.ValidationError{Field: "text", Message: "text is required"}
	}
	if language == "" {
		return "", &model.ValidationError{Field: "target_language", Message: "target language is required"}
	}
	return s.enricher.Translate(ctx, text, language)
}

// TrendingTopics returns suggested topics
func (s *Service) TrendingTopics() []string {
	return research.TrendingTopics()
}

// Describe reports the configured provider
func (s *Service) Describe() (provider.Description, bool) {
	if s.provider == nil {
		return provider.Description{}, false
	}
	return s.provider.Describe(), s.useAI
}

// PrunePages removes expired page cache entries
func (s *Service) PrunePages(ctx context.Context) (int, error) {
	return s.pages.Prune(ctx)
}

// PageCacheStats reports page cache statistics
func (s *Service) PageCacheStats(ctx context.Context) (*cache.Stats, error) {
	return s.pages.GetStats(ctx)
}

// Close releases the page cache
func (s *Service) Close() error {
	return s.pages.Close()
}
