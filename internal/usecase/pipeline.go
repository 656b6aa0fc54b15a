package usecase

import (
	"context"
	"log"
	"time"

	"github.com/foodscan/backend/internal/domain"
)

// PipelineConfig holds configuration for the analysis pipeline
type PipelineConfig struct {
	EnableDebugLogging bool
}

// Pipeline sequences normalization and product matching for one uploaded
// image. Providers are injected explicitly; there is no environment-driven
// provider selection inside the pipeline.
type Pipeline struct {
	structured domain.StructuredAnnotator
	generative domain.GenerativeAnnotator
	normalizer *Normalizer
	matcher    *Matcher
	debug      bool
}

// NewPipeline creates a pipeline with its collaborators
func NewPipeline(
	structured domain.StructuredAnnotator,
	generative domain.GenerativeAnnotator,
	matcher *Matcher,
	config PipelineConfig,
) *Pipeline {
	return &Pipeline{
		structured: structured,
		generative: generative,
		normalizer: NewNormalizer(config.EnableDebugLogging),
		matcher:    matcher,
		debug:      config.EnableDebugLogging,
	}
}

// GenerativeConfigured reports whether the generative provider has credentials
func (p *Pipeline) GenerativeConfigured() bool {
	return p.generative != nil && p.generative.Configured()
}

// AnalyzeStructured runs the structured-annotator path over an uploaded image:
// annotate, normalize, then match each detected item against the product
// database.
func (p *Pipeline) AnalyzeStructured(ctx context.Context, filename string, image []byte) (*domain.AnalysisResult, error) {
	tracker := trackerAfterUpload()
	tracker.Begin(domain.StageAnalyze)

	annotations, err := p.structured.Annotate(ctx, image)
	if err != nil {
		tracker.Fail(domain.StageAnalyze)
		return nil, err
	}

	normalized := p.normalizer.FromStructured(annotations)
	return p.finish(ctx, filename, domain.ProviderStructured, normalized, tracker), nil
}

// AnalyzeGenerative runs the generative-annotator path. The hint, when
// non-empty, names a product of interest for the annotator to prioritize.
func (p *Pipeline) AnalyzeGenerative(ctx context.Context, filename string, image []byte, hint string) (*domain.AnalysisResult, error) {
	tracker := trackerAfterUpload()
	tracker.Begin(domain.StageAnalyze)

	raw, err := p.generative.Describe(ctx, image, hint)
	if err != nil {
		tracker.Fail(domain.StageAnalyze)
		return nil, err
	}

	normalized := p.normalizer.FromGenerative(raw)
	return p.finish(ctx, filename, domain.ProviderGenerative, normalized, tracker), nil
}

// SearchProducts runs the matcher over caller-supplied items, as used by the
// product-search endpoint. An empty batch is an input error and triggers no
// external calls.
func (p *Pipeline) SearchProducts(ctx context.Context, items []domain.FoodItem) ([]domain.SearchResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	return p.matcher.MatchAll(ctx, items), nil
}

// finish runs the matching stage and assembles the final result
func (p *Pipeline) finish(ctx context.Context, filename, provider string, normalized *NormalizedAnalysis, tracker *StageTracker) *domain.AnalysisResult {
	tracker.CompleteAnalyze(len(normalized.Items))

	var searchResults []domain.SearchResult
	if len(normalized.Items) > 0 {
		searchResults = p.matcher.MatchAll(ctx, normalized.Items)
		tracker.Succeed(domain.StageSearch)
	}

	if p.debug {
		log.Printf("[PIPELINE] %s: %d items, %d search results", provider, len(normalized.Items), len(searchResults))
	}

	return &domain.AnalysisResult{
		Filename:  filename,
		Timestamp: time.Now().UTC(),
		Provider:  provider,
		Results: domain.AnalysisPayload{
			FoodItems:          normalized.Items,
			ExtractedText:      normalized.ExtractedText,
			TotalProducts:      totalProducts(normalized),
			SceneAnalysis:      normalized.SceneAnalysis,
			AggregateNutrition: normalized.AggregateNutrition,
			SearchableTerms:    normalized.SearchableTerms,
			Recommendations:    normalized.Recommendations,
			SearchResults:      searchResults,
		},
		Stages: tracker.Snapshot(),
	}
}

// totalProducts prefers the parsed products array length, then the scene
// analysis count, then defaults to a single product.
func totalProducts(normalized *NormalizedAnalysis) int {
	if normalized.ProductCount > 0 {
		return normalized.ProductCount
	}
	if normalized.SceneAnalysis != nil && normalized.SceneAnalysis.TotalProducts > 0 {
		return normalized.SceneAnalysis.TotalProducts
	}
	return 1
}

// trackerAfterUpload returns a tracker for a request whose upload stage has
// already completed
func trackerAfterUpload() *StageTracker {
	tracker := NewStageTracker()
	tracker.Begin(domain.StageUpload)
	tracker.Succeed(domain.StageUpload)
	return tracker
}
