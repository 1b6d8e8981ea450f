// Package pipeline orchestrates the three validation stages over one
// examination record and aggregates their outputs into a verdict.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/emedosmotr/vvk-validator/internal/adminresolve"
	"github.com/emedosmotr/vvk-validator/internal/cache"
	"github.com/emedosmotr/vvk-validator/internal/clinical"
	"github.com/emedosmotr/vvk-validator/internal/contradiction"
	"github.com/emedosmotr/vvk-validator/internal/llm"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
	"github.com/emedosmotr/vvk-validator/internal/retrieval"
)

// ResultSink persists verdicts when Options.SaveResult is set. The pipeline
// itself never persists anything.
type ResultSink interface {
	Save(ctx context.Context, record *model.ExaminationRecord, verdict *model.Verdict) error
}

// Options controls a single validation call.
type Options struct {
	SaveResult bool
}

// Pipeline wires the stages together.
type Pipeline struct {
	checker    *contradiction.Checker
	classifier *clinical.Classifier
	resolver   *adminresolve.Resolver
	aggregator *Aggregator
	renderer   *Renderer
	sink       ResultSink
	config     *model.Config
}

// New creates a pipeline from configuration. The LLM provider is optional:
// without one, Stage 1 reports an error status and the remaining stages
// still run.
func New(cfg *model.Config, store *reference.Store, sink ResultSink) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		provider = nil
	}

	var embedCache cache.Cache
	if cfg.Cache.Enabled {
		embedCache = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	}

	searcher := retrieval.NewSearcher(provider, store, embedCache, cfg.LLM.EmbeddingModel, cfg.Cache.TTL)

	return &Pipeline{
		checker:    contradiction.NewChecker(searcher, cfg.Output.Verbose),
		classifier: clinical.NewClassifier(provider, searcher, cfg.Output.Verbose),
		resolver:   adminresolve.NewResolver(store),
		aggregator: NewAggregator(nil),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		sink:       sink,
		config:     cfg,
	}, nil
}

// NewWithParts builds a pipeline from explicit components, used by tests
// and by callers that manage their own provider lifecycle.
func NewWithParts(
	checker *contradiction.Checker,
	classifier *clinical.Classifier,
	resolver *adminresolve.Resolver,
	aggregator *Aggregator,
	cfg *model.Config,
	sink ResultSink,
) *Pipeline {
	if aggregator == nil {
		aggregator = NewAggregator(nil)
	}
	return &Pipeline{
		checker:    checker,
		classifier: classifier,
		resolver:   resolver,
		aggregator: aggregator,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		sink:       sink,
		config:     cfg,
	}
}

// Validate runs all three stages over the record and aggregates the
// verdict. Stage failures degrade to stage-level error statuses; the only
// errors returned are misuse (nil record) and a sink failure when
// opts.SaveResult is set.
func (p *Pipeline) Validate(ctx context.Context, record *model.ExaminationRecord, opts Options) (*model.Verdict, error) {
	if record == nil {
		return nil, fmt.Errorf("nil record")
	}
	start := time.Now()

	// Stage 0 and Stage 1 are independent and run concurrently; Stage 2
	// needs Stage 1's classification.
	var (
		wg             sync.WaitGroup
		findings       []model.Finding
		stage0Duration time.Duration
		classification *clinical.Classification
		classifyErr    error
		stage1Duration time.Duration
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		t := time.Now()
		findings = p.checker.Check(ctx, record)
		stage0Duration = time.Since(t)
	}()
	go func() {
		defer wg.Done()
		t := time.Now()
		classification, classifyErr = p.classifier.Classify(ctx, record)
		stage1Duration = time.Since(t)
	}()
	wg.Wait()

	stage2Start := time.Now()
	resolution := p.resolver.Resolve(classification, record.Graph())
	stage2Duration := time.Since(stage2Start)

	verdict := &model.Verdict{
		Stage0: stage0Result(findings, stage0Duration),
		Stage1: stage1Result(classification, classifyErr, stage1Duration),
		Stage2: stage2Result(resolution, stage2Duration),
	}
	p.aggregator.Aggregate(record, findings, classification, classifyErr, resolution, verdict)

	verdict.Metadata = model.VerdictMetadata{
		Model:                 p.config.LLM.Model,
		TotalDurationSeconds:  time.Since(start).Seconds(),
		Stage0DurationSeconds: stage0Duration.Seconds(),
		Stage1DurationSeconds: stage1Duration.Seconds(),
		Stage2DurationSeconds: stage2Duration.Seconds(),
		Graph:                 record.Graph(),
		Specialty:             record.Specialty,
	}
	if classification != nil {
		verdict.Metadata.TokensUsed = classification.TokensUsed
	}

	if opts.SaveResult && p.sink != nil {
		if err := p.sink.Save(ctx, record, verdict); err != nil {
			return verdict, fmt.Errorf("save result: %w", err)
		}
	}
	return verdict, nil
}

// CheckContradictions runs Stage 0 standalone.
func (p *Pipeline) CheckContradictions(ctx context.Context, record *model.ExaminationRecord) []model.Finding {
	return p.checker.Check(ctx, record)
}

func stage0Result(findings []model.Finding, d time.Duration) model.StageResult {
	status := model.StageSuccess
	if len(findings) > 0 {
		status = model.StageWarning
	}
	return model.StageResult{
		Name:            "contradiction_check",
		Number:          0,
		Passed:          len(findings) == 0,
		Status:          status,
		Details:         map[string]any{"findings_count": len(findings)},
		DurationSeconds: d.Seconds(),
	}
}

func stage1Result(classification *clinical.Classification, err error, d time.Duration) model.StageResult {
	result := model.StageResult{
		Name:            "clinical_classification",
		Number:          1,
		DurationSeconds: d.Seconds(),
		Details:         map[string]any{},
	}
	if err != nil {
		result.Status = model.StageError
		result.Details["error"] = err.Error()
		return result
	}
	result.Passed = classification.Passed()
	result.Status = model.StageSuccess
	if !result.Passed {
		result.Status = model.StageWarning
	}
	result.Details["confidence"] = classification.Confidence
	result.Details["is_healthy"] = classification.IsHealthy
	if classification.Article != nil {
		result.Details["article"] = *classification.Article
	}
	return result
}

func stage2Result(resolution adminresolve.Resolution, d time.Duration) model.StageResult {
	return model.StageResult{
		Name:            "category_resolution",
		Number:          2,
		Passed:          resolution.Status == model.StageSuccess,
		Status:          resolution.Status,
		Details:         map[string]any{"reason": resolution.Reason},
		DurationSeconds: d.Seconds(),
	}
}
