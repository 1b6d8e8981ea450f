package worker

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/pipeline"
)

// Validator runs the full pipeline over one record.
type Validator interface {
	Validate(ctx context.Context, record *model.ExaminationRecord, opts pipeline.Options) (*model.Verdict, error)
}

// ValidationResult is the outcome of one record's validation.
type ValidationResult struct {
	Index   int
	Record  *model.ExaminationRecord
	Verdict *model.Verdict
	Error   error
}

// GetError returns the job error, if any.
func (r *ValidationResult) GetError() error {
	return r.Error
}

// BatchProcessor validates many records concurrently.
type BatchProcessor struct {
	validator   Validator
	concurrency int
	limiter     *Limiter
	provider    string
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(validator Validator, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
	}
}

// WithLimiter throttles record starts through a shared API limiter.
func (b *BatchProcessor) WithLimiter(limiter *Limiter, provider string) *BatchProcessor {
	b.limiter = limiter
	b.provider = provider
	return b
}

// ProcessRecords validates the records over a bounded worker fan-out.
// Results are indexed by input position; records never dispatched because
// the context was cancelled carry the context error.
func (b *BatchProcessor) ProcessRecords(ctx context.Context, records []model.ExaminationRecord, opts pipeline.Options) []*ValidationResult {
	if len(records) == 0 {
		return []*ValidationResult{}
	}

	workers := b.concurrency
	if workers > len(records) {
		workers = len(records)
	}

	jobs := make(chan int)
	results := make([]*ValidationResult, len(records))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.validateOne(ctx, i, &records[i], opts)
			}
		}()
	}

	for i := range records {
		select {
		case <-ctx.Done():
		case jobs <- i:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if results[i] == nil {
			results[i] = &ValidationResult{Index: i, Record: &records[i], Error: ctx.Err()}
		}
	}
	return results
}

func (b *BatchProcessor) validateOne(ctx context.Context, index int, record *model.ExaminationRecord, opts pipeline.Options) *ValidationResult {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, b.provider); err != nil {
			return &ValidationResult{Index: index, Record: record, Error: err}
		}
	}

	verdict, err := b.validator.Validate(ctx, record, opts)
	return &ValidationResult{
		Index:   index,
		Record:  record,
		Verdict: verdict,
		Error:   err,
	}
}

// ProcessFile reads records from a YAML file and validates them
// concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, opts pipeline.Options) ([]*ValidationResult, error) {
	records, err := ReadRecordsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return b.ProcessRecords(ctx, records, opts), nil
}

type recordsFile struct {
	Records []model.ExaminationRecord `yaml:"records"`
}

// ReadRecordsFromFile loads examination records from a YAML file with a
// top-level "records" list.
func ReadRecordsFromFile(filePath string) ([]model.ExaminationRecord, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var file recordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse records file: %w", err)
	}
	if len(file.Records) == 0 {
		return nil, fmt.Errorf("no records in %s", filePath)
	}
	return file.Records, nil
}
