package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/emedosmotr/vvk-validator/internal/adminresolve"
	"github.com/emedosmotr/vvk-validator/internal/clinical"
	"github.com/emedosmotr/vvk-validator/internal/contradiction"
	"github.com/emedosmotr/vvk-validator/internal/llm"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
)

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, string, int, float64, *int) ([]model.CriterionMatch, error) {
	return nil, nil
}

type stubProvider struct {
	llm.Provider
	response string
	err      error
}

func (s *stubProvider) Complete(context.Context, llm.CompleteRequest) (*llm.CompleteResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompleteResponse{Content: s.response, TokensUsed: 80}, nil
}

type captureSink struct {
	saved int
	err   error
}

func (c *captureSink) Save(_ context.Context, _ *model.ExaminationRecord, _ *model.Verdict) error {
	if c.err != nil {
		return c.err
	}
	c.saved++
	return nil
}

func testPipeline(provider llm.Provider, sink ResultSink) *Pipeline {
	store := reference.NewStore([]model.CriterionEntry{
		{
			Article:     43,
			Subpoint:    "в",
			Description: "Гипертоническая болезнь I стадии",
			Categories:  map[int]string{1: "В", 2: "В", 3: "Б", 4: "Б"},
		},
	})
	cfg := model.DefaultConfig()
	return NewWithParts(
		contradiction.NewChecker(stubSearcher{}, false),
		clinical.NewClassifier(provider, stubSearcher{}, false),
		adminresolve.NewResolver(store),
		nil,
		cfg,
		sink,
	)
}

func healthyResponse() string {
	data, _ := json.Marshal(map[string]any{
		"article": nil, "subpoint": nil, "confidence": 0.95,
		"reasoning": "Патологии не выявлено", "is_healthy": true,
	})
	return string(data)
}

func TestValidateHealthyRecord(t *testing.T) {
	p := testPipeline(&stubProvider{response: healthyResponse()}, nil)
	record := &model.ExaminationRecord{
		DiagnosisText:  "Здоров, патологии не выявлены",
		DoctorCategory: "А",
		Specialty:      "терапевт",
	}

	verdict, err := p.Validate(context.Background(), record, Options{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if verdict.OverallStatus != model.StatusValid {
		t.Errorf("status = %s, want VALID (%v)", verdict.OverallStatus, verdict.ReviewReasons)
	}
	if verdict.RecommendedCategory != "А" {
		t.Errorf("recommended category = %q, want А", verdict.RecommendedCategory)
	}
	if verdict.ShouldReview {
		t.Errorf("healthy record must not need review: %v", verdict.ReviewReasons)
	}
	if !verdict.Stage0.Passed || !verdict.Stage1.Passed || !verdict.Stage2.Passed {
		t.Errorf("stage passed flags = %v/%v/%v, want all true",
			verdict.Stage0.Passed, verdict.Stage1.Passed, verdict.Stage2.Passed)
	}
	if verdict.Metadata.TokensUsed != 80 {
		t.Errorf("tokens = %d, want 80", verdict.Metadata.TokensUsed)
	}
}

func TestValidateHealthyWithWrongCategory(t *testing.T) {
	p := testPipeline(&stubProvider{response: healthyResponse()}, nil)
	record := &model.ExaminationRecord{
		DiagnosisText:  "Здоров, патологии не выявлены",
		DoctorCategory: "Б",
	}

	verdict, err := p.Validate(context.Background(), record, Options{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(verdict.Stage0Findings) == 0 || verdict.Stage0Findings[0].Type != model.TypeLogicalError {
		t.Fatalf("expected a logical error finding, got %+v", verdict.Stage0Findings)
	}
	if verdict.OverallStatus == model.StatusValid {
		t.Error("status must not be VALID")
	}
	if !verdict.ShouldReview {
		t.Error("shouldReview must be set")
	}
}

func TestValidateClassifierFailureDegrades(t *testing.T) {
	p := testPipeline(&stubProvider{err: errors.New("provider down")}, nil)
	record := &model.ExaminationRecord{
		DiagnosisText:  "Гипертоническая болезнь I стадии",
		DoctorCategory: "В",
	}

	verdict, err := p.Validate(context.Background(), record, Options{})
	if err != nil {
		t.Fatalf("Validate must not fail on provider errors: %v", err)
	}
	if verdict.Stage1.Status != model.StageError {
		t.Errorf("stage 1 status = %s, want ERROR", verdict.Stage1.Status)
	}
	if verdict.Stage2.Status != model.StageSkipped {
		t.Errorf("stage 2 status = %s, want SKIPPED", verdict.Stage2.Status)
	}
	if verdict.CategoryMatchStatus != model.MatchStatusReviewRequired {
		t.Errorf("match = %s, want REVIEW_REQUIRED", verdict.CategoryMatchStatus)
	}
	if !verdict.ShouldReview {
		t.Error("degraded verdict must need review")
	}
}

func TestValidateSavesResult(t *testing.T) {
	sink := &captureSink{}
	p := testPipeline(&stubProvider{response: healthyResponse()}, sink)
	record := &model.ExaminationRecord{DiagnosisText: "Здоров", DoctorCategory: "А"}

	if _, err := p.Validate(context.Background(), record, Options{SaveResult: true}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sink.saved != 1 {
		t.Errorf("sink saves = %d, want 1", sink.saved)
	}

	if _, err := p.Validate(context.Background(), record, Options{}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sink.saved != 1 {
		t.Error("sink must not be called without SaveResult")
	}
}

func TestValidateSinkFailureSurfaces(t *testing.T) {
	sink := &captureSink{err: errors.New("disk full")}
	p := testPipeline(&stubProvider{response: healthyResponse()}, sink)
	record := &model.ExaminationRecord{DiagnosisText: "Здоров", DoctorCategory: "А"}

	verdict, err := p.Validate(context.Background(), record, Options{SaveResult: true})
	if err == nil {
		t.Fatal("expected sink error")
	}
	if verdict == nil {
		t.Fatal("verdict must still be returned alongside the sink error")
	}
}

func TestValidateIdempotent(t *testing.T) {
	p := testPipeline(&stubProvider{response: healthyResponse()}, nil)
	record := &model.ExaminationRecord{
		DiagnosisText:  "Здоров, патологии не выявлены",
		DoctorCategory: "Б",
	}

	first, err := p.Validate(context.Background(), record, Options{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	second, err := p.Validate(context.Background(), record, Options{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// Durations vary run to run; everything else must be identical.
	zero := model.VerdictMetadata{}
	first.Metadata, second.Metadata = zero, zero
	first.Stage0.DurationSeconds, second.Stage0.DurationSeconds = 0, 0
	first.Stage1.DurationSeconds, second.Stage1.DurationSeconds = 0, 0
	first.Stage2.DurationSeconds, second.Stage2.DurationSeconds = 0, 0
	if !reflect.DeepEqual(first, second) {
		t.Errorf("verdicts differ:\n%+v\n%+v", first, second)
	}
}

func TestValidateNilRecord(t *testing.T) {
	p := testPipeline(&stubProvider{response: healthyResponse()}, nil)
	if _, err := p.Validate(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil record")
	}
}

func TestCheckCompleteness(t *testing.T) {
	full := make([]model.ExaminationRecord, 0, len(RequiredSpecialties))
	for _, s := range RequiredSpecialties {
		full = append(full, model.ExaminationRecord{
			Specialty:      s,
			DiagnosisText:  "Здоров",
			DoctorCategory: "А",
		})
	}

	report := CheckCompleteness(full)
	if !report.Complete {
		t.Fatalf("full roster reported incomplete: %+v", report)
	}

	report = CheckCompleteness(full[:len(full)-1])
	if report.Complete {
		t.Fatal("missing specialist must fail completeness")
	}
	if len(report.MissingSpecialties) != 1 {
		t.Errorf("missing = %v, want one entry", report.MissingSpecialties)
	}

	partial := append([]model.ExaminationRecord{}, full...)
	partial[0].DiagnosisText = "  "
	report = CheckCompleteness(partial)
	if report.Complete || len(report.EmptyDiagnoses) != 1 {
		t.Errorf("empty diagnosis not detected: %+v", report)
	}
}
