package worker

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/pipeline"
)

// MockValidator implements Validator
type MockValidator struct {
	ShouldError bool
}

func (m *MockValidator) Validate(ctx context.Context, record *model.ExaminationRecord, opts pipeline.Options) (*model.Verdict, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.ShouldError {
		return nil, errors.New("validation error")
	}
	return &model.Verdict{
		OverallStatus:  model.StatusValid,
		RiskLevel:      model.SeverityLow,
		DoctorCategory: record.DoctorCategory,
	}, nil
}

func testRecords(n int) []model.ExaminationRecord {
	records := make([]model.ExaminationRecord, n)
	for i := range records {
		records[i] = model.ExaminationRecord{
			DiagnosisText:  "Здоров",
			DoctorCategory: "А",
			Specialty:      "терапевт",
		}
	}
	return records
}

func TestBatchProcessor_ProcessRecords(t *testing.T) {
	validator := &MockValidator{}
	processor := NewBatchProcessor(validator, 2)

	results := processor.ProcessRecords(context.Background(), testRecords(3), pipeline.Options{})

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	successCount := 0
	seen := make(map[int]bool)
	for _, res := range results {
		if res.Error == nil {
			successCount++
			if res.Verdict == nil {
				t.Error("expected verdict for successful validation")
			}
		} else {
			t.Errorf("unexpected error for record %d: %v", res.Index, res.Error)
		}
		seen[res.Index] = true
	}

	if successCount != 3 {
		t.Errorf("expected 3 successes, got %d", successCount)
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Errorf("missing result for record %d", i)
		}
	}
}

func TestBatchProcessor_ProcessRecords_Error(t *testing.T) {
	validator := &MockValidator{ShouldError: true}
	processor := NewBatchProcessor(validator, 2)

	results := processor.ProcessRecords(context.Background(), testRecords(1), pipeline.Options{})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Verdict != nil {
		t.Error("expected nil verdict on error")
	}
}

func TestBatchProcessor_ProcessRecords_Empty(t *testing.T) {
	validator := &MockValidator{}
	processor := NewBatchProcessor(validator, 2)

	results := processor.ProcessRecords(context.Background(), nil, pipeline.Options{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadRecordsFromFile(t *testing.T) {
	content := `records:
  - diagnosis_text: "Здоров"
    doctor_category: "А"
    specialty: "терапевт"
  - diagnosis_text: "Гипертоническая болезнь I стадии"
    doctor_category: "В"
    specialty: "терапевт"
    conscription_graph: 1
`

	tmpfile, err := os.CreateTemp("", "records*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := ReadRecordsFromFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ReadRecordsFromFile failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].DiagnosisText != "Здоров" {
		t.Errorf("record 0 diagnosis = %q", records[0].DiagnosisText)
	}
	if records[1].DoctorCategory != "В" {
		t.Errorf("record 1 category = %q", records[1].DoctorCategory)
	}
}

func TestReadRecordsFromFile_NonExistent(t *testing.T) {
	_, err := ReadRecordsFromFile("non_existent_file.yaml")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestReadRecordsFromFile_Empty(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "empty_records*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadRecordsFromFile(tmpfile.Name()); err == nil {
		t.Error("expected error for empty records file, got nil")
	}
}

func TestValidationResult_GetError(t *testing.T) {
	r1 := &ValidationResult{Index: 0, Error: nil}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("validation failed")
	r2 := &ValidationResult{Index: 1, Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	content := `records:
  - diagnosis_text: "Здоров"
    doctor_category: "А"
  - diagnosis_text: "Здоров"
    doctor_category: "А"
  - diagnosis_text: "Здоров"
    doctor_category: "А"
`

	tmpfile, err := os.CreateTemp("", "batch_records*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	validator := &MockValidator{}
	processor := NewBatchProcessor(validator, 2)

	results, err := processor.ProcessFile(context.Background(), tmpfile.Name(), pipeline.Options{})
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	validator := &MockValidator{}
	processor := NewBatchProcessor(validator, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.yaml", pipeline.Options{})
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_WithLimiter(t *testing.T) {
	validator := &MockValidator{}
	limiter := NewLimiter(1000, 10)
	processor := NewBatchProcessor(validator, 3).WithLimiter(limiter, "openai")

	results := processor.ProcessRecords(context.Background(), testRecords(5), pipeline.Options{})

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for _, result := range results {
		if result.Error != nil {
			t.Errorf("record %d: unexpected error: %v", result.Index, result.Error)
		}
	}
}

func TestBatchProcessor_WithLimiter_Cancelled(t *testing.T) {
	validator := &MockValidator{}
	limiter := NewLimiter(1000, 10)
	processor := NewBatchProcessor(validator, 2).WithLimiter(limiter, "openai")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := processor.ProcessRecords(ctx, testRecords(3), pipeline.Options{})

	for _, result := range results {
		if result.Error == nil {
			t.Errorf("record %d: expected error from cancelled context", result.Index)
		}
	}
}
