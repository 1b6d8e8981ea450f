package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/emedosmotr/vvk-validator/internal/model"
)

// Renderer writes verdicts as JSON or Markdown reports.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the verdict as indented JSON.
func (r *Renderer) RenderJSON(verdict *model.Verdict, path string) error {
	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(verdict *model.Verdict, path string) error {
	var b strings.Builder

	b.WriteString("# Протокол проверки заключения\n\n")
	fmt.Fprintf(&b, "- **Статус**: %s\n", verdict.OverallStatus)
	fmt.Fprintf(&b, "- **Уровень риска**: %s\n", verdict.RiskLevel)
	fmt.Fprintf(&b, "- **Категория врача**: %s\n", verdict.DoctorCategory)
	if verdict.RecommendedCategory != "" {
		fmt.Fprintf(&b, "- **Рекомендуемая категория**: %s\n", verdict.RecommendedCategory)
	}
	if verdict.RecommendedArticle != nil {
		fmt.Fprintf(&b, "- **Статья**: %d", *verdict.RecommendedArticle)
		if verdict.RecommendedSubpoint != "" {
			fmt.Fprintf(&b, ", подпункт %s", verdict.RecommendedSubpoint)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "- **Соответствие категории**: %s\n", verdict.CategoryMatchStatus)
	fmt.Fprintf(&b, "- **Уверенность**: %.2f\n", verdict.Confidence)
	fmt.Fprintf(&b, "- **Требует проверки**: %v\n", verdict.ShouldReview)

	if len(verdict.Stage0Findings) > 0 {
		b.WriteString("\n## Противоречия\n\n")
		for i, f := range verdict.Stage0Findings {
			fmt.Fprintf(&b, "### %d. %s (%s)\n\n", i+1, f.Type, f.Severity)
			fmt.Fprintf(&b, "%s\n\n", f.Description)
			if f.Recommendation != "" {
				fmt.Fprintf(&b, "*Рекомендация*: %s\n\n", f.Recommendation)
			}
		}
	}

	if len(verdict.ReviewReasons) > 0 {
		b.WriteString("\n## Причины для проверки\n\n")
		for _, reason := range verdict.ReviewReasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}

	if verdict.Reasoning != "" {
		b.WriteString("\n## Обоснование классификации\n\n")
		b.WriteString(verdict.Reasoning)
		b.WriteString("\n")
	}

	b.WriteString("\n## Этапы\n\n")
	b.WriteString("| Этап | Статус | Пройден | Время, с |\n")
	b.WriteString("|------|--------|---------|----------|\n")
	for _, s := range []model.StageResult{verdict.Stage0, verdict.Stage1, verdict.Stage2} {
		fmt.Fprintf(&b, "| %d %s | %s | %v | %.2f |\n",
			s.Number, s.Name, s.Status, s.Passed, s.DurationSeconds)
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "\n---\nСформировано vvk-validator, модель %s, %s\n",
			verdict.Metadata.Model, time.Now().UTC().Format(time.RFC3339))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a short verdict summary to stdout.
func (r *Renderer) RenderSummary(verdict *model.Verdict) {
	fmt.Printf("\nСтатус: %s | Риск: %s | Соответствие: %s\n",
		verdict.OverallStatus, verdict.RiskLevel, verdict.CategoryMatchStatus)
	if verdict.RecommendedCategory != "" {
		fmt.Printf("Категория врача: %s, рекомендуемая: %s\n",
			verdict.DoctorCategory, verdict.RecommendedCategory)
	}
	if len(verdict.Stage0Findings) > 0 {
		fmt.Printf("Противоречий: %d\n", len(verdict.Stage0Findings))
	}
	if verdict.ShouldReview {
		fmt.Println("⚠ Заключение требует проверки председателем комиссии")
		for _, reason := range verdict.ReviewReasons {
			fmt.Printf("  - %s\n", reason)
		}
	} else {
		fmt.Println("✓ Заключение согласовано")
	}
}

// RenderReport writes the verdict to the requested outputs and prints the
// stdout summary.
func (p *Pipeline) RenderReport(verdict *model.Verdict, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(verdict, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(verdict, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}
	p.renderer.RenderSummary(verdict)
	return nil
}
