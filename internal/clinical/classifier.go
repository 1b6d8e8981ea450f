// Package clinical maps free-text diagnoses onto statute articles and
// subpoints using an LLM grounded in retrieved criteria.
package clinical

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/emedosmotr/vvk-validator/internal/llm"
	"github.com/emedosmotr/vvk-validator/internal/model"
)

const (
	// contextTopK bounds how many retrieved criteria are shown to the model.
	contextTopK = 3

	// PassConfidence is the minimum confidence for the stage to pass on a
	// non-healthy classification.
	PassConfidence = 0.5
)

const systemPrompt = `Ты военно-врачебный эксперт. Твоя задача: по тексту диагноза определить статью и подпункт расписания болезней (Постановление Правительства РФ N 565).

Отвечай строго в формате JSON:
{
  "article": <номер статьи или null>,
  "subpoint": "<подпункт или null>",
  "confidence": <число от 0 до 1>,
  "reasoning": "<краткое клиническое обоснование>",
  "is_healthy": <true, если диагноз означает отсутствие заболеваний>
}

Правила:
- Если призывник здоров, ставь is_healthy=true, article=null.
- Используй предложенные критерии как подсказку, но опирайся на клиническую картину.
- Если уверенности нет, снижай confidence, не выдумывай статью.`

// Classification is the parsed model output.
type Classification struct {
	Article    *int    `json:"article"`
	Subpoint   *string `json:"subpoint"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	IsHealthy  bool    `json:"is_healthy"`

	// TokensUsed is filled from the completion response, not the model JSON.
	TokensUsed int `json:"-"`
}

// Searcher retrieves candidate criteria for the prompt context.
type Searcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64, articleFilter *int) ([]model.CriterionMatch, error)
}

// Classifier runs the article/subpoint classification.
type Classifier struct {
	provider llm.Provider
	searcher Searcher
	verbose  bool
}

// NewClassifier builds a classifier over the given provider and retriever.
// The retriever may be nil; classification then runs without criteria
// context.
func NewClassifier(provider llm.Provider, searcher Searcher, verbose bool) *Classifier {
	return &Classifier{provider: provider, searcher: searcher, verbose: verbose}
}

// Classify determines the statute article for the record. The conclusion
// text takes precedence over the diagnosis when both are present. An article
// hint on the record scopes retrieval to that article.
func (c *Classifier) Classify(ctx context.Context, record *model.ExaminationRecord) (*Classification, error) {
	if c.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	text := strings.TrimSpace(record.ConclusionText)
	if text == "" {
		text = strings.TrimSpace(record.DiagnosisText)
	}
	if text == "" {
		return nil, fmt.Errorf("record has no diagnosis or conclusion text")
	}

	criteria := c.retrieveContext(ctx, text, record.ArticleHint)

	resp, err := c.provider.Complete(ctx, llm.CompleteRequest{
		SystemPrompt: systemPrompt,
		UserText:     buildUserPrompt(record, text, criteria),
		JSONMode:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	result, err := parseClassification(resp.Content)
	if err != nil {
		return nil, err
	}
	result.TokensUsed = resp.TokensUsed
	if c.verbose {
		fmt.Fprintf(os.Stderr, "classified: article=%v confidence=%.2f healthy=%v\n",
			formatArticle(result.Article), result.Confidence, result.IsHealthy)
	}
	return result, nil
}

// Passed reports whether a classification clears the stage.
func (c *Classification) Passed() bool {
	return c.Confidence >= PassConfidence || c.IsHealthy
}

func (c *Classifier) retrieveContext(ctx context.Context, text string, articleHint *int) []model.CriterionMatch {
	if c.searcher == nil {
		return nil
	}
	matches, err := c.searcher.Search(ctx, text, contextTopK, -1, articleHint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: criteria retrieval failed: %v\n", err)
		return nil
	}
	return matches
}

func buildUserPrompt(record *model.ExaminationRecord, text string, criteria []model.CriterionMatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Диагноз: %s\n", text)
	if len(record.ICD10Codes) > 0 {
		fmt.Fprintf(&b, "Коды МКБ-10: %s\n", strings.Join(record.ICD10Codes, ", "))
	}
	if record.Specialty != "" {
		fmt.Fprintf(&b, "Специальность врача: %s\n", record.Specialty)
	}
	fmt.Fprintf(&b, "Графа: %d\n", record.Graph())

	if len(criteria) > 0 {
		b.WriteString("\nНаиболее близкие критерии расписания болезней:\n")
		for _, m := range criteria {
			fmt.Fprintf(&b, "- Статья %d, подпункт %s (сходство %.2f): %s\n",
				m.Article, m.Subpoint, m.Similarity, m.Description)
		}
	}
	return b.String()
}

// parseClassification decodes the model output, tolerating a fenced code
// block around the JSON.
func parseClassification(content string) (*Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result Classification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("invalid classification response: %w", err)
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return &result, nil
}

func formatArticle(article *int) string {
	if article == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *article)
}
