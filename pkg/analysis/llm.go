package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultRaterModel   = "gemini-2.0-flash"
	defaultRaterTimeout = 20 * time.Second
)

// LLMRater rewrites the canned feedback prose with model-generated coaching.
// The numeric scores are computed by the rule engine and passed to the model
// as context; they are never changed here. Any model failure falls back to
// the rule-based phrasing.
type LLMRater struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewLLMRater connects to the Gemini API. An empty model selects the default.
func NewLLMRater(ctx context.Context, apiKey, model string, logger *slog.Logger) (*LLMRater, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("analysis: rater API key is required")
	}
	if model == "" {
		model = defaultRaterModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: create genai client: %w", err)
	}
	return &LLMRater{client: client, model: model, timeout: defaultRaterTimeout, logger: logger}, nil
}

type raterOutput struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Rate asks the model for feedback phrased against the rule engine's scores.
func (r *LLMRater) Rate(result *Result, questionText, answerText string) ([]string, []string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	prompt := buildRaterPrompt(result, questionText, answerText)
	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		r.logger.Warn("llm rater failed, keeping rule-based feedback", "error", err)
		return nil, nil, err
	}

	var out raterOutput
	if err := json.Unmarshal([]byte(resp.Text()), &out); err != nil {
		r.logger.Warn("llm rater returned unparseable output", "error", err)
		return nil, nil, fmt.Errorf("analysis: decode rater output: %w", err)
	}
	if len(out.Strengths) == 0 && len(out.Improvements) == 0 {
		return nil, nil, fmt.Errorf("analysis: rater returned no feedback")
	}
	return out.Strengths, out.Improvements, nil
}

func buildRaterPrompt(result *Result, questionText, answerText string) string {
	var b strings.Builder
	b.WriteString("You are an interview coach. A candidate answered the question below. ")
	b.WriteString("Scoring already happened; do not re-score. Write feedback as JSON with two arrays, ")
	b.WriteString(`"strengths" and "improvements", each holding 1-3 short sentences.` + "\n\n")
	fmt.Fprintf(&b, "Question: %s\n\nAnswer: %s\n\n", questionText, answerText)
	fmt.Fprintf(&b, "Scores (0-10): content_quality=%.1f communication=%.1f confidence=%.1f technical_accuracy=%.1f overall=%.1f (%s)\n",
		result.Scores.ContentQuality, result.Scores.Communication, result.Scores.Confidence,
		result.Scores.TechnicalAccuracy, result.OverallScore, result.Rating)
	fmt.Fprintf(&b, "Observed: %d words, %d filler words, %d technical terms, examples=%t, structured=%t\n",
		result.Features.WordCount, result.Features.FillerWordCount, result.Features.TechnicalTermCount,
		result.Features.HasExamples, result.Features.HasOverallStructure)
	return b.String()
}
