package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/analysis"
	"github.com/prepworks/interviewd/pkg/api"
	"github.com/prepworks/interviewd/pkg/core"
	"github.com/prepworks/interviewd/pkg/gateway/config"
	"github.com/prepworks/interviewd/pkg/gateway/metrics"
)

// AnalyzeHandler scores one finalized answer and persists the result.
type AnalyzeHandler struct {
	Config   config.Config
	Store    store.Store
	Analyzer *analysis.Analyzer
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

func (h AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if err := decodeJSON(w, r, h.Config.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := scoreAnswer(r.Context(), h.Store, h.Analyzer, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Metrics.ObserveAnswerScored(resp.Rating)
	h.Logger.Info("answer scored",
		"session_id", req.SessionID,
		"question_number", req.QuestionNumber,
		"overall_score", resp.OverallScore,
		"rating", resp.Rating)
	writeJSON(w, http.StatusOK, resp)
}

// scoreAnswer runs the analyzer on one answer and records the response and
// its feedback notes. It is shared by the analyze endpoint and the provider
// webhook.
func scoreAnswer(ctx context.Context, st store.Store, analyzer *analysis.Analyzer, req *api.AnalyzeRequest) (*api.AnalyzeResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, core.NewInvalidRequestErrorWithParam("sessionId is required", "sessionId")
	}
	if strings.TrimSpace(req.AnswerText) == "" {
		return nil, core.NewInvalidRequestErrorWithParam("answerText is required", "answerText")
	}
	if req.QuestionNumber < 1 {
		return nil, core.NewInvalidRequestErrorWithParam("questionNumber must be >= 1", "questionNumber")
	}

	sess, err := st.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	questionText := ""
	questionID := req.QuestionID
	plan, err := st.GetSessionQuestions(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if questionID == 0 && req.QuestionNumber <= len(plan) {
		questionID = plan[req.QuestionNumber-1].ID
	}
	for _, q := range plan {
		if q.ID == questionID {
			questionText = q.Text
			break
		}
	}
	if questionText == "" && questionID != 0 {
		if q, err := st.GetQuestion(ctx, questionID); err == nil {
			questionText = q.Text
		}
	}
	if questionText == "" {
		return nil, core.NewNotFoundError("question not found")
	}

	result := analyzer.ScoreAnswer(req.AnswerText, questionText, sess.InterviewType)

	rec := &store.Response{
		SessionID:      req.SessionID,
		QuestionID:     questionID,
		QuestionNumber: req.QuestionNumber,
		Text:           req.AnswerText,
		CreatedAt:      time.Now().UTC(),

		WordCount:          result.Features.WordCount,
		FillerWordCount:    result.Features.FillerWordCount,
		TechnicalTermCount: result.Features.TechnicalTermCount,
		AvgWordLength:      result.Features.AvgWordLength,

		ContentQuality:    result.Scores.ContentQuality,
		Communication:     result.Scores.Communication,
		Confidence:        result.Scores.Confidence,
		TechnicalAccuracy: result.Scores.TechnicalAccuracy,
		OverallScore:      result.OverallScore,
		Rating:            result.Rating,
	}
	if err := st.InsertResponse(ctx, rec); err != nil {
		return nil, err
	}
	for _, s := range result.Strengths {
		fb := &store.Feedback{SessionID: req.SessionID, ResponseID: rec.ID, Type: "strength", Text: s, CreatedAt: rec.CreatedAt}
		if err := st.InsertFeedback(ctx, fb); err != nil {
			return nil, err
		}
	}
	for _, s := range result.Improvements {
		fb := &store.Feedback{SessionID: req.SessionID, ResponseID: rec.ID, Type: "improvement", Text: s, CreatedAt: rec.CreatedAt}
		if err := st.InsertFeedback(ctx, fb); err != nil {
			return nil, err
		}
	}

	return &api.AnalyzeResponse{
		ResponseID:   rec.ID,
		OverallScore: result.OverallScore,
		Rating:       result.Rating,
		SubScores: api.SubScores{
			ContentQuality:    result.Scores.ContentQuality,
			Communication:     result.Scores.Communication,
			Confidence:        result.Scores.Confidence,
			TechnicalAccuracy: result.Scores.TechnicalAccuracy,
		},
		Strengths:    result.Strengths,
		Improvements: result.Improvements,
		Metrics: api.Metrics{
			WordCount:          result.Features.WordCount,
			SentenceCount:      result.Features.SentenceCount,
			FillerWordCount:    result.Features.FillerWordCount,
			FillerRatio:        result.Features.FillerWordRatio,
			TechnicalTermCount: result.Features.TechnicalTermCount,
			RelevanceScore:     result.Features.RelevanceScore,
		},
	}, nil
}
