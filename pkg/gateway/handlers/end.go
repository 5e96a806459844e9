package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/analysis"
	"github.com/prepworks/interviewd/pkg/api"
	"github.com/prepworks/interviewd/pkg/core"
	"github.com/prepworks/interviewd/pkg/gateway/config"
	"github.com/prepworks/interviewd/pkg/gateway/metrics"
)

// EndInterviewHandler closes a session and returns the aggregated feedback.
// Ending an already-completed session recomputes and returns the same report.
type EndInterviewHandler struct {
	Config  config.Config
	Store   store.Store
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (h EndInterviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := decodeJSON(w, r, h.Config.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := endInterview(r.Context(), h.Store, req.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Metrics.ObserveSessionCompleted(resp.OverallRating)
	h.Logger.Info("interview ended",
		"session_id", req.SessionID,
		"overall_score", resp.OverallScore,
		"overall_rating", resp.OverallRating,
		"responses", resp.DetailedAnalysis.TotalResponses)
	writeJSON(w, http.StatusOK, resp)
}

func endInterview(ctx context.Context, st store.Store, sessionID string) (*api.EndInterviewResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, core.NewInvalidRequestErrorWithParam("sessionId is required", "sessionId")
	}
	if _, err := st.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := st.ListResponses(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	results := make([]*analysis.Result, len(rows))
	for i, row := range rows {
		results[i] = &analysis.Result{
			OverallScore: row.OverallScore,
			Rating:       row.Rating,
			Scores: analysis.ComponentScores{
				ContentQuality:    row.ContentQuality,
				Communication:     row.Communication,
				Confidence:        row.Confidence,
				TechnicalAccuracy: row.TechnicalAccuracy,
			},
			Features: analysis.Features{
				WordCount:          row.WordCount,
				FillerWordCount:    row.FillerWordCount,
				TechnicalTermCount: row.TechnicalTermCount,
				AvgWordLength:      row.AvgWordLength,
			},
		}
	}
	feedback := analysis.AggregateSession(results)

	if err := st.CompleteSession(ctx, sessionID, feedback.OverallScore, feedback.OverallRating); err != nil {
		return nil, err
	}

	breakdown := make([]api.QuestionBreakdown, len(rows))
	for i, row := range rows {
		text := ""
		if q, err := st.GetQuestion(ctx, row.QuestionID); err == nil {
			text = q.Text
		}
		breakdown[i] = api.QuestionBreakdown{
			QuestionNumber: row.QuestionNumber,
			QuestionText:   text,
			Score:          row.OverallScore,
			Rating:         row.Rating,
		}
	}

	return &api.EndInterviewResponse{
		SessionID:     sessionID,
		OverallScore:  feedback.OverallScore,
		OverallRating: feedback.OverallRating,
		Strengths:     feedback.Strengths,
		Improvements:  feedback.Improvements,
		DetailedAnalysis: api.DetailedAnalysis{
			TotalResponses:     feedback.TotalResponses,
			AverageWordCount:   feedback.AverageWordCount,
			AverageFillerWords: feedback.AverageFillerWords,
			ComponentAverages: api.SubScores{
				ContentQuality:    feedback.AverageScores.ContentQuality,
				Communication:     feedback.AverageScores.Communication,
				Confidence:        feedback.AverageScores.Confidence,
				TechnicalAccuracy: feedback.AverageScores.TechnicalAccuracy,
			},
		},
		QuestionBreakdown: breakdown,
	}, nil
}
