package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/analysis"
	"github.com/prepworks/interviewd/pkg/api"
	"github.com/prepworks/interviewd/pkg/core"
	"github.com/prepworks/interviewd/pkg/gateway/config"
	"github.com/prepworks/interviewd/pkg/gateway/metrics"
)

// WebhookHandler receives voice-provider events. Function calls from the
// assistant are executed inline: analyze_response scores the answer and
// end_interview closes the session. Requests are authenticated by HMAC
// signature instead of API key; with no secret configured validation is
// skipped.
type WebhookHandler struct {
	Config   config.Config
	Store    store.Store
	Analyzer *analysis.Analyzer
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

type webhookEvent struct {
	Type         string `json:"type"`
	FunctionCall struct {
		Name       string          `json:"name"`
		Parameters json.RawMessage `json:"parameters"`
	} `json:"functionCall"`
	Transcript struct {
		Text    string `json:"text"`
		IsFinal bool   `json:"isFinal"`
	} `json:"transcript"`
	Call struct {
		ID       string  `json:"id"`
		Duration float64 `json:"duration"`
	} `json:"call"`
}

func (h WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, core.NewInvalidRequestError("failed to read request body"))
		return
	}

	if !h.validSignature(body, r.Header.Get("X-Signature")) {
		writeError(w, r, core.NewAuthenticationError("invalid webhook signature"))
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		writeError(w, r, core.NewInvalidRequestError("invalid JSON body: "+err.Error()))
		return
	}

	switch ev.Type {
	case "function-call":
		h.handleFunctionCall(w, r, &ev)
	case "transcript":
		if ev.Transcript.IsFinal && ev.Transcript.Text != "" {
			h.Logger.Debug("final transcript received", "text", ev.Transcript.Text)
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "processed", "transcript_processed": ev.Transcript.IsFinal})
	case "call-start":
		h.Logger.Info("call started", "call_id", ev.Call.ID)
		writeJSON(w, http.StatusOK, map[string]any{"status": "call_started", "call_id": ev.Call.ID})
	case "call-end":
		h.Logger.Info("call ended", "call_id", ev.Call.ID, "duration_sec", ev.Call.Duration)
		writeJSON(w, http.StatusOK, map[string]any{"status": "call_ended", "call_id": ev.Call.ID, "duration": ev.Call.Duration})
	default:
		h.Logger.Info("webhook event ignored", "type", ev.Type)
		writeJSON(w, http.StatusOK, map[string]any{"status": "received", "type": ev.Type})
	}
}

func (h WebhookHandler) handleFunctionCall(w http.ResponseWriter, r *http.Request, ev *webhookEvent) {
	switch ev.FunctionCall.Name {
	case "analyze_response":
		var params struct {
			SessionID      string `json:"session_id"`
			QuestionNumber int    `json:"question_number"`
			ResponseText   string `json:"response_text"`
		}
		if err := json.Unmarshal(ev.FunctionCall.Parameters, &params); err != nil {
			writeError(w, r, core.NewInvalidRequestError("invalid function parameters: "+err.Error()))
			return
		}
		scored, err := scoreAnswer(r.Context(), h.Store, h.Analyzer, &api.AnalyzeRequest{
			SessionID:      params.SessionID,
			QuestionNumber: params.QuestionNumber,
			AnswerText:     params.ResponseText,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.Metrics.ObserveAnswerScored(scored.Rating)
		h.Logger.Info("webhook answer scored",
			"session_id", params.SessionID,
			"question_number", params.QuestionNumber,
			"overall_score", scored.OverallScore)
		writeJSON(w, http.StatusOK, map[string]any{"result": map[string]any{
			"status":          "response_queued_for_analysis",
			"session_id":      params.SessionID,
			"question_number": params.QuestionNumber,
		}})

	case "end_interview":
		var params struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(ev.FunctionCall.Parameters, &params); err != nil {
			writeError(w, r, core.NewInvalidRequestError("invalid function parameters: "+err.Error()))
			return
		}
		report, err := endInterview(r.Context(), h.Store, params.SessionID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.Metrics.ObserveSessionCompleted(report.OverallRating)
		h.Logger.Info("webhook interview ended", "session_id", params.SessionID)
		writeJSON(w, http.StatusOK, map[string]any{"result": map[string]any{
			"status":     "interview_ending",
			"session_id": params.SessionID,
			"message":    "Interview completed successfully",
		}})

	default:
		writeJSON(w, http.StatusOK, map[string]any{"result": map[string]any{
			"status":   "function_processed",
			"function": ev.FunctionCall.Name,
		}})
	}
}

func (h WebhookHandler) validSignature(body []byte, signature string) bool {
	if h.Config.WebhookSecret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(h.Config.WebhookSecret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
