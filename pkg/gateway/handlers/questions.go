package handlers

import (
	"log/slog"
	"net/http"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/api"
	"github.com/prepworks/interviewd/pkg/core"
)

// QuestionsHandler lists the question bank for an interview type.
type QuestionsHandler struct {
	Store  store.Store
	Logger *slog.Logger
}

func (h QuestionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	interviewType := r.PathValue("interviewType")
	if interviewType == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("interview type is required", "interviewType"))
		return
	}

	rows, err := h.Store.ListQuestions(r.Context(), store.QuestionFilter{
		InterviewType: interviewType,
		Difficulty:    r.URL.Query().Get("difficulty"),
		Company:       r.URL.Query().Get("company"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]api.Question, len(rows))
	for i, q := range rows {
		out[i] = api.Question{
			ID:               q.ID,
			Text:             q.Text,
			Category:         q.Category,
			Difficulty:       q.Difficulty,
			ExpectedKeywords: q.ExpectedKeywords,
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Questions []api.Question `json:"questions"`
	}{Questions: out})
}

// SessionHandler returns the summary view of one session.
type SessionHandler struct {
	Store  store.Store
	Logger *slog.Logger
}

func (h SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("session ID is required", "sessionID"))
		return
	}

	sess, err := h.Store.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.Store.GetSessionQuestions(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	responses, err := h.Store.ListResponses(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.SessionSummary{
		SessionID:       sess.ID,
		InterviewType:   sess.InterviewType,
		Difficulty:      sess.Difficulty,
		Company:         sess.Company,
		Status:          sess.Status,
		QuestionCount:   len(plan),
		ResponsesScored: len(responses),
		CreatedAt:       sess.StartedAt,
	})
}
