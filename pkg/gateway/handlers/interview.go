package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/api"
	"github.com/prepworks/interviewd/pkg/assistant"
	"github.com/prepworks/interviewd/pkg/core"
	"github.com/prepworks/interviewd/pkg/gateway/config"
	"github.com/prepworks/interviewd/pkg/gateway/metrics"
)

// StartInterviewHandler creates a session, plans its questions, and returns
// the assistant configuration for the voice provider.
type StartInterviewHandler struct {
	Config     config.Config
	Store      store.Store
	Assistants *assistant.Builder
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

func (h StartInterviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.StartInterviewRequest
	if err := decodeJSON(w, r, h.Config.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.InterviewType = strings.TrimSpace(req.InterviewType)
	if req.InterviewType == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("interviewType is required", "interviewType"))
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = h.Config.DefaultDurationMinutes
	}

	questions, err := planQuestions(r.Context(), h.Store, h.Config, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess := &store.Session{
		ID:              uuid.NewString(),
		InterviewType:   req.InterviewType,
		Difficulty:      req.Difficulty,
		Company:         req.Company,
		DurationMinutes: req.DurationMinutes,
		Status:          store.SessionInProgress,
		StartedAt:       time.Now().UTC(),
	}
	if err := h.Store.CreateSession(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}

	ids := make([]int64, len(questions))
	texts := make([]string, len(questions))
	out := make([]api.Question, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		texts[i] = q.Text
		out[i] = api.Question{
			ID:               q.ID,
			Text:             q.Text,
			Category:         q.Category,
			Difficulty:       q.Difficulty,
			ExpectedKeywords: q.ExpectedKeywords,
		}
	}
	if err := h.Store.SetSessionQuestions(r.Context(), sess.ID, ids); err != nil {
		writeError(w, r, err)
		return
	}

	h.Metrics.ObserveSessionStarted(sess.InterviewType)
	h.Logger.Info("interview started",
		"session_id", sess.ID,
		"interview_type", sess.InterviewType,
		"difficulty", sess.Difficulty,
		"questions", len(questions))

	writeJSON(w, http.StatusOK, api.StartInterviewResponse{
		SessionID: sess.ID,
		Questions: out,
		Assistant: *h.Assistants.Build(sess.ID, sess.InterviewType, texts),
	})
}

// planQuestions sizes the plan from the session duration and fills it with
// company-specific questions first, then generic ones.
func planQuestions(ctx context.Context, st store.Store, cfg config.Config, req api.StartInterviewRequest) ([]store.Question, error) {
	perQuestion := 7
	if strings.HasPrefix(req.InterviewType, "technical") {
		perQuestion = 9
	}
	n := req.DurationMinutes / perQuestion
	if n < cfg.MinQuestions {
		n = cfg.MinQuestions
	}
	if n > cfg.MaxQuestions {
		n = cfg.MaxQuestions
	}

	all, err := st.ListQuestions(ctx, store.QuestionFilter{
		InterviewType: req.InterviewType,
		Difficulty:    req.Difficulty,
	})
	if err != nil {
		return nil, err
	}

	var plan []store.Question
	if req.Company != "" {
		company := strings.ToLower(req.Company)
		for _, q := range all {
			if strings.ToLower(q.Company) == company {
				plan = append(plan, q)
				if len(plan) == n {
					return plan, nil
				}
			}
		}
	}
	for _, q := range all {
		if q.Company != "" {
			continue
		}
		plan = append(plan, q)
		if len(plan) == n {
			break
		}
	}
	if len(plan) == 0 {
		return nil, core.NewInvalidRequestErrorWithParam(
			"no questions available for interview type "+req.InterviewType, "interviewType")
	}
	return plan, nil
}
