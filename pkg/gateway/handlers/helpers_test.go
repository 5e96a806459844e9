package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/analysis"
	"github.com/prepworks/interviewd/pkg/assistant"
	"github.com/prepworks/interviewd/pkg/core"
	"github.com/prepworks/interviewd/pkg/gateway/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		MaxBodyBytes:           1 << 20,
		MaxResumeBytes:         10 << 20,
		DefaultDurationMinutes: 30,
		MinQuestions:           3,
		MaxQuestions:           10,
		PublicBaseURL:          "http://localhost:8720",
	}
}

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	err := m.SeedQuestions(context.Background(), []store.Question{
		{Text: "What is a goroutine?", InterviewType: "technical_software", Difficulty: "medium", Category: "concurrency"},
		{Text: "Explain database indexes.", InterviewType: "technical_software", Difficulty: "medium", Category: "databases"},
		{Text: "How does garbage collection work?", InterviewType: "technical_software", Difficulty: "medium", Category: "runtime"},
		{Text: "Design a URL shortener.", InterviewType: "technical_software", Difficulty: "medium", Category: "design"},
		{Text: "Describe how Google indexes the web.", InterviewType: "technical_software", Difficulty: "medium", Company: "google", Category: "design"},
		{Text: "Tell me about a conflict with a teammate.", InterviewType: "behavioral", Difficulty: "medium", Category: "teamwork"},
		{Text: "Describe a project you led.", InterviewType: "behavioral", Difficulty: "medium", Category: "leadership"},
		{Text: "Tell me about a failure.", InterviewType: "behavioral", Difficulty: "medium", Category: "growth"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return m
}

// createSession persists an in-progress session with a question plan and
// returns its ID.
func createSession(t *testing.T, st store.Store, interviewType string, questionIDs []int64) string {
	t.Helper()
	ctx := context.Background()
	id := "sess-" + interviewType
	err := st.CreateSession(ctx, &store.Session{
		ID:            id,
		InterviewType: interviewType,
		Difficulty:    "medium",
		Status:        store.SessionInProgress,
		StartedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := st.SetSessionQuestions(ctx, id, questionIDs); err != nil {
		t.Fatalf("set plan: %v", err)
	}
	return id
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) *core.Error {
	t.Helper()
	var envelope struct {
		Error *core.Error `json:"error"`
	}
	decodeBody(t, rec, &envelope)
	if envelope.Error == nil {
		t.Fatalf("missing error envelope in %q", rec.Body.String())
	}
	return envelope.Error
}

func testAnalyzer() *analysis.Analyzer {
	return analysis.NewAnalyzer(nil)
}

func testBuilder() *assistant.Builder {
	return assistant.NewBuilder("http://localhost:8720/api/provider/webhook", "")
}
