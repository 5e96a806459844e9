package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/api"
	"github.com/prepworks/interviewd/pkg/core"
)

func analyzeHandler(st store.Store) AnalyzeHandler {
	return AnalyzeHandler{
		Config:   testConfig(),
		Store:    st,
		Analyzer: testAnalyzer(),
		Logger:   testLogger(),
	}
}

const sampleAnswer = "I would use a hash table for constant time lookups. " +
	"In my last project I implemented caching with Redis and reduced latency by 40 percent. " +
	"Overall the approach scaled well because the algorithm avoided repeated database queries."

func TestAnalyze_ScoresAndPersists(t *testing.T) {
	st := seededStore(t)
	sessID := createSession(t, st, "technical_software", []int64{1, 2, 3})

	rec := postJSON(t, analyzeHandler(st), "/api/interview/analyze",
		`{"sessionId":"`+sessID+`","questionNumber":1,"answerText":"`+sampleAnswer+`"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp api.AnalyzeResponse
	decodeBody(t, rec, &resp)
	if resp.ResponseID == 0 {
		t.Fatal("missing response id")
	}
	if resp.OverallScore <= 0 || resp.OverallScore > 10 {
		t.Fatalf("overallScore=%v", resp.OverallScore)
	}
	if resp.Rating == "" {
		t.Fatal("missing rating")
	}
	if resp.Metrics.WordCount == 0 {
		t.Fatalf("metrics=%+v", resp.Metrics)
	}

	rows, _ := st.ListResponses(context.Background(), sessID)
	if len(rows) != 1 {
		t.Fatalf("responses=%d", len(rows))
	}
	// The question is resolved from the session plan.
	if rows[0].QuestionID != 1 || rows[0].QuestionNumber != 1 {
		t.Fatalf("row=%+v", rows[0])
	}
	if rows[0].OverallScore != resp.OverallScore {
		t.Fatalf("persisted score=%v, response=%v", rows[0].OverallScore, resp.OverallScore)
	}

	notes, _ := st.ListFeedback(context.Background(), sessID)
	if len(notes) == 0 {
		t.Fatal("no feedback recorded")
	}
	for _, n := range notes {
		if n.Type != "strength" && n.Type != "improvement" {
			t.Fatalf("feedback type=%q", n.Type)
		}
		if n.ResponseID != rows[0].ID {
			t.Fatalf("feedback responseID=%d", n.ResponseID)
		}
	}
}

func TestAnalyze_ExplicitQuestionIDWins(t *testing.T) {
	st := seededStore(t)
	sessID := createSession(t, st, "technical_software", []int64{1, 2, 3})

	rec := postJSON(t, analyzeHandler(st), "/api/interview/analyze",
		`{"sessionId":"`+sessID+`","questionId":2,"questionNumber":1,"answerText":"`+sampleAnswer+`"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	rows, _ := st.ListResponses(context.Background(), sessID)
	if rows[0].QuestionID != 2 {
		t.Fatalf("questionID=%d, want 2", rows[0].QuestionID)
	}
}

func TestAnalyze_UnresolvableQuestionIs404(t *testing.T) {
	st := seededStore(t)
	sessID := createSession(t, st, "technical_software", []int64{1, 2, 3})
	h := analyzeHandler(st)

	// questionNumber past the session plan, no explicit id.
	rec := postJSON(t, h, "/api/interview/analyze",
		`{"sessionId":"`+sessID+`","questionNumber":9,"answerText":"`+sampleAnswer+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if apiErr := decodeErrorBody(t, rec); apiErr.Type != core.ErrNotFound {
		t.Fatalf("err=%+v", apiErr)
	}

	// Explicit id that exists neither in the plan nor in the bank.
	rec = postJSON(t, h, "/api/interview/analyze",
		`{"sessionId":"`+sessID+`","questionId":999,"questionNumber":1,"answerText":"`+sampleAnswer+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	if rows, _ := st.ListResponses(context.Background(), sessID); len(rows) != 0 {
		t.Fatalf("responses persisted for unresolvable questions: %d", len(rows))
	}
}

func TestAnalyze_MissingSession(t *testing.T) {
	rec := postJSON(t, analyzeHandler(seededStore(t)), "/api/interview/analyze",
		`{"sessionId":"nope","questionNumber":1,"answerText":"some answer"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	apiErr := decodeErrorBody(t, rec)
	if apiErr.Type != core.ErrNotFound {
		t.Fatalf("err=%+v", apiErr)
	}
}

func TestAnalyze_Validation(t *testing.T) {
	st := seededStore(t)
	sessID := createSession(t, st, "technical_software", []int64{1})
	h := analyzeHandler(st)

	cases := []struct {
		name  string
		body  string
		param string
	}{
		{"missing session", `{"questionNumber":1,"answerText":"a"}`, "sessionId"},
		{"blank answer", `{"sessionId":"` + sessID + `","questionNumber":1,"answerText":"  "}`, "answerText"},
		{"question number zero", `{"sessionId":"` + sessID + `","questionNumber":0,"answerText":"a"}`, "questionNumber"},
	}
	for _, tc := range cases {
		rec := postJSON(t, h, "/api/interview/analyze", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", tc.name, rec.Code)
		}
		apiErr := decodeErrorBody(t, rec)
		if apiErr.Param != tc.param {
			t.Fatalf("%s: param=%q, want %q", tc.name, apiErr.Param, tc.param)
		}
	}
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	rec := postJSON(t, analyzeHandler(seededStore(t)), "/api/interview/analyze", `{broken`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}
