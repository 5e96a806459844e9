package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prepworks/interviewd/pkg/api"
)

func getWithPathValue(t *testing.T, h http.Handler, path, key, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.SetPathValue(key, value)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuestions_ListsByType(t *testing.T) {
	h := QuestionsHandler{Store: seededStore(t), Logger: testLogger()}
	rec := getWithPathValue(t, h, "/api/questions/behavioral", "interviewType", "behavioral")

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Questions []api.Question `json:"questions"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Questions) != 3 {
		t.Fatalf("questions=%d", len(resp.Questions))
	}
}

func TestQuestions_FiltersByCompany(t *testing.T) {
	h := QuestionsHandler{Store: seededStore(t), Logger: testLogger()}
	rec := getWithPathValue(t, h,
		"/api/questions/technical_software?company=google", "interviewType", "technical_software")

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var resp struct {
		Questions []api.Question `json:"questions"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Questions) != 1 {
		t.Fatalf("questions=%+v", resp.Questions)
	}
}

func TestQuestions_EmptyResultIsOK(t *testing.T) {
	h := QuestionsHandler{Store: seededStore(t), Logger: testLogger()}
	rec := getWithPathValue(t, h, "/api/questions/system_design", "interviewType", "system_design")

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var resp struct {
		Questions []api.Question `json:"questions"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Questions) != 0 {
		t.Fatalf("questions=%+v", resp.Questions)
	}
}

func TestSession_ReturnsSummary(t *testing.T) {
	st := seededStore(t)
	sessID := createSession(t, st, "technical_software", []int64{1, 2, 3})
	postJSON(t, analyzeHandler(st), "/api/interview/analyze",
		`{"sessionId":"`+sessID+`","questionNumber":1,"answerText":"`+sampleAnswer+`"}`)

	h := SessionHandler{Store: st, Logger: testLogger()}
	rec := getWithPathValue(t, h, "/api/session/"+sessID, "sessionID", sessID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var summary api.SessionSummary
	decodeBody(t, rec, &summary)
	if summary.SessionID != sessID || summary.Status != "in_progress" {
		t.Fatalf("summary=%+v", summary)
	}
	if summary.QuestionCount != 3 || summary.ResponsesScored != 1 {
		t.Fatalf("summary=%+v", summary)
	}
}

func TestSession_NotFound(t *testing.T) {
	h := SessionHandler{Store: seededStore(t), Logger: testLogger()}
	rec := getWithPathValue(t, h, "/api/session/nope", "sessionID", "nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}
