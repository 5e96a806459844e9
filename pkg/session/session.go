package session

import "fmt"

// Question is one interview question, fixed at session start.
type Question struct {
	ID               int64    `json:"id"`
	Text             string   `json:"text"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	ExpectedKeywords []string `json:"expectedKeywords,omitempty"`
}

// Status is the interview lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// AnalysisState tracks the scoring lifecycle of one finalized answer.
type AnalysisState string

const (
	AnalysisPending AnalysisState = "pending"
	AnalysisScored  AnalysisState = "scored"
	AnalysisFailed  AnalysisState = "failed"
)

// SubScores is the per-dimension rubric for one answer.
type SubScores struct {
	ContentQuality    float64 `json:"contentQuality"`
	Communication     float64 `json:"communication"`
	Confidence        float64 `json:"confidence"`
	TechnicalAccuracy float64 `json:"technicalAccuracy"`
}

// ScoreResult is the rubric returned by the scoring backend. Immutable once
// received.
type ScoreResult struct {
	OverallScore float64   `json:"overallScore"`
	Rating       string    `json:"rating"`
	SubScores    SubScores `json:"subScores"`
	Strengths    []string  `json:"strengths,omitempty"`
	Improvements []string  `json:"improvements,omitempty"`
}

// ScoredResponse is one finalized question/answer/result triple. Created the
// instant an answer is finalized (analysis pending), mutated exactly once
// when the scoring call resolves or fails.
type ScoredResponse struct {
	QuestionIndex int           `json:"questionIndex"`
	Question      Question      `json:"question"`
	AnswerText    string        `json:"answerText"`
	Analysis      *ScoreResult  `json:"analysis,omitempty"`
	AnalysisState AnalysisState `json:"analysisState"`
	AnalysisError string        `json:"analysisError,omitempty"`
}

// Snapshot is a point-in-time view of an interview session.
type Snapshot struct {
	SessionID            string
	Status               Status
	Questions            []Question
	CurrentQuestionIndex int
	Responses            []ScoredResponse
	LastError            string
}

// InvalidStateError reports a lifecycle transition attempted from the wrong
// state. This indicates a caller bug, not an environmental failure.
type InvalidStateError struct {
	Op     string
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session: %s is not valid while %s", e.Op, e.Status)
}
