package api

import (
	"time"

	"github.com/prepworks/interviewd/pkg/assistant"
)

// StartInterviewRequest configures a new interview session.
type StartInterviewRequest struct {
	InterviewType   string `json:"interviewType"`
	Difficulty      string `json:"difficulty,omitempty"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Company         string `json:"company,omitempty"`
}

// Question is one entry of the interview plan.
type Question struct {
	ID               int64    `json:"id"`
	Text             string   `json:"text"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	ExpectedKeywords []string `json:"expectedKeywords,omitempty"`
}

// StartInterviewResponse carries the new session, its question plan, and the
// assistant configuration the client passes to the voice provider.
type StartInterviewResponse struct {
	SessionID string           `json:"sessionId"`
	Questions []Question       `json:"questions"`
	Assistant assistant.Config `json:"assistant"`
}

// SubScores are the four component scores, each 0..10.
type SubScores struct {
	ContentQuality    float64 `json:"contentQuality"`
	Communication     float64 `json:"communication"`
	Confidence        float64 `json:"confidence"`
	TechnicalAccuracy float64 `json:"technicalAccuracy"`
}

// Metrics are the raw features extracted from an answer.
type Metrics struct {
	WordCount          int     `json:"wordCount"`
	SentenceCount      int     `json:"sentenceCount"`
	FillerWordCount    int     `json:"fillerWordCount"`
	FillerRatio        float64 `json:"fillerRatio"`
	TechnicalTermCount int     `json:"technicalTermCount"`
	RelevanceScore     float64 `json:"relevanceScore"`
}

// AnalyzeRequest scores one finalized answer against its question.
type AnalyzeRequest struct {
	SessionID      string `json:"sessionId"`
	QuestionID     int64  `json:"questionId"`
	QuestionNumber int    `json:"questionNumber"`
	AnswerText     string `json:"answerText"`
}

// AnalyzeResponse is the scoring result for one answer.
type AnalyzeResponse struct {
	ResponseID   int64     `json:"responseId"`
	OverallScore float64   `json:"overallScore"`
	Rating       string    `json:"rating"`
	SubScores    SubScores `json:"subScores"`
	Strengths    []string  `json:"strengths"`
	Improvements []string  `json:"improvements"`
	Metrics      Metrics   `json:"metrics"`
}

// QuestionBreakdown is the per-question line of the final report.
type QuestionBreakdown struct {
	QuestionNumber int     `json:"questionNumber"`
	QuestionText   string  `json:"questionText"`
	Score          float64 `json:"score"`
	Rating         string  `json:"rating"`
}

// DetailedAnalysis aggregates answer statistics across the session.
type DetailedAnalysis struct {
	TotalResponses     int       `json:"totalResponses"`
	AverageWordCount   float64   `json:"averageWordCount"`
	AverageFillerWords float64   `json:"averageFillerWords"`
	ComponentAverages  SubScores `json:"componentAverages"`
}

// EndInterviewResponse is the aggregated session feedback.
type EndInterviewResponse struct {
	SessionID         string              `json:"sessionId"`
	OverallScore      float64             `json:"overallScore"`
	OverallRating     string              `json:"overallRating"`
	Strengths         []string            `json:"strengths"`
	Improvements      []string            `json:"improvements"`
	DetailedAnalysis  DetailedAnalysis    `json:"detailedAnalysis"`
	QuestionBreakdown []QuestionBreakdown `json:"questionBreakdown"`
}

// SessionSummary is the lookup view of a session.
type SessionSummary struct {
	SessionID       string    `json:"sessionId"`
	InterviewType   string    `json:"interviewType"`
	Difficulty      string    `json:"difficulty"`
	Company         string    `json:"company,omitempty"`
	Status          string    `json:"status"`
	QuestionCount   int       `json:"questionCount"`
	ResponsesScored int       `json:"responsesScored"`
	CreatedAt       time.Time `json:"createdAt"`
}
