// Package store persists interview sessions, responses, and the question
// bank. The canonical implementation is Postgres; a memory implementation
// backs tests and keyless local runs.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a lookup miss. Handlers map it to a 404.
var ErrNotFound = errors.New("store: not found")

// Session statuses.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

// Session is one interview run.
type Session struct {
	ID              string
	InterviewType   string
	Difficulty      string
	Company         string
	DurationMinutes int
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	OverallScore    *float64
	OverallRating   string
}

// Question is one question-bank entry.
type Question struct {
	ID               int64
	Text             string
	InterviewType    string
	Difficulty       string
	Company          string
	Category         string
	ExpectedKeywords []string
}

// QuestionFilter narrows a question-bank listing. Empty fields match all.
type QuestionFilter struct {
	InterviewType string
	Difficulty    string
	Company       string
}

// Response is one scored answer.
type Response struct {
	ID             int64
	SessionID      string
	QuestionID     int64
	QuestionNumber int
	Text           string
	CreatedAt      time.Time

	WordCount          int
	FillerWordCount    int
	TechnicalTermCount int
	AvgWordLength      float64

	ContentQuality    float64
	Communication     float64
	Confidence        float64
	TechnicalAccuracy float64
	OverallScore      float64
	Rating            string
}

// Feedback is one strength or improvement note attached to a response.
type Feedback struct {
	ID         int64
	SessionID  string
	ResponseID int64
	Type       string
	Text       string
	CreatedAt  time.Time
}

// Store is the persistence boundary of the gateway.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	CompleteSession(ctx context.Context, id string, overallScore float64, overallRating string) error

	SetSessionQuestions(ctx context.Context, sessionID string, questionIDs []int64) error
	GetSessionQuestions(ctx context.Context, sessionID string) ([]Question, error)

	ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error)
	GetQuestion(ctx context.Context, id int64) (*Question, error)
	SeedQuestions(ctx context.Context, questions []Question) error

	InsertResponse(ctx context.Context, r *Response) error
	ListResponses(ctx context.Context, sessionID string) ([]Response, error)

	InsertFeedback(ctx context.Context, f *Feedback) error
	ListFeedback(ctx context.Context, sessionID string) ([]Feedback, error)

	Ping(ctx context.Context) error
	Close()
}
