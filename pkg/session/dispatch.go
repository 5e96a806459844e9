package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prepworks/interviewd/pkg/api"
)

const defaultScoringTimeout = 45 * time.Second

// AnswerScorer is the backend call that scores one answer. *api.Client
// satisfies it.
type AnswerScorer interface {
	AnalyzeResponse(ctx context.Context, req *api.AnalyzeRequest) (*api.AnalyzeResponse, error)
}

// Sink receives the outcome of one scoring request. A non-empty errMsg means
// the request failed and result is nil.
type Sink func(questionIndex int, result *ScoreResult, errMsg string)

// ScoringDispatcher runs scoring requests in the background, one goroutine
// per answer, with a per-request deadline. Requests for a (session, question)
// pair already in flight are dropped so a retried flush cannot double-score.
type ScoringDispatcher struct {
	scorer  AnswerScorer
	sink    Sink
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// NewScoringDispatcher creates a dispatcher delivering outcomes to sink.
// A non-positive timeout selects the default.
func NewScoringDispatcher(scorer AnswerScorer, sink Sink, timeout time.Duration, logger *slog.Logger) *ScoringDispatcher {
	if timeout <= 0 {
		timeout = defaultScoringTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringDispatcher{
		scorer:   scorer,
		sink:     sink,
		timeout:  timeout,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Dispatch schedules one scoring request and returns immediately.
func (d *ScoringDispatcher) Dispatch(req ScoringRequest) {
	key := fmt.Sprintf("%s:%d", req.SessionID, req.QuestionIndex)

	d.mu.Lock()
	if _, dup := d.inflight[key]; dup {
		d.mu.Unlock()
		d.logger.Debug("scoring already in flight", "session_id", req.SessionID, "question_index", req.QuestionIndex)
		return
	}
	d.inflight[key] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(key, req)
}

func (d *ScoringDispatcher) run(key string, req ScoringRequest) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.inflight, key)
		d.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	resp, err := d.scorer.AnalyzeResponse(ctx, &api.AnalyzeRequest{
		SessionID:      req.SessionID,
		QuestionID:     req.QuestionID,
		QuestionNumber: req.QuestionNumber,
		AnswerText:     req.AnswerText,
	})
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "scoring timed out"
		}
		d.logger.Warn("scoring failed", "session_id", req.SessionID, "question_index", req.QuestionIndex, "error", err)
		d.sink(req.QuestionIndex, nil, msg)
		return
	}

	d.sink(req.QuestionIndex, &ScoreResult{
		OverallScore: resp.OverallScore,
		Rating:       resp.Rating,
		SubScores: SubScores{
			ContentQuality:    resp.SubScores.ContentQuality,
			Communication:     resp.SubScores.Communication,
			Confidence:        resp.SubScores.Confidence,
			TechnicalAccuracy: resp.SubScores.TechnicalAccuracy,
		},
		Strengths:    resp.Strengths,
		Improvements: resp.Improvements,
	}, "")
}

// Wait blocks until all in-flight scoring requests have delivered their
// outcome. Used on shutdown and in tests.
func (d *ScoringDispatcher) Wait() {
	d.wg.Wait()
}
