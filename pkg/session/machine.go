package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prepworks/interviewd/pkg/voice"
)

// VoiceChannel is the slice of the voice adapter the coordinator drives.
type VoiceChannel interface {
	StartCall(ctx context.Context, cfg voice.CallConfig) error
	EndCall() error
	Bus() *voice.Bus
}

// Dispatcher issues the asynchronous scoring call for one finalized answer.
// Dispatch must not block: results come back through the coordinator's
// CompleteScoring sink.
type Dispatcher interface {
	Dispatch(req ScoringRequest)
}

// ScoringRequest identifies one finalized answer to score.
type ScoringRequest struct {
	SessionID      string
	QuestionIndex  int
	QuestionID     int64
	QuestionNumber int
	QuestionText   string
	AnswerText     string
}

// Config fixes the per-session behavior of the coordinator. The provider
// either keeps one call open for the whole interview or opens one call per
// question; both models are supported.
type Config struct {
	SessionID string
	Call      voice.CallConfig

	// NewCallPerQuestion re-arms the adapter with a fresh call after each
	// advance instead of riding one session-long call.
	NewCallPerQuestion bool

	// ResetTranscriptPerQuestion clears the display log between questions.
	ResetTranscriptPerQuestion bool
}

// Coordinator is the interview lifecycle controller. It tracks the active
// question, finalizes answers, triggers scoring, and enforces valid
// transitions. All session mutation is serialized through one mutex so that
// user-initiated operations and adapter-driven events observe a single
// linear order; network calls (call open/close, scoring) never run under
// the lock.
type Coordinator struct {
	cfg        Config
	channel    VoiceChannel
	rec        *Reconciler
	dispatcher Dispatcher
	logger     *slog.Logger

	mu        sync.Mutex
	status    Status
	questions []Question
	index     int
	responses []*ScoredResponse
	byIndex   map[int]*ScoredResponse
	lastErr   string
	unsubs    []func()
}

// NewCoordinator wires a coordinator to the adapter's event bus. The
// subscriptions stay registered until Close.
func NewCoordinator(channel VoiceChannel, dispatcher Dispatcher, cfg Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		cfg:        cfg,
		channel:    channel,
		rec:        NewReconciler(),
		dispatcher: dispatcher,
		logger:     logger,
		status:     StatusNotStarted,
		byIndex:    make(map[int]*ScoredResponse),
	}

	bus := channel.Bus()
	c.unsubs = append(c.unsubs,
		bus.OnTranscript(func(e voice.TranscriptEvent) {
			c.rec.OnFragment(e.Speaker, e.Text, e.Timestamp)
		}),
		bus.OnCallEnded(func(e voice.CallEndedEvent) {
			c.onCallEnded(e)
		}),
		bus.OnError(func(e voice.ErrorEvent) {
			c.onAdapterError(e)
		}),
	)
	return c
}

// Start begins the interview: fixes the question list, marks the session in
// progress, and requests the first call. Calling Start on anything but a
// fresh session is a caller bug and fails with InvalidStateError.
func (c *Coordinator) Start(ctx context.Context, questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("session: at least one question is required")
	}

	c.mu.Lock()
	if c.status != StatusNotStarted {
		status := c.status
		c.mu.Unlock()
		return &InvalidStateError{Op: "start", Status: status}
	}
	c.questions = append([]Question(nil), questions...)
	c.index = 0
	c.status = StatusInProgress
	c.mu.Unlock()

	if err := c.channel.StartCall(ctx, c.cfg.Call); err != nil {
		c.recordError(err)
		return err
	}
	return nil
}

// RestartCall re-opens the voice call for the current question after a
// failure. Valid only while the interview is in progress.
func (c *Coordinator) RestartCall(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusInProgress {
		status := c.status
		c.mu.Unlock()
		return &InvalidStateError{Op: "restart call", Status: status}
	}
	c.lastErr = ""
	c.mu.Unlock()

	if err := c.channel.StartCall(ctx, c.cfg.Call); err != nil {
		c.recordError(err)
		return err
	}
	return nil
}

// Advance finalizes the current answer and moves to the next question. The
// flushed answer is dispatched for scoring asynchronously; advancing never
// waits on the network. A blank answer creates no ScoredResponse but still
// advances the index. Reaching the end of the question list completes the
// session.
func (c *Coordinator) Advance(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusInProgress {
		status := c.status
		c.mu.Unlock()
		return &InvalidStateError{Op: "advance", Status: status}
	}
	req := c.finalizeLocked()
	c.index++
	done := c.index >= len(c.questions)
	if done {
		c.status = StatusCompleted
	}
	resetTranscript := !done && c.cfg.ResetTranscriptPerQuestion
	rearm := !done && c.cfg.NewCallPerQuestion
	c.mu.Unlock()

	if req != nil {
		c.dispatcher.Dispatch(*req)
	}
	if resetTranscript {
		c.rec.ResetTranscript()
	}
	if done {
		_ = c.channel.EndCall()
		return nil
	}
	if rearm {
		_ = c.channel.EndCall()
		if err := c.channel.StartCall(ctx, c.cfg.Call); err != nil {
			c.recordError(err)
		}
	}
	return nil
}

// End finalizes any pending answer exactly as Advance does, closes the call,
// and completes the session. Idempotent on a completed session.
func (c *Coordinator) End() error {
	c.mu.Lock()
	switch c.status {
	case StatusCompleted:
		c.mu.Unlock()
		return nil
	case StatusNotStarted:
		c.mu.Unlock()
		return &InvalidStateError{Op: "end", Status: StatusNotStarted}
	}
	req := c.finalizeLocked()
	if req != nil && c.index < len(c.questions) {
		c.index++
	}
	c.status = StatusCompleted
	c.mu.Unlock()

	if req != nil {
		c.dispatcher.Dispatch(*req)
	}
	_ = c.channel.EndCall()
	return nil
}

// finalizeLocked drains the answer buffer and, when the user actually said
// something, records the pending response and returns its scoring request.
// Must be called with c.mu held.
func (c *Coordinator) finalizeLocked() *ScoringRequest {
	text := c.rec.FlushAnswer()
	if text == "" || c.index >= len(c.questions) {
		return nil
	}
	q := c.questions[c.index]
	resp := &ScoredResponse{
		QuestionIndex: c.index,
		Question:      q,
		AnswerText:    text,
		AnalysisState: AnalysisPending,
	}
	c.responses = append(c.responses, resp)
	c.byIndex[c.index] = resp
	return &ScoringRequest{
		SessionID:      c.cfg.SessionID,
		QuestionIndex:  c.index,
		QuestionID:     q.ID,
		QuestionNumber: c.index + 1,
		QuestionText:   q.Text,
		AnswerText:     text,
	}
}

// onCallEnded treats loss of the voice channel as a normal turn boundary:
// an implicit advance when a partial answer exists, or an end when no
// questions remain. With nothing in the answer buffer it is a no-op, which
// is exactly the tie-break that prevents double-scoring when an explicit
// Advance raced the call-ended event.
func (c *Coordinator) onCallEnded(voice.CallEndedEvent) {
	c.mu.Lock()
	if c.status != StatusInProgress {
		c.mu.Unlock()
		return
	}
	req := c.finalizeLocked()
	if req == nil {
		c.mu.Unlock()
		return
	}
	c.index++
	done := c.index >= len(c.questions)
	if done {
		c.status = StatusCompleted
	}
	resetTranscript := !done && c.cfg.ResetTranscriptPerQuestion
	rearm := !done && c.cfg.NewCallPerQuestion
	c.mu.Unlock()

	c.dispatcher.Dispatch(*req)
	if resetTranscript {
		c.rec.ResetTranscript()
	}
	if done {
		_ = c.channel.EndCall()
		return
	}
	if rearm {
		if err := c.channel.StartCall(context.Background(), c.cfg.Call); err != nil {
			c.recordError(err)
		}
	}
}

// onAdapterError records the failure without changing the lifecycle state;
// the user may retry the call for the same question.
func (c *Coordinator) onAdapterError(e voice.ErrorEvent) {
	if e.Err == nil {
		return
	}
	c.logger.Warn("voice channel error", "code", e.Err.Code, "message", e.Err.Message)
	c.mu.Lock()
	c.lastErr = e.Err.Error()
	c.mu.Unlock()
}

func (c *Coordinator) recordError(err error) {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
}

// CompleteScoring merges one scoring outcome into its response slot. A slot
// that already reached a terminal state is left untouched; results arriving
// after the session completed are still stored so the summary can use them.
func (c *Coordinator) CompleteScoring(questionIndex int, result *ScoreResult, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp := c.byIndex[questionIndex]
	if resp == nil || resp.AnalysisState != AnalysisPending {
		return
	}
	if errMsg != "" {
		resp.AnalysisState = AnalysisFailed
		resp.AnalysisError = errMsg
		return
	}
	resp.Analysis = result
	resp.AnalysisState = AnalysisScored
}

// Snapshot returns a point-in-time copy of the session.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	responses := make([]ScoredResponse, len(c.responses))
	for i, r := range c.responses {
		responses[i] = *r
	}
	return Snapshot{
		SessionID:            c.cfg.SessionID,
		Status:               c.status,
		Questions:            append([]Question(nil), c.questions...),
		CurrentQuestionIndex: c.index,
		Responses:            responses,
		LastError:            c.lastErr,
	}
}

// CurrentQuestion returns the active question, if any.
func (c *Coordinator) CurrentQuestion() (Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusInProgress || c.index >= len(c.questions) {
		return Question{}, false
	}
	return c.questions[c.index], true
}

// Transcript exposes the reconciler's conversation log for display.
func (c *Coordinator) Transcript() []Entry {
	return c.rec.Transcript()
}

// Close detaches the coordinator from the adapter bus and closes any open
// call. It does not score a pending answer; use End for a graceful finish.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
	return c.channel.EndCall()
}
