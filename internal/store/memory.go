package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store for tests and database-less local runs.
type Memory struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	sessionQs  map[string][]int64
	questions  map[int64]*Question
	responses  map[string][]Response
	feedback   map[string][]Feedback
	nextQID    int64
	nextRespID int64
	nextFBID   int64
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions:  make(map[string]*Session),
		sessionQs: make(map[string][]int64),
		questions: make(map[int64]*Question),
		responses: make(map[string][]Response),
		feedback:  make(map[string][]Feedback),
	}
}

func (m *Memory) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) CompleteSession(_ context.Context, id string, overallScore float64, overallRating string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	s.Status = SessionCompleted
	s.CompletedAt = &now
	s.OverallScore = &overallScore
	s.OverallRating = overallRating
	return nil
}

func (m *Memory) SetSessionQuestions(_ context.Context, sessionID string, questionIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionQs[sessionID] = append([]int64(nil), questionIDs...)
	return nil
}

func (m *Memory) GetSessionQuestions(_ context.Context, sessionID string) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Question
	for _, id := range m.sessionQs[sessionID] {
		if q, ok := m.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *Memory) ListQuestions(_ context.Context, f QuestionFilter) ([]Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Question
	for _, q := range m.questions {
		if f.InterviewType != "" && q.InterviewType != f.InterviewType {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if f.Company != "" && q.Company != f.Company {
			continue
		}
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetQuestion(_ context.Context, id int64) (*Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *Memory) SeedQuestions(_ context.Context, questions []Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.questions) > 0 {
		return nil
	}
	for _, q := range questions {
		m.nextQID++
		cp := q
		cp.ID = m.nextQID
		m.questions[cp.ID] = &cp
	}
	return nil
}

func (m *Memory) InsertResponse(_ context.Context, r *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRespID++
	r.ID = m.nextRespID
	m.responses[r.SessionID] = append(m.responses[r.SessionID], *r)
	return nil
}

func (m *Memory) ListResponses(_ context.Context, sessionID string) ([]Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]Response(nil), m.responses[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out, nil
}

func (m *Memory) InsertFeedback(_ context.Context, f *Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextFBID++
	f.ID = m.nextFBID
	m.feedback[f.SessionID] = append(m.feedback[f.SessionID], *f)
	return nil
}

func (m *Memory) ListFeedback(_ context.Context, sessionID string) ([]Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Feedback(nil), m.feedback[sessionID]...), nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}
