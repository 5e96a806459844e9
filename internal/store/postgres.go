package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects a pool to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) CreateSession(ctx context.Context, s *Session) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO interview_sessions
			(session_id, interview_type, difficulty_level, company, duration_minutes, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.InterviewType, s.Difficulty, s.Company, s.DurationMinutes, s.Status, s.StartedAt)
	if err != nil {
		return fmt.Errorf("store: create session: %w", err)
	}
	return nil
}

func (p *Postgres) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	var score *float64
	err := p.pool.QueryRow(ctx, `
		SELECT session_id, interview_type, difficulty_level, company, duration_minutes,
		       status, started_at, completed_at, overall_score, overall_rating
		FROM interview_sessions WHERE session_id = $1`, id).
		Scan(&s.ID, &s.InterviewType, &s.Difficulty, &s.Company, &s.DurationMinutes,
			&s.Status, &s.StartedAt, &s.CompletedAt, &score, &s.OverallRating)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	s.OverallScore = score
	return &s, nil
}

func (p *Postgres) CompleteSession(ctx context.Context, id string, overallScore float64, overallRating string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET status = $2, completed_at = now(), overall_score = $3, overall_rating = $4
		WHERE session_id = $1`,
		id, SessionCompleted, overallScore, overallRating)
	if err != nil {
		return fmt.Errorf("store: complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SetSessionQuestions(ctx context.Context, sessionID string, questionIDs []int64) error {
	batch := &pgx.Batch{}
	for i, qid := range questionIDs {
		batch.Queue(`INSERT INTO session_questions (session_id, position, question_id) VALUES ($1, $2, $3)`,
			sessionID, i, qid)
	}
	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range questionIDs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("store: set session questions: %w", err)
		}
	}
	return nil
}

func (p *Postgres) GetSessionQuestions(ctx context.Context, sessionID string) ([]Question, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT q.question_id, q.question_text, q.interview_type, q.difficulty_level,
		       q.company, q.category, q.expected_keywords
		FROM session_questions sq
		JOIN interview_questions q ON q.question_id = sq.question_id
		WHERE sq.session_id = $1
		ORDER BY sq.position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: get session questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (p *Postgres) ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.InterviewType != "" {
		add("interview_type = $%d", f.InterviewType)
	}
	if f.Difficulty != "" {
		add("difficulty_level = $%d", f.Difficulty)
	}
	if f.Company != "" {
		add("company = $%d", f.Company)
	}
	q := `SELECT question_id, question_text, interview_type, difficulty_level, company, category, expected_keywords
		FROM interview_questions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY question_id"

	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (p *Postgres) GetQuestion(ctx context.Context, id int64) (*Question, error) {
	var q Question
	err := p.pool.QueryRow(ctx, `
		SELECT question_id, question_text, interview_type, difficulty_level, company, category, expected_keywords
		FROM interview_questions WHERE question_id = $1`, id).
		Scan(&q.ID, &q.Text, &q.InterviewType, &q.Difficulty, &q.Company, &q.Category, &q.ExpectedKeywords)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get question: %w", err)
	}
	return &q, nil
}

// SeedQuestions inserts the question bank once; a non-empty table is left
// untouched.
func (p *Postgres) SeedQuestions(ctx context.Context, questions []Question) error {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM interview_questions`).Scan(&n); err != nil {
		return fmt.Errorf("store: count questions: %w", err)
	}
	if n > 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(`
			INSERT INTO interview_questions
				(question_text, interview_type, difficulty_level, company, category, expected_keywords)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			q.Text, q.InterviewType, q.Difficulty, q.Company, q.Category, q.ExpectedKeywords)
	}
	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range questions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("store: seed questions: %w", err)
		}
	}
	return nil
}

func (p *Postgres) InsertResponse(ctx context.Context, r *Response) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO session_responses
			(session_id, question_id, question_number, response_text, created_at,
			 word_count, filler_word_count, technical_term_count, average_word_length,
			 content_quality_score, communication_score, confidence_score,
			 technical_accuracy_score, overall_response_score, response_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING response_id`,
		r.SessionID, r.QuestionID, r.QuestionNumber, r.Text, r.CreatedAt,
		r.WordCount, r.FillerWordCount, r.TechnicalTermCount, r.AvgWordLength,
		r.ContentQuality, r.Communication, r.Confidence,
		r.TechnicalAccuracy, r.OverallScore, r.Rating).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("store: insert response: %w", err)
	}
	return nil
}

func (p *Postgres) ListResponses(ctx context.Context, sessionID string) ([]Response, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT response_id, session_id, question_id, question_number, response_text, created_at,
		       word_count, filler_word_count, technical_term_count, average_word_length,
		       content_quality_score, communication_score, confidence_score,
		       technical_accuracy_score, overall_response_score, response_rating
		FROM session_responses WHERE session_id = $1 ORDER BY question_number`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list responses: %w", err)
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var r Response
		if err := rows.Scan(&r.ID, &r.SessionID, &r.QuestionID, &r.QuestionNumber, &r.Text, &r.CreatedAt,
			&r.WordCount, &r.FillerWordCount, &r.TechnicalTermCount, &r.AvgWordLength,
			&r.ContentQuality, &r.Communication, &r.Confidence,
			&r.TechnicalAccuracy, &r.OverallScore, &r.Rating); err != nil {
			return nil, fmt.Errorf("store: scan response: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) InsertFeedback(ctx context.Context, f *Feedback) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO feedback_details (session_id, response_id, feedback_type, feedback_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING feedback_id`,
		f.SessionID, f.ResponseID, f.Type, f.Text, f.CreatedAt).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("store: insert feedback: %w", err)
	}
	return nil
}

func (p *Postgres) ListFeedback(ctx context.Context, sessionID string) ([]Feedback, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT feedback_id, session_id, response_id, feedback_type, feedback_text, created_at
		FROM feedback_details WHERE session_id = $1 ORDER BY feedback_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.SessionID, &f.ResponseID, &f.Type, &f.Text, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan feedback: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func scanQuestions(rows pgx.Rows) ([]Question, error) {
	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.InterviewType, &q.Difficulty, &q.Company, &q.Category, &q.ExpectedKeywords); err != nil {
			return nil, fmt.Errorf("store: scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
