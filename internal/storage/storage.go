package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// DecisionRecord is one bot move with the statistics gathered while
// choosing it.
type DecisionRecord struct {
	SessionID        string    `json:"sessionId"`
	Player           int       `json:"player"`
	Column           int       `json:"column"`
	DurationMs       float64   `json:"durationMs"`
	RepliesEvaluated int       `json:"repliesEvaluated"`
	Average          float64   `json:"average"`
	Immediate        bool      `json:"immediate"`
	Fallback         bool      `json:"fallback"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Summary struct {
	Decisions     int     `json:"decisions"`
	AvgDurationMs float64 `json:"avgDurationMs"`
	AvgReplies    float64 `json:"avgReplies"`
	Immediate     int     `json:"immediate"`
	Fallback      int     `json:"fallback"`
}

type Store interface {
	SaveDecision(ctx context.Context, rec DecisionRecord) error
	DecisionSummary(ctx context.Context) (Summary, error)
	Close()
}

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(ctx context.Context, url string, logger *slog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (p *PostgresStore) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresStore) EnsureTables(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS bot_decisions (
	id BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL,
	player SMALLINT NOT NULL,
	col SMALLINT NOT NULL,
	duration_ms DOUBLE PRECISION NOT NULL,
	replies_evaluated INTEGER NOT NULL,
	average DOUBLE PRECISION NOT NULL,
	immediate BOOLEAN NOT NULL DEFAULT FALSE,
	fallback BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bot_decisions_session ON bot_decisions(session_id);
`)
	return errors.Wrap(err, "ensure tables")
}

func (p *PostgresStore) SaveDecision(ctx context.Context, rec DecisionRecord) error {
	if p == nil || p.pool == nil {
		return nil
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO bot_decisions
(session_id, player, col, duration_ms, replies_evaluated, average, immediate, fallback, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.SessionID, rec.Player, rec.Column, rec.DurationMs, rec.RepliesEvaluated,
		rec.Average, rec.Immediate, rec.Fallback, rec.CreatedAt)
	if err != nil {
		p.logger.Error("failed to save decision", "session", rec.SessionID, "err", err)
		return errors.Wrap(err, "save decision")
	}
	return nil
}

func (p *PostgresStore) DecisionSummary(ctx context.Context) (Summary, error) {
	var s Summary
	if p == nil || p.pool == nil {
		return s, nil
	}
	err := p.pool.QueryRow(ctx, `
SELECT COUNT(*),
	COALESCE(AVG(duration_ms), 0)::float8,
	COALESCE(AVG(replies_evaluated), 0)::float8,
	COUNT(*) FILTER (WHERE immediate),
	COUNT(*) FILTER (WHERE fallback)
FROM bot_decisions`).Scan(&s.Decisions, &s.AvgDurationMs, &s.AvgReplies, &s.Immediate, &s.Fallback)
	if err != nil {
		return Summary{}, errors.Wrap(err, "decision summary")
	}
	return s, nil
}

// MemoryStore keeps decisions in process. It is used when no database is
// configured.
type MemoryStore struct {
	mu        sync.Mutex
	decisions []DecisionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveDecision(_ context.Context, rec DecisionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, rec)
	return nil
}

func (m *MemoryStore) DecisionSummary(_ context.Context) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s Summary
	var duration, replies float64
	for _, d := range m.decisions {
		s.Decisions++
		duration += d.DurationMs
		replies += float64(d.RepliesEvaluated)
		if d.Immediate {
			s.Immediate++
		}
		if d.Fallback {
			s.Fallback++
		}
	}
	if s.Decisions > 0 {
		s.AvgDurationMs = duration / float64(s.Decisions)
		s.AvgReplies = replies / float64(s.Decisions)
	}
	return s, nil
}

// Decisions returns a copy of every stored record for one session.
func (m *MemoryStore) Decisions(sessionID string) []DecisionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []DecisionRecord
	for _, d := range m.decisions {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	return out
}

func (m *MemoryStore) Close() {}
