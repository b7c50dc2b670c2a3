package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/repo"
)

var _ repo.FeedbackStore = (*Store)(nil)

// Store persists feedback in a video_feedback table:
//
//	CREATE TABLE video_feedback (
//	    id          TEXT PRIMARY KEY,
//	    video_id    TEXT NOT NULL,
//	    video_url   TEXT NOT NULL,
//	    ts          TEXT NOT NULL,
//	    is_drowning TEXT NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Append(ctx context.Context, r *domain.FeedbackRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.VideoID == "" {
		r.VideoID = domain.UnknownVideoID
	}
	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	// created_at is server-assigned; read it back so the caller sees it
	err := s.pool.QueryRow(ctx,
		`INSERT INTO video_feedback (id, video_id, video_url, ts, is_drowning)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		r.ID, r.VideoID, r.VideoURL, r.Timestamp, r.IsDrowning,
	).Scan(&r.CreatedAt)
	if err != nil {
		return &domain.TransportError{Op: "feedback_write", Err: err}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.FeedbackRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, video_id, video_url, ts, is_drowning, created_at
		   FROM video_feedback
		  ORDER BY ts DESC, created_at DESC`)
	if err != nil {
		return nil, &domain.TransportError{Op: "feedback_query", Err: err}
	}
	defer rows.Close()

	var out []domain.FeedbackRecord
	for rows.Next() {
		var r domain.FeedbackRecord
		if err := rows.Scan(&r.ID, &r.VideoID, &r.VideoURL, &r.Timestamp, &r.IsDrowning, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.TransportError{Op: "feedback_query", Err: err}
	}
	return out, nil
}
