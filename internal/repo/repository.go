package repo

import (
	"context"

	"github.com/hamed0406/drownwatch/internal/domain"
)

// Ports (interfaces) — swap in any document-store adapter later.

// FeedbackStore is the append-only store behind the confirm/reject flow.
// Append assigns ID and CreatedAt; records are never updated or deleted.
type FeedbackStore interface {
	Append(ctx context.Context, r *domain.FeedbackRecord) error
	// List returns all feedback ordered by timestamp descending.
	List(ctx context.Context) ([]domain.FeedbackRecord, error)
}
