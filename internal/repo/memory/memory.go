package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/repo"
)

var _ repo.FeedbackStore = (*Store)(nil)

type Store struct {
	mu   sync.RWMutex
	docs []domain.FeedbackRecord
}

func New() *Store {
	return &Store{docs: make([]domain.FeedbackRecord, 0, 128)}
}

func (m *Store) Append(ctx context.Context, r *domain.FeedbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.VideoID == "" {
		r.VideoID = domain.UnknownVideoID
	}
	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	r.CreatedAt = time.Now().UTC()
	m.docs = append(m.docs, *r)
	return nil
}

func (m *Store) List(ctx context.Context) ([]domain.FeedbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.FeedbackRecord, len(m.docs))
	copy(out, m.docs)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}
