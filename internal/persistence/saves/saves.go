package saves

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tilecraft.ai/internal/logging"
	"tilecraft.ai/internal/sim/world"
	"tilecraft.ai/internal/sim/world/feature/economy/inventory"
)

var ErrNotFound = errors.New("save not found")

// Record is one received save. ID is assigned by the store.
type Record struct {
	ID        int64     `json:"id"`
	Wood      uint      `json:"wood"`
	Stone     uint      `json:"stone"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	Insert(ctx context.Context, rec Record) (int64, error)
	Get(ctx context.Context, id int64) (Record, error)
	Close() error
}

// Service accepts ledger snapshots and answers with the stored id. Every call stores a
// new record; nothing is deduplicated.
type Service struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, now: time.Now, log: logging.OrNop(logger)}
}

func Message(wood uint) string { return fmt.Sprintf("Received! You have %d wood.", wood) }

func (s *Service) Save(ctx context.Context, snap inventory.Snapshot) (world.SaveResult, error) {
	id, err := s.store.Insert(ctx, Record{Wood: snap.Wood, Stone: snap.Stone, CreatedAt: s.now().UTC()})
	if err != nil {
		s.log.Error("save insert failed", zap.Error(err))
		return world.SaveResult{}, fmt.Errorf("store save: %w", err)
	}
	s.log.Info("save received", zap.Int64("save_id", id), zap.Uint("wood", snap.Wood), zap.Uint("stone", snap.Stone))
	return world.SaveResult{ID: id, Message: Message(snap.Wood)}, nil
}

// MemoryStore keys records by creation time in milliseconds, bumped past the previous
// id when two saves land in the same millisecond.
type MemoryStore struct {
	now func() time.Time

	mu   sync.Mutex
	last int64
	recs map[int64]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, recs: map[int64]Record{}}
}

func (m *MemoryStore) Insert(_ context.Context, rec Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.now().UnixMilli()
	if id <= m.last {
		id = m.last + 1
	}
	m.last = id
	rec.ID = id
	m.recs[id] = rec
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}

func (m *MemoryStore) Close() error { return nil }
