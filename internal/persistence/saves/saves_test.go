package saves

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tilecraft.ai/internal/sim/world/feature/economy/inventory"
)

type failingStore struct{ MemoryStore }

func (failingStore) Insert(context.Context, Record) (int64, error) {
	return 0, errors.New("disk full")
}

func TestService_MessageAndFreshIDs(t *testing.T) {
	store := NewMemoryStore()
	fixed := time.UnixMilli(1718000000000)
	store.now = func() time.Time { return fixed }
	svc := NewService(store, nil)

	a, err := svc.Save(context.Background(), inventory.Snapshot{Wood: 3})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if a.Message != "Received! You have 3 wood." {
		t.Fatalf("message=%q", a.Message)
	}
	if a.ID != 1718000000000 {
		t.Fatalf("id=%d want clock ms", a.ID)
	}
	// Same payload, same millisecond: still a new record.
	b, err := svc.Save(context.Background(), inventory.Snapshot{Wood: 3})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("ids not increasing: %d then %d", a.ID, b.ID)
	}
	if store.Len() != 2 {
		t.Fatalf("records=%d want 2", store.Len())
	}
}

func TestService_ZeroWoodMessage(t *testing.T) {
	res, err := NewService(NewMemoryStore(), nil).Save(context.Background(), inventory.Snapshot{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Message != "Received! You have 0 wood." {
		t.Fatalf("message=%q", res.Message)
	}
}

func TestService_StoreErrorPropagates(t *testing.T) {
	_, err := NewService(&failingStore{}, nil).Save(context.Background(), inventory.Snapshot{Wood: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestSQLiteStore_InsertGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves", "saves.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id1, err := s.Insert(ctx, Record{Wood: 2, Stone: 5, CreatedAt: at})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	id2, err := s.Insert(ctx, Record{Wood: 2, Stone: 5, CreatedAt: at})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids=%d,%d", id1, id2)
	}
	got, err := s.Get(ctx, id1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Wood != 2 || got.Stone != 5 || !got.CreatedAt.Equal(at) {
		t.Fatalf("record=%+v", got)
	}
	if _, err := s.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id err=%v", err)
	}
}

func TestSQLiteStore_ReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, err := s.Insert(ctx, Record{Wood: 7, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = s.Close()

	// Migrations must be a no-op the second time.
	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if got, err := s.Get(ctx, id); err != nil || got.Wood != 7 {
		t.Fatalf("get after reopen: %+v err=%v", got, err)
	}
}

func TestPostgresStore_InsertGet(t *testing.T) {
	dsn := os.Getenv("TILECRAFT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TILECRAFT_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, PostgresConfig{DSN: dsn, MaxConns: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	id, err := s.Insert(ctx, Record{Wood: 4, Stone: 1, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Wood != 4 || got.Stone != 1 {
		t.Fatalf("record=%+v", got)
	}
}
