package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/promotion-manager/pkg/config"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, ttl: time.Hour}, store
}

func TestIssueAndRotate(t *testing.T) {
	ctx := context.Background()
	manager, store := newTestManager()

	first, err := manager.Issue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if first.AccessID == "" || first.RefreshToken == "" {
		t.Fatalf("expected populated pair, got %+v", first)
	}

	second, err := manager.Rotate(ctx, first.AccessID, first.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if second.AccessID == first.AccessID || second.RefreshToken == first.RefreshToken {
		t.Fatalf("rotation should produce fresh ids")
	}
	if _, ok := store.data["sess:"+first.AccessID]; ok {
		t.Fatalf("old session should be removed")
	}

	if _, err := manager.Rotate(ctx, first.AccessID, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("reusing a rotated token should fail, got %v", err)
	}
}

func TestRotateRejectsMismatch(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager()
	pair, _ := manager.Issue(ctx)

	if _, err := manager.Rotate(ctx, pair.AccessID, "forged"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := manager.Rotate(ctx, "", pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid token for empty id, got %v", err)
	}
}

func TestRevokeAndHasSession(t *testing.T) {
	ctx := context.Background()
	manager, _ := newTestManager()
	pair, _ := manager.Issue(ctx)

	ok, err := manager.HasSession(ctx, pair.AccessID)
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, pair.AccessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, pair.AccessID)
	if err != nil || ok {
		t.Fatalf("expected closed session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, " "); err == nil {
		t.Fatalf("expected error for blank id")
	}
}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{}); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
