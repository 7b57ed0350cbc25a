package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/promotion-manager/pkg/config"
	redisclient "github.com/angelmondragon/promotion-manager/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// Pair is an access token id with the refresh token that can renew it.
type Pair struct {
	AccessID     string
	RefreshToken string
}

// Manager stores one refresh token per issued access token id.
type Manager struct {
	store store
	ttl   time.Duration
}

// Checker is the read-only surface used by the auth middleware.
type Checker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if ttl <= cfg.AccessTokenTTL() {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, cfg.AccessTokenTTL())
	}
	return &Manager{store: client, ttl: ttl}, nil
}

// Issue opens a new session and returns its ids.
func (m *Manager) Issue(ctx context.Context) (Pair, error) {
	pair := Pair{AccessID: uuid.NewString()}
	token, err := newRefreshToken()
	if err != nil {
		return Pair{}, err
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(pair.AccessID), token, m.ttl); err != nil {
		return Pair{}, err
	}
	pair.RefreshToken = token
	return pair, nil
}

// Rotate checks the refresh token bound to oldAccessID, closes that session
// and opens a new one.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Pair, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Pair{}, ErrInvalidRefreshToken
	}

	key := m.store.AccessSessionKey(oldAccessID)
	stored, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Pair{}, ErrInvalidRefreshToken
		}
		return Pair{}, err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
		return Pair{}, ErrInvalidRefreshToken
	}

	if err := m.store.Del(ctx, key); err != nil {
		return Pair{}, err
	}
	return m.Issue(ctx)
}

// Revoke closes the session tied to accessID.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still has an open session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, nil
	}
	if _, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
