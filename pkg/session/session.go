package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const DefaultTTL = 7 * 24 * time.Hour

// Session is the server-side state bound to an authenticated browser.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type Store interface {
	Create(ctx context.Context, sess Session, ttl time.Duration) (string, error)
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// InMemoryStore keeps sessions in process memory. Suitable for tests and
// single-node development setups.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]inMemorySession
}

type inMemorySession struct {
	sess      Session
	expiresAt time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]inMemorySession)}
}

func (s *InMemoryStore) Create(_ context.Context, sess Session, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = inMemorySession{sess: sess, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()

	return token, nil
}

func (s *InMemoryStore) Get(_ context.Context, token string) (Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return Session{}, ErrSessionNotFound
	}
	return entry.sess, nil
}

func (s *InMemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// RedisStore persists sessions in Redis so they survive restarts.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewRedisStoreWithClient wraps an existing client. Used in tests with miniredis.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(token string) string {
	return "session:" + token
}

func (s *RedisStore) Create(ctx context.Context, sess Session, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(token), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}
