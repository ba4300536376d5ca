package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/redis/go-redis/v9"
)

const (
	registrationKeyPrefix = "otp:registration:"
	resetKeyPrefix        = "otp:reset:"
)

// RegistrationSession is the pending state between requesting and confirming a registration OTP.
type RegistrationSession struct {
	PendingUsername string    `json:"pending_username"`
	PendingEmail    string    `json:"pending_email"`
	OTP             string    `json:"otp"`
	OTPExpiresAt    time.Time `json:"otp_expires_at"`
}

// ResetSession is the pending state of a password reset.
type ResetSession struct {
	Email        string    `json:"email"`
	OTP          string    `json:"otp"`
	OTPExpiresAt time.Time `json:"otp_expires_at"`
	Verified     bool      `json:"verified"`
}

// SessionStore keeps OTP sessions as JSON values with a time to live. Load
// returns apperr.ErrRecordNotFound when the key is absent or has lapsed.
type SessionStore interface {
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	Load(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s to redis: %w", key, err)
	}
	return nil
}

func (s *RedisSessionStore) Load(ctx context.Context, key string, dest any) error {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperr.ErrRecordNotFound
		}
		return fmt.Errorf("failed to get session %s from redis: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal session %s: %w", key, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s from redis: %w", key, err)
	}
	return nil
}

type memorySession struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore is a process-local SessionStore for tests and single-node development.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession

	Now func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession), Now: time.Now}
}

func (s *MemorySessionStore) Save(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = memorySession{data: data, expiresAt: s.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Load(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	sess, ok := s.sessions[key]
	if ok && !s.Now().Before(sess.expiresAt) {
		delete(s.sessions, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return apperr.ErrRecordNotFound
	}
	return json.Unmarshal(sess.data, dest)
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}
