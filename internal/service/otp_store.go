package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore guarda el hash del código pendiente por email. Consume devuelve y
// elimina en un solo paso: cada emisión admite un único intento.
type OTPStore interface {
	Save(ctx context.Context, email, hash string, ttl time.Duration) error
	Consume(ctx context.Context, email string) (string, error)
}

type memoryOTPStore struct {
	mu    sync.Mutex
	items map[string]otpEntry
}

type otpEntry struct {
	hash      string
	expiresAt time.Time
}

func NewMemoryOTPStore() OTPStore {
	return &memoryOTPStore{items: make(map[string]otpEntry)}
}

func (s *memoryOTPStore) Save(_ context.Context, email, hash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[email] = otpEntry{hash: hash, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *memoryOTPStore) Consume(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[email]
	if !ok {
		return "", nil
	}
	delete(s.items, email)
	if time.Now().UTC().After(entry.expiresAt) {
		return "", nil
	}
	return entry.hash, nil
}

type redisOTPStore struct {
	client *redis.Client
	prefix string
}

func NewRedisOTPStore(client *redis.Client) OTPStore {
	if client == nil {
		return nil
	}
	return &redisOTPStore{client: client, prefix: "otp:code:"}
}

func (s *redisOTPStore) Save(ctx context.Context, email, hash string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+email, hash, ttl).Err()
}

func (s *redisOTPStore) Consume(ctx context.Context, email string) (string, error) {
	val, err := s.client.GetDel(ctx, s.prefix+email).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// OTPRateLimiter limita la frecuencia de solicitudes de OTP por clave.
type OTPRateLimiter interface {
	Allow(key string) bool
}

type otpRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
}

// NewOTPRateLimiter crea un rate limiter en memoria.
func NewOTPRateLimiter(window time.Duration, max int) OTPRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &otpRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
	}
}

func (l *otpRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}

const redisOTPAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisOTPRateLimiter struct {
	client *redis.Client
	window time.Duration
	max    int
	prefix string
}

func NewRedisOTPRateLimiter(client *redis.Client, window time.Duration, max int) OTPRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisOTPRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "otp:rl:",
	}
}

func (l *redisOTPRateLimiter) Allow(key string) bool {
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisOTPAllowScript, []string{l.prefix + normalizedKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
