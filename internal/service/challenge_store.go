package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Challenge es el codigo de restablecimiento vigente para un email.
type Challenge struct {
	CodeHash  string
	ExpiresAt time.Time
}

// ChallengeStore guarda a lo sumo un challenge vigente por email.
type ChallengeStore interface {
	Put(email string, ch Challenge) error
	Get(email string) (Challenge, bool, error)
	Delete(email string) error
}

type memoryChallengeStore struct {
	mu    sync.Mutex
	items map[string]Challenge
}

func NewMemoryChallengeStore() ChallengeStore {
	return &memoryChallengeStore{
		items: make(map[string]Challenge),
	}
}

func (s *memoryChallengeStore) Put(email string, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(email) == "" {
		return nil
	}
	s.items[email] = ch
	return nil
}

func (s *memoryChallengeStore) Get(email string) (Challenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.items[email]
	return ch, ok, nil
}

func (s *memoryChallengeStore) Delete(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, email)
	return nil
}

type redisChallengeStore struct {
	client *redis.Client
	prefix string
}

func NewRedisChallengeStore(client *redis.Client) ChallengeStore {
	if client == nil {
		return nil
	}
	return &redisChallengeStore{
		client: client,
		prefix: "otp:challenge:",
	}
}

// El TTL en redis lleva un margen sobre la expiracion logica: el chequeo
// de expiracion lo hace el engine, no redis, para poder distinguir
// "expirado" de "nunca solicitado".
func (s *redisChallengeStore) Put(email string, ch Challenge) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	value := strconv.FormatInt(ch.ExpiresAt.Unix(), 10) + "|" + ch.CodeHash
	ttl := time.Until(ch.ExpiresAt) + time.Minute
	return s.client.Set(ctx, s.prefix+email, value, ttl).Err()
}

func (s *redisChallengeStore) Get(email string) (Challenge, bool, error) {
	if strings.TrimSpace(email) == "" {
		return Challenge{}, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	value, err := s.client.Get(ctx, s.prefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, false, nil
	}
	if err != nil {
		return Challenge{}, false, err
	}
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return Challenge{}, false, nil
	}
	unix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Challenge{}, false, nil
	}
	return Challenge{
		CodeHash:  parts[1],
		ExpiresAt: time.Unix(unix, 0).UTC(),
	}, true, nil
}

func (s *redisChallengeStore) Delete(email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+email).Err()
}
