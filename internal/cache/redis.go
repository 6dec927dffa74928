package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sheriph/chat-bot/internal/models"
)

// RedisStore keeps envelopes in Redis with server-enforced expiry, so
// entries vanish on their own and a miss needs no bookkeeping.
type RedisStore struct {
	client *redis.Client
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Put(ctx context.Context, env Envelope) (string, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrCachePersistence, err)
	}

	handle := newHandle()
	ttl := time.Duration(env.TTLSeconds) * time.Second
	if err := s.client.Set(ctx, keyPrefix+handle, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrCachePersistence, err)
	}
	return handle, nil
}

func (s *RedisStore) Get(ctx context.Context, handle string) (Envelope, error) {
	data, err := s.client.Get(ctx, keyPrefix+handle).Bytes()
	if err == redis.Nil {
		return Envelope{}, models.ErrNotFoundOrExpired
	}
	if err != nil {
		return Envelope{}, err
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// A corrupt entry is as good as gone.
		return Envelope{}, models.ErrNotFoundOrExpired
	}
	return env, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
