package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/icancodefyi/sarthi-ai/internal/pkg/config"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSlotTimeout is returned when no concurrency slot frees up in time
var ErrSlotTimeout = errors.New("timeout waiting for concurrency slot")

// acquireScript atomically checks and increments a slot counter
var acquireScript = goredis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	local max_concurrency = tonumber(ARGV[1])
	if current < max_concurrency then
		redis.call('INCR', KEYS[1])
		redis.call('EXPIRE', KEYS[1], ARGV[2])
		return 1
	else
		return 0
	end
`)

// Connect opens and pings a Redis client
func Connect(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisService.Password,
		DB:       cfg.RedisService.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	zap.L().Info("Redis connected successfully",
		zap.String("addr", cfg.GetRedisAddr()))

	return client, nil
}

// SlotPool limits concurrent calls per key across every process sharing Redis
type SlotPool struct {
	client       *goredis.Client
	ttl          time.Duration
	pollInterval time.Duration
	log          *zap.Logger
}

// NewSlotPool creates a slot pool over client
func NewSlotPool(client *goredis.Client) *SlotPool {
	return &SlotPool{
		client:       client,
		ttl:          time.Hour,
		pollInterval: 2 * time.Second,
		log:          zap.L().With(zap.String("component", "redis")),
	}
}

// WithPollInterval overrides how often Wait retries a full pool
func (p *SlotPool) WithPollInterval(d time.Duration) *SlotPool {
	p.pollInterval = d
	return p
}

// Acquire takes a slot for key if fewer than max are held
func (p *SlotPool) Acquire(ctx context.Context, key string, max int) (bool, error) {
	if p == nil || p.client == nil {
		return false, fmt.Errorf("redis client not initialized")
	}

	result, err := acquireScript.Run(ctx, p.client, []string{key}, max, int(p.ttl.Seconds())).Result()
	if err != nil {
		return false, err
	}

	acquired, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type %T", result)
	}

	return acquired == 1, nil
}

// Release gives a slot back
func (p *SlotPool) Release(ctx context.Context, key string) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	newCount, err := p.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}

	// If count becomes 0 or negative, delete the key
	if newCount <= 0 {
		p.client.Del(ctx, key)
	}

	return nil
}

// Current returns the number of held slots for key
func (p *SlotPool) Current(ctx context.Context, key string) (int, error) {
	if p == nil || p.client == nil {
		return 0, fmt.Errorf("redis client not initialized")
	}

	count, err := p.client.Get(ctx, key).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Wait polls until a slot is acquired, maxWait elapses or ctx is done.
// The returned release func must be called once the guarded work finishes.
func (p *SlotPool) Wait(ctx context.Context, key string, max int, maxWait time.Duration) (func(), error) {
	deadline := time.Now().Add(maxWait)

	for {
		acquired, err := p.Acquire(ctx, key, max)
		if err != nil {
			return nil, err
		}
		if acquired {
			return func() {
				if err := p.Release(context.Background(), key); err != nil {
					p.log.Warn("Failed to release slot", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}

		if time.Now().Add(p.pollInterval).After(deadline) {
			return nil, ErrSlotTimeout
		}

		t := time.NewTimer(p.pollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}
