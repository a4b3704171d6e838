package messaging

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
)

// redisBus implements Bus over redis pub/sub. Redis gives at-most-once to
// absent subscribers; the outbox dispatcher on the producing side is what
// upgrades the end-to-end guarantee to at-least-once (unpublished rows stay
// pending until a publish succeeds).
type redisBus struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedisBus(addr, password string, db int, log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBus{log: log.With("service", "RedisBus"), rdb: rdb}, nil
}

func (b *redisBus) Publish(ctx context.Context, channel string, body []byte) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	if channel == "" {
		return fmt.Errorf("channel required")
	}
	return b.rdb.Publish(ctx, channel, body).Err()
}

func (b *redisBus) Subscribe(ctx context.Context, channel string, handle func(ctx context.Context, body []byte)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis bus not initialized")
	}
	if handle == nil {
		return fmt.Errorf("handler required")
	}

	sub := b.rdb.Subscribe(ctx, channel)

	// confirms the subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				handle(ctx, []byte(m.Payload))
			}
		}
	}()

	b.log.Info("subscribed", "channel", channel)
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
