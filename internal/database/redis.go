package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/locvowork/epms/internal/logger"
)

// SchemaInvalidationChannel carries "drop your cached salary layout" notices.
const SchemaInvalidationChannel = "epms:schema:invalidate"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// SchemaBus broadcasts salary-layout invalidations between service instances.
type SchemaBus struct {
	client *redis.Client
}

func NewSchemaBus(client *redis.Client) *SchemaBus {
	return &SchemaBus{client: client}
}

// PublishInvalidation notifies every subscriber, including this process.
func (b *SchemaBus) PublishInvalidation(ctx context.Context) error {
	return b.client.Publish(ctx, SchemaInvalidationChannel, time.Now().UTC().Format(time.RFC3339Nano)).Err()
}

// Subscribe calls onInvalidate for every notice until ctx is done.
func (b *SchemaBus) Subscribe(ctx context.Context, onInvalidate func()) {
	sub := b.client.Subscribe(ctx, SchemaInvalidationChannel)
	go func() {
		defer sub.Close()
		listenInvalidations(ctx, sub.Channel(), onInvalidate)
	}()
}

// listenInvalidations blocks until ctx is done or ch is closed.
func listenInvalidations(ctx context.Context, ch <-chan *redis.Message, onInvalidate func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			logger.InfoLog(ctx, "Schema invalidation received (%s)", msg.Payload)
			onInvalidate()
		}
	}
}
