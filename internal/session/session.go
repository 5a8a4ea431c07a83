// Package session maps opaque session tokens to user ids.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/emilythestrangee/media-ranker/backend/internal/config"
)

// ErrInvalidSession is returned for unknown, expired or malformed tokens.
var ErrInvalidSession = errors.New("invalid session")

// Store issues and resolves session tokens.
type Store interface {
	Issue(ctx context.Context, userID int) (string, error)
	Resolve(ctx context.Context, token string) (int, error)
	Revoke(ctx context.Context, token string) error
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.SessionConfig, redisCfg config.RedisConfig) (Store, error) {
	switch cfg.Backend {
	case config.SessionBackendJWT:
		return NewJWTStore([]byte(cfg.Secret), cfg.TTL), nil
	case config.SessionBackendRedis:
		client, err := NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// NewRedisClient connects using REDIS_URL when set, otherwise the address
// fields, and pings the server.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}
