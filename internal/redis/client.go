package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientOptions tunes the connection pool. Zero values fall back to the
// defaults below.
type ClientOptions struct {
	Username     string
	Password     string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	// IOTimeout applies to both reads and writes.
	IOTimeout time.Duration
}

const (
	defaultPoolSize    = 20
	defaultDialTimeout = 5 * time.Second
	defaultIOTimeout   = 2 * time.Second
)

func (o ClientOptions) redisOptions(addr string) *redis.Options {
	opts := &redis.Options{
		Addr:         addr,
		Username:     o.Username,
		Password:     o.Password,
		PoolSize:     o.PoolSize,
		MinIdleConns: o.MinIdleConns,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.IOTimeout,
		WriteTimeout: o.IOTimeout,
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.MinIdleConns < 0 {
		opts.MinIdleConns = 0
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if o.IOTimeout <= 0 {
		opts.ReadTimeout = defaultIOTimeout
		opts.WriteTimeout = defaultIOTimeout
	}
	return opts
}

// NewRedisClient connects to addr and pings it before returning. The ping is
// bounded by ctx and by the dial timeout.
func NewRedisClient(ctx context.Context, addr string, o ClientOptions) (*redis.Client, error) {
	opts := o.redisOptions(addr)
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return rdb, nil
}
