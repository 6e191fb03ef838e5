package redis

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"time"
)

// IRedis claims webhook deliveries so a replayed event id is processed once
// across every instance sharing the server.
type IRedis interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Address  string
	Password string
	DB       int
}

type redisClient struct {
	client *redis.Client
	log    *logrus.Logger
}

const keyPrefix = "coaching:webhook:"

func New(log *logrus.Logger, opts Options) IRedis {
	log.Info(fmt.Sprintf("Connecting to Redis at %s...", opts.Address))

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		log.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client, log: log}
}

func (r *redisClient) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	claimed, err := r.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		r.log.Error(fmt.Sprintf("Error claiming delivery %s: %v", key, err))
		return false, err
	}
	r.log.Debug(fmt.Sprintf("Claim for delivery %s: %t", key, claimed))
	return claimed, nil
}

func (r *redisClient) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		r.log.Error(fmt.Sprintf("Error releasing delivery %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
