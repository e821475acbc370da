package protocol

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisConnector implements the Connector interface for redis
type RedisConnector struct{}

// NewRedisConnector returns a new instance of RedisConnector
func NewRedisConnector() *RedisConnector {
	return &RedisConnector{}
}

// Connect opens a client and authenticates with a PING
func (c *RedisConnector) Connect(ctx context.Context, req Request) (Session, error) {
	timeout := req.timeout()

	client := redis.NewClient(&redis.Options{
		Addr:         req.HostPort(),
		Username:     req.Principal,
		Password:     req.Credential,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   -1,
		PoolSize:     1,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, classifyRedisError(err)
	}

	return &redisSession{client: client}, nil
}

type redisSession struct {
	client *redis.Client
}

// HealthCheck reads the server info section
func (s *redisSession) HealthCheck(ctx context.Context) error {
	info, err := s.client.Info(ctx, "server").Result()

	if err != nil {
		return classifyRedisError(err)
	}

	if !strings.Contains(info, "redis_version") {
		return protocolError("unexpected info reply")
	}

	return nil
}

func (s *redisSession) Close() error {
	return s.client.Close()
}

func classifyRedisError(err error) error {
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "noauth") ||
		strings.Contains(msg, "wrongpass") ||
		strings.Contains(msg, "invalid password") ||
		strings.Contains(msg, "authentication required") {
		return authError(err)
	}

	var redisErr redis.Error

	if errors.As(err, &redisErr) {
		return protocolError("%s", err.Error())
	}

	if isTimeout(err) || isNetError(err) {
		return wrapNetError(err)
	}

	return protocolError("%s", err.Error())
}
