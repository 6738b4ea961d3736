package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/videoflow/config"
	"github.com/BaSui01/videoflow/internal/tlsutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// =============================================================================
// 🔑 Redis 密钥存储
// =============================================================================

// ErrStoreClosed 存储已关闭
var ErrStoreClosed = errors.New("secret store is closed")

// RedisStore 基于 Redis 的密钥存储
type RedisStore struct {
	redis  *redis.Client
	prefix string
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewRedisStore 创建 Redis 密钥存储并测试连接
func NewRedisStore(cfg config.RedisConfig, prefix string, logger *zap.Logger) (*RedisStore, error) {
	opts := &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}
	if cfg.TLS {
		host, _, _ := strings.Cut(cfg.Addr, ":")
		opts.TLSConfig = tlsutil.ClientTLSConfig(host)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := &RedisStore{
		redis:  client,
		prefix: prefix,
		logger: logger.With(zap.String("component", "secret_store"), zap.String("backend", "redis")),
	}

	logger.Info("redis secret store initialized",
		zap.String("addr", cfg.Addr),
		zap.String("prefix", prefix),
	)

	return s, nil
}

func (s *RedisStore) key(service string) string {
	return s.prefix + service
}

// Resolve 实现 Resolver。Redis 故障按缺失处理。
func (s *RedisStore) Resolve(ctx context.Context, service string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false
	}

	val, err := s.redis.Get(ctx, s.key(service)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		s.logger.Warn("secret lookup failed", zap.String("service", service), zap.Error(err))
		return "", false
	}

	val = strings.TrimSpace(val)
	return val, val != ""
}

// Put 写入密钥（不过期）
func (s *RedisStore) Put(ctx context.Context, service, secret string) error {
	if !IsKnownService(service) {
		return fmt.Errorf("unknown service %q", service)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err := s.redis.Set(ctx, s.key(service), secret, 0).Err(); err != nil {
		return fmt.Errorf("secret put failed: %w", err)
	}

	s.logger.Info("secret stored", zap.String("service", service), zap.String("secret", Mask(secret)))
	return nil
}

// Delete 删除密钥
func (s *RedisStore) Delete(ctx context.Context, service string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	n, err := s.redis.Del(ctx, s.key(service)).Result()
	if err != nil {
		return fmt.Errorf("secret delete failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w for service %q", ErrSecretNotStored, service)
	}

	s.logger.Info("secret deleted", zap.String("service", service))
	return nil
}

// Name 实现 handlers.HealthCheck
func (s *RedisStore) Name() string {
	return "secrets_redis"
}

// Check 实现 handlers.HealthCheck
func (s *RedisStore) Check(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	return s.redis.Ping(ctx).Err()
}

// Close 关闭存储
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.logger.Info("closing redis secret store")

	return s.redis.Close()
}
