// Package quota provides the Redis-backed per-client quota hook.
// This package is internal and should not be imported by external projects.
package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// =============================================================================
// 🚦 配额限制器
// =============================================================================

// ErrClosed 限制器已关闭
var ErrClosed = errors.New("quota limiter is closed")

// Config 配额配置
type Config struct {
	// Redis 地址
	Addr string
	// 密码
	Password string
	// 数据库编号
	DB int
	// 连接池大小
	PoolSize int
	// 最小空闲连接数
	MinIdleConns int

	// 每个窗口允许的请求数
	Limit int64
	// 固定窗口长度
	Window time.Duration
	// 键前缀
	KeyPrefix string
}

// Recorder 接收配额判定结果
type Recorder interface {
	RecordQuotaCheck(result string)
}

// allowScript 原子地计数并开启窗口。缺少 TTL 的旧键也会补上过期时间。
var allowScript = redis.NewScript(`
	local n = redis.call('INCR', KEYS[1])
	if n == 1 or redis.call('PTTL', KEYS[1]) < 0 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return n
`)

// RedisLimiter 基于 Lua 脚本（INCR + PEXPIRE）的固定窗口计数器
type RedisLimiter struct {
	redis    *redis.Client
	config   Config
	logger   *zap.Logger
	recorder Recorder

	mu     sync.RWMutex
	closed bool
}

// Option 配置 RedisLimiter
type Option func(*RedisLimiter)

// WithRecorder 设置指标记录器
func WithRecorder(r Recorder) Option {
	return func(l *RedisLimiter) { l.recorder = r }
}

// NewRedisLimiter 连接 Redis 并创建限制器
func NewRedisLimiter(config Config, logger *zap.Logger, opts ...Option) (*RedisLimiter, error) {
	if config.Limit <= 0 {
		return nil, fmt.Errorf("quota limit must be positive, got %d", config.Limit)
	}
	if config.Window <= 0 {
		return nil, fmt.Errorf("quota window must be positive, got %s", config.Window)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	l := &RedisLimiter{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "quota")),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.logger.Info("quota limiter initialized",
		zap.String("addr", config.Addr),
		zap.Int64("limit", config.Limit),
		zap.Duration("window", config.Window),
	)
	return l, nil
}

// =============================================================================
// 🎯 核心方法
// =============================================================================

// Allow 为 key 计数一次，窗口内次数不超过 Limit 时返回 true
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return false, ErrClosed
	}

	redisKey := l.config.KeyPrefix + key
	count, err := allowScript.Run(ctx, l.redis, []string{redisKey}, l.config.Window.Milliseconds()).Int64()
	if err != nil {
		l.record("error")
		return false, fmt.Errorf("quota check failed: %w", err)
	}

	if count > l.config.Limit {
		l.record("denied")
		l.logger.Debug("quota exceeded", zap.String("key", key), zap.Int64("count", count))
		return false, nil
	}
	l.record("allowed")
	return true, nil
}

// Remaining 返回 key 在当前窗口内剩余的次数
func (l *RedisLimiter) Remaining(ctx context.Context, key string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return 0, ErrClosed
	}

	count, err := l.redis.Get(ctx, l.config.KeyPrefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return l.config.Limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota get failed: %w", err)
	}
	if count >= l.config.Limit {
		return 0, nil
	}
	return l.config.Limit - count, nil
}

// Ping 检查 Redis 连通性
func (l *RedisLimiter) Ping(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return ErrClosed
	}
	return l.redis.Ping(ctx).Err()
}

// Close 关闭连接
func (l *RedisLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.logger.Info("closing quota limiter")
	return l.redis.Close()
}

func (l *RedisLimiter) record(result string) {
	if l.recorder != nil {
		l.recorder.RecordQuotaCheck(result)
	}
}
