// Package ratelimit 对调用 LLM 的接口按客户端做固定窗口限流
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"k8s.io/klog/v2"
)

// Limiter 判断 key 在当前窗口内是否还有配额
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// validate 窗口按毫秒分槽，不足 1ms 时无法计算槽位
func validate(limit int, window time.Duration) error {
	if limit <= 0 {
		return errors.New("rate limiter requires a positive limit")
	}
	if window < time.Millisecond {
		return fmt.Errorf("rate limiter window must be at least 1ms, got %s", window)
	}
	return nil
}

// FixedWindowLimiter 基于 Redis 的分布式固定窗口限流
type FixedWindowLimiter struct {
	limit  int
	window time.Duration

	redisClient *redis.Client
	redisPrefix string
}

// NewRedisFixedWindowLimiter 创建 Redis 限流器
func NewRedisFixedWindowLimiter(addr, password, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if err := validate(limit, window); err != nil {
		return nil, err
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "penwise:ratelimit"
	}
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		redisClient: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		redisPrefix: prefix,
	}, nil
}

// Allow 在配额内返回 true，Redis 出错时拒绝请求
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	windowSlot := time.Now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.redisPrefix, key, windowSlot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, err := fixedWindowScript.Run(ctx, l.redisClient, []string{redisKey}, windowMs).Int64()
	if err != nil {
		klog.Warningf("[ratelimit] Redis 限流失败，拒绝请求: key=%s, err=%v", key, err)
		return false
	}
	return res <= int64(l.limit)
}

// Close 关闭 Redis 连接
func (l *FixedWindowLimiter) Close() error {
	return l.redisClient.Close()
}

// MemoryLimiter 单进程固定窗口限流，未配置 Redis 时使用
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	slot    int64
	counter map[string]int
}

// NewMemoryLimiter 创建进程内限流器
func NewMemoryLimiter(limit int, window time.Duration) (*MemoryLimiter, error) {
	if err := validate(limit, window); err != nil {
		return nil, err
	}
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		counter: make(map[string]int),
	}, nil
}

// Allow 在配额内返回 true
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	slot := l.now().UTC().UnixMilli() / l.window.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	// 进入新窗口时整体清空计数
	if slot != l.slot {
		l.slot = slot
		l.counter = make(map[string]int)
	}
	l.counter[key]++
	return l.counter[key] <= l.limit
}
