package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/config"
	"k8s.io/klog/v2"
)

// New 按配置创建限流器，配置了 Redis 地址时使用 Redis
// 关闭限流时返回 nil
func New(cfg *config.Config) (Limiter, error) {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return nil, nil
	}
	if rl.RedisAddr != "" {
		klog.V(6).Infof("[ratelimit] 使用 Redis 限流: addr=%s, limit=%d, window=%s", rl.RedisAddr, rl.Limit, rl.Window)
		limiter, err := NewRedisFixedWindowLimiter(rl.RedisAddr, rl.RedisPassword, rl.Prefix, rl.Limit, rl.Window)
		if err != nil {
			return nil, err
		}
		return limiter, nil
	}
	klog.V(6).Infof("[ratelimit] 使用进程内限流: limit=%d, window=%s", rl.Limit, rl.Window)
	limiter, err := NewMemoryLimiter(rl.Limit, rl.Window)
	if err != nil {
		return nil, err
	}
	return limiter, nil
}

// Middleware 按 路由+客户端IP 限流，超限返回 429
// limiter 为 nil 时直接放行
func Middleware(limiter Limiter, window string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := c.FullPath() + "|" + c.ClientIP()
		if limiter.Allow(c.Request.Context(), key) {
			c.Next()
			return
		}
		klog.Warningf("[ratelimit] 请求超限: key=%s", key)
		if window != "" {
			c.Header("Retry-After", window)
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	}
}

// RetryAfter 返回窗口长度对应的 Retry-After 秒数
func RetryAfter(cfg *config.Config) string {
	seconds := int(cfg.RateLimit.Window.Seconds())
	if seconds <= 0 {
		return ""
	}
	return strconv.Itoa(seconds)
}
