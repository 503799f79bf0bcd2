package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/internal/service"
	"k8s.io/klog/v2"
)

const invalidBodyMessage = "Invalid request body"

// respondError 把服务层错误转换为 HTTP 响应，未识别的错误统一返回 500 和 fallback 文案
func respondError(c *gin.Context, op string, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		klog.V(6).Infof("%s: invalid request: %v", op, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoUpdates):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updates provided"})
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
	case errors.Is(err, service.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.Is(err, service.ErrSampleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Sample not found"})
	default:
		klog.Errorf("%s: failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// chain 在处理函数前追加中间件
func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	return append(handlers, handler)
}
