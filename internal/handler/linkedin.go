package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/internal/pkg/linkedin"
	"github.com/penwise/backend/internal/service"
	"k8s.io/klog/v2"
)

// LinkedInHandler LinkedIn 帖子导入
type LinkedInHandler struct {
	ingest *service.IngestService
}

// NewLinkedInHandler 创建 LinkedIn 处理器
func NewLinkedInHandler(ingest *service.IngestService) *LinkedInHandler {
	return &LinkedInHandler{ingest: ingest}
}

// RegisterRoutes 注册路由
func (h *LinkedInHandler) RegisterRoutes(router *gin.RouterGroup, limited ...gin.HandlerFunc) {
	router.POST("/linkedin/import", chain(limited, h.Import)...)
}

// ImportRequest 导入请求
type ImportRequest struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
	AuthorURN   string `json:"authorUrn"`
}

// Import 导入 LinkedIn 帖子，足够多时同时生成画像
func (h *LinkedInHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	result, err := h.ingest.ImportLinkedIn(c.Request.Context(), req.UserID, req.AccessToken, req.AuthorURN)
	if err != nil {
		if errors.Is(err, linkedin.ErrUnauthorized) {
			klog.V(6).Infof("ImportLinkedIn: token rejected: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "LinkedIn access token is invalid or expired"})
			return
		}
		respondError(c, "ImportLinkedIn", err, "Failed to fetch LinkedIn posts")
		return
	}
	c.JSON(http.StatusOK, result)
}
