package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/internal/service"
)

// ProfileHandler 风格画像查询
type ProfileHandler struct {
	service service.ProfileService
}

// NewProfileHandler 创建画像处理器
func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profiles", h.List)
	router.GET("/profiles/:id", h.Get)
}

// List 列出用户画像
func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.service.ListProfiles(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, "ListProfiles", err, "Failed to fetch profiles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// Get 获取画像详情，包含分析结果、常用短语和主题
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetProfile", err, "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
