package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/service"
	"k8s.io/klog/v2"
)

// WritingAssistantHandler 写作助手接口：风格分析、生成、历史和画像管理
type WritingAssistantHandler struct {
	profiles   service.ProfileService
	posts      service.PostService
	generator  *service.Generator
	engagement *service.EngagementService
}

// NewWritingAssistantHandler 创建写作助手处理器
func NewWritingAssistantHandler(profiles service.ProfileService, posts service.PostService, generator *service.Generator, engagement *service.EngagementService) *WritingAssistantHandler {
	return &WritingAssistantHandler{
		profiles:   profiles,
		posts:      posts,
		generator:  generator,
		engagement: engagement,
	}
}

// RegisterRoutes 注册路由，limited 用于需要调用 LLM 的接口
func (h *WritingAssistantHandler) RegisterRoutes(router *gin.RouterGroup, limited ...gin.HandlerFunc) {
	router.POST("/analyze", chain(limited, h.Analyze)...)
	router.POST("/generate", chain(limited, h.Generate)...)
	router.POST("/preview", chain(limited, h.Preview)...)

	router.GET("/history", h.ListHistory)
	router.POST("/history", h.SaveHistory)
	router.DELETE("/history/:id", h.DeleteHistory)

	router.GET("/profiles", h.ListProfiles)
	router.DELETE("/profiles", h.DeleteProfile)
}

// AnalyzeRequest 风格分析请求
type AnalyzeRequest struct {
	UserID  string                `json:"userId"`
	Samples []service.SampleInput `json:"samples"`
}

// Analyze 保存样本并提取写作风格
func (h *WritingAssistantHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Analyze: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. User ID and content samples are required."})
		return
	}

	profile, err := h.profiles.Analyze(c.Request.Context(), req.UserID, req.Samples)
	if err != nil {
		respondError(c, "Analyze", err, "Failed to analyze writing style")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GenerateRequest 按画像生成请求
type GenerateRequest struct {
	UserID    string                  `json:"userId"`
	ProfileID string                  `json:"profileId"`
	Options   model.GenerationOptions `json:"options"`
}

// Generate 按风格画像生成内容
func (h *WritingAssistantHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		klog.V(6).Infof("Generate: invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. User ID and profile ID are required."})
		return
	}

	content, err := h.generator.GenerateForProfile(c.Request.Context(), req.UserID, req.ProfileID, req.Options)
	if err != nil {
		respondError(c, "Generate", err, "Failed to generate content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

// PreviewRequest 互动预估请求
type PreviewRequest struct {
	Content string `json:"content"`
}

// Preview 预估帖子互动表现
func (h *WritingAssistantHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	report, err := h.engagement.PreviewEngagement(c.Request.Context(), req.Content)
	if err != nil {
		respondError(c, "Preview", err, "Failed to analyze post engagement")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListHistory 列出用户的生成历史
func (h *WritingAssistantHandler) ListHistory(c *gin.Context) {
	history, err := h.posts.List(c.Request.Context(), model.PostFilter{UserID: c.Query("userId")})
	if err != nil {
		respondError(c, "ListHistory", err, "Failed to fetch content history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// SaveHistory 保存一条生成内容
func (h *WritingAssistantHandler) SaveHistory(c *gin.Context) {
	var req service.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}
	// 历史记录的 ID 始终由服务端生成
	req.ID = ""

	id, err := h.posts.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "SaveHistory", err, "Failed to save content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contentId": id})
}

// DeleteHistory 删除一条生成内容
func (h *WritingAssistantHandler) DeleteHistory(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteHistory", err, "Failed to delete content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListProfiles 列出用户的风格画像
func (h *WritingAssistantHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profiles.ListProfiles(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, "ListProfiles", err, "Failed to fetch profiles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// DeleteProfileRequest 删除画像请求
type DeleteProfileRequest struct {
	ProfileID string `json:"profileId"`
}

// DeleteProfile 删除画像及其生成内容
func (h *WritingAssistantHandler) DeleteProfile(c *gin.Context) {
	var req DeleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile ID is required"})
		return
	}

	deleted, err := h.profiles.DeleteProfile(c.Request.Context(), req.ProfileID)
	if err != nil {
		respondError(c, "DeleteProfile", err, "Failed to delete profile")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
