package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/internal/service"
)

// GenerateHandler 行业观点帖、主题帖生成和帖子优化
type GenerateHandler struct {
	generator *service.Generator
}

// NewGenerateHandler 创建生成处理器
func NewGenerateHandler(generator *service.Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// RegisterRoutes 注册路由
func (h *GenerateHandler) RegisterRoutes(router *gin.RouterGroup, limited ...gin.HandlerFunc) {
	router.POST("/generate", chain(limited, h.Generate)...)
	router.POST("/generate-content", chain(limited, h.GenerateContent)...)
	router.POST("/optimize", chain(limited, h.Optimize)...)
}

// TopicPostRequest 主题帖请求
type TopicPostRequest struct {
	ProfileID string `json:"profileId"`
	Topic     string `json:"topic"`
}

// OptimizeRequest 帖子优化请求，evaluation 为评估结果
type OptimizeRequest struct {
	Post       string `json:"post"`
	Goal       string `json:"goal"`
	Industry   string `json:"industry"`
	Evaluation *struct {
		Feedback      []service.EvaluationFeedback `json:"feedback"`
		GoalAlignment struct {
			Recommendations []string `json:"recommendations"`
		} `json:"goalAlignment"`
	} `json:"evaluation"`
}

// IndustryDraftRequest 行业草稿请求
type IndustryDraftRequest struct {
	Industry string `json:"industry"`
	Tone     string `json:"tone"`
	Length   string `json:"length"`
}

// Generate 生成行业观点帖
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req IndustryDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Industry is required"})
		return
	}

	content, err := h.generator.GenerateIndustryDraft(c.Request.Context(), req.Industry, req.Tone, req.Length)
	if err != nil {
		respondError(c, "GenerateIndustryDraft", err, "Failed to generate content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

// GenerateContent 按画像风格生成主题帖
func (h *GenerateHandler) GenerateContent(c *gin.Context) {
	var req TopicPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile ID and topic are required"})
		return
	}

	content, err := h.generator.GenerateForTopic(c.Request.Context(), req.ProfileID, req.Topic)
	if err != nil {
		respondError(c, "GenerateTopicPost", err, "Failed to generate content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

// Optimize 按评估意见优化帖子
func (h *GenerateHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Evaluation == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	optimized, err := h.generator.OptimizePost(c.Request.Context(), service.OptimizeInput{
		Post:            req.Post,
		Goal:            req.Goal,
		Industry:        req.Industry,
		Feedback:        req.Evaluation.Feedback,
		Recommendations: req.Evaluation.GoalAlignment.Recommendations,
	})
	if err != nil {
		respondError(c, "OptimizePost", err, "Failed to optimize post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"optimizedPost": optimized})
}
