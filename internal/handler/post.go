package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/service"
)

// PostHandler 帖子 CRUD
type PostHandler struct {
	service service.PostService
}

// NewPostHandler 创建帖子处理器
func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/posts", h.List)
	router.POST("/posts", h.Create)
	router.GET("/posts/:id", h.Get)
	router.PATCH("/posts/:id", h.Update)
	router.DELETE("/posts/:id", h.Delete)
}

// List 按条件列出帖子
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.service.List(c.Request.Context(), model.PostFilter{
		UserID:      c.Query("userId"),
		ProfileID:   c.Query("profileId"),
		ContentType: c.Query("contentType"),
		Goal:        c.Query("goal"),
		Search:      c.Query("search"),
	})
	if err != nil {
		respondError(c, "ListPosts", err, "Failed to fetch posts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// Create 保存帖子，允许调用方指定 ID
func (h *PostHandler) Create(c *gin.Context) {
	var req service.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	id, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "CreatePost", err, "Failed to create post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// Get 获取帖子
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "GetPost", err, "Failed to fetch post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// Update 局部更新帖子
func (h *PostHandler) Update(c *gin.Context) {
	var patch model.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	if err := h.service.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		respondError(c, "UpdatePost", err, "Failed to update post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete 删除帖子
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeletePost", err, "Failed to delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
