package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/service"
	"k8s.io/klog/v2"
)

// 单次上传最多的文件数
const maxUploadFiles = 10

// multipart 边界和表单字段的额外余量
const multipartOverhead = 1 << 20

// SampleHandler 写作样本导入与管理
type SampleHandler struct {
	ingest *service.IngestService
}

// NewSampleHandler 创建样本处理器
func NewSampleHandler(ingest *service.IngestService) *SampleHandler {
	return &SampleHandler{ingest: ingest}
}

// RegisterRoutes 注册路由
func (h *SampleHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/samples", h.List)
	router.POST("/samples", h.Create)
	router.POST("/samples/upload", h.Upload)
	router.POST("/samples/url", h.FromURLs)
	router.DELETE("/samples", h.Delete)
}

// CreateSampleRequest 粘贴文本请求
type CreateSampleRequest struct {
	UserID      string  `json:"userId"`
	Title       *string `json:"title"`
	Content     string  `json:"content"`
	ContentType string  `json:"contentType"`
}

// URLSampleRequest 网页导入请求
type URLSampleRequest struct {
	UserID      string   `json:"userId"`
	URLs        []string `json:"urls"`
	ContentType string   `json:"contentType"`
}

// DeleteSampleRequest 删除样本请求
type DeleteSampleRequest struct {
	SampleID string `json:"sampleId"`
}

// List 列出用户样本
func (h *SampleHandler) List(c *gin.Context) {
	samples, err := h.ingest.ListSamples(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, "ListSamples", err, "Failed to fetch content samples")
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// Create 保存粘贴的文本
func (h *SampleHandler) Create(c *gin.Context) {
	var req CreateSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	sample, err := h.ingest.IngestText(c.Request.Context(), req.UserID, req.Title, req.Content, req.ContentType)
	if err != nil {
		respondError(c, "CreateSample", err, "Failed to save content sample")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sample": sample})
}

// Upload 上传文件样本，file 字段可重复
func (h *SampleHandler) Upload(c *gin.Context) {
	maxFile := h.ingest.MaxFileBytes()
	if maxFile > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFile*maxUploadFiles+multipartOverhead)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload exceeds size limit"})
			return
		}
		klog.V(6).Infof("UploadSamples: invalid form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	userID := c.PostForm("userId")
	files := form.File["file"]
	if userID == "" || len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID and at least one file are required"})
		return
	}
	if len(files) > maxUploadFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("At most %d files can be uploaded at once", maxUploadFiles)})
		return
	}
	for _, fh := range files {
		if err := h.ingest.CheckFileSize(fh.Filename, fh.Size); err != nil {
			respondError(c, "UploadSamples", err, "Failed to process uploaded files")
			return
		}
	}

	samples := make([]model.ContentSample, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(c, "UploadSamples", fmt.Errorf("open %s: %w", fh.Filename, err), "Failed to process uploaded files")
			return
		}
		reader := io.Reader(f)
		if maxFile > 0 {
			reader = io.LimitReader(f, maxFile+1)
		}
		data, err := io.ReadAll(reader)
		f.Close()
		if err != nil {
			respondError(c, "UploadSamples", fmt.Errorf("read %s: %w", fh.Filename, err), "Failed to process uploaded files")
			return
		}

		sample, err := h.ingest.IngestFile(c.Request.Context(), userID, fh.Filename, data)
		if err != nil {
			respondError(c, "UploadSamples", err, "Failed to process uploaded files")
			return
		}
		samples = append(samples, *sample)
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// FromURLs 抓取网页正文作为样本
func (h *SampleHandler) FromURLs(c *gin.Context) {
	var req URLSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	samples, err := h.ingest.IngestURLs(c.Request.Context(), req.UserID, req.URLs, req.ContentType)
	if err != nil {
		respondError(c, "SamplesFromURLs", err, "Failed to fetch content from URLs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// Delete 删除样本
func (h *SampleHandler) Delete(c *gin.Context) {
	var req DeleteSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sample ID is required"})
		return
	}

	if err := h.ingest.DeleteSample(c.Request.Context(), req.SampleID); err != nil {
		respondError(c, "DeleteSample", err, "Failed to delete content sample")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
