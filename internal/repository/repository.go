package repository

import (
	"context"
	"errors"

	"github.com/penwise/backend/internal/model"
)

var (
	// ErrProfileNotFound 风格画像不存在
	ErrProfileNotFound = errors.New("style profile not found")
	// ErrPostNotFound 帖子不存在
	ErrPostNotFound = errors.New("post not found")
	// ErrSampleNotFound 样本不存在
	ErrSampleNotFound = errors.New("content sample not found")
)

// ProfileRepository 风格画像仓储
type ProfileRepository interface {
	// Create 只写入画像本身
	Create(ctx context.Context, profile *model.StyleProfile) error
	// CreateWithInsights 在同一事务中写入画像、分析结果、短语和主题
	CreateWithInsights(ctx context.Context, profile *model.StyleProfile, insights *model.StyleInsights) error
	// AttachInsights 为已有画像写入分析结果
	AttachInsights(ctx context.Context, profileID string, insights *model.StyleInsights) error
	// Get 获取画像及其分析结果、短语、主题
	Get(ctx context.Context, id string) (*model.StyleProfile, error)
	// Exists 判断画像是否存在
	Exists(ctx context.Context, id string) (bool, error)
	// ListByUser 按创建时间倒序列出用户画像
	ListByUser(ctx context.Context, userID string) ([]model.StyleProfile, error)
	// Delete 删除画像及其所有关联数据，返回是否删除了记录
	Delete(ctx context.Context, id string) (bool, error)
}

// PostRepository 生成内容仓储
type PostRepository interface {
	Create(ctx context.Context, post *model.GeneratedContent) error
	Get(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, filter model.PostFilter) ([]model.Post, error)
	// Update 只更新 columns 中出现的列，返回是否命中记录
	Update(ctx context.Context, id string, columns map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// SampleRepository 写作样本仓储
type SampleRepository interface {
	Create(ctx context.Context, sample *model.ContentSample) error
	Get(ctx context.Context, id string) (*model.ContentSample, error)
	ListByUser(ctx context.Context, userID string) ([]model.ContentSample, error)
	Delete(ctx context.Context, id string) (bool, error)
}
