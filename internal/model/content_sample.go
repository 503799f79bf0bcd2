package model

import "time"

// 样本来源
const (
	SampleSourcePaste    = "paste"
	SampleSourceFile     = "file"
	SampleSourceURL      = "url"
	SampleSourceLinkedIn = "linkedin"
)

// 样本与生成内容的常用类型
const (
	ContentTypeLinkedInPost = "linkedin_post"
	ContentTypeArticle      = "article"
	ContentTypeText         = "text"
	ContentTypeDocument     = "document"
)

// ContentSample 用户导入的写作样本，创建后不再修改
type ContentSample struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string    `json:"userId" gorm:"size:255;index;not null"`
	Title       *string   `json:"title,omitempty" gorm:"size:255"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	ContentType string    `json:"contentType" gorm:"size:50;not null"`
	WordCount   int       `json:"wordCount" gorm:"not null"`
	Source      string    `json:"source" gorm:"size:50;not null"` // paste, file, url, linkedin
	SourceURL   *string   `json:"sourceUrl,omitempty" gorm:"type:text"`
	StorageKey  *string   `json:"-" gorm:"size:500"` // 原始上传文件在对象存储中的 key
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (ContentSample) TableName() string {
	return "content_samples"
}
