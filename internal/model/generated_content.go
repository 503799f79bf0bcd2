package model

import "time"

// GeneratedContent 生成或手动创建的帖子
type GeneratedContent struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string    `json:"userId" gorm:"size:255;index;not null"`
	ProfileID   string    `json:"profileId" gorm:"type:varchar(36);index;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	ContentType string    `json:"contentType" gorm:"size:50;not null"`
	Goal        string    `json:"goal" gorm:"size:50;not null"`
	Tone        string    `json:"tone" gorm:"size:50;not null"`
	Audience    string    `json:"audience" gorm:"size:50;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (GeneratedContent) TableName() string {
	return "generated_content"
}

// PostProfile 帖子列表中附带的画像摘要
type PostProfile struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Post 帖子及其所属画像摘要
type Post struct {
	GeneratedContent
	Profile PostProfile `json:"profile"`
}

// PostFilter 帖子列表过滤条件，空字段表示不过滤
type PostFilter struct {
	UserID      string
	ProfileID   string
	ContentType string
	Goal        string
	Search      string
}

// PostPatch 局部更新，nil 字段不更新
type PostPatch struct {
	Content     *string `json:"content"`
	ContentType *string `json:"contentType"`
	Goal        *string `json:"goal"`
	Tone        *string `json:"tone"`
	Audience    *string `json:"audience"`
}

// IsEmpty 判断是否没有任何待更新字段
func (p PostPatch) IsEmpty() bool {
	return p.Content == nil && p.ContentType == nil && p.Goal == nil && p.Tone == nil && p.Audience == nil
}

// Columns 只返回请求中出现的列
func (p PostPatch) Columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if p.Content != nil {
		columns["content"] = *p.Content
	}
	if p.ContentType != nil {
		columns["content_type"] = *p.ContentType
	}
	if p.Goal != nil {
		columns["goal"] = *p.Goal
	}
	if p.Tone != nil {
		columns["tone"] = *p.Tone
	}
	if p.Audience != nil {
		columns["audience"] = *p.Audience
	}
	return columns
}
