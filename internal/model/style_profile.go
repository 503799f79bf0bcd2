package model

import (
	"time"

	"gorm.io/datatypes"
)

// StyleProfile 写作风格画像
type StyleProfile struct {
	ID          string             `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string             `json:"userId" gorm:"size:255;index;not null"`
	Name        string             `json:"name" gorm:"size:255;not null"`
	Description *string            `json:"description,omitempty" gorm:"type:text"`
	SampleCount int                `json:"sampleCount" gorm:"not null;default:0"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Insights    *StyleInsights     `json:"styleInsights" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE;"`
	Phrases     []CommonPhrase     `json:"-" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE;"`
	Topics      []TopicArea        `json:"-" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE;"`
	Posts       []GeneratedContent `json:"-" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE;"` // 随画像级联删除
}

// TableName 指定表名
func (StyleProfile) TableName() string {
	return "style_profiles"
}

// ToneDistribution 语气分布（百分比，仅作展示，不保证和为 100）
type ToneDistribution struct {
	Formal         int `json:"formal" gorm:"not null"`
	Conversational int `json:"conversational" gorm:"not null"`
	Inspirational  int `json:"inspirational" gorm:"not null"`
}

// SentenceStructure 句式分布（百分比，同上）
type SentenceStructure struct {
	Simple   int `json:"simple" gorm:"not null"`
	Compound int `json:"compound" gorm:"not null"`
	Complex  int `json:"complex" gorm:"not null"`
}

// StyleInsights 风格分析结果，与 StyleProfile 一对一
type StyleInsights struct {
	ID                    uint                        `json:"-" gorm:"primaryKey"`
	ProfileID             string                      `json:"-" gorm:"type:varchar(36);uniqueIndex;not null"`
	ToneDistribution      ToneDistribution            `json:"toneDistribution" gorm:"embedded;embeddedPrefix:tone_"`
	SentenceStructure     SentenceStructure           `json:"sentenceStructure" gorm:"embedded;embeddedPrefix:sentence_"`
	VocabularyLevel       int                         `json:"vocabularyLevel" gorm:"not null"`
	AverageSentenceLength float64                     `json:"averageSentenceLength" gorm:"not null"`
	CommonPhrases         datatypes.JSONSlice[string] `json:"commonPhrases"`
	TopicAreas            datatypes.JSONSlice[string] `json:"topicAreas"`
	CreatedAt             time.Time                   `json:"-"`
	UpdatedAt             time.Time                   `json:"-"`
}

// TableName 指定表名
func (StyleInsights) TableName() string {
	return "style_insights"
}

// DefaultStyleInsights 分析失败时使用的兜底结果
func DefaultStyleInsights() StyleInsights {
	return StyleInsights{
		ToneDistribution:      ToneDistribution{Formal: 33, Conversational: 33, Inspirational: 34},
		SentenceStructure:     SentenceStructure{Simple: 33, Compound: 33, Complex: 34},
		VocabularyLevel:       70,
		AverageSentenceLength: 15,
		CommonPhrases:         datatypes.JSONSlice[string]{},
		TopicAreas:            datatypes.JSONSlice[string]{},
	}
}

// MaxTermLength 短语和主题的最大字符数，与列宽一致
const MaxTermLength = 255

// CommonPhrase 画像的常用短语，按 frequency 倒序展示
type CommonPhrase struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	ProfileID string    `json:"-" gorm:"type:varchar(36);index;not null"`
	Phrase    string    `json:"phrase" gorm:"size:255;not null"`
	Frequency int       `json:"frequency" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"-"`
}

// TableName 指定表名
func (CommonPhrase) TableName() string {
	return "common_phrases"
}

// TopicArea 画像的主题领域，按 relevance_score 倒序展示
type TopicArea struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	ProfileID      string    `json:"-" gorm:"type:varchar(36);index;not null"`
	Topic          string    `json:"topic" gorm:"size:255;not null"`
	RelevanceScore int       `json:"relevanceScore" gorm:"not null;default:1"`
	CreatedAt      time.Time `json:"-"`
}

// TableName 指定表名
func (TopicArea) TableName() string {
	return "topic_areas"
}
