package repository

import (
	"context"
	"errors"

	"github.com/penwise/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建风格画像仓储
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.StyleProfile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error
}

func (r *profileRepository) CreateWithInsights(ctx context.Context, profile *model.StyleProfile, insights *model.StyleInsights) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			return err
		}
		if insights == nil {
			return nil
		}
		return createInsights(tx, profile.ID, insights)
	})
}

func (r *profileRepository) AttachInsights(ctx context.Context, profileID string, insights *model.StyleInsights) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.StyleProfile{}).Where("id = ?", profileID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProfileNotFound
		}
		return createInsights(tx, profileID, insights)
	})
}

// createInsights 写入分析结果，并把短语和主题展开为子表记录
// 列表越靠前权重越高：第 i 个元素的分值为 len-i
func createInsights(tx *gorm.DB, profileID string, insights *model.StyleInsights) error {
	insights.ProfileID = profileID
	if err := tx.Create(insights).Error; err != nil {
		return err
	}

	phrases := make([]model.CommonPhrase, 0, len(insights.CommonPhrases))
	for i, phrase := range insights.CommonPhrases {
		phrases = append(phrases, model.CommonPhrase{
			ProfileID: profileID,
			Phrase:    phrase,
			Frequency: len(insights.CommonPhrases) - i,
		})
	}
	if len(phrases) > 0 {
		if err := tx.Create(&phrases).Error; err != nil {
			return err
		}
	}

	topics := make([]model.TopicArea, 0, len(insights.TopicAreas))
	for i, topic := range insights.TopicAreas {
		topics = append(topics, model.TopicArea{
			ProfileID:      profileID,
			Topic:          topic,
			RelevanceScore: len(insights.TopicAreas) - i,
		})
	}
	if len(topics) > 0 {
		if err := tx.Create(&topics).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *profileRepository) Get(ctx context.Context, id string) (*model.StyleProfile, error) {
	var profile model.StyleProfile
	err := r.db.WithContext(ctx).
		Preload("Insights").
		Preload("Phrases", func(db *gorm.DB) *gorm.DB {
			return db.Order("frequency DESC, id ASC")
		}).
		Preload("Topics", func(db *gorm.DB) *gorm.DB {
			return db.Order("relevance_score DESC, id ASC")
		}).
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StyleProfile{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *profileRepository) ListByUser(ctx context.Context, userID string) ([]model.StyleProfile, error) {
	var profiles []model.StyleProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 不依赖数据库外键级联，SQLite 默认不开启外键约束
		for _, child := range []interface{}{
			&model.GeneratedContent{},
			&model.CommonPhrase{},
			&model.TopicArea{},
			&model.StyleInsights{},
		} {
			if err := tx.Where("profile_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", id).Delete(&model.StyleProfile{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}
