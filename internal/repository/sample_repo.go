package repository

import (
	"context"
	"errors"

	"github.com/penwise/backend/internal/model"
	"gorm.io/gorm"
)

type sampleRepository struct {
	db *gorm.DB
}

// NewSampleRepository 创建写作样本仓储
func NewSampleRepository(db *gorm.DB) SampleRepository {
	return &sampleRepository{db: db}
}

func (r *sampleRepository) Create(ctx context.Context, sample *model.ContentSample) error {
	return r.db.WithContext(ctx).Create(sample).Error
}

func (r *sampleRepository) Get(ctx context.Context, id string) (*model.ContentSample, error) {
	var sample model.ContentSample
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSampleNotFound
		}
		return nil, err
	}
	return &sample, nil
}

func (r *sampleRepository) ListByUser(ctx context.Context, userID string) ([]model.ContentSample, error) {
	var samples []model.ContentSample
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&samples).Error
	return samples, err
}

func (r *sampleRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ContentSample{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
