package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/penwise/backend/internal/model"
	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建帖子仓储
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// postRow 帖子与画像摘要的联表查询结果
type postRow struct {
	model.GeneratedContent
	ProfileName        string
	ProfileDescription *string
}

func (row postRow) toPost() model.Post {
	return model.Post{
		GeneratedContent: row.GeneratedContent,
		Profile: model.PostProfile{
			Name:        row.ProfileName,
			Description: row.ProfileDescription,
		},
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *postRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("generated_content AS gc").
		Select("gc.*, sp.name AS profile_name, sp.description AS profile_description").
		Joins("JOIN style_profiles sp ON sp.id = gc.profile_id")
}

func (r *postRepository) Create(ctx context.Context, post *model.GeneratedContent) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	var rows []postRow
	if err := r.joined(ctx).Where("gc.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPostNotFound
	}
	post := rows[0].toPost()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	query := r.joined(ctx).Where("gc.user_id = ?", filter.UserID)
	if filter.ProfileID != "" {
		query = query.Where("gc.profile_id = ?", filter.ProfileID)
	}
	if filter.ContentType != "" {
		query = query.Where("gc.content_type = ?", filter.ContentType)
	}
	if filter.Goal != "" {
		query = query.Where("gc.goal = ?", filter.Goal)
	}
	// sqlite 的 LOWER/LIKE 只折叠 ASCII，检索在内存中完成
	needle := strings.ToLower(filter.Search)
	foldInMemory := r.db.Dialector.Name() == "sqlite"
	if needle != "" && !foldInMemory {
		pattern := "%" + likeEscaper.Replace(needle) + "%"
		query = query.Where("LOWER(gc.content) LIKE ? ESCAPE '!'", pattern)
	}

	var rows []postRow
	if err := query.Order("gc.created_at DESC, gc.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		if needle != "" && foldInMemory && !strings.Contains(strings.ToLower(row.Content), needle) {
			continue
		}
		posts = append(posts, row.toPost())
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, id string, columns map[string]interface{}) (bool, error) {
	updates := make(map[string]interface{}, len(columns)+1)
	for k, v := range columns {
		updates[k] = v
	}
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&model.GeneratedContent{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.GeneratedContent{})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
