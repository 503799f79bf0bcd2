package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/repository"
	"k8s.io/klog/v2"
)

// PostInput 创建帖子请求
type PostInput struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	ProfileID   string `json:"profileId"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	Goal        string `json:"goal"`
	Tone        string `json:"tone"`
	Audience    string `json:"audience"`
}

// PostService 生成内容历史服务
type PostService interface {
	Create(ctx context.Context, input PostInput) (string, error)
	List(ctx context.Context, filter model.PostFilter) ([]model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	// Update 空 patch 返回 ErrNoUpdates，记录不变
	Update(ctx context.Context, id string, patch model.PostPatch) error
	Delete(ctx context.Context, id string) error
}

type postService struct {
	repo     repository.PostRepository
	profiles repository.ProfileRepository
	bus      *eventbus.PostEventBus
}

// NewPostService 创建帖子服务
func NewPostService(repo repository.PostRepository, profiles repository.ProfileRepository, bus *eventbus.PostEventBus) PostService {
	return &postService{repo: repo, profiles: profiles, bus: bus}
}

func (s *postService) Create(ctx context.Context, input PostInput) (string, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.ProfileID) == "" || strings.TrimSpace(input.Content) == "" {
		return "", invalidInput("Missing required fields")
	}

	exists, err := s.profiles.Exists(ctx, input.ProfileID)
	if err != nil {
		return "", fmt.Errorf("check profile: %w", err)
	}
	if !exists {
		return "", ErrProfileNotFound
	}

	defaults := model.GenerationOptions{
		ContentType: input.ContentType,
		Goal:        input.Goal,
		Tone:        input.Tone,
		Audience:    input.Audience,
	}.WithDefaults()

	post := &model.GeneratedContent{
		ID:          input.ID,
		UserID:      input.UserID,
		ProfileID:   input.ProfileID,
		Content:     input.Content,
		ContentType: defaults.ContentType,
		Goal:        defaults.Goal,
		Tone:        defaults.Tone,
		Audience:    defaults.Audience,
	}
	if strings.TrimSpace(post.ID) == "" {
		post.ID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, post); err != nil {
		klog.Errorf("PostService.Create: 保存帖子失败: %v", err)
		return "", fmt.Errorf("create post: %w", err)
	}
	s.publish(ctx, eventbus.PostEventSaved, post.ID, post.ProfileID, post.UserID)
	return post.ID, nil
}

func (s *postService) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	if strings.TrimSpace(filter.UserID) == "" {
		return nil, invalidInput("User ID is required")
	}
	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *postService) Update(ctx context.Context, id string, patch model.PostPatch) error {
	if patch.IsEmpty() {
		return ErrNoUpdates
	}
	updated, err := s.repo.Update(ctx, id, patch.Columns())
	if err != nil {
		klog.Errorf("PostService.Update: 更新帖子失败 id=%s: %v", id, err)
		return fmt.Errorf("update post: %w", err)
	}
	if !updated {
		return ErrPostNotFound
	}
	s.publish(ctx, eventbus.PostEventUpdated, id, "", "")
	return nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		klog.Errorf("PostService.Delete: 删除帖子失败 id=%s: %v", id, err)
		return fmt.Errorf("delete post: %w", err)
	}
	if !deleted {
		return ErrPostNotFound
	}
	s.publish(ctx, eventbus.PostEventDeleted, id, "", "")
	return nil
}

func (s *postService) publish(ctx context.Context, eventType eventbus.PostEventType, postID, profileID, userID string) {
	if err := s.bus.Publish(ctx, eventType, eventbus.PostEvent{
		Type:      eventType,
		PostID:    postID,
		ProfileID: profileID,
		UserID:    userID,
	}); err != nil {
		klog.Warningf("发布帖子事件失败: type=%s, id=%s, err=%v", eventType, postID, err)
	}
}
