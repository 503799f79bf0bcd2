package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/repository"
	"github.com/penwise/backend/internal/utils"
	"k8s.io/klog/v2"
)

// ProfileMeta 创建画像所需的基本信息
type ProfileMeta struct {
	UserID      string
	Name        string
	Description *string
	SampleCount int
}

// ProfileDetail 画像详情，附带按权重排序的短语和主题
type ProfileDetail struct {
	*model.StyleProfile
	CommonPhrases []model.CommonPhrase `json:"commonPhrases"`
	TopicAreas    []model.TopicArea    `json:"topicAreas"`
}

// SampleInput 分析请求中的样本
type SampleInput struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Content     string  `json:"content"`
	ContentType string  `json:"contentType"`
	WordCount   int     `json:"wordCount"`
	Source      string  `json:"source"`
	SourceURL   *string `json:"sourceUrl"`
}

// ProfileService 风格画像服务
type ProfileService interface {
	// CreateProfile 只创建画像，返回新 ID
	CreateProfile(ctx context.Context, meta ProfileMeta) (string, error)
	// CreateProfileWithInsights 在一个事务中创建画像及分析结果
	CreateProfileWithInsights(ctx context.Context, meta ProfileMeta, insights model.StyleInsights) (*model.StyleProfile, error)
	// AttachInsights 为已有画像保存分析结果
	AttachInsights(ctx context.Context, profileID string, insights model.StyleInsights) error
	// GetProfile 获取画像详情，不存在时返回 ErrProfileNotFound
	GetProfile(ctx context.Context, id string) (*ProfileDetail, error)
	// ListProfiles 按创建时间倒序列出用户画像
	ListProfiles(ctx context.Context, userID string) ([]model.StyleProfile, error)
	// DeleteProfile 删除画像及其生成内容，返回是否存在
	DeleteProfile(ctx context.Context, id string) (bool, error)
	// Analyze 保存样本、提取风格并创建画像
	Analyze(ctx context.Context, userID string, samples []SampleInput) (*model.StyleProfile, error)
}

type profileService struct {
	repo       repository.ProfileRepository
	sampleRepo repository.SampleRepository
	analyzer   *StyleAnalyzer
	bus        *eventbus.ProfileEventBus
	now        func() time.Time
}

// NewProfileService 创建画像服务
func NewProfileService(repo repository.ProfileRepository, sampleRepo repository.SampleRepository, analyzer *StyleAnalyzer, bus *eventbus.ProfileEventBus) ProfileService {
	return &profileService{
		repo:       repo,
		sampleRepo: sampleRepo,
		analyzer:   analyzer,
		bus:        bus,
		now:        time.Now,
	}
}

func (s *profileService) newProfile(meta ProfileMeta) *model.StyleProfile {
	return &model.StyleProfile{
		ID:          uuid.NewString(),
		UserID:      meta.UserID,
		Name:        meta.Name,
		Description: meta.Description,
		SampleCount: meta.SampleCount,
	}
}

func validateMeta(meta ProfileMeta) error {
	if strings.TrimSpace(meta.UserID) == "" {
		return invalidInput("userId is required")
	}
	if strings.TrimSpace(meta.Name) == "" {
		return invalidInput("profile name is required")
	}
	return nil
}

func (s *profileService) CreateProfile(ctx context.Context, meta ProfileMeta) (string, error) {
	if err := validateMeta(meta); err != nil {
		return "", err
	}
	profile := s.newProfile(meta)
	if err := s.repo.Create(ctx, profile); err != nil {
		klog.Errorf("CreateProfile: 创建画像失败: %v", err)
		return "", fmt.Errorf("create profile: %w", err)
	}
	s.publish(ctx, eventbus.ProfileEventCreated, profile)
	return profile.ID, nil
}

func (s *profileService) CreateProfileWithInsights(ctx context.Context, meta ProfileMeta, insights model.StyleInsights) (*model.StyleProfile, error) {
	if err := validateMeta(meta); err != nil {
		return nil, err
	}
	profile := s.newProfile(meta)
	if err := s.repo.CreateWithInsights(ctx, profile, &insights); err != nil {
		klog.Errorf("CreateProfileWithInsights: 保存画像失败: %v", err)
		return nil, fmt.Errorf("create profile: %w", err)
	}
	profile.Insights = &insights
	klog.V(6).Infof("CreateProfileWithInsights: 画像已创建 id=%s, samples=%d", profile.ID, profile.SampleCount)
	s.publish(ctx, eventbus.ProfileEventCreated, profile)
	return profile, nil
}

func (s *profileService) AttachInsights(ctx context.Context, profileID string, insights model.StyleInsights) error {
	if err := s.repo.AttachInsights(ctx, profileID, &insights); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return err
		}
		return fmt.Errorf("attach insights: %w", err)
	}
	return nil
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*ProfileDetail, error) {
	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &ProfileDetail{
		StyleProfile:  profile,
		CommonPhrases: profile.Phrases,
		TopicAreas:    profile.Topics,
	}
	if detail.CommonPhrases == nil {
		detail.CommonPhrases = []model.CommonPhrase{}
	}
	if detail.TopicAreas == nil {
		detail.TopicAreas = []model.TopicArea{}
	}
	return detail, nil
}

func (s *profileService) ListProfiles(ctx context.Context, userID string) ([]model.StyleProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("userId is required")
	}
	profiles, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if profiles == nil {
		profiles = []model.StyleProfile{}
	}
	return profiles, nil
}

func (s *profileService) DeleteProfile(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, invalidInput("profileId is required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		klog.Errorf("DeleteProfile: 删除画像失败 id=%s: %v", id, err)
		return false, fmt.Errorf("delete profile: %w", err)
	}
	if deleted {
		s.publish(ctx, eventbus.ProfileEventDeleted, &model.StyleProfile{ID: id})
	}
	return deleted, nil
}

// Analyze 先保存样本，再提取风格并在事务中创建画像
func (s *profileService) Analyze(ctx context.Context, userID string, inputs []SampleInput) (*model.StyleProfile, error) {
	if strings.TrimSpace(userID) == "" || len(inputs) == 0 {
		return nil, invalidInput("Invalid request. User ID and content samples are required.")
	}

	samples := make([]model.ContentSample, 0, len(inputs))
	for _, input := range inputs {
		sample, err := s.resolveSample(ctx, userID, input)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *sample)
	}

	insights := s.analyzer.AnalyzeStyle(ctx, samples)

	description := fmt.Sprintf("Style extracted from %d content samples", len(samples))
	return s.CreateProfileWithInsights(ctx, ProfileMeta{
		UserID:      userID,
		Name:        s.profileName(samples[0].Title),
		Description: &description,
		SampleCount: len(samples),
	}, insights)
}

func (s *profileService) profileName(firstTitle *string) string {
	if firstTitle != nil && strings.TrimSpace(*firstTitle) != "" {
		return "Style from " + strings.TrimSpace(*firstTitle)
	}
	return "Writing Style " + s.now().Format("2006-01-02")
}

// resolveSample 已保存的样本直接复用，其余样本先落库
func (s *profileService) resolveSample(ctx context.Context, userID string, input SampleInput) (*model.ContentSample, error) {
	if input.ID != "" && s.sampleRepo != nil {
		existing, err := s.sampleRepo.Get(ctx, input.ID)
		if err == nil && existing.UserID == userID {
			return existing, nil
		}
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, invalidInput("sample content is required")
	}

	sample := &model.ContentSample{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       input.Title,
		Content:     input.Content,
		ContentType: input.ContentType,
		WordCount:   input.WordCount,
		Source:      input.Source,
		SourceURL:   input.SourceURL,
	}
	if sample.ContentType == "" {
		sample.ContentType = model.ContentTypeLinkedInPost
	}
	if sample.Source == "" {
		sample.Source = model.SampleSourcePaste
	}
	if sample.WordCount <= 0 {
		sample.WordCount = utils.CountWords(sample.Content)
	}
	if s.sampleRepo != nil {
		if err := s.sampleRepo.Create(ctx, sample); err != nil {
			klog.Errorf("Analyze: 保存样本失败: %v", err)
			return nil, fmt.Errorf("save sample: %w", err)
		}
	}
	return sample, nil
}

func (s *profileService) publish(ctx context.Context, eventType eventbus.ProfileEventType, profile *model.StyleProfile) {
	if err := s.bus.Publish(ctx, eventType, eventbus.ProfileEvent{
		Type:        eventType,
		ProfileID:   profile.ID,
		UserID:      profile.UserID,
		SampleCount: profile.SampleCount,
	}); err != nil {
		klog.Warningf("发布画像事件失败: type=%s, id=%s, err=%v", eventType, profile.ID, err)
	}
}
