package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/penwise/backend/config"
	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/pkg/extract"
	"github.com/penwise/backend/internal/pkg/linkedin"
	"github.com/penwise/backend/internal/pkg/netguard"
	"github.com/penwise/backend/internal/pkg/storage"
	"github.com/penwise/backend/internal/repository"
	"github.com/penwise/backend/internal/utils"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// LinkedIn 导入产生画像所需的最少帖子数
const linkedInMinPostsForProfile = 3

// ErrFileTooLarge 上传文件超过大小限制
var ErrFileTooLarge = errors.New("file exceeds upload limit")

// LinkedInClient LinkedIn 数据源
type LinkedInClient interface {
	FetchProfile(ctx context.Context, accessToken string) (*linkedin.Profile, error)
	FetchPosts(ctx context.Context, accessToken, authorURN string) ([]linkedin.Post, error)
}

// ImportResult LinkedIn 导入结果
type ImportResult struct {
	Posts          []model.ContentSample `json:"posts"`
	ProfileCreated bool                  `json:"profileCreated"`
	ProfileID      string                `json:"profileId,omitempty"`
	ProfileName    string                `json:"profileName,omitempty"`
	Message        string                `json:"message,omitempty"`
}

// IngestService 样本导入服务
type IngestService struct {
	samples  repository.SampleRepository
	profiles ProfileService
	analyzer *StyleAnalyzer
	store    storage.ObjectStore
	linkedin LinkedInClient
	bus      *eventbus.SampleEventBus
	cfg      config.IngestConfig
	http     *http.Client
	now      func() time.Time
}

// NewIngestService 创建样本导入服务
func NewIngestService(
	samples repository.SampleRepository,
	profiles ProfileService,
	analyzer *StyleAnalyzer,
	store storage.ObjectStore,
	linkedInClient LinkedInClient,
	bus *eventbus.SampleEventBus,
	cfg config.IngestConfig,
) *IngestService {
	return &IngestService{
		samples:  samples,
		profiles: profiles,
		analyzer: analyzer,
		store:    store,
		linkedin: linkedInClient,
		bus:      bus,
		cfg:      cfg,
		http:     netguard.NewClient(cfg.URLTimeout, cfg.AllowPrivateURLs),
		now:      time.Now,
	}
}

// IngestText 保存粘贴的文本
func (s *IngestService) IngestText(ctx context.Context, userID string, title *string, content, contentType string) (*model.ContentSample, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("User ID is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, invalidInput("Content is required")
	}
	if title == nil || strings.TrimSpace(*title) == "" {
		t := fmt.Sprintf("Pasted Content (%s)", s.now().Format("2006-01-02"))
		title = &t
	}
	if contentType == "" {
		contentType = model.ContentTypeLinkedInPost
	}

	sample := &model.ContentSample{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Content:     content,
		ContentType: contentType,
		WordCount:   utils.CountWords(content),
		Source:      model.SampleSourcePaste,
	}
	if err := s.save(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

// IngestFile 提取上传文件正文并归档原文件
func (s *IngestService) IngestFile(ctx context.Context, userID, filename string, data []byte) (*model.ContentSample, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("User ID is required")
	}
	if err := s.CheckFileSize(filename, int64(len(data))); err != nil {
		return nil, err
	}

	result, err := extract.FromFile(filename, data)
	if err != nil {
		if errors.Is(err, extract.ErrNoText) {
			return nil, invalidInput(fmt.Sprintf("%s: no text content found", filename))
		}
		klog.Warningf("IngestFile: 解析文件失败 %s: %v", filename, err)
		return nil, invalidInput(fmt.Sprintf("%s: unable to read file", filename))
	}

	title := filename
	sample := &model.ContentSample{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       &title,
		Content:     result.Text,
		ContentType: extract.ContentTypeFromFilename(filename),
		WordCount:   utils.CountWords(result.Text),
		Source:      model.SampleSourceFile,
	}
	sample.StorageKey = s.archive(ctx, sample, filename, data)

	if err := s.save(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

// MaxFileBytes 单个文件的大小上限，0 表示不限制
func (s *IngestService) MaxFileBytes() int64 {
	return s.cfg.MaxFileBytes
}

// CheckFileSize 超过上限时返回校验错误
func (s *IngestService) CheckFileSize(filename string, size int64) error {
	if s.cfg.MaxFileBytes > 0 && size > s.cfg.MaxFileBytes {
		return &ValidationError{Message: fmt.Sprintf("%s: %s", filename, ErrFileTooLarge)}
	}
	return nil
}

// archive 归档失败只记录日志，返回 nil key
func (s *IngestService) archive(ctx context.Context, sample *model.ContentSample, filename string, data []byte) *string {
	if s.store == nil {
		return nil
	}
	key := storage.SampleKey(sample.UserID, sample.ID, filename)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		klog.Warningf("IngestFile: 归档原文件失败 key=%s: %v", key, err)
		return nil
	}
	return &key
}

// IngestURLs 并发抓取网页正文，任意一个失败则整体失败
func (s *IngestService) IngestURLs(ctx context.Context, userID string, urls []string, contentType string) ([]model.ContentSample, error) {
	if strings.TrimSpace(userID) == "" || len(urls) == 0 {
		return nil, invalidInput("User ID and URLs are required")
	}
	if contentType == "" {
		contentType = model.ContentTypeArticle
	}

	parsed := make([]*url.URL, len(urls))
	for i, raw := range urls {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, invalidInput(fmt.Sprintf("invalid URL: %s", raw))
		}
		if !s.cfg.AllowPrivateURLs {
			if err := netguard.CheckURL(u); err != nil {
				return nil, invalidInput(fmt.Sprintf("URL not allowed: %s", raw))
			}
		}
		parsed[i] = u
	}

	results := make([]extract.Result, len(parsed))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.cfg.URLConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, u := range parsed {
		g.Go(func() error {
			result, err := s.fetchPage(gctx, u)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", u.String(), err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		klog.Errorf("IngestURLs: 抓取网页失败: %v", err)
		switch {
		case errors.Is(err, netguard.ErrBlockedAddress):
			return nil, invalidInput("URL not allowed: " + err.Error())
		case errors.Is(err, ErrFileTooLarge):
			return nil, invalidInput(err.Error())
		}
		return nil, err
	}

	samples := make([]model.ContentSample, 0, len(parsed))
	for i, u := range parsed {
		title := strings.TrimSpace(results[i].Title)
		if title == "" {
			title = "Content from " + u.Hostname()
		}
		sourceURL := u.String()
		sample := &model.ContentSample{
			ID:          uuid.NewString(),
			UserID:      userID,
			Title:       &title,
			Content:     results[i].Text,
			ContentType: contentType,
			WordCount:   utils.CountWords(results[i].Text),
			Source:      model.SampleSourceURL,
			SourceURL:   &sourceURL,
		}
		if err := s.save(ctx, sample); err != nil {
			return nil, err
		}
		samples = append(samples, *sample)
	}
	return samples, nil
}

func (s *IngestService) fetchPage(ctx context.Context, u *url.URL) (extract.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return extract.Result{}, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.http.Do(req)
	if err != nil {
		return extract.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return extract.Result{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	if s.cfg.MaxFileBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxFileBytes+1))
		if err != nil {
			return extract.Result{}, err
		}
		if int64(len(data)) > s.cfg.MaxFileBytes {
			return extract.Result{}, ErrFileTooLarge
		}
		body = bytes.NewReader(data)
	}
	return extract.FromHTML(body, u)
}

// ImportLinkedIn 导入 LinkedIn 帖子，帖子足够多时直接生成画像
func (s *IngestService) ImportLinkedIn(ctx context.Context, userID, accessToken, authorURN string) (*ImportResult, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(accessToken) == "" {
		return nil, invalidInput("User ID and access token are required")
	}

	if authorURN == "" {
		profile, err := s.linkedin.FetchProfile(ctx, accessToken)
		if err != nil {
			return nil, fmt.Errorf("fetch linkedin profile: %w", err)
		}
		authorURN = profile.PersonURN()
	}

	posts, err := s.linkedin.FetchPosts(ctx, accessToken, authorURN)
	if err != nil {
		return nil, fmt.Errorf("fetch linkedin posts: %w", err)
	}
	klog.V(6).Infof("ImportLinkedIn: 获取到 %d 条帖子, userID=%s", len(posts), userID)

	samples := make([]model.ContentSample, 0, len(posts))
	for _, post := range posts {
		title := "LinkedIn Post"
		postID := post.ID
		sample := &model.ContentSample{
			ID:          uuid.NewString(),
			UserID:      userID,
			Title:       &title,
			Content:     post.Text,
			ContentType: model.ContentTypeLinkedInPost,
			WordCount:   utils.CountWords(post.Text),
			Source:      model.SampleSourceLinkedIn,
			SourceURL:   &postID,
		}
		if err := s.save(ctx, sample); err != nil {
			return nil, err
		}
		samples = append(samples, *sample)
	}

	result := &ImportResult{Posts: samples}
	if len(samples) < linkedInMinPostsForProfile {
		if len(samples) == 0 {
			result.Message = "No posts found on your LinkedIn profile"
		} else {
			result.Message = "Posts imported successfully"
		}
		return result, nil
	}

	insights := s.analyzer.AnalyzeStyle(ctx, samples)
	description := fmt.Sprintf("Style extracted from %d LinkedIn posts", len(samples))
	profile, err := s.profiles.CreateProfileWithInsights(ctx, ProfileMeta{
		UserID:      userID,
		Name:        "LinkedIn Style Profile",
		Description: &description,
		SampleCount: len(samples),
	}, insights)
	if err != nil {
		return nil, err
	}

	result.ProfileCreated = true
	result.ProfileID = profile.ID
	result.ProfileName = profile.Name
	return result, nil
}

// ListSamples 按创建时间倒序列出样本
func (s *IngestService) ListSamples(ctx context.Context, userID string) ([]model.ContentSample, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalidInput("User ID is required")
	}
	samples, err := s.samples.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	if samples == nil {
		samples = []model.ContentSample{}
	}
	return samples, nil
}

// DeleteSample 删除样本，归档文件由订阅者清理
func (s *IngestService) DeleteSample(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalidInput("Sample ID is required")
	}
	sample, err := s.samples.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.samples.Delete(ctx, id)
	if err != nil {
		klog.Errorf("DeleteSample: 删除样本失败 id=%s: %v", id, err)
		return fmt.Errorf("delete sample: %w", err)
	}
	if !deleted {
		return ErrSampleNotFound
	}

	event := eventbus.SampleEvent{
		Type:     eventbus.SampleEventDeleted,
		SampleID: sample.ID,
		UserID:   sample.UserID,
		Source:   sample.Source,
	}
	if sample.StorageKey != nil {
		event.StorageKey = *sample.StorageKey
	}
	if err := s.bus.Publish(ctx, eventbus.SampleEventDeleted, event); err != nil {
		klog.Warningf("发布样本事件失败: id=%s, err=%v", id, err)
	}
	return nil
}

func (s *IngestService) save(ctx context.Context, sample *model.ContentSample) error {
	if err := s.samples.Create(ctx, sample); err != nil {
		klog.Errorf("保存样本失败: source=%s, err=%v", sample.Source, err)
		return fmt.Errorf("save sample: %w", err)
	}
	event := eventbus.SampleEvent{
		Type:     eventbus.SampleEventCreated,
		SampleID: sample.ID,
		UserID:   sample.UserID,
		Source:   sample.Source,
	}
	if sample.StorageKey != nil {
		event.StorageKey = *sample.StorageKey
	}
	if err := s.bus.Publish(ctx, eventbus.SampleEventCreated, event); err != nil {
		klog.Warningf("发布样本事件失败: id=%s, err=%v", sample.ID, err)
	}
	return nil
}
