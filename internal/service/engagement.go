package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/pkg/llm"
	"github.com/penwise/backend/internal/utils"
	"k8s.io/klog/v2"
)

const engagementSystemPrompt = "You are an expert LinkedIn content analyst. Analyze the given LinkedIn post and provide engagement predictions and improvement suggestions."

const engagementPromptTemplate = `Analyze this LinkedIn post and provide engagement predictions and improvement suggestions:

%s

Provide a response in JSON format with the following structure:
{
  "engagementScore": <number between 1-100>,
  "strengths": [<list of post strengths>],
  "improvementSuggestions": [<list of specific suggestions to improve engagement>],
  "estimatedReactions": <estimated number of reactions>,
  "estimatedComments": <estimated number of comments>,
  "audienceAppeal": <description of which audience segments would find this most appealing>
}`

// EngagementService 帖子互动预估
type EngagementService struct {
	llm llm.Completer
}

// NewEngagementService 创建互动预估服务
func NewEngagementService(completer llm.Completer) *EngagementService {
	return &EngagementService{llm: completer}
}

type rawEngagementReport struct {
	EngagementScore        float64    `json:"engagementScore"`
	Strengths              stringList `json:"strengths"`
	ImprovementSuggestions stringList `json:"improvementSuggestions"`
	EstimatedReactions     float64    `json:"estimatedReactions"`
	EstimatedComments      float64    `json:"estimatedComments"`
	AudienceAppeal         string     `json:"audienceAppeal"`
}

// PreviewEngagement 预估帖子的互动表现
func (s *EngagementService) PreviewEngagement(ctx context.Context, content string) (*model.EngagementReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalidInput("Content is required")
	}

	output, err := s.llm.Complete(ctx, llm.CompletionRequest{
		System:      engagementSystemPrompt,
		Prompt:      fmt.Sprintf(engagementPromptTemplate, content),
		Temperature: 0.5,
		JSON:        true,
	})
	if err != nil {
		klog.Errorf("[Engagement] 调用 LLM 失败: %v", err)
		return nil, fmt.Errorf("preview engagement: %w", err)
	}
	if strings.TrimSpace(output) == "" {
		return nil, llm.ErrEmptyResponse
	}

	var raw rawEngagementReport
	if err := json.Unmarshal([]byte(utils.ExtractJSON(output)), &raw); err != nil {
		klog.Errorf("[Engagement] 解析结果失败: %v", err)
		return nil, fmt.Errorf("unmarshal engagement report: %w", err)
	}

	report := &model.EngagementReport{
		EngagementScore:        clampInt(int(raw.EngagementScore+0.5), 1, 100),
		Strengths:              []string(raw.Strengths),
		ImprovementSuggestions: []string(raw.ImprovementSuggestions),
		EstimatedReactions:     max(int(raw.EstimatedReactions), 0),
		EstimatedComments:      max(int(raw.EstimatedComments), 0),
		AudienceAppeal:         raw.AudienceAppeal,
	}
	if report.Strengths == nil {
		report.Strengths = []string{}
	}
	if report.ImprovementSuggestions == nil {
		report.ImprovementSuggestions = []string{}
	}
	return report, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
