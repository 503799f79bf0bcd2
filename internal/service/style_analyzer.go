package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/pkg/llm"
	"github.com/penwise/backend/internal/utils"
	"gorm.io/datatypes"
	"k8s.io/klog/v2"
)

const styleAnalysisSystemPrompt = `You are an expert linguistic analyst specializing in writing style analysis.
Analyze the provided text samples to extract detailed insights about the author's writing style.
Focus on tone, sentence structure, vocabulary level, and recurring patterns.`

const styleAnalysisPromptTemplate = `Analyze the following content to determine the author's writing style:

%s

Provide a detailed analysis in JSON format with the following structure:
{
  "toneDistribution": {
    "formal": <percentage 0-100>,
    "conversational": <percentage 0-100>,
    "inspirational": <percentage 0-100>
  },
  "sentenceStructure": {
    "simple": <percentage 0-100>,
    "compound": <percentage 0-100>,
    "complex": <percentage 0-100>
  },
  "vocabularyLevel": <score 0-100>,
  "averageSentenceLength": <number>,
  "commonPhrases": [<list of common phrases or expressions used by the author>],
  "topicAreas": [<list of topics or subject areas the author writes about>]
}

Ensure the percentages in each category add up to 100%%.`

// StyleAnalyzer 调用 LLM 提取写作风格
type StyleAnalyzer struct {
	llm llm.Completer
}

// NewStyleAnalyzer 创建风格分析器
func NewStyleAnalyzer(completer llm.Completer) *StyleAnalyzer {
	return &StyleAnalyzer{llm: completer}
}

// AnalyzeStyle 分析样本风格，任何失败都返回默认结果
func (a *StyleAnalyzer) AnalyzeStyle(ctx context.Context, samples []model.ContentSample) model.StyleInsights {
	contents := make([]string, 0, len(samples))
	for _, sample := range samples {
		contents = append(contents, sample.Content)
	}
	combined := strings.Join(contents, "\n\n")
	if strings.TrimSpace(combined) == "" {
		klog.Warningf("[StyleAnalyzer] 样本内容为空，使用默认风格")
		return model.DefaultStyleInsights()
	}

	klog.V(6).Infof("[StyleAnalyzer] 开始分析: samples=%d, chars=%d", len(samples), len(combined))
	content, err := a.llm.Complete(ctx, llm.CompletionRequest{
		System:      styleAnalysisSystemPrompt,
		Prompt:      fmt.Sprintf(styleAnalysisPromptTemplate, combined),
		Temperature: 0.5,
		JSON:        true,
	})
	if err != nil {
		klog.Warningf("[StyleAnalyzer] LLM 调用失败，使用默认风格: %v", err)
		return model.DefaultStyleInsights()
	}

	insights, err := parseStyleInsights(content)
	if err != nil {
		klog.Warningf("[StyleAnalyzer] 解析分析结果失败，使用默认风格: %v", err)
		return model.DefaultStyleInsights()
	}
	klog.V(6).Infof("[StyleAnalyzer] 分析完成: phrases=%d, topics=%d", len(insights.CommonPhrases), len(insights.TopicAreas))
	return insights
}

type rawStyleInsights struct {
	ToneDistribution struct {
		Formal         float64 `json:"formal"`
		Conversational float64 `json:"conversational"`
		Inspirational  float64 `json:"inspirational"`
	} `json:"toneDistribution"`
	SentenceStructure struct {
		Simple   float64 `json:"simple"`
		Compound float64 `json:"compound"`
		Complex  float64 `json:"complex"`
	} `json:"sentenceStructure"`
	VocabularyLevel       float64    `json:"vocabularyLevel"`
	AverageSentenceLength float64    `json:"averageSentenceLength"`
	CommonPhrases         stringList `json:"commonPhrases"`
	TopicAreas            stringList `json:"topicAreas"`
}

// stringList 只保留数组中的非空字符串，超长的截断到列宽，其他形态视为空列表
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, truncateRunes(s, model.MaxTermLength))
			}
		}
	}
	*l = out
	return nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}

// parseStyleInsights 解析模型输出，缺失或为 0 的数值按字段回退默认值
func parseStyleInsights(content string) (model.StyleInsights, error) {
	if strings.TrimSpace(content) == "" {
		return model.StyleInsights{}, llm.ErrEmptyResponse
	}

	var raw rawStyleInsights
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &raw); err != nil {
		return model.StyleInsights{}, fmt.Errorf("unmarshal style insights: %w", err)
	}

	defaults := model.DefaultStyleInsights()
	insights := model.StyleInsights{
		ToneDistribution: model.ToneDistribution{
			Formal:         percent(raw.ToneDistribution.Formal, defaults.ToneDistribution.Formal),
			Conversational: percent(raw.ToneDistribution.Conversational, defaults.ToneDistribution.Conversational),
			Inspirational:  percent(raw.ToneDistribution.Inspirational, defaults.ToneDistribution.Inspirational),
		},
		SentenceStructure: model.SentenceStructure{
			Simple:   percent(raw.SentenceStructure.Simple, defaults.SentenceStructure.Simple),
			Compound: percent(raw.SentenceStructure.Compound, defaults.SentenceStructure.Compound),
			Complex:  percent(raw.SentenceStructure.Complex, defaults.SentenceStructure.Complex),
		},
		VocabularyLevel:       percent(raw.VocabularyLevel, defaults.VocabularyLevel),
		AverageSentenceLength: raw.AverageSentenceLength,
		CommonPhrases:         datatypes.JSONSlice[string](raw.CommonPhrases),
		TopicAreas:            datatypes.JSONSlice[string](raw.TopicAreas),
	}
	if insights.AverageSentenceLength <= 0 {
		insights.AverageSentenceLength = defaults.AverageSentenceLength
	}
	if insights.CommonPhrases == nil {
		insights.CommonPhrases = datatypes.JSONSlice[string]{}
	}
	if insights.TopicAreas == nil {
		insights.TopicAreas = datatypes.JSONSlice[string]{}
	}
	return insights, nil
}

// percent 0 视为缺失，其余四舍五入后限制在 [0,100]
func percent(v float64, fallback int) int {
	if v == 0 || math.IsNaN(v) {
		return fallback
	}
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
