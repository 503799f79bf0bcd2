package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/penwise/backend/internal/eventbus"
	"github.com/penwise/backend/internal/model"
	"github.com/penwise/backend/internal/pkg/llm"
	"github.com/penwise/backend/internal/repository"
	"k8s.io/klog/v2"
)

// GenerationFallback 生成失败时返回给用户的固定文本
const GenerationFallback = "Error generating content. Please try again."

const generatorSystemPrompt = `You are a personalized writing assistant that can perfectly mimic a user's writing style.
Your task is to generate content that sounds exactly like the user would write it, based on their style profile.`

// Generator 按风格画像生成内容
type Generator struct {
	llm      llm.Completer
	profiles repository.ProfileRepository
	bus      *eventbus.PostEventBus
}

// NewGenerator 创建内容生成器
func NewGenerator(completer llm.Completer, profiles repository.ProfileRepository, bus *eventbus.PostEventBus) *Generator {
	return &Generator{llm: completer, profiles: profiles, bus: bus}
}

// GenerateForProfile 读取画像后生成内容，画像不存在时返回 ErrProfileNotFound
func (g *Generator) GenerateForProfile(ctx context.Context, userID, profileID string, options model.GenerationOptions) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(profileID) == "" {
		return "", invalidInput("Invalid request. User ID and profile ID are required.")
	}
	profile, err := g.profiles.Get(ctx, profileID)
	if err != nil {
		return "", err
	}

	content := g.Generate(ctx, profile, options)
	if err := g.bus.Publish(ctx, eventbus.PostEventGenerated, eventbus.PostEvent{
		Type:      eventbus.PostEventGenerated,
		ProfileID: profileID,
		UserID:    userID,
		Fallback:  content == GenerationFallback,
	}); err != nil {
		klog.Warningf("发布生成事件失败: profileID=%s, err=%v", profileID, err)
	}
	return content, nil
}

// Generate 生成内容，任何失败都返回 GenerationFallback
func (g *Generator) Generate(ctx context.Context, profile *model.StyleProfile, options model.GenerationOptions) string {
	options = options.WithDefaults()

	insights := model.DefaultStyleInsights()
	if profile != nil && profile.Insights != nil {
		insights = *profile.Insights
	}

	klog.V(6).Infof("[Generator] 开始生成: contentType=%s, goal=%s, length=%s", options.ContentType, options.Goal, options.Length)
	content, err := g.llm.Complete(ctx, llm.CompletionRequest{
		System:      generatorSystemPrompt,
		Prompt:      BuildGenerationPrompt(insights, options),
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		klog.Errorf("[Generator] 生成内容失败: %v", err)
		return GenerationFallback
	}
	if strings.TrimSpace(content) == "" {
		klog.Errorf("[Generator] 模型返回空内容")
		return GenerationFallback
	}
	return content
}

// BuildGenerationPrompt 把风格特征和生成参数渲染为提示词
func BuildGenerationPrompt(insights model.StyleInsights, options model.GenerationOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s for LinkedIn that sounds exactly like I would write it.\n\n", humanize(options.ContentType))

	b.WriteString("My writing style has these characteristics:\n")
	fmt.Fprintf(&b, "- Tone distribution: %d%% formal, %d%% conversational, %d%% inspirational\n",
		insights.ToneDistribution.Formal, insights.ToneDistribution.Conversational, insights.ToneDistribution.Inspirational)
	fmt.Fprintf(&b, "- Sentence structure: %d%% simple, %d%% compound, %d%% complex\n",
		insights.SentenceStructure.Simple, insights.SentenceStructure.Compound, insights.SentenceStructure.Complex)
	fmt.Fprintf(&b, "- Vocabulary level: %d/100\n", insights.VocabularyLevel)
	fmt.Fprintf(&b, "- Average sentence length: %s words\n", strconv.FormatFloat(insights.AverageSentenceLength, 'f', -1, 64))
	fmt.Fprintf(&b, "- Common phrases I use: %s\n", strings.Join(insights.CommonPhrases, ", "))
	fmt.Fprintf(&b, "- Topics I write about: %s\n\n", strings.Join(insights.TopicAreas, ", "))

	b.WriteString("Content specifications:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", humanize(options.Goal))
	fmt.Fprintf(&b, "- Target audience: %s\n", humanize(options.Audience))
	fmt.Fprintf(&b, "- Desired tone: %s\n", options.Tone)
	fmt.Fprintf(&b, "- Length: %s (~%d words)\n", options.Length, targetWords(options.Length))

	keywords := strings.TrimSpace(options.TopicKeywords)
	if keywords == "" {
		keywords = "Use my typical topics"
	}
	fmt.Fprintf(&b, "- Topic keywords: %s\n", keywords)

	if options.IncludeHashtags {
		b.WriteString("- Include 2-3 relevant hashtags\n")
	} else {
		b.WriteString("- Do not include hashtags\n")
	}
	if options.IncludeCallToAction {
		b.WriteString("- Include a call-to-action or question at the end\n")
	} else {
		b.WriteString("- No explicit call-to-action needed\n")
	}

	b.WriteString("\nThe content should sound EXACTLY like I wrote it myself, matching my unique style perfectly.")
	return b.String()
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func targetWords(length string) int {
	switch length {
	case "short":
		return 100
	case "long":
		return 350
	default:
		return 200
	}
}

// GenerateIndustryDraft 不依赖画像，按行业生成一篇观点类帖子
func (g *Generator) GenerateIndustryDraft(ctx context.Context, industry, tone, length string) (string, error) {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return "", invalidInput("Industry is required")
	}
	if tone == "" {
		tone = "professional"
	}
	if length == "" {
		length = "medium"
	}

	content, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      BuildIndustryPrompt(industry, tone, length),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		klog.Errorf("[Generator] 行业草稿生成失败: industry=%s, err=%v", industry, err)
		return "", fmt.Errorf("generate industry draft: %w", err)
	}
	return content, nil
}

// BuildIndustryPrompt 行业观点帖提示词
func BuildIndustryPrompt(industry, tone, length string) string {
	var words string
	switch length {
	case "short":
		words = "100-150"
	case "long":
		words = "300-400"
	default:
		words = "200-250"
	}

	return fmt.Sprintf(`Create a professional LinkedIn post for a thought leader in the %s industry.

The post should:
- Be %s length (%s words)
- Have a %s tone
- Start with an engaging hook
- Share valuable insights specific to the %s industry
- Include a call to action or question at the end
- Add 2-3 relevant hashtags

Format it with appropriate line breaks and spacing for LinkedIn.`, industry, length, words, tone, industry)
}

// 主题帖提示词中最多列出的短语和主题数
const topicPromptTerms = 5

// GenerateForTopic 围绕指定主题按画像风格写一篇帖子
func (g *Generator) GenerateForTopic(ctx context.Context, profileID, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if strings.TrimSpace(profileID) == "" || topic == "" {
		return "", invalidInput("Profile ID and topic are required")
	}
	profile, err := g.profiles.Get(ctx, profileID)
	if err != nil {
		return "", err
	}

	content, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      BuildTopicPrompt(profile, topic),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		klog.Errorf("[Generator] 主题帖生成失败: profileID=%s, err=%v", profileID, err)
		return "", fmt.Errorf("generate topic post: %w", err)
	}

	if err := g.bus.Publish(ctx, eventbus.PostEventGenerated, eventbus.PostEvent{
		Type:      eventbus.PostEventGenerated,
		ProfileID: profile.ID,
		UserID:    profile.UserID,
	}); err != nil {
		klog.Warningf("发布生成事件失败: profileID=%s, err=%v", profileID, err)
	}
	return content, nil
}

// BuildTopicPrompt 主题帖提示词，短语和主题取频次最高的前几项
func BuildTopicPrompt(profile *model.StyleProfile, topic string) string {
	insights := model.DefaultStyleInsights()
	if profile.Insights != nil {
		insights = *profile.Insights
	}
	description := "Professional writing style"
	if profile.Description != nil && strings.TrimSpace(*profile.Description) != "" {
		description = *profile.Description
	}

	phrases := make([]string, 0, topicPromptTerms)
	for _, p := range profile.Phrases {
		if len(phrases) == topicPromptTerms {
			break
		}
		phrases = append(phrases, p.Phrase)
	}
	if len(phrases) == 0 {
		phrases = insights.CommonPhrases
	}
	topics := make([]string, 0, topicPromptTerms)
	for _, t := range profile.Topics {
		if len(topics) == topicPromptTerms {
			break
		}
		topics = append(topics, t.Topic)
	}
	if len(topics) == 0 {
		topics = insights.TopicAreas
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a LinkedIn post about \"%s\" that matches the following writing style profile:\n\n", topic)
	fmt.Fprintf(&b, "Style Profile: %s\n", profile.Name)
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	b.WriteString("Tone Distribution:\n")
	fmt.Fprintf(&b, "- Formal: %d%%\n- Conversational: %d%%\n- Inspirational: %d%%\n\n",
		insights.ToneDistribution.Formal, insights.ToneDistribution.Conversational, insights.ToneDistribution.Inspirational)
	b.WriteString("Sentence Structure:\n")
	fmt.Fprintf(&b, "- Simple: %d%%\n- Compound: %d%%\n- Complex: %d%%\n\n",
		insights.SentenceStructure.Simple, insights.SentenceStructure.Compound, insights.SentenceStructure.Complex)
	fmt.Fprintf(&b, "Vocabulary Level: %d/100\n", insights.VocabularyLevel)
	fmt.Fprintf(&b, "Average Sentence Length: %s words\n\n", strconv.FormatFloat(insights.AverageSentenceLength, 'f', -1, 64))
	fmt.Fprintf(&b, "Common Phrases: %s\n", strings.Join(phrases, ", "))
	fmt.Fprintf(&b, "Topic Areas: %s\n\n", strings.Join(topics, ", "))
	b.WriteString("Guidelines:\n")
	b.WriteString("- The post should be 150-250 words\n")
	b.WriteString("- Include line breaks for readability\n")
	b.WriteString("- End with a question to encourage engagement\n")
	b.WriteString("- Include 2-3 relevant hashtags\n")
	b.WriteString("- The post should sound exactly like it was written by the person with this writing style\n")
	fmt.Fprintf(&b, "- Focus on providing valuable insights about \"%s\"", topic)
	return b.String()
}

// EvaluationFeedback 一条评估意见
type EvaluationFeedback struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// OptimizeInput 帖子优化参数
type OptimizeInput struct {
	Post            string
	Goal            string
	Industry        string
	Feedback        []EvaluationFeedback
	Recommendations []string
}

// OptimizePost 按评估意见改写帖子，模型失败时原样返回
func (g *Generator) OptimizePost(ctx context.Context, input OptimizeInput) (string, error) {
	if strings.TrimSpace(input.Post) == "" || strings.TrimSpace(input.Goal) == "" {
		return "", invalidInput("Missing required fields")
	}

	content, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      BuildOptimizePrompt(input),
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		klog.Errorf("[Generator] 帖子优化失败，返回原文: %v", err)
		return input.Post, nil
	}
	if strings.TrimSpace(content) == "" {
		klog.Warningf("[Generator] 优化结果为空，返回原文")
		return input.Post, nil
	}
	return content, nil
}

// BuildOptimizePrompt 帖子优化提示词
func BuildOptimizePrompt(input OptimizeInput) string {
	industry := strings.TrimSpace(input.Industry)
	if industry == "" {
		industry = "professional"
	}

	var b strings.Builder
	b.WriteString("You are an expert LinkedIn content optimizer.\n\n")
	fmt.Fprintf(&b, "Original post:\n\"%s\"\n\n", input.Post)
	fmt.Fprintf(&b, "Based on the following evaluation feedback, optimize this LinkedIn post to better achieve its goal of %s in the %s industry.\n\n",
		humanize(input.Goal), industry)
	b.WriteString("Evaluation feedback:\n")
	for _, f := range input.Feedback {
		fmt.Fprintf(&b, "- %s: %s\n", f.Type, f.Message)
	}
	b.WriteString("\nGoal-specific recommendations:\n")
	for _, r := range input.Recommendations {
		fmt.Fprintf(&b, "%s\n", r)
	}
	b.WriteString("\nKeep the core message and professional tone, but enhance it based on the feedback. Maintain a similar length.")
	return b.String()
}
