package model

// GenerationOptions 内容生成参数
type GenerationOptions struct {
	Tone                string `json:"tone"`
	Audience            string `json:"audience"`
	Goal                string `json:"goal"`
	ContentType         string `json:"contentType"`
	Length              string `json:"length"` // short, medium, long
	IncludeHashtags     bool   `json:"includeHashtags"`
	IncludeCallToAction bool   `json:"includeCallToAction"`
	TopicKeywords       string `json:"topicKeywords"`
}

// WithDefaults 补全缺省字段
func (o GenerationOptions) WithDefaults() GenerationOptions {
	if o.Tone == "" {
		o.Tone = "professional"
	}
	if o.Audience == "" {
		o.Audience = "industry_professionals"
	}
	if o.Goal == "" {
		o.Goal = "thought_leadership"
	}
	if o.ContentType == "" {
		o.ContentType = ContentTypeLinkedInPost
	}
	switch o.Length {
	case "short", "medium", "long":
	default:
		o.Length = "medium"
	}
	return o
}

// EngagementReport 帖子互动预估
type EngagementReport struct {
	EngagementScore        int      `json:"engagementScore"`
	Strengths              []string `json:"strengths"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
	EstimatedReactions     int      `json:"estimatedReactions"`
	EstimatedComments      int      `json:"estimatedComments"`
	AudienceAppeal         string   `json:"audienceAppeal"`
}
