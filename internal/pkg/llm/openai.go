package llm

import (
	"context"
	"net/http"

	"github.com/penwise/backend/config"
	goopenai "github.com/sashabaranov/go-openai"
	"k8s.io/klog/v2"
)

// OpenAICompleter 基于 go-openai SDK 的实现
type OpenAICompleter struct {
	client    *goopenai.Client
	model     string
	maxTokens int
}

// NewOpenAICompleter 创建 go-openai 后端
func NewOpenAICompleter(cfg *config.Config) *OpenAICompleter {
	clientConfig := goopenai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.APIURL != "" {
		clientConfig.BaseURL = cfg.LLM.APIURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.LLM.Timeout}

	return &OpenAICompleter{
		client:    goopenai.NewClientWithConfig(clientConfig),
		model:     cfg.LLM.Model,
		maxTokens: cfg.LLM.MaxTokens,
	}
}

// Complete 实现 Completer
func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	request := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	klog.V(6).Infof("[OpenAICompleter] 请求: model=%s, json=%v", c.model, req.JSON)
	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
