package llm

import (
	"context"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/penwise/backend/config"
	"k8s.io/klog/v2"
)

// EinoCompleter 基于 eino ChatModel 的实现
type EinoCompleter struct {
	chatModel model.BaseChatModel
	// jsonModel 以 json_object 响应格式创建，处理 JSON 请求
	jsonModel model.BaseChatModel
}

// NewEinoCompleter 使用配置创建 eino OpenAI ChatModel
func NewEinoCompleter(cfg *config.Config) (*EinoCompleter, error) {
	modelConfig := &einoopenai.ChatModelConfig{
		BaseURL: cfg.LLM.APIURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}
	if cfg.LLM.MaxTokens > 0 {
		maxTokens := cfg.LLM.MaxTokens
		modelConfig.MaxTokens = &maxTokens
	}

	chatModel, err := einoopenai.NewChatModel(context.Background(), modelConfig)
	if err != nil {
		klog.Errorf("[EinoCompleter] 创建 ChatModel 失败: %v", err)
		return nil, err
	}

	jsonConfig := *modelConfig
	jsonConfig.ResponseFormat = &einoopenai.ChatCompletionResponseFormat{
		Type: einoopenai.ChatCompletionResponseFormatTypeJSONObject,
	}
	jsonModel, err := einoopenai.NewChatModel(context.Background(), &jsonConfig)
	if err != nil {
		klog.Errorf("[EinoCompleter] 创建 JSON ChatModel 失败: %v", err)
		return nil, err
	}
	klog.V(6).Infof("[EinoCompleter] ChatModel 创建成功")
	return NewEinoCompleterWithModels(chatModel, jsonModel), nil
}

// NewEinoCompleterWithModel 包装任意 eino ChatModel，JSON 请求也走同一个模型
func NewEinoCompleterWithModel(chatModel model.BaseChatModel) *EinoCompleter {
	return NewEinoCompleterWithModels(chatModel, chatModel)
}

// NewEinoCompleterWithModels 分别指定文本模型和 JSON 模型
func NewEinoCompleterWithModels(chatModel, jsonModel model.BaseChatModel) *EinoCompleter {
	return &EinoCompleter{chatModel: chatModel, jsonModel: jsonModel}
}

// Complete 实现 Completer
func (c *EinoCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]*schema.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, schema.SystemMessage(req.System))
	}
	messages = append(messages, schema.UserMessage(req.Prompt))

	opts := []model.Option{model.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	chatModel := c.chatModel
	if req.JSON {
		chatModel = c.jsonModel
	}
	msg, err := chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", ErrEmptyResponse
	}
	return msg.Content, nil
}
