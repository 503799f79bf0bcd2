package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse 模型没有返回任何候选结果
var ErrEmptyResponse = errors.New("no response from LLM")

// Completer 单轮补全接口，由不同的模型后端实现
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest 一次 system + user 的补全请求
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	// MaxTokens 为 0 时使用客户端默认值
	MaxTokens int
	// JSON 要求模型只输出 JSON 对象
	JSON bool
}

// messages 转换为 OpenAI 兼容的消息列表
func (r CompletionRequest) messages() []ChatMessage {
	messages := make([]ChatMessage, 0, 2)
	if r.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: r.System})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: r.Prompt})
	return messages
}

// ChatMessage 对话消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat 输出格式约束
type ResponseFormat struct {
	Type string `json:"type"` // "text", "json_object"
}

// ChatRequest OpenAI 兼容的 chat/completions 请求体
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Choice 候选结果
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
}

// Usage token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIError 接口返回的错误
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ChatResponse chat/completions 响应体
type ChatResponse struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}
