// Package llmtest 提供测试用的 Completer 实现
package llmtest

import (
	"context"
	"sync"

	"github.com/penwise/backend/internal/pkg/llm"
)

var _ llm.Completer = (*StubCompleter)(nil)

// StubCompleter 可编程的 Completer，用于测试
type StubCompleter struct {
	// CompleteFunc 为空时返回 Response / Err
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (string, error)
	Response     string
	Err          error

	mu       sync.Mutex
	requests []llm.CompletionRequest
}

// Complete 实现 Completer，并记录收到的请求
func (s *StubCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.CompleteFunc != nil {
		return s.CompleteFunc(ctx, req)
	}
	return s.Response, s.Err
}

// Requests 返回已收到的请求副本
func (s *StubCompleter) Requests() []llm.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.CompletionRequest, len(s.requests))
	copy(out, s.requests)
	return out
}
