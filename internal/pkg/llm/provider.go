package llm

import (
	"fmt"

	"github.com/penwise/backend/config"
	"k8s.io/klog/v2"
)

// NewCompleter 根据 llm.provider 选择后端
func NewCompleter(cfg *config.Config) (Completer, error) {
	klog.V(6).Infof("[LLM] 使用 provider=%s, model=%s", cfg.LLM.Provider, cfg.LLM.Model)
	switch cfg.LLM.Provider {
	case "", "http":
		return NewClient(cfg), nil
	case "openai":
		return NewOpenAICompleter(cfg), nil
	case "eino":
		return NewEinoCompleter(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
}
