package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sixhats/backend/config"
	"k8s.io/klog/v2"
)

var (
	ErrEmptyResponse     = errors.New("empty response from model")
	ErrMalformedResponse = errors.New("unexpected response from model API")
	ErrAPIErrorPayload   = errors.New("model API reported an error") // 2xx 响应体中带有 error 字段
)

// Completer 模型后端能力：给定指令与内容，返回文本
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewCompleter 按配置的 provider 创建后端
func NewCompleter(cfg *config.Config) (Completer, error) {
	klog.V(6).Infof("[LLM] 创建模型后端: provider=%s, model=%s", cfg.LLM.Provider, cfg.LLM.Model)
	switch cfg.LLM.Provider {
	case config.ProviderHTTP:
		return NewClient(cfg), nil
	case config.ProviderOpenAI:
		return NewEinoCompleter(context.Background(), cfg)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
}
