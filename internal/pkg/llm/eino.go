package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sixhats/backend/config"
	"k8s.io/klog/v2"
)

// EinoCompleter 基于 Eino OpenAI ChatModel 的后端
type EinoCompleter struct {
	chatModel model.BaseChatModel
}

// NewEinoCompleter 创建 Eino 后端，与 Client 共用连接池配置
func NewEinoCompleter(ctx context.Context, cfg *config.Config) (*EinoCompleter, error) {
	klog.V(6).Infof("[EinoCompleter] 创建 OpenAI ChatModel: model=%s, baseURL=%s", cfg.LLM.Model, cfg.LLM.APIURL)

	temperature := cfg.LLM.Temperature
	chatConfig := &openai.ChatModelConfig{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: &temperature,
		HTTPClient:  &http.Client{Transport: NewClient(cfg).Client.Transport},
	}
	if cfg.LLM.APIURL != "" {
		chatConfig.BaseURL = cfg.LLM.APIURL
	}
	if cfg.LLM.MaxTokens > 0 {
		maxTokens := cfg.LLM.MaxTokens
		chatConfig.MaxTokens = &maxTokens
	}

	chatModel, err := openai.NewChatModel(ctx, chatConfig)
	if err != nil {
		klog.Errorf("[EinoCompleter] 创建 ChatModel 失败: %v", err)
		return nil, err
	}
	return NewEinoCompleterWithModel(chatModel), nil
}

// NewEinoCompleterWithModel 包装任意 Eino ChatModel
func NewEinoCompleterWithModel(m model.BaseChatModel) *EinoCompleter {
	return &EinoCompleter{chatModel: m}
}

// Complete 实现 Completer
func (e *EinoCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	input := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}
	klog.V(8).Infof("[EinoCompleter] Generate 输入: system=%s", system)

	resp, err := e.chatModel.Generate(ctx, input)
	if err != nil {
		klog.Errorf("[EinoCompleter] Generate 失败: %v", err)
		return "", err
	}
	if resp == nil {
		return "", ErrMalformedResponse
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	klog.V(6).Infof("[EinoCompleter] Generate 完成: responseLength=%d", len(text))
	return text, nil
}
