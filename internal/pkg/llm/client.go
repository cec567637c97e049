package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sixhats/backend/config"
	"k8s.io/klog/v2"
)

// maxErrorBody 非 2xx 响应体最多保留的字节数
const maxErrorBody = 2048

// Client 直接调用 OpenAI 兼容接口的 HTTP 客户端
// 初始化后只读，可在请求间共享
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Client      *http.Client
}

// NewClient 创建新的 LLM 客户端
func NewClient(cfg *config.Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxConnsPerHost:     cfg.LLM.MaxConnections,
		MaxIdleConns:        cfg.LLM.MaxKeepAlive,
		MaxIdleConnsPerHost: cfg.LLM.MaxKeepAlive,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL:     strings.TrimRight(cfg.LLM.APIURL, "/"),
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		// 单次调用的超时由调用方的 context 控制
		Client: &http.Client{Transport: transport},
	}
}

// Complete 发送系统指令与用户内容，返回模型回复正文
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	klog.V(6).Infof("[LLMClient] Complete 请求: model=%s, systemLength=%d, userLength=%d", c.Model, len(system), len(user))
	resp, err := c.Chat(ctx, []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		return "", err
	}

	text, ok := resp.Text()
	if !ok {
		return "", ErrMalformedResponse
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Chat 发送对话请求
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	return c.sendRequest(ctx, ChatRequest{
		Model:       c.Model,
		Messages:    messages,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})
}

// endpoint 允许配置基础地址或完整的 /chat/completions 地址
func (c *Client) endpoint() string {
	if strings.HasSuffix(c.BaseURL, "/chat/completions") {
		return c.BaseURL
	}
	return c.BaseURL + "/chat/completions"
}

// sendRequest 发送 HTTP 请求到 LLM API
func (c *Client) sendRequest(ctx context.Context, reqBody ChatRequest) (*ChatResponse, error) {
	url := c.endpoint()
	klog.V(6).Infof("[LLMClient] 发送 LLM 请求: url=%s, model=%s", url, reqBody.Model)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		klog.Warningf("[LLMClient] 模型接口返回异常状态: status=%d", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrAPIErrorPayload, chatResp.Error.Message)
	}

	return &chatResp, nil
}

// 部分后端（如 eino 封装的 openai 客户端）只在错误信息中体现限流
// 状态码只在明确的上下文中匹配，避免端口号、模型名中的数字误判
var rateLimitPattern = regexp.MustCompile(`(?i)(status(?: code)?[ :=]+429\b|http 429\b|rate[ -]limit|too many requests|quota exceeded)`)

// IsRateLimited 是否为限流错误
// 网络层错误（连接失败、超时等）从不视为限流
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return false
	}
	return rateLimitPattern.MatchString(err.Error())
}
