package llm

import "fmt"

// ChatMessage 对话消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest OpenAI 兼容的对话请求
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature"`
}

// ChatChoice 单个候选回复
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
}

// ChatResponse 对话响应
// 兼容两种返回格式：OpenAI 的 choices，以及部分推理服务的 generated_text
type ChatResponse struct {
	ID            string       `json:"id"`
	Object        string       `json:"object"`
	Created       int64        `json:"created"`
	Model         string       `json:"model"`
	Choices       []ChatChoice `json:"choices"`
	GeneratedText *string      `json:"generated_text,omitempty"`
	Usage         struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// Text 取出回复正文
func (r *ChatResponse) Text() (string, bool) {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content, true
	}
	if r.GeneratedText != nil {
		return *r.GeneratedText, true
	}
	return "", false
}

// APIError 模型接口返回非 2xx
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model API returned HTTP %d", e.StatusCode)
}
