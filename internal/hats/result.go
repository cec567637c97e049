package hats

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnalysisRequest 一次分析请求，不做持久化
type AnalysisRequest struct {
	ID           string
	Document     string
	AnswerLength AnswerLength
}

// Status 单顶帽子的结果状态
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// HatResult 单个角色的分析结果
// Status 为 ok 时 Content 有效，为 error 时 Message 有效
type HatResult struct {
	Role    Role   `json:"-"`
	Status  Status `json:"status"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Succeeded 构造成功结果
func Succeeded(r Role, content string) HatResult {
	return HatResult{Role: r, Status: StatusOK, Content: content}
}

// Failed 构造失败结果
func Failed(r Role, message string) HatResult {
	return HatResult{Role: r, Status: StatusError, Message: message}
}

// OK 是否成功
func (h HatResult) OK() bool { return h.Status == StatusOK }

// AnalysisResult 六个角色的结果集合，以角色为键
type AnalysisResult struct {
	results map[Role]HatResult
}

// NewAnalysisResult 创建空结果集
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{results: make(map[Role]HatResult, len(roles))}
}

// Set 写入某个角色的结果，未知角色忽略
func (a *AnalysisResult) Set(res HatResult) {
	if !res.Role.Valid() {
		return
	}
	a.results[res.Role] = res
}

// Get 读取某个角色的结果
func (a *AnalysisResult) Get(r Role) (HatResult, bool) {
	res, ok := a.results[r]
	return res, ok
}

// Len 已有结果的角色数
func (a *AnalysisResult) Len() int { return len(a.results) }

// Complete 是否六个角色都有结果
func (a *AnalysisResult) Complete() bool {
	for _, r := range roles {
		if _, ok := a.results[r]; !ok {
			return false
		}
	}
	return true
}

// AllFailed 是否所有角色都失败
func (a *AnalysisResult) AllFailed() bool {
	if len(a.results) == 0 {
		return false
	}
	for _, res := range a.results {
		if res.OK() {
			return false
		}
	}
	return true
}

// Errors 失败角色到错误信息的映射
func (a *AnalysisResult) Errors() map[Role]string {
	out := make(map[Role]string)
	for r, res := range a.results {
		if !res.OK() {
			out[r] = res.Message
		}
	}
	return out
}

// MarshalJSON 按固定角色顺序输出
func (a *AnalysisResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, r := range roles {
		res, ok := a.results[r]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(string(r))
		val, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal %s result: %w", r, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 解析客户端回传的分析结果，未知角色忽略
func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw map[string]HatResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("analysis must be an object")
	}
	a.results = make(map[Role]HatResult, len(roles))
	for key, res := range raw {
		r, err := ParseRole(key)
		if err != nil {
			continue
		}
		res.Role = r
		switch {
		case res.Status == StatusOK || res.Status == StatusError:
		case res.Content != "":
			res.Status = StatusOK
		default:
			res.Status = StatusError
		}
		if res.Status == StatusError && res.Message == "" {
			res.Message = Unavailable
		}
		a.results[r] = res
	}
	return nil
}
