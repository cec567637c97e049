package hats

import (
	"errors"
	"fmt"
)

// Unavailable 结果缺失时展示的文案
const Unavailable = "Analysis unavailable."

// 错误分类
var (
	ErrValidation          = errors.New("validation error")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrUnsupportedDocument = errors.New("unsupported document")
	ErrBackend             = errors.New("backend error")
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrExport              = errors.New("export error")
)

// Error 面向用户的错误
// Message 可以直接返回给调用方，Cause 仅用于日志
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 同时暴露分类与原因，便于 errors.Is 判断
func (e *Error) Unwrap() []error {
	out := []error{e.Kind}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

// Validationf 输入校验错误
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// TooLarge 输入超过大小限制，同时属于校验错误
func TooLarge(message string) error {
	return &Error{Kind: ErrPayloadTooLarge, Message: message, Cause: ErrValidation}
}

// Unsupported 文档无法提取文本
func Unsupported(message string, cause error) error {
	return &Error{Kind: ErrUnsupportedDocument, Message: message, Cause: cause}
}

// Backend 模型后端调用失败
func Backend(message string, cause error) error {
	return &Error{Kind: ErrBackend, Message: message, Cause: cause}
}

// BackendUnavailable 模型后端未配置或不可用
func BackendUnavailable(message string) error {
	return &Error{Kind: ErrBackendUnavailable, Message: message, Cause: ErrBackend}
}

// Exportf 报告导出错误
func Exportf(format string, args ...any) error {
	return &Error{Kind: ErrExport, Message: fmt.Sprintf(format, args...)}
}

// UserMessage 返回可以安全展示给用户的错误信息，ok 为 false 表示不应暴露细节
func UserMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
