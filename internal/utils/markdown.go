package utils

import (
	"strings"

	"k8s.io/klog/v2"
)

// UnwrapMarkdownFence 模型有时把整段回答包在 ```markdown 代码块里
// 仅当整段内容是一个代码块且语言为空、markdown 或 md 时去掉外层围栏，否则原样返回
func UnwrapMarkdownFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return content
	}

	firstLine, rest, ok := strings.Cut(trimmed, "\n")
	if !ok {
		return content
	}
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(firstLine, "```"))) {
	case "", "markdown", "md":
	default:
		return content
	}

	body := strings.TrimSuffix(rest, "```")
	// 内部还有其他围栏说明不是单个外层代码块
	if strings.Contains(body, "\n```") {
		return content
	}

	klog.V(8).Infof("[UnwrapMarkdownFence] 去掉外层 Markdown 代码块")
	return strings.TrimSpace(body)
}
