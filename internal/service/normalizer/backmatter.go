package normalizer

import (
	"regexp"
	"strings"
)

// 学术论文常见的尾部章节标题
var backMatterMarkers = []string{
	"references",
	"bibliography",
	"reference list",
	"works cited",
	"literature cited",
	"citations",
	"appendix",
	"appendices",
	"supplementary material",
	"supplementary materials",
	"supplement",
	"acknowledgement",
	"acknowledgements",
}

var (
	backMatterPatterns = compileMarkers(backMatterMarkers)
	horizontalSpace    = regexp.MustCompile(`[ \t]+`)
	blankRuns          = regexp.MustCompile(`\n{3,}`)
)

const (
	// 短于该长度的文档不做裁剪
	minReduceChars = 5000
	// 只在文档后 55% 的位置寻找尾部章节，避开目录
	cutThreshold = 0.45
)

func compileMarkers(markers []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(markers))
	for _, m := range markers {
		out = append(out, regexp.MustCompile(`\n`+regexp.QuoteMeta(m)+`(\b|[ :])`))
	}
	return out
}

// ReduceBackMatter 规整空白，并裁掉参考文献、附录等尾部章节以降低模型输入量
func ReduceBackMatter(text string) string {
	if text == "" {
		return ""
	}

	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = horizontalSpace.ReplaceAllString(t, " ")
	t = strings.TrimSpace(blankRuns.ReplaceAllString(t, "\n\n"))

	// 只对 ASCII 做小写，保证字节偏移与原文一致
	lower := asciiLower(t)
	if len(lower) < minReduceChars {
		return t
	}

	threshold := int(cutThreshold * float64(len(lower)))
	bestCut := -1
	tail := lower[threshold:]
	for _, pattern := range backMatterPatterns {
		loc := pattern.FindStringIndex(tail)
		if loc == nil {
			continue
		}
		if cut := threshold + loc[0]; bestCut < 0 || cut < bestCut {
			bestCut = cut
		}
	}
	if bestCut >= 0 {
		t = strings.TrimSpace(t[:bestCut])
	}

	return strings.TrimSpace(blankRuns.ReplaceAllString(t, "\n\n"))
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
