package normalizer

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/sixhats/backend/config"
	"github.com/sixhats/backend/internal/hats"
	"k8s.io/klog/v2"
)

// ErrNoText PDF 中没有可提取的文本
var ErrNoText = errors.New("no extractable text")

// TextExtractor 从 PDF 字节中提取内嵌文本
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Fields 结构化文本模板，Topic 必填
type Fields struct {
	Topic        string `json:"topic"`
	Decision     string `json:"decision"`
	Stakeholders string `json:"stakeholders"`
	Constraints  string `json:"constraints"`
	Context      string `json:"context"`
}

// Empty 所有字段均为空白
func (f Fields) Empty() bool {
	for _, s := range f.sections() {
		if strings.TrimSpace(s.value) != "" {
			return false
		}
	}
	return true
}

type section struct {
	heading string
	value   string
}

// sections 固定的拼接顺序
func (f Fields) sections() []section {
	return []section{
		{"Topic", f.Topic},
		{"Decision", f.Decision},
		{"Stakeholders", f.Stakeholders},
		{"Constraints", f.Constraints},
		{"Context", f.Context},
	}
}

// Normalizer 把用户输入整理成一份待分析的纯文本
type Normalizer struct {
	maxPDFBytes  int64
	maxTextChars int
	extractor    TextExtractor
}

// New 创建使用内置 PDF 提取器的 Normalizer
func New(cfg *config.Config) *Normalizer {
	return NewWithExtractor(cfg, PDFExtractor{})
}

// NewWithExtractor 使用自定义提取器
func NewWithExtractor(cfg *config.Config, extractor TextExtractor) *Normalizer {
	return &Normalizer{
		maxPDFBytes:  cfg.Upload.MaxPDFBytes,
		maxTextChars: cfg.Upload.MaxTextChars,
		extractor:    extractor,
	}
}

// MaxPDFBytes 上传大小上限
func (n *Normalizer) MaxPDFBytes() int64 { return n.maxPDFBytes }

// FromFields 按固定顺序拼接模板字段，空字段省略
func (n *Normalizer) FromFields(f Fields) (string, error) {
	if strings.TrimSpace(f.Topic) == "" {
		return "", hats.Validationf("Topic is required.")
	}

	parts := make([]string, 0, 5)
	for _, s := range f.sections() {
		value := strings.TrimSpace(s.value)
		if value == "" {
			continue
		}
		parts = append(parts, "## "+s.heading+"\n"+value)
	}
	return n.checkLength(strings.Join(parts, "\n\n"))
}

// FromText 直接提交的整段文本
func (n *Normalizer) FromText(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", hats.Validationf("No text provided for analysis.")
	}
	return n.checkLength(cleaned)
}

func (n *Normalizer) checkLength(text string) (string, error) {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	if utf8.RuneCountInString(text) > n.maxTextChars {
		return "", hats.TooLarge("Input is too long. Please shorten the text or upload a smaller PDF.")
	}
	return text, nil
}

// FromPDF 读取上传的 PDF 并提取文本
// 超过大小上限直接拒绝，提取出的文本超过字符上限时截断
func (n *Normalizer) FromPDF(r io.Reader, contentType string) (string, error) {
	if !isPDF(contentType) {
		return "", hats.Validationf("Only PDF uploads are supported.")
	}

	data, err := io.ReadAll(io.LimitReader(r, n.maxPDFBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > n.maxPDFBytes {
		return "", hats.TooLarge(fmt.Sprintf("PDF is too large. Max size is %s.", humanBytes(n.maxPDFBytes)))
	}

	text, err := n.extractor.Extract(data)
	if err != nil {
		klog.Warningf("[Normalizer] PDF 文本提取失败: size=%d, err=%v", len(data), err)
		return "", hats.Unsupported("Unable to read PDF text.", err)
	}

	text = ReduceBackMatter(text)
	if strings.TrimSpace(text) == "" {
		return "", hats.Unsupported("No extractable text found in the PDF. Scanned documents are not supported.", ErrNoText)
	}

	truncated := truncateRunes(text, n.maxTextChars)
	if len(truncated) < len(text) {
		klog.V(6).Infof("[Normalizer] PDF 文本超过上限已截断: limit=%d", n.maxTextChars)
	}
	klog.V(6).Infof("[Normalizer] PDF 文本提取完成: bytes=%d, chars=%d", len(data), utf8.RuneCountInString(truncated))
	return truncated, nil
}

func isPDF(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/pdf"
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return strings.TrimSpace(s[:i])
		}
		count++
	}
	return s
}

func humanBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
