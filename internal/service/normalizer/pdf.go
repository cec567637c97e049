package normalizer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"k8s.io/klog/v2"
)

// PDFExtractor 只提取 PDF 中内嵌的文本，不做 OCR
type PDFExtractor struct{}

// Extract 逐页提取文本，页之间以换行分隔
func (PDFExtractor) Extract(data []byte) (text string, err error) {
	// 解析损坏的 PDF 时底层库可能 panic
	defer func() {
		if r := recover(); r != nil {
			klog.Warningf("[Normalizer] PDF 解析 panic: %v", r)
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	parts := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		parts = append(parts, pageText)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
