package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/sixhats/backend/internal/hats"
	"k8s.io/klog/v2"
)

const (
	reportTitle = "Six Thinking Hats Analysis Report"
	reportIntro = "This report compiles structured, parallel-thinking outputs using the Six Thinking Hats method. " +
		"Each section corresponds to one hat and can be read independently."
	notesHeading = "Group Notes"
)

// Report 与排版无关的报告内容
type Report struct {
	Title        string
	GeneratedAt  time.Time
	AnswerLength hats.AnswerLength
	Intro        string
	Sections     []Section
}

// Section 单顶帽子的章节
type Section struct {
	Role   hats.Role
	Label  string
	Focus  string
	Status hats.Status
	Notes  []Block
	Body   []Block
}

// Assembler 报告组装器
type Assembler struct {
	now      func() time.Time
	fontPath string
}

// NewAssembler 创建组装器，使用当前 UTC 时间作为生成时间
func NewAssembler() *Assembler {
	return &Assembler{now: func() time.Time { return time.Now().UTC() }}
}

// NewAssemblerWithClock 指定时钟，便于得到确定的输出
func NewAssemblerWithClock(now func() time.Time) *Assembler {
	return &Assembler{now: now}
}

// WithUTF8Font 使用 TrueType 字体渲染，支持 cp1252 以外的文字（越南文、泰文、中日韩等）
func (a *Assembler) WithUTF8Font(path string) *Assembler {
	a.fontPath = path
	return a
}

// Assemble 按固定角色顺序把分析结果和小组笔记组装成报告
// 失败的角色渲染其错误信息，缺失的角色渲染 hats.Unavailable
func (a *Assembler) Assemble(analysis *hats.AnalysisResult, notes map[string]string, length hats.AnswerLength) (*Report, error) {
	if analysis == nil {
		return nil, hats.Exportf("Analysis data missing.")
	}
	if length == "" {
		length = hats.Long
	}

	rep := &Report{
		Title:        reportTitle,
		GeneratedAt:  a.now(),
		AnswerLength: length,
		Intro:        reportIntro,
	}
	for _, hat := range hats.Catalog(length) {
		sec := Section{
			Role:  hat.Role,
			Label: hat.Label + " Hat",
			Focus: hat.Focus,
		}

		res, ok := analysis.Get(hat.Role)
		switch {
		case ok && res.OK() && strings.TrimSpace(res.Content) != "":
			sec.Status = hats.StatusOK
			sec.Body = ParseMarkdown(res.Content)
		case ok && !res.OK() && strings.TrimSpace(res.Message) != "":
			sec.Status = hats.StatusError
			sec.Body = []Block{{Kind: BlockParagraph, Spans: []Span{{Text: res.Message, Italic: true}}}}
		default:
			sec.Status = hats.StatusError
			sec.Body = []Block{{Kind: BlockParagraph, Spans: []Span{{Text: hats.Unavailable, Italic: true}}}}
		}

		if n := strings.TrimSpace(notes[string(hat.Role)]); n != "" {
			sec.Notes = ParseMarkdown(n)
		}
		rep.Sections = append(rep.Sections, sec)
	}
	return rep, nil
}

// Export 组装并渲染为 PDF
func (a *Assembler) Export(analysis *hats.AnalysisResult, notes map[string]string, length hats.AnswerLength) ([]byte, error) {
	rep, err := a.Assemble(analysis, notes, length)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(&buf, rep, a.fontPath); err != nil {
		klog.Errorf("[Report] 渲染 PDF 失败: %v", err)
		return nil, fmt.Errorf("render report: %w", err)
	}
	klog.V(6).Infof("[Report] 报告已生成: length=%s, sections=%d, bytes=%d", length, len(rep.Sections), buf.Len())
	return buf.Bytes(), nil
}
