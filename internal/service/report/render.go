package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// 版面尺寸，单位 pt
const (
	inch         = 72.0
	marginLeft   = 0.85 * inch
	marginRight  = 0.85 * inch
	marginTop    = 0.9 * inch
	marginBottom = 0.9 * inch

	bodySize    = 10.5
	bodyLeading = 14.5
	bulletStep  = 14.0
	cardLabelW  = 2.1 * inch
	cardPadding = 10.0
)

type rgb struct{ r, g, b int }

var (
	colorInk    = rgb{17, 24, 39}
	colorBody   = rgb{55, 65, 81}
	colorMuted  = rgb{107, 114, 128}
	colorBorder = rgb{229, 231, 235}
	colorCard   = rgb{243, 244, 246}
)

// Render 把报告渲染为 PDF 写入 w
// 文档日期取自 GeneratedAt，相同的报告得到相同的字节
// fontPath 为空时使用内置 Helvetica（仅 cp1252），否则加载该 TrueType 字体以支持任意 Unicode 文本
func Render(w io.Writer, rep *Report, fontPath string) error {
	r := newRenderer(rep, fontPath)
	r.cover(rep)
	for _, sec := range rep.Sections {
		r.section(sec)
	}
	if err := r.pdf.Error(); err != nil {
		return err
	}
	return r.pdf.Output(w)
}

type renderer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	sans  string
	mono  string
	pageW float64
	pageH float64
}

const utf8Family = "ReportUnicode"

func newRenderer(rep *Report, fontPath string) *renderer {
	fontDir, fontFile := "", ""
	if fontPath != "" {
		fontDir, fontFile = filepath.Dir(fontPath), filepath.Base(fontPath)
	}

	pdf := fpdf.New("P", "pt", "Letter", fontDir)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(rep.Title, true)
	pdf.SetAuthor("Six Thinking Hats", true)
	pdf.SetCreator("Six Thinking Hats", true)
	pdf.SetCreationDate(rep.GeneratedAt)
	pdf.SetModificationDate(rep.GeneratedAt)
	pdf.SetCatalogSort(true)

	r := &renderer{pdf: pdf, sans: "Helvetica", mono: "Courier"}
	if fontFile != "" {
		// 同一字体文件注册全部样式，粗体斜体由字体本身决定
		for _, style := range []string{"", "B", "I", "BI"} {
			pdf.AddUTF8Font(utf8Family, style, fontFile)
		}
		r.sans, r.mono = utf8Family, utf8Family
		r.tr = func(s string) string { return s }
	} else {
		// 核心字体只支持 cp1252，其余字符由转换器替换
		r.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	r.pageW, r.pageH = pdf.GetPageSize()
	pdf.SetFooterFunc(r.footer)
	return r
}

func (r *renderer) footer() {
	pdf := r.pdf
	lineY := r.pageH - 0.75*inch
	pdf.SetDrawColor(colorBorder.r, colorBorder.g, colorBorder.b)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, lineY, r.pageW-marginRight, lineY)

	pdf.SetFont(r.sans, "", 9)
	pdf.SetTextColor(colorMuted.r, colorMuted.g, colorMuted.b)
	pdf.SetXY(marginLeft, r.pageH-0.55*inch-9)
	pdf.CellFormat(r.contentWidth(), 12, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
}

func (r *renderer) contentWidth() float64 {
	return r.pageW - marginLeft - marginRight
}

// -----------------------------
// 封面
// -----------------------------
func (r *renderer) cover(rep *Report) {
	pdf := r.pdf
	pdf.AddPage()

	pdf.SetFont(r.sans, "B", 22)
	pdf.SetTextColor(colorInk.r, colorInk.g, colorInk.b)
	pdf.MultiCell(0, 26, r.tr(rep.Title), "", "C", false)
	pdf.Ln(10)

	pdf.SetFont(r.sans, "", 11)
	pdf.SetTextColor(colorBody.r, colorBody.g, colorBody.b)
	pdf.MultiCell(0, 14, rep.GeneratedAt.Format("Generated on January 02, 2006"), "", "L", false)
	pdf.Ln(18)

	pdf.SetFont(r.sans, "B", 9.5)
	pdf.SetTextColor(colorMuted.r, colorMuted.g, colorMuted.b)
	pdf.MultiCell(0, 12, "Sections", "", "L", false)
	pdf.SetFont(r.sans, "", 9.5)
	for _, sec := range rep.Sections {
		pdf.MultiCell(0, 12, r.tr("• "+sec.Label), "", "L", false)
	}
	pdf.Ln(16)

	pdf.SetFont(r.sans, "", 11)
	pdf.SetTextColor(colorBody.r, colorBody.g, colorBody.b)
	pdf.MultiCell(0, 14, r.tr(rep.Intro), "", "L", false)
}

// -----------------------------
// 章节
// -----------------------------
func (r *renderer) section(sec Section) {
	r.pdf.AddPage()
	r.headerCard(sec)
	r.divider()

	if len(sec.Notes) > 0 {
		r.blocks([]Block{{Kind: BlockHeading, Level: 3, Spans: []Span{{Text: notesHeading}}}})
		r.blocks(sec.Notes)
		r.divider()
	}
	r.blocks(sec.Body)
}

// headerCard 灰底卡片：左侧角色名，右侧关注点
func (r *renderer) headerCard(sec Section) {
	pdf := r.pdf
	const lineH = 13.0
	focusW := r.contentWidth() - cardLabelW - 2*cardPadding

	pdf.SetFont(r.sans, "", bodySize)
	lines := pdf.SplitText(r.tr(sec.Focus), focusW-cardPadding)
	if len(lines) == 0 {
		lines = []string{""}
	}
	cardH := float64(len(lines))*lineH + 2*cardPadding

	x, y := marginLeft, pdf.GetY()
	pdf.SetFillColor(colorCard.r, colorCard.g, colorCard.b)
	pdf.SetDrawColor(colorBorder.r, colorBorder.g, colorBorder.b)
	pdf.SetLineWidth(0.6)
	pdf.Rect(x, y, r.contentWidth(), cardH, "FD")

	pdf.SetFont(r.sans, "B", bodySize)
	pdf.SetTextColor(colorInk.r, colorInk.g, colorInk.b)
	pdf.SetXY(x+cardPadding, y+cardPadding)
	pdf.CellFormat(cardLabelW-cardPadding, lineH, r.tr(sec.Label), "", 0, "L", false, 0, "")

	pdf.SetFont(r.sans, "", bodySize)
	pdf.SetTextColor(colorBody.r, colorBody.g, colorBody.b)
	for i, line := range lines {
		pdf.SetXY(x+cardLabelW+cardPadding, y+cardPadding+float64(i)*lineH)
		pdf.CellFormat(focusW, lineH, line, "", 0, "L", false, 0, "")
	}
	pdf.SetXY(marginLeft, y+cardH)
}

func (r *renderer) divider() {
	pdf := r.pdf
	pdf.Ln(10)
	y := pdf.GetY()
	pdf.SetDrawColor(colorBorder.r, colorBorder.g, colorBorder.b)
	pdf.SetLineWidth(0.7)
	pdf.Line(marginLeft, y, r.pageW-marginRight, y)
	pdf.Ln(10)
}

// -----------------------------
// Markdown 块
// -----------------------------
func (r *renderer) blocks(blocks []Block) {
	pdf := r.pdf
	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			size, leading := headingSize(b.Level)
			pdf.Ln(4)
			pdf.SetTextColor(colorInk.r, colorInk.g, colorInk.b)
			r.spans(b.Spans, size, leading, true)
			pdf.Ln(leading + 2)
		case BlockParagraph:
			pdf.SetTextColor(colorBody.r, colorBody.g, colorBody.b)
			r.spans(b.Spans, bodySize, bodyLeading, false)
			pdf.Ln(bodyLeading + 4)
		case BlockBullet:
			r.bullet(b)
		case BlockRule:
			r.divider()
		}
	}
}

func headingSize(level int) (size, leading float64) {
	switch level {
	case 1:
		return 16, 20
	case 2:
		return 13.5, 17
	default:
		return 12, 15
	}
}

// bullet 列表项，悬挂缩进通过临时调整左边距实现
func (r *renderer) bullet(b Block) {
	pdf := r.pdf
	indent := marginLeft + 4 + float64(b.Level)*bulletStep

	marker := "•"
	if b.Number > 0 {
		marker = fmt.Sprintf("%d.", b.Number)
	}

	pdf.SetTextColor(colorBody.r, colorBody.g, colorBody.b)
	pdf.SetFont(r.sans, "", bodySize)
	pdf.SetX(indent)
	pdf.CellFormat(bulletStep, bodyLeading, r.tr(marker), "", 0, "L", false, 0, "")

	pdf.SetLeftMargin(indent + bulletStep)
	r.spans(b.Spans, bodySize, bodyLeading, false)
	pdf.SetLeftMargin(marginLeft)
	pdf.Ln(bodyLeading + 2)
}

func (r *renderer) spans(spans []Span, size, leading float64, bold bool) {
	pdf := r.pdf
	for _, s := range spans {
		family := r.sans
		var style strings.Builder
		if bold || s.Bold {
			style.WriteString("B")
		}
		if s.Italic {
			style.WriteString("I")
		}
		if s.Code {
			family = r.mono
		}
		pdf.SetFont(family, style.String(), size)
		pdf.Write(leading, r.tr(s.Text))
	}
}
