package report

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind 报告中的块类型
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockBullet    BlockKind = "bullet"
	BlockRule      BlockKind = "rule"
)

// Span 一段同样式的行内文本
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Block 排版无关的内容块
// 标题的 Level 为 1-6，列表项的 Level 为嵌套深度（从 0 开始），有序列表项带 Number
type Block struct {
	Kind   BlockKind
	Level  int
	Number int
	Spans  []Span
}

// PlainText 块内全部文字
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

var markdown = goldmark.New()

// ParseMarkdown 把模型输出的 Markdown 转为块列表
// 只保留标题、段落、列表以及粗体、斜体、行内代码，其余结构降级为普通文本
func ParseMarkdown(src string) []Block {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	p := &mdParser{source: source}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(n, 0)
	}
	return p.blocks
}

type mdParser struct {
	source []byte
	blocks []Block
}

type style struct {
	bold, italic, code bool
}

func (p *mdParser) emit(b Block) {
	if b.Kind != BlockRule && strings.TrimSpace(b.PlainText()) == "" {
		return
	}
	p.blocks = append(p.blocks, b)
}

func (p *mdParser) block(n ast.Node, depth int) {
	switch node := n.(type) {
	case *ast.Heading:
		p.emit(Block{Kind: BlockHeading, Level: node.Level, Spans: p.inlines(node)})
	case *ast.Paragraph, *ast.TextBlock:
		p.emit(Block{Kind: BlockParagraph, Spans: p.inlines(node)})
	case *ast.List:
		p.list(node, depth)
	case *ast.ThematicBreak:
		p.emit(Block{Kind: BlockRule})
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		p.emit(Block{Kind: BlockParagraph, Spans: []Span{{Text: p.lines(node), Code: true}}})
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			p.block(c, depth)
		}
	default:
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			p.emit(Block{Kind: BlockParagraph, Spans: []Span{{Text: p.lines(n)}}})
		}
	}
}

func (p *mdParser) list(list *ast.List, depth int) {
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				b := Block{Kind: BlockBullet, Level: depth, Spans: p.inlines(c)}
				if list.IsOrdered() && first {
					b.Number = number
				}
				p.emit(b)
				first = false
			case *ast.List:
				p.list(c.(*ast.List), depth+1)
			default:
				p.block(c, depth+1)
			}
		}
		number++
	}
}

// lines 拼接块节点的原始文本行
func (p *mdParser) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(p.source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (p *mdParser) inlines(n ast.Node) []Span {
	var spans []Span
	p.walkInline(n, style{}, &spans)

	// 合并相邻同样式片段，去掉首尾空白
	merged := make([]Span, 0, len(spans))
	for _, s := range spans {
		if last := len(merged) - 1; last >= 0 && sameStyle(merged[last], s) {
			merged[last].Text += s.Text
			continue
		}
		merged = append(merged, s)
	}
	if len(merged) > 0 {
		merged[0].Text = strings.TrimLeft(merged[0].Text, " ")
		last := len(merged) - 1
		merged[last].Text = strings.TrimRight(merged[last].Text, " ")
	}
	return merged
}

func sameStyle(a, b Span) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Code == b.Code
}

func (p *mdParser) walkInline(n ast.Node, st style, out *[]Span) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			txt := string(node.Segment.Value(p.source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				txt += " "
			}
			*out = append(*out, Span{Text: txt, Bold: st.bold, Italic: st.italic, Code: st.code})
		case *ast.String:
			*out = append(*out, Span{Text: string(node.Value), Bold: st.bold, Italic: st.italic, Code: st.code})
		case *ast.Emphasis:
			next := st
			if node.Level >= 2 {
				next.bold = true
			} else {
				next.italic = true
			}
			p.walkInline(node, next, out)
		case *ast.CodeSpan:
			next := st
			next.code = true
			p.walkInline(node, next, out)
		case *ast.AutoLink:
			*out = append(*out, Span{Text: string(node.Label(p.source)), Bold: st.bold, Italic: st.italic})
		case *ast.RawHTML:
			var sb strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				sb.Write(seg.Value(p.source))
			}
			*out = append(*out, Span{Text: sb.String(), Bold: st.bold, Italic: st.italic, Code: st.code})
		default:
			p.walkInline(node, st, out)
		}
	}
}
