package report

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sixhats/backend/internal/hats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedAssembler() *Assembler {
	return NewAssemblerWithClock(func() time.Time { return fixedTime })
}

func sampleAnalysis() *hats.AnalysisResult {
	a := hats.NewAnalysisResult()
	a.Set(hats.Succeeded(hats.Blue, "## Purpose\n- Decide on a **4-day** week\n- Agree on *metrics*"))
	a.Set(hats.Succeeded(hats.White, "Known facts: `32h` contracts.\n\n1. Survey\n2. Pilot"))
	a.Set(hats.Succeeded(hats.Red, "Staff feel hopeful – and a bit anxious."))
	a.Set(hats.Succeeded(hats.Yellow, "More focus time."))
	a.Set(hats.Failed(hats.Black, "The model did not respond in time."))
	a.Set(hats.Succeeded(hats.Green, "Try a rotating day off."))
	return a
}

func TestAssembleSectionsInRoleOrder(t *testing.T) {
	rep, err := fixedAssembler().Assemble(sampleAnalysis(), nil, hats.Short)
	require.NoError(t, err)

	require.Len(t, rep.Sections, 6)
	for i, r := range hats.Roles() {
		assert.Equal(t, r, rep.Sections[i].Role)
		assert.Equal(t, r.Label()+" Hat", rep.Sections[i].Label)
		assert.Equal(t, hats.HatFor(r, hats.Short).Focus, rep.Sections[i].Focus)
	}
	assert.Equal(t, fixedTime, rep.GeneratedAt)
	assert.Equal(t, reportTitle, rep.Title)
}

func TestAssembleErroredRoleRendersMessage(t *testing.T) {
	rep, err := fixedAssembler().Assemble(sampleAnalysis(), nil, hats.Long)
	require.NoError(t, err)

	black := rep.Sections[4]
	require.Equal(t, hats.Black, black.Role)
	assert.Equal(t, hats.StatusError, black.Status)
	require.Len(t, black.Body, 1)
	assert.Equal(t, "The model did not respond in time.", black.Body[0].PlainText())
}

func TestAssembleMissingRoleRendersUnavailable(t *testing.T) {
	a := hats.NewAnalysisResult()
	a.Set(hats.Succeeded(hats.Blue, "only blue"))

	rep, err := fixedAssembler().Assemble(a, nil, hats.Long)
	require.NoError(t, err)
	require.Len(t, rep.Sections, 6)

	assert.Equal(t, hats.StatusOK, rep.Sections[0].Status)
	for _, sec := range rep.Sections[1:] {
		assert.Equal(t, hats.StatusError, sec.Status)
		assert.Equal(t, hats.Unavailable, sec.Body[0].PlainText())
	}
}

func TestAssembleNotes(t *testing.T) {
	notes := map[string]string{
		"red":    "  We disagreed on **pay**.  ",
		"yellow": "   ",
		"purple": "ignored",
	}
	rep, err := fixedAssembler().Assemble(sampleAnalysis(), notes, hats.Long)
	require.NoError(t, err)

	for _, sec := range rep.Sections {
		if sec.Role == hats.Red {
			require.Len(t, sec.Notes, 1)
			assert.Equal(t, "We disagreed on pay.", sec.Notes[0].PlainText())
			continue
		}
		assert.Empty(t, sec.Notes, "role %s", sec.Role)
	}
}

func TestAssembleMissingAnalysis(t *testing.T) {
	_, err := fixedAssembler().Assemble(nil, nil, hats.Long)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hats.ErrExport))
	msg, ok := hats.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Analysis data missing.", msg)

	_, err = fixedAssembler().Export(nil, nil, hats.Long)
	assert.True(t, errors.Is(err, hats.ErrExport))
}

func TestAssembleIsPure(t *testing.T) {
	notes := map[string]string{"blue": "- agenda first"}
	first, err := fixedAssembler().Assemble(sampleAnalysis(), notes, hats.Short)
	require.NoError(t, err)
	second, err := fixedAssembler().Assemble(sampleAnalysis(), notes, hats.Short)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExportIsDeterministic(t *testing.T) {
	notes := map[string]string{"green": "Ideas from table 3"}

	first, err := fixedAssembler().Export(sampleAnalysis(), notes, hats.Long)
	require.NoError(t, err)
	second, err := fixedAssembler().Export(sampleAnalysis(), notes, hats.Long)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.True(t, bytes.Equal(first, second), "same inputs must render the same bytes")
}

func TestExportDiffersByContent(t *testing.T) {
	a, err := fixedAssembler().Export(sampleAnalysis(), nil, hats.Long)
	require.NoError(t, err)
	b, err := fixedAssembler().Export(sampleAnalysis(), map[string]string{"blue": "extra"}, hats.Long)
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b))
}

func TestParseMarkdown(t *testing.T) {
	src := "# Title\n\nSome **bold** and *italic* with `code`.\n\n- one\n  - nested\n- two\n\n---\n\n3. third\n4. fourth\n"
	blocks := ParseMarkdown(src)

	require.Len(t, blocks, 8)

	assert.Equal(t, BlockHeading, blocks[0].Kind)
	assert.Equal(t, 1, blocks[0].Level)
	assert.Equal(t, "Title", blocks[0].PlainText())

	para := blocks[1]
	assert.Equal(t, BlockParagraph, para.Kind)
	assert.Equal(t, "Some bold and italic with code.", para.PlainText())
	assert.Equal(t, []Span{
		{Text: "Some "},
		{Text: "bold", Bold: true},
		{Text: " and "},
		{Text: "italic", Italic: true},
		{Text: " with "},
		{Text: "code", Code: true},
		{Text: "."},
	}, para.Spans)

	assert.Equal(t, Block{Kind: BlockBullet, Level: 0, Spans: []Span{{Text: "one"}}}, blocks[2])
	assert.Equal(t, Block{Kind: BlockBullet, Level: 1, Spans: []Span{{Text: "nested"}}}, blocks[3])
	assert.Equal(t, Block{Kind: BlockBullet, Level: 0, Spans: []Span{{Text: "two"}}}, blocks[4])
	assert.Equal(t, BlockRule, blocks[5].Kind)
	assert.Equal(t, Block{Kind: BlockBullet, Number: 3, Spans: []Span{{Text: "third"}}}, blocks[6])
	assert.Equal(t, Block{Kind: BlockBullet, Number: 4, Spans: []Span{{Text: "fourth"}}}, blocks[7])
}

func TestParseMarkdownJoinsSoftBreaks(t *testing.T) {
	blocks := ParseMarkdown("first line\nsecond line")
	require.Len(t, blocks, 1)
	assert.Equal(t, "first line second line", blocks[0].PlainText())
}

func TestParseMarkdownEmpty(t *testing.T) {
	assert.Empty(t, ParseMarkdown(""))
	assert.Empty(t, ParseMarkdown("   \n\n  "))
}

func TestExportNonLatinContentWithCoreFont(t *testing.T) {
	a := hats.NewAnalysisResult()
	a.Set(hats.Succeeded(hats.Blue, "## Mục tiêu\n- Quyết định tuần làm việc bốn ngày"))
	a.Set(hats.Succeeded(hats.White, "ข้อเท็จจริง: สัญญา 32 ชั่วโมง"))
	a.Set(hats.Succeeded(hats.Green, "试行轮休制度"))

	out, err := fixedAssembler().Export(a, map[string]string{"red": "Ελπίδα"}, hats.Long)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestExportMissingUTF8Font(t *testing.T) {
	_, err := fixedAssembler().WithUTF8Font(filepath.Join(t.TempDir(), "missing.ttf")).
		Export(sampleAnalysis(), nil, hats.Long)
	require.Error(t, err)
	assert.False(t, errors.Is(err, hats.ErrExport), "a broken font is a server fault")
}

func TestWithUTF8FontEmptyKeepsCoreFont(t *testing.T) {
	plain, err := fixedAssembler().Export(sampleAnalysis(), nil, hats.Short)
	require.NoError(t, err)
	empty, err := fixedAssembler().WithUTF8Font("").Export(sampleAnalysis(), nil, hats.Short)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(plain, empty))
}
