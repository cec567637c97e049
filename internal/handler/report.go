package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixhats/backend/internal/hats"
	"github.com/sixhats/backend/internal/service/report"
	"k8s.io/klog/v2"
)

const reportFilename = "SixThinkingHatsReport.pdf"

type ReportHandler struct {
	assembler *report.Assembler
}

func NewReportHandler(assembler *report.Assembler) *ReportHandler {
	return &ReportHandler{assembler: assembler}
}

// ReportRequest 客户端回传的分析结果与笔记
// analysis 和 notes 延迟解析，类型不对时按缺失处理
type ReportRequest struct {
	Analysis     json.RawMessage `json:"analysis"`
	AnswerLength string          `json:"answer_length"`
	Notes        json.RawMessage `json:"notes"`
}

// Generate POST /api/generate-pdf
func (h *ReportHandler) Generate(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, hats.Validationf("Invalid JSON body."))
		return
	}

	analysis := parseAnalysis(req.Analysis)
	notes := parseNotes(req.Notes)
	length := hats.AnswerLengthOrDefault(req.AnswerLength)

	pdf, err := h.assembler.Export(analysis, notes, length)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+reportFilename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func parseAnalysis(raw json.RawMessage) *hats.AnalysisResult {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	analysis := hats.NewAnalysisResult()
	if err := json.Unmarshal(raw, analysis); err != nil {
		klog.V(6).Infof("[Handler] ignoring invalid analysis payload: %v", err)
		return nil
	}
	return analysis
}

// parseNotes 只保留字符串类型的笔记
func parseNotes(raw json.RawMessage) map[string]string {
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	notes := make(map[string]string, len(values))
	for key, v := range values {
		if s, ok := v.(string); ok {
			notes[key] = s
		}
	}
	return notes
}
