package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sixhats/backend/internal/hats"
	"github.com/sixhats/backend/internal/service/normalizer"
	"github.com/sixhats/backend/internal/service/orchestrator"
	"k8s.io/klog/v2"
)

// multipart 表单除文件外预留的字节数
const formOverhead = 1 << 20

type AnalysisHandler struct {
	normalizer   *normalizer.Normalizer
	orchestrator *orchestrator.Orchestrator
}

func NewAnalysisHandler(n *normalizer.Normalizer, o *orchestrator.Orchestrator) *AnalysisHandler {
	return &AnalysisHandler{
		normalizer:   n,
		orchestrator: o,
	}
}

// AnalyzeRequest JSON 请求体
// text 与结构化字段二选一，text 优先
type AnalyzeRequest struct {
	Text         *string `json:"text"`
	AnswerLength string  `json:"answer_length"`
	normalizer.Fields
}

type AnalyzeMeta struct {
	AnswerLength hats.AnswerLength `json:"answer_length"`
	AnalysisID   string            `json:"analysis_id"`
}

type AnalyzeResponse struct {
	Analysis *hats.AnalysisResult `json:"analysis"`
	Meta     AnalyzeMeta          `json:"meta"`
}

// Analyze POST /api/analyze
// 支持 application/json 与 multipart/form-data（file 或 text 字段）
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var (
		document string
		length   hats.AnswerLength
		err      error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		document, length, err = h.fromForm(c)
	} else {
		document, length, err = h.fromJSON(c)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	req := hats.AnalysisRequest{
		ID:           uuid.NewString(),
		Document:     document,
		AnswerLength: length,
	}
	result, err := h.orchestrator.Analyze(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrAllHatsFailed) && result != nil {
			klog.Errorf("[Handler] analysis %s failed for every hat", req.ID)
			msg, _ := hats.UserMessage(err)
			c.JSON(http.StatusBadGateway, gin.H{"detail": gin.H{
				"message": msg,
				"errors":  result.Errors(),
			}})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Analysis: result,
		Meta: AnalyzeMeta{
			AnswerLength: length,
			AnalysisID:   req.ID,
		},
	})
}

// fromJSON 与 fromForm 先校验 answer_length，再做文本整理和 PDF 提取
func (h *AnalysisHandler) fromJSON(c *gin.Context) (string, hats.AnswerLength, error) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", "", hats.Validationf("Invalid JSON body.")
	}
	length, err := hats.ParseAnswerLength(req.AnswerLength)
	if err != nil {
		return "", "", err
	}

	var document string
	if req.Text != nil || req.Fields.Empty() {
		text := ""
		if req.Text != nil {
			text = *req.Text
		}
		document, err = h.normalizer.FromText(text)
	} else {
		document, err = h.normalizer.FromFields(req.Fields)
	}
	return document, length, err
}

func (h *AnalysisHandler) fromForm(c *gin.Context) (string, hats.AnswerLength, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.normalizer.MaxPDFBytes()+formOverhead)
	if err := c.Request.ParseMultipartForm(formOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", "", hats.TooLarge("Upload is too large.")
		}
		return "", "", hats.Validationf("Invalid form data.")
	}
	length, err := hats.ParseAnswerLength(c.PostForm("answer_length"))
	if err != nil {
		return "", "", err
	}

	fh, err := c.FormFile("file")
	if err == nil {
		f, err := fh.Open()
		if err != nil {
			return "", "", hats.Validationf("Unable to read uploaded file.")
		}
		defer f.Close()

		klog.V(6).Infof("[Handler] PDF upload: name=%s, size=%d", fh.Filename, fh.Size)
		document, err := h.normalizer.FromPDF(f, fh.Header.Get("Content-Type"))
		return document, length, err
	}

	if text, ok := c.GetPostForm("text"); ok {
		document, err := h.normalizer.FromText(text)
		return document, length, err
	}

	fields := normalizer.Fields{
		Topic:        c.PostForm("topic"),
		Decision:     c.PostForm("decision"),
		Stakeholders: c.PostForm("stakeholders"),
		Constraints:  c.PostForm("constraints"),
		Context:      c.PostForm("context"),
	}
	if fields.Empty() {
		return "", length, hats.Validationf("No text provided for analysis.")
	}
	document, err := h.normalizer.FromFields(fields)
	return document, length, err
}
