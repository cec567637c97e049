package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixhats/backend/config"
	"github.com/sixhats/backend/internal/hats"
	"github.com/sixhats/backend/internal/service/orchestrator"
)

type ConfigHandler struct {
	cfg          *config.Config
	orchestrator *orchestrator.Orchestrator
}

func NewConfigHandler(cfg *config.Config, o *orchestrator.Orchestrator) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, orchestrator: o}
}

type ConfigResponse struct {
	LLM      LLMConfigResponse        `json:"llm"`
	Analysis AnalysisConfigResponse   `json:"analysis"`
	Upload   UploadConfigResponse     `json:"upload"`
	Hats     map[string][]hats.Hat    `json:"hats"`
	Pool     *orchestrator.PoolStatus `json:"pool"`
}

type LLMConfigResponse struct {
	Provider   string `json:"provider"`
	APIURL     string `json:"api_url"`
	APIKey     string `json:"api_key"`
	Model      string `json:"model"`
	MaxTokens  int    `json:"max_tokens"`
	Configured bool   `json:"configured"`
}

type AnalysisConfigResponse struct {
	HatTimeoutSeconds      float64 `json:"hat_timeout_seconds"`
	AnalysisTimeoutSeconds float64 `json:"analysis_timeout_seconds"`
	MaxConcurrentCalls     int     `json:"max_concurrent_calls"`
}

type UploadConfigResponse struct {
	MaxPDFBytes  int64 `json:"max_pdf_bytes"`
	MaxTextChars int   `json:"max_text_chars"`
}

// Get GET /api/config，密钥脱敏
func (h *ConfigHandler) Get(c *gin.Context) {
	resp := ConfigResponse{
		LLM: LLMConfigResponse{
			Provider:   h.cfg.LLM.Provider,
			APIURL:     h.cfg.LLM.APIURL,
			APIKey:     maskKey(h.cfg.LLM.APIKey),
			Model:      h.cfg.LLM.Model,
			MaxTokens:  h.cfg.LLM.MaxTokens,
			Configured: h.orchestrator.BackendConfigured(),
		},
		Analysis: AnalysisConfigResponse{
			HatTimeoutSeconds:      h.cfg.Analysis.HatTimeout.Seconds(),
			AnalysisTimeoutSeconds: h.cfg.Analysis.AnalysisTimeout.Seconds(),
			MaxConcurrentCalls:     h.cfg.Analysis.MaxConcurrentCalls,
		},
		Upload: UploadConfigResponse{
			MaxPDFBytes:  h.cfg.Upload.MaxPDFBytes,
			MaxTextChars: h.cfg.Upload.MaxTextChars,
		},
		Hats: map[string][]hats.Hat{
			string(hats.Short): hats.Catalog(hats.Short),
			string(hats.Long):  hats.Catalog(hats.Long),
		},
		Pool: h.orchestrator.GetPoolStatus(),
	}

	c.JSON(http.StatusOK, resp)
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
