package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// LLM 提供方
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Upload   UploadConfig   `yaml:"upload"`
	Frontend FrontendConfig `yaml:"frontend"`
	Report   ReportConfig   `yaml:"report"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Mode        string   `yaml:"mode"` // debug, release
	CORSOrigins []string `yaml:"cors_origins"`
}

type LLMConfig struct {
	Provider       string  `yaml:"provider"` // http, openai
	APIURL         string  `yaml:"api_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	MaxConnections int     `yaml:"max_connections"`
	MaxKeepAlive   int     `yaml:"max_keepalive"`
}

// AnalysisConfig 六顶帽子分析的超时与并发
type AnalysisConfig struct {
	HatTimeout         time.Duration `yaml:"hat_timeout"`
	AnalysisTimeout    time.Duration `yaml:"analysis_timeout"`
	MaxConcurrentCalls int           `yaml:"max_concurrent_calls"`
}

type UploadConfig struct {
	MaxPDFBytes  int64 `yaml:"max_pdf_bytes"`
	MaxTextChars int   `yaml:"max_text_chars"`
}

type FrontendConfig struct {
	Dist string `yaml:"dist"`
}

// ReportConfig PDF 报告排版
type ReportConfig struct {
	// TrueType 字体路径，为空时使用只支持 cp1252 的内置字体
	FontPath string `yaml:"font_path"`
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Mode:        "debug",
			CORSOrigins: []string{"*"},
		},
		LLM: LLMConfig{
			Provider:       ProviderHTTP,
			APIURL:         "https://api.openai.com/v1",
			Model:          "aisingapore/Gemma-SEA-LION-v4-27B-IT",
			Temperature:    0.3,
			MaxConnections: 20,
			MaxKeepAlive:   10,
		},
		Analysis: AnalysisConfig{
			HatTimeout:         30 * time.Second,
			AnalysisTimeout:    45 * time.Second,
			MaxConcurrentCalls: 12,
		},
		Upload: UploadConfig{
			MaxPDFBytes:  10 * 1024 * 1024,
			MaxTextChars: 200_000,
		},
		Frontend: FrontendConfig{
			Dist: "frontend_dist",
		},
	}
}

// Load 读取配置文件并叠加环境变量
// 配置文件路径取自 CONFIG_PATH，默认 config.yaml，文件不存在时使用默认值
func Load() (*Config, error) {
	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
		klog.V(6).Infof("[Config] 已加载配置文件: %s", configPath)
	case os.IsNotExist(err):
		klog.V(6).Infof("[Config] 配置文件不存在，使用默认配置: %s", configPath)
	default:
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	// 环境变量优先级高于配置文件
	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		config.Server.Mode = mode
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = strings.ToLower(strings.TrimSpace(provider))
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = strings.TrimSpace(apiKey)
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = strings.TrimSpace(baseURL)
	}
	if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("LLM_TEMPERATURE: %w", err)
		}
		config.LLM.Temperature = float32(f)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"MAX_CONCURRENT_MODEL_CALLS", &config.Analysis.MaxConcurrentCalls},
		{"HTTP_MAX_CONNECTIONS", &config.LLM.MaxConnections},
		{"HTTP_MAX_KEEPALIVE", &config.LLM.MaxKeepAlive},
		{"MAX_TEXT_CHARS", &config.Upload.MaxTextChars},
		{"LLM_MAX_TOKENS", &config.LLM.MaxTokens},
	}
	for _, item := range ints {
		v := os.Getenv(item.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", item.name, err)
		}
		*item.dst = n
	}

	if v := os.Getenv("MAX_PDF_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_PDF_BYTES: %w", err)
		}
		config.Upload.MaxPDFBytes = n
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"HAT_TIMEOUT", &config.Analysis.HatTimeout},
		{"ANALYSIS_TIMEOUT", &config.Analysis.AnalysisTimeout},
	}
	for _, item := range durations {
		v := os.Getenv(item.name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", item.name, err)
		}
		*item.dst = d
	}

	if dist := os.Getenv("FRONTEND_DIST"); dist != "" {
		config.Frontend.Dist = dist
	}
	if font := os.Getenv("REPORT_FONT_PATH"); font != "" {
		config.Report.FontPath = font
	}
	return nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderHTTP, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.Analysis.HatTimeout <= 0 {
		return fmt.Errorf("analysis.hat_timeout must be positive")
	}
	if c.Analysis.AnalysisTimeout <= 0 {
		return fmt.Errorf("analysis.analysis_timeout must be positive")
	}
	if c.Analysis.MaxConcurrentCalls <= 0 {
		return fmt.Errorf("analysis.max_concurrent_calls must be positive")
	}
	if c.Upload.MaxPDFBytes <= 0 {
		return fmt.Errorf("upload.max_pdf_bytes must be positive")
	}
	if c.Upload.MaxTextChars <= 0 {
		return fmt.Errorf("upload.max_text_chars must be positive")
	}
	if c.LLM.MaxConnections <= 0 || c.LLM.MaxKeepAlive < 0 {
		return fmt.Errorf("llm connection limits are invalid")
	}
	return nil
}

// BackendConfigured 是否已配置模型后端地址与密钥
func (c *Config) BackendConfigured() bool {
	return strings.TrimSpace(c.LLM.APIURL) != "" && strings.TrimSpace(c.LLM.APIKey) != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
