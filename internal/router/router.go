package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sixhats/backend/config"
	"github.com/sixhats/backend/internal/handler"
	"github.com/sixhats/backend/internal/web"
	"k8s.io/klog/v2"
)

// PDF 响应本身已压缩
const reportPath = "/api/generate-pdf"

func Setup(
	cfg *config.Config,
	analysisHandler *handler.AnalysisHandler,
	reportHandler *handler.ReportHandler,
	configHandler *handler.ConfigHandler,
	systemHandler *handler.SystemHandler,
	frontend *web.Frontend,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		klog.Errorf("[Router] panic recovered: %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}))
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{reportPath})))

	// 上传上限由 handler 按配置控制
	r.MaxMultipartMemory = 1 << 20

	r.HEAD("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api := r.Group("/api")
	{
		api.GET("/health", systemHandler.Health)
		api.GET("/buildinfo", systemHandler.BuildInfo)
		api.GET("/_buildinfo", systemHandler.BuildInfo)
		api.GET("/config", configHandler.Get)

		api.POST("/analyze", analysisHandler.Analyze)
		api.POST("/generate-pdf", reportHandler.Generate)
	}

	// 前端静态文件路由
	// 必须在API路由之后设置，确保API请求优先匹配
	frontend.SetupRouter(r)

	return r
}

// corsConfig 包含 "*" 时放开所有来源，此时不允许携带凭证
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
