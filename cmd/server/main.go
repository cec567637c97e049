package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"

	"github.com/sixhats/backend/config"
	"github.com/sixhats/backend/internal/handler"
	"github.com/sixhats/backend/internal/pkg/llm"
	"github.com/sixhats/backend/internal/router"
	"github.com/sixhats/backend/internal/service/normalizer"
	"github.com/sixhats/backend/internal/service/orchestrator"
	"github.com/sixhats/backend/internal/service/report"
	"github.com/sixhats/backend/internal/web"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 未配置模型后端时仍然启动，分析请求返回 503
	completer, err := newCompleter(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize model backend: %v", err)
	}

	orch, err := orchestrator.NewOrchestrator(cfg, completer)
	if err != nil {
		log.Fatalf("Failed to initialize orchestrator: %v", err)
	}
	defer orch.Stop()

	// 初始化 Handler
	frontend := web.NewFrontend(cfg.Frontend.Dist)
	analysisHandler := handler.NewAnalysisHandler(normalizer.New(cfg), orch)
	reportHandler := handler.NewReportHandler(report.NewAssembler().WithUTF8Font(cfg.Report.FontPath))
	configHandler := handler.NewConfigHandler(cfg, orch)
	systemHandler := handler.NewSystemHandler(frontend)

	// 设置路由
	r := router.Setup(cfg, analysisHandler, reportHandler, configHandler, systemHandler, frontend)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	klog.V(6).Info("服务关闭中...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Analysis.AnalysisTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		klog.Errorf("Server shutdown failed: %v", err)
	}
}

func newCompleter(cfg *config.Config) (llm.Completer, error) {
	if !cfg.BackendConfigured() {
		klog.Warningf("模型后端未配置（需要 OPENAI_BASE_URL 与 OPENAI_API_KEY），分析接口将返回 503")
		return nil, nil
	}
	completer, err := llm.NewCompleter(cfg)
	if err != nil {
		return nil, err
	}
	klog.V(6).Infof("模型后端: provider=%s, model=%s, url=%s", cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.APIURL)
	return completer, nil
}
