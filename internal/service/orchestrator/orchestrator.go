package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sixhats/backend/config"
	"github.com/sixhats/backend/internal/hats"
	"github.com/sixhats/backend/internal/pkg/llm"
	"github.com/sixhats/backend/internal/utils"
	"k8s.io/klog/v2"
)

// -----------------------------
// Job 定义
// -----------------------------
type Job struct {
	AnalysisID string
	Role       hats.Role
	Prompt     hats.Prompt
	Timeout    time.Duration
}

// -----------------------------
// Orchestrator
// 六顶帽子并行调用模型，协程池在所有请求间共享，容量即模型调用并发上限
// -----------------------------
type Orchestrator struct {
	pool      *ants.Pool
	completer llm.Completer

	hatTimeout      time.Duration
	analysisTimeout time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// -----------------------------
// 错误定义
// -----------------------------
var (
	ErrOrchestratorStopped = errors.New("orchestrator is stopped")
	ErrAllHatsFailed       = errors.New("all hats failed")
)

// 单顶帽子失败时返回给用户的文案
const (
	msgTimeout     = "The model did not respond in time."
	msgCancelled   = "The analysis was cancelled before this hat finished."
	msgRateLimited = "The model API is rate limiting requests. Please try again shortly."
	msgEmpty       = "The model returned an empty response."
	msgMalformed   = "Unexpected response from model API."
	msgUpstream    = "The model API returned an error."
	msgUnreachable = "Could not reach the model API."
	msgBusy        = "The analysis service is busy. Please try again."
	msgInternal    = "Unexpected error while generating this hat."
)

// -----------------------------
// 构造函数
// -----------------------------
// NewOrchestrator 创建编排器；completer 为 nil 表示模型后端未配置，此时所有分析请求直接失败
func NewOrchestrator(cfg *config.Config, completer llm.Completer) (*Orchestrator, error) {
	ctx, cancel := context.WithCancel(context.Background())

	pool, err := ants.NewPool(cfg.Analysis.MaxConcurrentCalls,
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(1000),
		ants.WithExpiryDuration(5*time.Minute),
	)
	if err != nil {
		cancel()
		klog.Errorf("ants pool initialization failed: %v", err)
		return nil, err
	}

	return &Orchestrator{
		pool:            pool,
		completer:       completer,
		hatTimeout:      cfg.Analysis.HatTimeout,
		analysisTimeout: cfg.Analysis.AnalysisTimeout,
		ctx:             ctx,
		cancel:          cancel,
	}, nil
}

// -----------------------------
// 停止
// -----------------------------
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		klog.V(6).Infof("[Orchestrator] stopping, running=%d", o.pool.Running())
		o.cancel()
		if err := o.pool.ReleaseTimeout(o.analysisTimeout); err != nil {
			klog.Warningf("[Orchestrator] 等待运行中的调用超时: %v", err)
		}
		klog.V(6).Infof("[Orchestrator] stopped")
	})
}

// -----------------------------
// 分析
// -----------------------------
// Analyze 为每个角色构造提示词并独立调用模型，返回恰好六个结果
// 单个角色失败只影响该角色；全部失败、后端未配置或输入为空时返回顶层错误
func (o *Orchestrator) Analyze(ctx context.Context, req hats.AnalysisRequest) (*hats.AnalysisResult, error) {
	if o.completer == nil {
		return nil, hats.BackendUnavailable("The analysis backend is not configured.")
	}
	if strings.TrimSpace(req.Document) == "" {
		return nil, hats.Validationf("No text provided for analysis.")
	}
	select {
	case <-o.ctx.Done():
		return nil, ErrOrchestratorStopped
	default:
	}

	jobs, err := o.buildJobs(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.analysisTimeout)
	defer cancel()
	stop := context.AfterFunc(o.ctx, cancel)
	defer stop()

	start := time.Now()
	klog.V(6).Infof("[Orchestrator] 开始分析: id=%s, length=%s, docChars=%d", req.ID, req.AnswerLength, len(req.Document))

	// 缓冲区足够容纳全部结果，超时后迟到的结果不会阻塞工作协程
	outcomes := make(chan hats.HatResult, len(jobs))
	go o.dispatch(ctx, jobs, outcomes)

	result := hats.NewAnalysisResult()
collect:
	for result.Len() < len(jobs) {
		select {
		case res := <-outcomes:
			result.Set(res)
		case <-ctx.Done():
			o.fillPending(ctx, req.ID, result)
			break collect
		}
	}

	failed := result.Errors()
	klog.V(6).Infof("[Orchestrator] 分析完成: id=%s, failed=%d, elapsed=%v", req.ID, len(failed), time.Since(start))

	if result.AllFailed() {
		klog.Errorf("[Orchestrator] 所有角色均失败: id=%s, errors=%v", req.ID, failed)
		return result, hats.Backend("Analysis failed (all hats errored).", ErrAllHatsFailed)
	}
	return result, nil
}

func (o *Orchestrator) buildJobs(req hats.AnalysisRequest) ([]*Job, error) {
	roles := hats.Roles()
	jobs := make([]*Job, 0, len(roles))
	for _, role := range roles {
		prompt, err := hats.BuildPrompt(role, req.AnswerLength, req.Document)
		if err != nil {
			return nil, fmt.Errorf("build prompt for %s: %w", role, err)
		}
		jobs = append(jobs, &Job{
			AnalysisID: req.ID,
			Role:       role,
			Prompt:     prompt,
			Timeout:    o.hatTimeout,
		})
	}
	return jobs, nil
}

// fillPending 整体超时后，把尚未返回的角色标记为失败
func (o *Orchestrator) fillPending(ctx context.Context, analysisID string, result *hats.AnalysisResult) {
	msg := describeFailure(ctx.Err())
	for _, role := range hats.Roles() {
		if _, ok := result.Get(role); ok {
			continue
		}
		klog.Warningf("[Orchestrator] 角色未在时限内完成: id=%s, role=%s", analysisID, role)
		result.Set(hats.Failed(role, msg))
	}
}

// -----------------------------
// Dispatch
// -----------------------------
// dispatch 把任务提交到协程池；池满时 Submit 会阻塞，因此在独立协程中执行
func (o *Orchestrator) dispatch(ctx context.Context, jobs []*Job, outcomes chan<- hats.HatResult) {
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			outcomes <- hats.Failed(job.Role, describeFailure(err))
			continue
		}
		if err := o.pool.Submit(func() {
			outcomes <- o.executeJob(ctx, job)
		}); err != nil {
			klog.Errorf("[Orchestrator] 提交任务到协程池失败: id=%s, role=%s, err=%v", job.AnalysisID, job.Role, err)
			outcomes <- hats.Failed(job.Role, msgBusy)
		}
	}
}

// executeJob 执行单个角色的模型调用，任何错误都收敛为该角色的失败结果
func (o *Orchestrator) executeJob(ctx context.Context, job *Job) (res hats.HatResult) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("[Orchestrator] Task panic recovered: id=%s, role=%s, err=%v", job.AnalysisID, job.Role, r)
			res = hats.Failed(job.Role, msgInternal)
		}
	}()

	if err := ctx.Err(); err != nil {
		return hats.Failed(job.Role, describeFailure(err))
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hatCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := o.completer.Complete(hatCtx, job.Prompt.System, job.Prompt.User)
	if err != nil {
		klog.Warningf("[Orchestrator] 角色调用失败: id=%s, role=%s, elapsed=%v, err=%v", job.AnalysisID, job.Role, time.Since(start), err)
		return hats.Failed(job.Role, describeFailure(err))
	}

	text = utils.UnwrapMarkdownFence(text)
	klog.V(6).Infof("[Orchestrator] 角色调用完成: id=%s, role=%s, elapsed=%v, chars=%d", job.AnalysisID, job.Role, time.Since(start), len(text))
	return hats.Succeeded(job.Role, text)
}

// describeFailure 把后端错误转换成可展示的文案，不暴露内部细节
func describeFailure(err error) string {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case llm.IsRateLimited(err):
		return msgRateLimited
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Model API returned HTTP %d.", apiErr.StatusCode)
	case errors.Is(err, llm.ErrAPIErrorPayload):
		return msgUpstream
	case errors.Is(err, llm.ErrEmptyResponse):
		return msgEmpty
	case errors.Is(err, llm.ErrMalformedResponse):
		return msgMalformed
	}
	return msgUnreachable
}

// -----------------------------
// Pool Status
// -----------------------------
type PoolStatus struct {
	Capacity int `json:"capacity"`
	Running  int `json:"running"`
	Waiting  int `json:"waiting"`
}

func (o *Orchestrator) GetPoolStatus() *PoolStatus {
	return &PoolStatus{
		Capacity: o.pool.Cap(),
		Running:  o.pool.Running(),
		Waiting:  o.pool.Waiting(),
	}
}

// BackendConfigured 是否已配置模型后端
func (o *Orchestrator) BackendConfigured() bool {
	return o.completer != nil
}
