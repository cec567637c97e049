package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixhats/backend/internal/hats"
	"github.com/sixhats/backend/internal/service/orchestrator"
	"k8s.io/klog/v2"
)

const msgInternal = "Internal server error."

// statusFor 错误分类到 HTTP 状态码
// 顺序有意义：TooLarge 同时属于校验错误，BackendUnavailable 同时属于后端错误
func statusFor(err error) int {
	switch {
	case errors.Is(err, hats.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, hats.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, hats.ErrUnsupportedDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, hats.ErrBackendUnavailable), errors.Is(err, orchestrator.ErrOrchestratorStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, hats.ErrBackend):
		return http.StatusBadGateway
	case errors.Is(err, hats.ErrExport):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError 统一的错误响应 {detail: message}，未分类的错误不暴露细节
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg, ok := hats.UserMessage(err)
	switch {
	case errors.Is(err, orchestrator.ErrOrchestratorStopped):
		msg = "The service is shutting down. Please try again."
	case !ok || status == http.StatusInternalServerError:
		msg = msgInternal
	}

	if status >= http.StatusInternalServerError {
		klog.Errorf("[Handler] %s %s failed: status=%d, err=%v", c.Request.Method, c.Request.URL.Path, status, err)
	} else {
		klog.V(6).Infof("[Handler] %s %s rejected: status=%d, err=%v", c.Request.Method, c.Request.URL.Path, status, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}
