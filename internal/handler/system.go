package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sixhats/backend/internal/web"
)

type SystemHandler struct {
	frontend *web.Frontend
}

func NewSystemHandler(frontend *web.Frontend) *SystemHandler {
	return &SystemHandler{frontend: frontend}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SystemHandler) BuildInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.frontend.Info())
}
