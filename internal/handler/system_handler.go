package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/chat-api/internal/database"
	"github.com/ashwinyue/chat-api/internal/service"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
	db  *database.DB
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services, db *database.DB) *SystemHandler {
	return &SystemHandler{svc: svc, db: db}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			dbStatus = "unavailable"
		}
	}
	Success(c, gin.H{
		"status":   "ok",
		"version":  h.svc.Config.App.Version,
		"database": dbStatus,
	})
}

// FrontendConfig 前端功能开关
type FrontendConfig struct {
	StreamingEnabled bool   `json:"streaming_enabled"`
	DefaultPageSize  int    `json:"default_page_size"`
	Provider         string `json:"provider"`
}

// GetConfig 获取前端配置
// GET /api/v1/config
func (h *SystemHandler) GetConfig(c *gin.Context) {
	Success(c, FrontendConfig{
		StreamingEnabled: true,
		DefaultPageSize:  20,
		Provider:         h.svc.Config.AI.Provider,
	})
}
