package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/chat-api/internal/config"
	"github.com/ashwinyue/chat-api/internal/handler"
	"github.com/ashwinyue/chat-api/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, cfg *config.Config) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.AuthMiddleware(cfg))

	// 健康检查
	r.GET("/health", h.System.Health)

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Chat 聊天
		chats := v1.Group("/chat")
		{
			chats.POST("", h.Chat.SendChat)
			chats.POST("/stream", h.Chat.StreamChat)
		}

		// Conversation 会话
		convs := v1.Group("/conversations")
		{
			convs.GET("", h.Conversation.ListConversations)
			convs.GET("/:id", h.Conversation.GetConversation)
			convs.POST("", h.Conversation.SaveConversation)
			convs.DELETE("/:id", h.Conversation.DeleteConversation)
		}

		// Config 前端配置
		v1.GET("/config", h.System.GetConfig)
	}

	return r
}
