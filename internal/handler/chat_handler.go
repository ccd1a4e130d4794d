package handler

import (
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/chat-api/internal/service"
	"github.com/ashwinyue/chat-api/internal/service/chat"
)

// ChatHandler 聊天处理器
type ChatHandler struct {
	svc *service.Services
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(svc *service.Services) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// SendChat 单次聊天
// POST /api/v1/chat
func (h *ChatHandler) SendChat(c *gin.Context) {
	var req chat.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body", []string{err.Error()})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		BadRequest(c, "Validation failed", errs)
		return
	}

	resp, err := h.svc.Chat.Send(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, resp)
}

// StreamChat 流式聊天
// POST /api/v1/chat/stream
// 响应为 application/x-ndjson，每行一个 JSON 对象，逐块刷出
func (h *ChatHandler) StreamChat(c *gin.Context) {
	var req chat.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body", []string{err.Error()})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		BadRequest(c, "Validation failed", errs)
		return
	}

	ch, err := h.svc.Chat.Stream(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeaderNow()

	enc := json.NewEncoder(c.Writer)
	for resp := range ch {
		select {
		case <-c.Request.Context().Done():
			return
		default:
		}

		// Encode 自带换行，恰好构成 NDJSON 一行
		if err := enc.Encode(resp); err != nil {
			log.Printf("failed to write chat chunk: %v", err)
			return
		}
		c.Writer.Flush()
	}
}
