package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ashwinyue/chat-api/internal/middleware"
	"github.com/ashwinyue/chat-api/internal/service"
	"github.com/ashwinyue/chat-api/internal/service/chat"
	"github.com/ashwinyue/chat-api/internal/service/conversation"
)

// ConversationHandler 会话处理器
type ConversationHandler struct {
	svc *service.Services
}

// NewConversationHandler 创建会话处理器
func NewConversationHandler(svc *service.Services) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// SaveConversationRequest 保存会话请求
// 客户端每次提交完整轮次历史，服务端只追加新增部分
type SaveConversationRequest struct {
	ID       string                  `json:"id"`
	Messages []chat.ConversationTurn `json:"messages"`
}

// ListConversations 分页列出会话
// GET /api/v1/conversations?count&continuationToken
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "20"))
	if err != nil || count < 1 || count > 100 {
		BadRequest(c, "Validation failed", []string{"count must be between 1 and 100"})
		return
	}
	token := c.Query("continuationToken")
	userID, _ := middleware.GetUserID(c)

	result, err := h.svc.Conversation.List(c.Request.Context(), userID, count, token)
	if err != nil {
		if errors.Is(err, conversation.ErrInvalidContinuationToken) {
			BadRequest(c, "Validation failed", []string{"continuation token must be a valid integer or empty"})
			return
		}
		Error(c, err)
		return
	}

	Success(c, result)
}

// GetConversation 获取会话完整轮次历史
// GET /api/v1/conversations/:id
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		NotFound(c)
		return
	}
	userID, _ := middleware.GetUserID(c)

	turns, err := h.svc.Conversation.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			NotFound(c)
			return
		}
		Error(c, err)
		return
	}

	Success(c, turns)
}

// SaveConversation 保存会话（按 id 幂等）
// POST /api/v1/conversations
func (h *ConversationHandler) SaveConversation(c *gin.Context) {
	var req SaveConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body", []string{err.Error()})
		return
	}

	var errs []string
	if _, err := uuid.Parse(req.ID); err != nil {
		errs = append(errs, "id must be a valid UUID string")
	}
	if len(req.Messages) == 0 {
		errs = append(errs, "at least one message is required")
	}
	if len(errs) > 0 {
		BadRequest(c, "Validation failed", errs)
		return
	}

	userID, _ := middleware.GetUserID(c)
	if _, err := h.svc.Conversation.Save(c.Request.Context(), userID, req.ID, req.Messages); err != nil {
		Error(c, err)
		return
	}

	OK(c)
}

// DeleteConversation 删除会话及其消息
// DELETE /api/v1/conversations/:id
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		NotFound(c)
		return
	}
	userID, _ := middleware.GetUserID(c)

	deleted, err := h.svc.Conversation.Delete(c.Request.Context(), userID, id)
	if err != nil {
		Error(c, err)
		return
	}
	if !deleted {
		NotFound(c)
		return
	}

	OK(c)
}
