// Package handler 提供 HTTP 处理器单元测试
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	ecomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ashwinyue/chat-api/internal/config"
	"github.com/ashwinyue/chat-api/internal/model"
	"github.com/ashwinyue/chat-api/internal/service"
	"github.com/ashwinyue/chat-api/internal/service/chat"
	"github.com/ashwinyue/chat-api/internal/service/conversation"
)

// stubChatModel Mock ChatModel
type stubChatModel struct {
	reply  string
	chunks []string
}

func (m *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...ecomodel.Option) (*schema.Message, error) {
	return &schema.Message{Role: schema.Assistant, Content: m.reply}, nil
}

func (m *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...ecomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out := make([]*schema.Message, 0, len(m.chunks))
	for _, c := range m.chunks {
		out = append(out, &schema.Message{Role: schema.Assistant, Content: c})
	}
	return schema.StreamReaderFromArray(out), nil
}

func (m *stubChatModel) BindTools(tools []*schema.ToolInfo) error { return nil }

// stubConversationRepo Mock Conversation Repository
type stubConversationRepo struct {
	conversations map[string]*model.Conversation
}

func newStubRepo() *stubConversationRepo {
	return &stubConversationRepo{conversations: make(map[string]*model.Conversation)}
}

func (m *stubConversationRepo) Create(conv *model.Conversation) error {
	m.conversations[conv.ID] = conv
	return nil
}

func (m *stubConversationRepo) GetByIDForUser(id, userID string) (*model.Conversation, error) {
	conv, ok := m.conversations[id]
	if !ok || conv.UserID != userID {
		return nil, nil
	}
	return conv, nil
}

func (m *stubConversationRepo) ListForUser(userID string, offset, limit int) ([]*model.Conversation, error) {
	var owned []*model.Conversation
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			owned = append(owned, conv)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Timestamp > owned[j].Timestamp })
	if offset >= len(owned) {
		return nil, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (m *stubConversationRepo) AppendMessages(messages []*model.Message) error {
	for _, msg := range messages {
		conv := m.conversations[msg.ConversationID]
		conv.Messages = append(conv.Messages, *msg)
	}
	return nil
}

func (m *stubConversationRepo) Delete(id string) error {
	delete(m.conversations, id)
	return nil
}

// newTestRouter 组装带假身份的测试路由
func newTestRouter(chatModel ecomodel.ChatModel, repo *stubConversationRepo, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App: config.AppConfig{Version: "test"},
		AI:  config.AIConfig{Provider: "openai"},
		Prompt: config.PromptConfig{
			SystemPrompt: "test prompt",
			Temperature:  0.7,
		},
	}
	svc := &service.Services{
		Chat:         chat.NewService(chatModel, cfg.Prompt, nil),
		Conversation: conversation.NewService(repo),
		Config:       cfg,
	}
	h := NewHandlers(svc, nil)

	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}
	r.POST("/api/v1/chat", h.Chat.SendChat)
	r.POST("/api/v1/chat/stream", h.Chat.StreamChat)
	r.GET("/api/v1/conversations", h.Conversation.ListConversations)
	r.GET("/api/v1/conversations/:id", h.Conversation.GetConversation)
	r.POST("/api/v1/conversations", h.Conversation.SaveConversation)
	r.DELETE("/api/v1/conversations/:id", h.Conversation.DeleteConversation)
	return r
}

func chatBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(chat.ChatRequest{
		Messages: []chat.ChatMessage{{Role: model.RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestSendChat(t *testing.T) {
	r := newTestRouter(&stubChatModel{reply: "hi"}, newStubRepo(), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", chatBody(t))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp chat.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid response JSON: %v", err)
	}
	if resp.Message == nil || resp.Message.Content != "hi" {
		t.Errorf("Message = %+v, want hi", resp.Message)
	}
	if resp.SessionState == "" {
		t.Error("Missing session state")
	}
}

func TestSendChatValidation(t *testing.T) {
	r := newTestRouter(&stubChatModel{reply: "hi"}, newStubRepo(), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"messages":[]}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400", w.Code)
	}
	var problem ProblemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Invalid problem JSON: %v", err)
	}
	if problem.Status != http.StatusBadRequest || len(problem.Errors) == 0 {
		t.Errorf("Problem = %+v, want status 400 with error list", problem)
	}
}

// 流式响应：NDJSON，一行一个 JSON 对象，空片段被丢弃
func TestStreamChatNDJSON(t *testing.T) {
	r := newTestRouter(&stubChatModel{chunks: []string{"Hello", "", "world"}}, newStubRepo(), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/stream", chatBody(t))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("Content-Type = %q, want application/x-ndjson", ct)
	}

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 NDJSON lines, got %d: %q", len(lines), lines)
	}

	var priming chat.ChatResponse
	if err := json.Unmarshal([]byte(lines[0]), &priming); err != nil {
		t.Fatalf("Invalid priming line: %v", err)
	}
	if priming.SessionState == "" {
		t.Error("Priming line missing session state")
	}

	wantDeltas := []string{"Hello", "world"}
	for i, line := range lines[1:] {
		var resp chat.ChatResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("Invalid delta line %d: %v", i, err)
		}
		if resp.Delta == nil || resp.Delta.Content != wantDeltas[i] {
			t.Errorf("Delta %d = %+v, want %q", i, resp.Delta, wantDeltas[i])
		}
	}
}

func TestListConversationsBadParams(t *testing.T) {
	r := newTestRouter(&stubChatModel{}, newStubRepo(), "user-1")

	for _, path := range []string{
		"/api/v1/conversations?count=0",
		"/api/v1/conversations?count=101",
		"/api/v1/conversations?count=abc",
		"/api/v1/conversations?count=10&continuationToken=abc",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestConversationRoundTrip(t *testing.T) {
	repo := newStubRepo()
	r := newTestRouter(&stubChatModel{}, repo, "user-1")
	id := uuid.New().String()

	// 保存
	body, _ := json.Marshal(SaveConversationRequest{
		ID: id,
		Messages: []chat.ConversationTurn{{
			User:     "hello",
			Response: chat.ChatResponse{Message: &chat.ChatMessage{Content: "hi", Role: model.RoleAssistant}},
		}},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations", bytes.NewBuffer(body))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Save status = %d, body = %s", w.Code, w.Body.String())
	}

	// 读取
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+id, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Get status = %d", w.Code)
	}
	var turns []chat.ConversationTurn
	if err := json.Unmarshal(w.Body.Bytes(), &turns); err != nil {
		t.Fatalf("Invalid turns JSON: %v", err)
	}
	if len(turns) != 1 || turns[0].User != "hello" {
		t.Fatalf("Turns = %+v", turns)
	}

	// 列表
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversations?count=10", nil)
	r.ServeHTTP(w, req)
	var list conversation.ListResult
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Invalid list JSON: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != id {
		t.Fatalf("List = %+v", list)
	}

	// 删除
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/"+id, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Delete status = %d", w.Code)
	}

	// 再删提示不存在
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/"+id, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Second delete status = %d, want 404", w.Code)
	}
}

// 匿名调用读写会话接口：空数据而不是错误
func TestConversationAnonymousPolicy(t *testing.T) {
	r := newTestRouter(&stubChatModel{}, newStubRepo(), "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations?count=10", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("List status = %d, want 200", w.Code)
	}
	var list conversation.ListResult
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Invalid list JSON: %v", err)
	}
	if len(list.Items) != 0 || list.ContinuationToken != "" {
		t.Fatalf("List = %+v, want empty page", list)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+uuid.New().String(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Get status = %d, want 404", w.Code)
	}
}
