// Package chat 提供聊天补全服务
// 直接使用 eino ChatModel，避免冗余封装
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	ecomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/ashwinyue/chat-api/internal/config"
	"github.com/ashwinyue/chat-api/internal/model"
)

// SessionTracker 会话活跃度记录接口
type SessionTracker interface {
	Touch(ctx context.Context, sessionID string) error
}

// Service 聊天服务
type Service struct {
	chatModel ecomodel.ChatModel
	prompt    config.PromptConfig
	sessions  SessionTracker
}

// NewService 创建聊天服务
func NewService(chatModel ecomodel.ChatModel, prompt config.PromptConfig, sessions SessionTracker) *Service {
	return &Service{
		chatModel: chatModel,
		prompt:    prompt,
		sessions:  sessions,
	}
}

// Send 单次聊天补全
func (s *Service) Send(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if s.chatModel == nil {
		return nil, errors.New("chat model not configured")
	}

	sessionState := s.resolveSession(ctx, req.SessionState)
	messages := s.buildHistory(req)

	resp, err := s.chatModel.Generate(ctx, messages, s.buildOptions(&req.Context.Overrides)...)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return &ChatResponse{
		Message: &ChatMessage{
			Content: resp.Content,
			Role:    model.RoleAssistant,
		},
		Context:      newResponseContext(req.Context.Overrides.SuggestFollowupQuestions),
		SessionState: sessionState,
	}, nil
}

// Stream 流式聊天补全
//
// 首块只携带角色标记和会话标识，在任何模型输出之前让客户端拿到会话状态；
// 之后模型每产出一个非空片段发送一块，空片段丢弃。流结束即通道关闭，
// 没有额外的结束标记。取消 ctx 会同时停止模型读取和块转发。
func (s *Service) Stream(ctx context.Context, req *ChatRequest) (<-chan *ChatResponse, error) {
	if s.chatModel == nil {
		return nil, errors.New("chat model not configured")
	}

	sessionState := s.resolveSession(ctx, req.SessionState)
	messages := s.buildHistory(req)

	reader, err := s.chatModel.Stream(ctx, messages, s.buildOptions(&req.Context.Overrides)...)
	if err != nil {
		return nil, fmt.Errorf("chat stream failed: %w", err)
	}

	out := make(chan *ChatResponse, 10)

	go func() {
		defer close(out)
		defer reader.Close()

		priming := &ChatResponse{
			Message:      &ChatMessage{Role: model.RoleAssistant},
			Delta:        &ChatMessage{Role: model.RoleAssistant},
			Context:      newResponseContext(false),
			SessionState: sessionState,
		}
		select {
		case out <- priming:
		case <-ctx.Done():
			return
		}

		for {
			chunk, err := reader.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
					log.Printf("chat stream aborted: %v", err)
				}
				return
			}
			if chunk.Content == "" {
				continue
			}

			resp := &ChatResponse{
				Delta: &ChatMessage{Content: chunk.Content, Role: model.RoleAssistant},
			}
			select {
			case out <- resp:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// resolveSession 沿用请求中的会话标识，缺省时生成新的
func (s *Service) resolveSession(ctx context.Context, sessionState string) string {
	if sessionState == "" {
		sessionState = uuid.New().String()
	}
	if s.sessions != nil {
		if err := s.sessions.Touch(ctx, sessionState); err != nil {
			log.Printf("failed to touch session %s: %v", sessionState, err)
		}
	}
	return sessionState
}

// buildHistory 构造模型消息历史
// 系统前导语追加在请求消息之后，模板覆盖优先于服务端默认
func (s *Service) buildHistory(req *ChatRequest) []*schema.Message {
	messages := make([]*schema.Message, 0, len(req.Messages)+1)
	for _, m := range req.Messages {
		messages = append(messages, &schema.Message{
			Role:    roleToSchema(m.Role),
			Content: m.Content,
		})
	}

	prompt := req.Context.Overrides.PromptTemplate
	if prompt == "" {
		prompt = s.prompt.SystemPrompt
	}
	messages = append(messages, &schema.Message{
		Role:    schema.System,
		Content: prompt,
	})

	return messages
}

// buildOptions 合并请求覆盖与服务端默认生成参数
func (s *Service) buildOptions(overrides *ChatRequestOverrides) []ecomodel.Option {
	temperature := s.prompt.Temperature
	if overrides.Temperature != nil {
		temperature = *overrides.Temperature
	}

	opts := []ecomodel.Option{
		ecomodel.WithTemperature(float32(temperature)),
	}
	if s.prompt.MaxTokens > 0 {
		opts = append(opts, ecomodel.WithMaxTokens(s.prompt.MaxTokens))
	}
	if s.prompt.TopP > 0 {
		opts = append(opts, ecomodel.WithTopP(float32(s.prompt.TopP)))
	}
	if len(s.prompt.Stop) > 0 {
		opts = append(opts, ecomodel.WithStop(s.prompt.Stop))
	}
	return opts
}

// newResponseContext 构造响应上下文
// 请求了追问建议时返回空列表占位，否则为 null
func newResponseContext(suggestFollowups bool) *ResponseContext {
	ctx := &ResponseContext{
		DataPoints: []string{},
		Thoughts:   []Thought{},
	}
	if suggestFollowups {
		ctx.FollowupQuestions = []string{}
	}
	return ctx
}

// roleToSchema 将字符串角色转换为 schema.RoleType
func roleToSchema(role string) schema.RoleType {
	switch role {
	case model.RoleSystem:
		return schema.System
	case model.RoleAssistant:
		return schema.Assistant
	case model.RoleTool:
		return schema.Tool
	default:
		return schema.User
	}
}
