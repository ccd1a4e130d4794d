// Package conversation 提供会话持久化服务
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ashwinyue/chat-api/internal/model"
	"github.com/ashwinyue/chat-api/internal/repository"
	"github.com/ashwinyue/chat-api/internal/service/chat"
)

var (
	// ErrNotFound 会话不存在或属于其他用户，对调用方不做区分
	ErrNotFound = errors.New("conversation not found")
	// ErrInvalidContinuationToken 续页令牌不是合法的非负整数
	ErrInvalidContinuationToken = errors.New("invalid continuation token")
)

// 标题截断长度
const maxTitleRunes = 50

// Service 会话服务
type Service struct {
	repo repository.ConversationRepository
}

// NewService 创建会话服务
func NewService(repo repository.ConversationRepository) *Service {
	return &Service{repo: repo}
}

// ConversationSummary 会话摘要
type ConversationSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

// ListResult 分页列表结果
// ContinuationToken 为空表示没有更多数据
type ListResult struct {
	Items             []ConversationSummary `json:"items"`
	ContinuationToken string                `json:"continuation_token,omitempty"`
}

// List 按时间倒序分页列出用户会话
//
// 未认证（userID 为空）返回空页而不是错误。令牌是字符串化的行偏移量，
// 非数字令牌返回 ErrInvalidContinuationToken。取 count+1 行探测是否有
// 下一页，有则裁掉多取的一行并返回 offset+count 作为下一个令牌。
// 不提供快照隔离，翻页期间的并发写入会使偏移量漂移。
func (s *Service) List(ctx context.Context, userID string, count int, token string) (*ListResult, error) {
	if userID == "" {
		return &ListResult{Items: []ConversationSummary{}}, nil
	}

	offset, err := decodeToken(token)
	if err != nil {
		return nil, err
	}

	convs, err := s.repo.ListForUser(userID, offset, count+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := &ListResult{Items: make([]ConversationSummary, 0, len(convs))}
	hasMore := len(convs) > count
	if hasMore {
		convs = convs[:count]
		result.ContinuationToken = strconv.Itoa(offset + count)
	}

	for _, c := range convs {
		result.Items = append(result.Items, ConversationSummary{
			ID:        c.ID,
			Title:     c.Title,
			Timestamp: c.Timestamp,
		})
	}

	return result, nil
}

// Save 按 id 幂等保存会话
//
// 客户端每次提交完整的轮次历史。会话不存在时整体创建；已存在时只追加
// 超出已存储部分的轮次（incoming[存量消息数/2:]），假定客户端只追加、
// 从不改写历史。未认证返回 false 而不是错误。
func (s *Service) Save(ctx context.Context, userID, id string, turns []chat.ConversationTurn) (bool, error) {
	if userID == "" {
		return false, nil
	}

	conv, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load conversation: %w", err)
	}

	if conv == nil {
		conv = &model.Conversation{
			ID:        id,
			UserID:    userID,
			Title:     generateTitle(turns),
			Timestamp: time.Now().UnixMilli(),
			Messages:  flattenTurns(turns, id, 0),
		}
		if err := s.repo.Create(conv); err != nil {
			return false, fmt.Errorf("failed to create conversation: %w", err)
		}
		return true, nil
	}

	stored := len(conv.Messages)
	newTurns := turns[min(stored/2, len(turns)):]
	newMessages := flattenTurns(newTurns, id, stored)
	if len(newMessages) == 0 {
		return true, nil
	}

	appended := make([]*model.Message, 0, len(newMessages))
	for i := range newMessages {
		appended = append(appended, &newMessages[i])
	}
	if err := s.repo.AppendMessages(appended); err != nil {
		return false, fmt.Errorf("failed to append messages: %w", err)
	}
	return true, nil
}

// Get 获取会话的完整轮次历史
// 不存在与属于他人统一返回 ErrNotFound
func (s *Service) Get(ctx context.Context, userID, id string) ([]chat.ConversationTurn, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	conv, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return nil, ErrNotFound
	}

	return chat.PairMessages(conv.Messages, conv.ID), nil
}

// Delete 删除会话及其全部消息
// 返回是否实际删除了数据；不存在与属于他人表现一致
func (s *Service) Delete(ctx context.Context, userID, id string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	conv, err := s.repo.GetByIDForUser(id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return false, nil
	}

	if err := s.repo.Delete(id); err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	return true, nil
}

// decodeToken 解析续页令牌
// 空令牌表示第一页；其余必须是非负十进制整数
func decodeToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidContinuationToken
	}
	return offset, nil
}

// generateTitle 从首轮用户文本派生标题
func generateTitle(turns []chat.ConversationTurn) string {
	if len(turns) == 0 || turns[0].User == "" {
		return "Untitled"
	}
	title := []rune(turns[0].User)
	if len(title) > maxTitleRunes {
		return string(title[:maxTitleRunes]) + "..."
	}
	return string(title)
}

// flattenTurns 将轮次展开为 user+assistant 消息对
// startPos 为新消息的起始序号，保证追加后顺序连续
func flattenTurns(turns []chat.ConversationTurn, conversationID string, startPos int) []model.Message {
	messages := make([]model.Message, 0, len(turns)*2)
	pos := startPos
	for _, t := range turns {
		var assistant string
		if t.Response.Message != nil {
			assistant = t.Response.Message.Content
		}
		messages = append(messages,
			model.Message{
				ID:             uuid.New().String(),
				ConversationID: conversationID,
				Role:           model.RoleUser,
				Content:        t.User,
				Position:       pos,
			},
			model.Message{
				ID:             uuid.New().String(),
				ConversationID: conversationID,
				Role:           model.RoleAssistant,
				Content:        assistant,
				Position:       pos + 1,
			},
		)
		pos += 2
	}
	return messages
}
