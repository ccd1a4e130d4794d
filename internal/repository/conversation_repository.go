package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ashwinyue/chat-api/internal/model"
)

// ConversationRepository 会话数据访问接口
// 接口定义使 Service 层可以轻松 mock 进行单元测试
type ConversationRepository interface {
	Create(conv *model.Conversation) error
	// GetByIDForUser 按所有者查询会话（含消息，按插入顺序）
	// 不存在或属于其他用户时返回 (nil, nil)
	GetByIDForUser(id, userID string) (*model.Conversation, error)
	// ListForUser 按时间倒序列出用户会话，不加载消息
	ListForUser(userID string, offset, limit int) ([]*model.Conversation, error)
	AppendMessages(messages []*model.Message) error
	// Delete 级联删除会话及其全部消息
	Delete(id string) error
}

// 确保 conversationRepositoryImpl 实现了接口
var _ ConversationRepository = (*conversationRepositoryImpl)(nil)

// conversationRepositoryImpl 会话数据访问
type conversationRepositoryImpl struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话仓库
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepositoryImpl{db: db}
}

// Create 创建会话（连同消息）
func (r *conversationRepositoryImpl) Create(conv *model.Conversation) error {
	return r.db.Create(conv).Error
}

// GetByIDForUser 获取会话
func (r *conversationRepositoryImpl) GetByIDForUser(id, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ? AND user_id = ?", id, userID).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// ListForUser 列出会话
// timestamp 相同时按主键兜底，保证 offset 分页遍历顺序稳定
func (r *conversationRepositoryImpl) ListForUser(userID string, offset, limit int) ([]*model.Conversation, error) {
	var convs []*model.Conversation
	err := r.db.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&convs).Error
	return convs, err
}

// AppendMessages 批量追加消息
func (r *conversationRepositoryImpl) AppendMessages(messages []*model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.Create(messages).Error
}

// Delete 删除会话
func (r *conversationRepositoryImpl) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Message{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, "id = ?", id).Error
	})
}
