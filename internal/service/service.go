package service

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/chat-api/internal/config"
	"github.com/ashwinyue/chat-api/internal/repository"
	"github.com/ashwinyue/chat-api/internal/service/chat"
	"github.com/ashwinyue/chat-api/internal/service/conversation"
	"github.com/ashwinyue/chat-api/internal/service/session"
)

// Services 服务集合
type Services struct {
	Chat         *chat.Service
	Conversation *conversation.Service

	// 配置
	Config     *config.Config
	SessionMgr *session.Manager
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	ctx := context.Background()

	// 创建 Session 管理器
	sessionMgr := session.NewManager(redisClient)

	// 创建 ChatModel
	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		log.Printf("Warning: failed to create chat model: %v", err)
	}

	return &Services{
		Chat:         chat.NewService(chatModel, cfg.Prompt, sessionMgr),
		Conversation: conversation.NewService(repo.Conversation),
		Config:       cfg,
		SessionMgr:   sessionMgr,
	}, nil
}
