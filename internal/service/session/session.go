// Package session 提供会话活跃度记录
package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// 会话在 Redis 中的过期时间（24小时）
	sessionTTL = 24 * time.Hour
	// Redis key 前缀
	sessionKeyPrefix = "session:"
)

// Manager 会话管理器
// 记录活跃会话的最后访问时间，供运维侧观察在线会话
type Manager struct {
	redis *redis.Client
}

// NewManager 创建会话管理器
func NewManager(redisClient *redis.Client) *Manager {
	return &Manager{redis: redisClient}
}

// Touch 刷新会话活跃时间
// Redis 不可用时返回错误，由调用方决定是否忽略
func (m *Manager) Touch(ctx context.Context, sessionID string) error {
	if m.redis == nil {
		return nil
	}
	return m.redis.Set(ctx, sessionKeyPrefix+sessionID, time.Now().Format(time.RFC3339), sessionTTL).Err()
}

// Active 判断会话是否活跃
func (m *Manager) Active(ctx context.Context, sessionID string) (bool, error) {
	if m.redis == nil {
		return false, nil
	}
	n, err := m.redis.Exists(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
