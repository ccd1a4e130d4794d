package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB           *gorm.DB // 直接访问数据库
	Conversation ConversationRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:           db,
		Conversation: NewConversationRepository(db),
	}
}
