package model

import "time"

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Conversation 会话
// Timestamp 为创建时刻的毫秒时间戳，列表按它倒序排列
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;size:64"`
	Title     string    `gorm:"size:255"`
	Timestamp int64     `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	Messages  []Message `gorm:"foreignKey:ConversationID"`
}

// Message 会话消息
// 消息创建后不可变，顺序即插入顺序
type Message struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ConversationID string    `gorm:"index;size:36"`
	Role           string    `gorm:"size:20"` // user, assistant, system, tool
	Content        string    `gorm:"type:text"`
	Position       int       `gorm:"index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}

func (Message) TableName() string {
	return "messages"
}
