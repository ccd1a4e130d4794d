package chat

import "github.com/ashwinyue/chat-api/internal/model"

// PairMessages 将按插入顺序排列的扁平消息重组为对话轮次
//
// 每两条消息为一组：组内第一条 user 角色消息的内容作为用户侧，
// 第一条 assistant 角色消息的内容作为助手侧，缺失的一侧为空字符串。
// 奇数条消息时最后一轮助手侧为空。这是位置启发式配对，
// 假定消息严格按 user/assistant 交替写入，不做交替校验。
func PairMessages(messages []model.Message, conversationID string) []ConversationTurn {
	turns := make([]ConversationTurn, 0, (len(messages)+1)/2)

	for i := 0; i < len(messages); i += 2 {
		chunk := messages[i:min(i+2, len(messages))]

		turns = append(turns, ConversationTurn{
			User: firstByRole(chunk, model.RoleUser),
			Response: ChatResponse{
				Message: &ChatMessage{
					Content: firstByRole(chunk, model.RoleAssistant),
					Role:    model.RoleAssistant,
				},
				Delta:        &ChatMessage{},
				Context:      &ResponseContext{DataPoints: []string{}, Thoughts: []Thought{}},
				SessionState: conversationID,
			},
		})
	}

	return turns
}

// firstByRole 返回组内第一条指定角色消息的内容，没有则为空字符串
func firstByRole(chunk []model.Message, role string) string {
	for _, m := range chunk {
		if m.Role == role {
			return m.Content
		}
	}
	return ""
}
