// Package chat 提供 Chat 服务单元测试
package chat

import (
	"fmt"
	"testing"

	"github.com/ashwinyue/chat-api/internal/model"
)

func TestPairMessagesEmpty(t *testing.T) {
	turns := PairMessages(nil, "conv-1")
	if len(turns) != 0 {
		t.Fatalf("Expected no turns, got %d", len(turns))
	}
}

func TestPairMessagesAlternating(t *testing.T) {
	const pairs = 4
	messages := make([]model.Message, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		messages = append(messages,
			model.Message{Role: model.RoleUser, Content: fmt.Sprintf("question %d", i)},
			model.Message{Role: model.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}

	turns := PairMessages(messages, "conv-1")
	if len(turns) != pairs {
		t.Fatalf("Expected %d turns, got %d", pairs, len(turns))
	}

	for i, turn := range turns {
		wantUser := fmt.Sprintf("question %d", i)
		wantAssistant := fmt.Sprintf("answer %d", i)
		if turn.User != wantUser {
			t.Errorf("Turn %d user = %q, want %q", i, turn.User, wantUser)
		}
		if turn.Response.Message.Content != wantAssistant {
			t.Errorf("Turn %d assistant = %q, want %q", i, turn.Response.Message.Content, wantAssistant)
		}
		if turn.Response.Message.Role != model.RoleAssistant {
			t.Errorf("Turn %d role = %q, want assistant", i, turn.Response.Message.Role)
		}
		if turn.Response.SessionState != "conv-1" {
			t.Errorf("Turn %d session = %q, want conv-1", i, turn.Response.SessionState)
		}
	}
}

func TestPairMessagesOddCount(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "reply"},
		{Role: model.RoleUser, Content: "dangling"},
	}

	turns := PairMessages(messages, "conv-1")
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(turns))
	}
	if turns[1].User != "dangling" {
		t.Errorf("Last turn user = %q, want %q", turns[1].User, "dangling")
	}
	if turns[1].Response.Message.Content != "" {
		t.Errorf("Last turn assistant = %q, want empty", turns[1].Response.Message.Content)
	}
}

// 配对是位置启发式的：组内没有对应角色时该侧为空，不报错
func TestPairMessagesNonAlternating(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleUser, Content: "one"},
		{Role: model.RoleUser, Content: "two"},
	}

	turns := PairMessages(messages, "conv-1")
	if len(turns) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(turns))
	}
	if turns[0].User != "one" {
		t.Errorf("Turn user = %q, want first user message", turns[0].User)
	}
	if turns[0].Response.Message.Content != "" {
		t.Errorf("Turn assistant = %q, want empty", turns[0].Response.Message.Content)
	}
}
