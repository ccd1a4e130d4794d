package chat

import (
	"github.com/google/uuid"

	"github.com/ashwinyue/chat-api/internal/model"
)

// ChatMessage 对话消息
type ChatMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// RetrievalMode 检索模式（透传字段，本服务不消费）
const (
	RetrievalModeHybrid  = "hybrid"
	RetrievalModeVectors = "vectors"
	RetrievalModeText    = "text"
)

// ChatRequestOverrides 请求级生成参数
// 为空的字段退回服务端默认值
type ChatRequestOverrides struct {
	Top                      int      `json:"top"`
	Temperature              *float64 `json:"temperature"`
	MinimumRerankerScore     int      `json:"minimum_reranker_score"`
	MinimumSearchScore       int      `json:"minimum_search_score"`
	RetrievalMode            string   `json:"retrieval_mode"`
	SemanticRanker           bool     `json:"semantic_ranker"`
	SemanticCaptions         bool     `json:"semantic_captions"`
	IncludeCategory          string   `json:"include_category,omitempty"`
	ExcludeCategory          string   `json:"exclude_category,omitempty"`
	Seed                     *int     `json:"seed,omitempty"`
	PromptTemplate           string   `json:"prompt_template,omitempty"`
	PromptTemplatePrefix     string   `json:"prompt_template_prefix,omitempty"`
	PromptTemplateSuffix     string   `json:"prompt_template_suffix,omitempty"`
	SuggestFollowupQuestions bool     `json:"suggest_followup_questions"`
	Language                 string   `json:"language,omitempty"`
}

// ChatRequestContext 请求上下文
type ChatRequestContext struct {
	Overrides ChatRequestOverrides `json:"overrides"`
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Messages     []ChatMessage      `json:"messages"`
	Context      ChatRequestContext `json:"context"`
	SessionState string             `json:"session_state,omitempty"`
}

// Validate 校验请求，返回全部校验失败项
func (r *ChatRequest) Validate() []string {
	var errs []string

	if len(r.Messages) == 0 {
		errs = append(errs, "at least one message is required")
		return errs
	}

	hasUser := false
	for _, m := range r.Messages {
		if m.Content == "" {
			errs = append(errs, "message content cannot be empty")
		}
		if !model.ValidRole(m.Role) {
			errs = append(errs, "invalid role: "+m.Role)
		}
		if m.Role == model.RoleUser {
			hasUser = true
		}
	}
	if !hasUser {
		errs = append(errs, "at least one user message is required")
	}

	if r.SessionState != "" {
		if _, err := uuid.Parse(r.SessionState); err != nil {
			errs = append(errs, "session state must be a valid UUID string")
		}
	}

	return errs
}

// Thought 推理过程描述（占位，当前不生成）
type Thought struct {
	Title       string            `json:"title"`
	Description interface{}       `json:"description"`
	Props       map[string]string `json:"props,omitempty"`
}

// ResponseContext 响应上下文
// FollowupQuestions 为 nil 时序列化为 null，表示未请求建议
type ResponseContext struct {
	DataPoints        []string  `json:"data_points"`
	FollowupQuestions []string  `json:"followup_questions"`
	Thoughts          []Thought `json:"thoughts"`
}

// ChatResponse 聊天响应
// 单次响应填 Message；流式响应首块带 SessionState，后续块只带 Delta
type ChatResponse struct {
	Message      *ChatMessage     `json:"message,omitempty"`
	Delta        *ChatMessage     `json:"delta,omitempty"`
	Context      *ResponseContext `json:"context,omitempty"`
	SessionState string           `json:"session_state,omitempty"`
}

// ConversationTurn 一轮对话：一条用户消息与紧随其后的助手回复
type ConversationTurn struct {
	User     string       `json:"user"`
	Response ChatResponse `json:"response"`
}
