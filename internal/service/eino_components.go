package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	ecomodel "github.com/cloudwego/eino/components/model"

	"github.com/ashwinyue/chat-api/internal/config"
)

// newChatModel 创建 ChatModel
// 提供商在启动时由配置选定，请求路径上不再做分支
func newChatModel(ctx context.Context, cfg *config.Config) (ecomodel.ChatModel, error) {
	aiCfg := cfg.AI

	modelCfg := &openai.ChatModelConfig{}

	switch aiCfg.Provider {
	case "openai":
		if aiCfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("api_key is required for provider: %s", aiCfg.Provider)
		}
		modelCfg.APIKey = aiCfg.OpenAI.APIKey
		modelCfg.BaseURL = aiCfg.OpenAI.BaseURL
		modelCfg.Model = aiCfg.OpenAI.Model
	case "azure":
		if aiCfg.Azure.APIKey == "" {
			return nil, fmt.Errorf("api_key is required for provider: %s", aiCfg.Provider)
		}
		modelCfg.ByAzure = true
		modelCfg.APIKey = aiCfg.Azure.APIKey
		modelCfg.BaseURL = aiCfg.Azure.Endpoint
		modelCfg.APIVersion = aiCfg.Azure.APIVersion
		modelCfg.Model = aiCfg.Azure.DeploymentName
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}

	if modelCfg.Model == "" {
		modelCfg.Model = "gpt-4o-mini"
	}

	// 频率/存在惩罚没有请求级覆盖，构造时固定
	if cfg.Prompt.FrequencyPenalty != 0 {
		fp := float32(cfg.Prompt.FrequencyPenalty)
		modelCfg.FrequencyPenalty = &fp
	}
	if cfg.Prompt.PresencePenalty != 0 {
		pp := float32(cfg.Prompt.PresencePenalty)
		modelCfg.PresencePenalty = &pp
	}

	return openai.NewChatModel(ctx, modelCfg)
}
