package generation

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// ArkConfig describes the Volcengine Ark model endpoint.
type ArkConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Region  string
}

// NewArkChatModel builds the eino chat model backing ModelGenerator.
func NewArkChatModel(ctx context.Context, cfg ArkConfig) (model.BaseChatModel, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("ark: api key and model are required")
	}
	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Region:  cfg.Region,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("ark: create chat model: %w", err)
	}
	return cm, nil
}
