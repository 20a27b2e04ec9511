// Package llm adapts the Gemini chat models behind the core's text-completion
// and field-extraction capabilities.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/rentalheights/agent-core/internal/agent/model"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// GeminiConfig holds everything needed to construct both chat models.
type GeminiConfig struct {
	APIKey    string
	BaseURL   string
	Responder model.ResponderModelConfig
	Extractor model.ExtractorModelConfig
}

// GeminiModels holds the responder model (free-text replies) and the extractor
// model (single-field extraction answers).
type GeminiModels struct {
	Responder *gemini.ChatModel
	Extractor *gemini.ChatModel
}

// NewGeminiModels creates both chat models with the given configuration.
func NewGeminiModels(ctx context.Context, cfg GeminiConfig) (*GeminiModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	responder, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Responder.Model,
		Temperature: &cfg.Responder.Temperature,
		MaxTokens:   &cfg.Responder.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating responder model")
		return nil, fmt.Errorf("error creating responder model: %w", err)
	}

	extractor, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Extractor.Model,
		Temperature: &cfg.Extractor.Temperature,
		MaxTokens:   &cfg.Extractor.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extractor model")
		return nil, fmt.Errorf("error creating extractor model: %w", err)
	}

	return &GeminiModels{Responder: responder, Extractor: extractor}, nil
}

// ChatCompleter exposes an eino chat model as the TextCompleter capability.
type ChatCompleter struct {
	chat einomodel.BaseChatModel
}

func NewChatCompleter(chat einomodel.BaseChatModel) *ChatCompleter {
	return &ChatCompleter{chat: chat}
}

func (c *ChatCompleter) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	out, err := c.chat.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userMessage),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

var _ model.TextCompleter = (*ChatCompleter)(nil)
