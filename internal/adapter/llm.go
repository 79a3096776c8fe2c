package adapter

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/pkg/logger"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// LLMAdapter handles chat completion against the OpenAI API
type LLMAdapter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter
func NewLLMAdapter(apiKey, model string) *LLMAdapter {
	return &LLMAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger.Get(),
	}
}

// Model returns the configured chat model
func (a *LLMAdapter) Model() string {
	return a.model
}

// Complete sends the full conversation history to the chat model and returns
// the assistant's reply.
func (a *LLMAdapter) Complete(ctx context.Context, history []openai.ChatCompletionMessage) (string, error) {
	a.logger.Debug("Requesting chat completion",
		zap.String("model", a.model),
		zap.Int("messages", len(history)),
	)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: history,
	})
	if err != nil {
		return "", apperrors.NewCompletionFailed(a.model, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewCompletionFailed(a.model, apperrors.NewBaseError(apperrors.ErrorTypeCompletion, "no choices in response", nil))
	}

	answer := resp.Choices[0].Message.Content
	a.logger.Debug("Chat completion received",
		zap.String("model", a.model),
		zap.Int("answer_length", len(answer)),
	)

	return answer, nil
}
