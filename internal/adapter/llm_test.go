package adapter

import (
	"context"
	"os"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// TestLLMAdapter_Complete requires a real OpenAI API key.
// This is a basic integration test
func TestLLMAdapter_Complete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set")
	}

	llm := NewLLMAdapter(apiKey, openai.GPT3Dot5Turbo)

	history := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
		{Role: openai.ChatMessageRoleUser, Content: "Say hello in one sentence."},
	}

	answer, err := llm.Complete(context.Background(), history)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer == "" {
		t.Error("Expected non-empty answer")
	}
}

func TestLLMAdapter_Model(t *testing.T) {
	llm := NewLLMAdapter("key", openai.GPT3Dot5Turbo)
	if got := llm.Model(); got != openai.GPT3Dot5Turbo {
		t.Errorf("Model() = %q, want %q", got, openai.GPT3Dot5Turbo)
	}
}
