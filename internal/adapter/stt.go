package adapter

import (
	"context"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/pkg/logger"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// WhisperTranscriber turns captured voice recordings into text via the
// OpenAI Whisper API
type WhisperTranscriber struct {
	client *openai.Client
	logger *zap.Logger
}

// NewWhisperTranscriber creates a new transcriber
func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	return &WhisperTranscriber{
		client: openai.NewClient(apiKey),
		logger: logger.Get(),
	}
}

// Transcribe returns the spoken text in the audio file at path. An
// unreadable file or an empty transcript is a transcription failure.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.NewTranscriptionFailed(path, err)
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: path,
	})
	if err != nil {
		return "", apperrors.NewTranscriptionFailed(path, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", apperrors.NewTranscriptionFailed(path, apperrors.NewBaseError(apperrors.ErrorTypeTranscription, "empty transcript", nil))
	}

	t.logger.Debug("Audio transcribed",
		zap.String("path", path),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}
