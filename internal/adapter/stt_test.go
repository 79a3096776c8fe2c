package adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

func TestWhisperTranscriber_MissingFile(t *testing.T) {
	stt := NewWhisperTranscriber("key")

	_, err := stt.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.ogg"))
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeTranscription))
}
