package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoad_DefaultsAndValues(t *testing.T) {
	path := writeConfig(t, `
bot_token: "token-123"
openai_api_key: "sk-openai"
eleven_labs_api_key: "sk-eleven"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.BotToken)
	assert.Equal(t, "ffmpeg", cfg.FFmpegLocation)
	assert.Equal(t, "gpt-3.5-turbo", cfg.ModelID)
	assert.Equal(t, 8000, cfg.TokenBudget)
	assert.Equal(t, "character_profiles.yaml", cfg.ProfilesPath)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "from-env")
	path := writeConfig(t, `
bot_token: "${TEST_BOT_TOKEN}"
openai_api_key: "sk-openai"
eleven_labs_api_key: "sk-eleven"
env: production
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.BotToken)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing bot token",
			doc: `
openai_api_key: "sk-openai"
eleven_labs_api_key: "sk-eleven"
`,
		},
		{
			name: "missing openai key",
			doc: `
bot_token: "token"
eleven_labs_api_key: "sk-eleven"
`,
		},
		{
			name: "missing elevenlabs key",
			doc: `
bot_token: "token"
openai_api_key: "sk-openai"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.doc))
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig), "unexpected error: %v", err)
		})
	}
}

func TestLoad_MalformedDocument(t *testing.T) {
	_, err := Load(writeConfig(t, "bot_token: [broken"))
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}
