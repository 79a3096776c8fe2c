package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

const validDoc = `
profiles:
  wizard:
    voice: "EXAVITQu4vr4xnSDxMaL"
    system_prompt: "You are a wise old wizard."
  pirate:
    voice: "21m00Tcm4TlvDq8ikWAM"
    system_prompt: "You are a grumpy pirate captain."
`

func TestParse_Valid(t *testing.T) {
	reg, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"pirate", "wizard"}, reg.Names())

	p, err := reg.Get("wizard")
	require.NoError(t, err)
	assert.Equal(t, "wizard", p.Name)
	assert.Equal(t, "EXAVITQu4vr4xnSDxMaL", p.VoiceID)
	assert.Equal(t, "You are a wise old wizard.", p.SystemPrompt)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		errType apperrors.ErrorType
	}{
		{
			name:    "malformed yaml",
			doc:     "profiles: [not a map",
			errType: apperrors.ErrorTypeConfig,
		},
		{
			name:    "no profiles",
			doc:     "profiles: {}",
			errType: apperrors.ErrorTypeConfig,
		},
		{
			name: "missing voice",
			doc: `
profiles:
  wizard:
    system_prompt: "You are a wizard."
`,
			errType: apperrors.ErrorTypeProfile,
		},
		{
			name: "missing system prompt",
			doc: `
profiles:
  wizard:
    voice: "abc"
`,
			errType: apperrors.ErrorTypeProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, tt.errType), "unexpected error: %v", err)
		})
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	_, err = reg.Get("ninja")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeProfile))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, reg.Names(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
}
