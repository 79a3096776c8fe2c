package session

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Snekussaurier/Yellpepper/internal/profile"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// fixedCounter charges a flat cost per message, which makes trim thresholds
// easy to reason about in tests.
type fixedCounter struct {
	perMessage int
}

func (c fixedCounter) Estimate(messages []openai.ChatCompletionMessage) (int, error) {
	return c.perMessage * len(messages), nil
}

var (
	profileA = profile.Profile{Name: "wizard", VoiceID: "v1", SystemPrompt: "You are a wizard."}
	profileB = profile.Profile{Name: "pirate", VoiceID: "v2", SystemPrompt: "You are a pirate."}
)

func TestConversation_SetProfileSeedsSystemMessage(t *testing.T) {
	conv := New(fixedCounter{perMessage: 1})
	conv.SetProfile(profileA)

	history := conv.History()
	require.Len(t, history, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, history[0].Role)
	assert.Equal(t, profileA.SystemPrompt, history[0].Content)
}

func TestConversation_SetProfileIdempotent(t *testing.T) {
	conv := New(fixedCounter{perMessage: 1})
	conv.SetProfile(profileA)
	require.NoError(t, conv.AppendUser("hi"))
	conv.AppendAssistant("hello")

	// Re-setting the active profile must not clear the history
	conv.SetProfile(profileA)
	assert.Equal(t, 3, conv.Len())
}

func TestConversation_ProfileSwitchClearsHistory(t *testing.T) {
	conv := New(fixedCounter{perMessage: 1})
	conv.SetProfile(profileA)
	require.NoError(t, conv.AppendUser("hi"))
	conv.AppendAssistant("hello")

	conv.SetProfile(profileB)

	history := conv.History()
	require.Len(t, history, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, history[0].Role)
	assert.Equal(t, profileB.SystemPrompt, history[0].Content)
	assert.Equal(t, profileB.Name, conv.ActiveProfile().Name)
}

func TestConversation_AppendUserEmptyRejected(t *testing.T) {
	conv := New(fixedCounter{perMessage: 1})
	conv.SetProfile(profileA)

	err := conv.AppendUser("")
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
	assert.Equal(t, 1, conv.Len(), "history must be unchanged after rejected input")
}

func TestConversation_TrimToBudget(t *testing.T) {
	// Each message costs 3, so the estimate exceeds 10 only once more than
	// two non-system messages are present.
	conv := New(fixedCounter{perMessage: 3})
	conv.SetProfile(profileA)
	require.NoError(t, conv.AppendUser("one"))
	conv.AppendAssistant("two")
	require.NoError(t, conv.AppendUser("three"))
	conv.AppendAssistant("four")

	require.NoError(t, conv.TrimToBudget(10))

	history := conv.History()
	require.Len(t, history, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, history[0].Role, "seed system message survives trimming")
	// The oldest non-system turns were dropped
	assert.Equal(t, "three", history[1].Content)
	assert.Equal(t, "four", history[2].Content)
}

func TestConversation_TrimToBudgetIdempotent(t *testing.T) {
	conv := New(fixedCounter{perMessage: 3})
	conv.SetProfile(profileA)
	require.NoError(t, conv.AppendUser("one"))
	conv.AppendAssistant("two")
	require.NoError(t, conv.AppendUser("three"))

	require.NoError(t, conv.TrimToBudget(10))
	first := conv.History()
	require.NoError(t, conv.TrimToBudget(10))
	second := conv.History()

	assert.Equal(t, first, second)
}

func TestConversation_TrimNeverRemovesSystemSeed(t *testing.T) {
	// Budget below the cost of even a single message
	conv := New(fixedCounter{perMessage: 5})
	conv.SetProfile(profileA)
	require.NoError(t, conv.AppendUser("hi"))

	require.NoError(t, conv.TrimToBudget(1))

	history := conv.History()
	require.Len(t, history, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, history[0].Role)
}
