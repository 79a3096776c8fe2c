package session

import (
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/internal/profile"
	"github.com/Snekussaurier/Yellpepper/internal/tokens"
	"github.com/Snekussaurier/Yellpepper/pkg/logger"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// Conversation owns the ordered chat history for the single currently active
// character profile. When the history is non-empty, index 0 is always the
// system message seeded by the most recent profile switch.
type Conversation struct {
	mu      sync.Mutex
	active  *profile.Profile
	history []openai.ChatCompletionMessage
	counter tokens.Counter
	logger  *zap.Logger
}

// New creates an empty conversation using counter for budget estimates.
func New(counter tokens.Counter) *Conversation {
	return &Conversation{
		counter: counter,
		logger:  logger.Get(),
	}
}

// SetProfile makes p the active profile. Switching to a different profile
// clears the history and re-seeds it with p's system prompt; setting the
// already-active profile is a no-op.
func (c *Conversation) SetProfile(p profile.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil && c.active.Name == p.Name {
		return
	}

	c.active = &p
	c.history = c.history[:0]
	c.history = append(c.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: p.SystemPrompt,
	})

	c.logger.Debug("Conversation reset for profile", zap.String("profile", p.Name))
}

// ActiveProfile returns the current profile, or nil before the first switch.
func (c *Conversation) ActiveProfile() *profile.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// AppendUser appends a user turn. A blank prompt is rejected and the history
// is left unchanged.
func (c *Conversation) AppendUser(text string) error {
	if text == "" {
		return apperrors.ErrEmptyInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
	return nil
}

// AppendAssistant appends an assistant turn.
func (c *Conversation) AppendAssistant(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: text,
	})
}

// TrimToBudget drops the oldest non-system turns until the estimated token
// count is at most maxTokens or only the seed system message remains. The
// forgetting is unconditional: trimmed turns are gone, no summary is kept.
func (c *Conversation) TrimToBudget(maxTokens int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		count, err := c.counter.Estimate(c.history)
		if err != nil {
			return err
		}
		if count <= maxTokens || len(c.history) <= 1 {
			return nil
		}

		// Index 0 is the protected system seed; drop the turn after it.
		c.history = append(c.history[:1], c.history[2:]...)
		c.logger.Debug("Trimmed oldest turn from history",
			zap.Int("token_estimate", count),
			zap.Int("remaining_messages", len(c.history)),
		)
	}
}

// History returns a copy of the current message sequence.
func (c *Conversation) History() []openai.ChatCompletionMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]openai.ChatCompletionMessage, len(c.history))
	copy(out, c.history)
	return out
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}
