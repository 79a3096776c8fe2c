package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

const (
	// Every message follows <im_start>{role/name}\n{content}<im_end>\n
	perMessageOverhead = 4
	// Every reply is primed with <im_start>assistant
	replyPrimingOverhead = 2
)

// Counter approximates the token cost of a message sequence. The session
// depends on this interface so tests can substitute a fixed-cost counter.
type Counter interface {
	Estimate(messages []openai.ChatCompletionMessage) (int, error)
}

// Estimator counts tokens with the encoding table of a fixed chat model.
type Estimator struct {
	model string

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// NewEstimator creates an estimator for model. The encoding table is
// resolved on first use; an unknown model surfaces ErrUnsupportedModel
// from Estimate rather than being silently approximated.
func NewEstimator(model string) *Estimator {
	return &Estimator{model: model}
}

// Estimate returns the approximate token count the chat backend would
// consume for messages. Deterministic for identical input.
func (e *Estimator) Estimate(messages []openai.ChatCompletionMessage) (int, error) {
	e.once.Do(func() {
		e.enc, e.initErr = tiktoken.EncodingForModel(e.model)
	})
	if e.initErr != nil {
		return 0, apperrors.NewUnsupportedModel(e.model, e.initErr)
	}

	total := 0
	for _, msg := range messages {
		total += perMessageOverhead
		total += len(e.enc.Encode(msg.Content, nil, nil))
		if msg.Name != "" {
			// If there's a name, the role is omitted
			total += len(e.enc.Encode(msg.Name, nil, nil)) - 1
		}
	}
	total += replyPrimingOverhead

	return total, nil
}
