package pipeline

import (
	"context"
	"os"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/internal/gate"
	"github.com/Snekussaurier/Yellpepper/internal/profile"
	"github.com/Snekussaurier/Yellpepper/internal/session"
	"github.com/Snekussaurier/Yellpepper/pkg/logger"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// Completer generates an assistant reply from the full conversation history.
type Completer interface {
	Complete(ctx context.Context, history []openai.ChatCompletionMessage) (string, error)
}

// Transcriber turns a captured audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Synthesizer converts reply text into an audio artifact and returns its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (string, error)
}

// Player is the voice-channel collaborator: playback and audio capture.
type Player interface {
	Play(path string, done func(error)) error
	StartCapture() error
	StopCapture() (string, error)
}

// Reply is the text transcript of one completed question/response cycle.
type Reply struct {
	Profile  string
	Question string
	Answer   string
}

// Pipeline drives a question through transcription, completion, synthesis
// and playback. The admission gate serializes cycles: it is acquired before
// the first stage and released on every exit path, with playback completion
// being the release point on success.
type Pipeline struct {
	registry *profile.Registry
	conv     *session.Conversation
	gate     *gate.Gate
	llm      Completer
	stt      Transcriber
	tts      Synthesizer
	voice    Player
	budget   int
	logger   *zap.Logger

	mu      sync.Mutex
	pending *profile.Profile // profile chosen when a voice capture started
}

// New wires the pipeline with its collaborators. budget is the token ceiling
// applied to the history before every completion call.
func New(reg *profile.Registry, conv *session.Conversation, g *gate.Gate,
	llm Completer, stt Transcriber, tts Synthesizer, voice Player, budget int) *Pipeline {
	return &Pipeline{
		registry: reg,
		conv:     conv,
		gate:     g,
		llm:      llm,
		stt:      stt,
		tts:      tts,
		voice:    voice,
		budget:   budget,
		logger:   logger.Get(),
	}
}

// Ask runs a text question end to end. onAnswer fires after the completion
// stage and before audio playback so the caller can post the transcript
// first. Validation failures happen before the gate is touched.
func (p *Pipeline) Ask(ctx context.Context, profileName, text string, onAnswer func(Reply)) error {
	prof, err := p.registry.Get(profileName)
	if err != nil {
		return err
	}
	if text == "" {
		return apperrors.ErrEmptyInput
	}

	if !p.gate.TryAcquire() {
		return apperrors.ErrRequestInProgress
	}

	return p.run(ctx, prof, text, "", onAnswer)
}

// StartVoiceAsk validates the profile, admits the request and begins audio
// capture. The gate stays held until the eventual FinishVoiceAsk completes.
func (p *Pipeline) StartVoiceAsk(profileName string) error {
	prof, err := p.registry.Get(profileName)
	if err != nil {
		return err
	}

	if !p.gate.TryAcquire() {
		return apperrors.ErrRequestInProgress
	}

	if err := p.voice.StartCapture(); err != nil {
		p.gate.Release()
		return err
	}

	p.mu.Lock()
	p.pending = &prof
	p.mu.Unlock()

	return nil
}

// FinishVoiceAsk ends the capture and runs the remaining stages on the
// recorded audio. The captured file is removed on every path once
// transcription has run.
func (p *Pipeline) FinishVoiceAsk(ctx context.Context, onAnswer func(Reply)) error {
	p.mu.Lock()
	prof := p.pending
	p.pending = nil
	p.mu.Unlock()

	if prof == nil {
		return apperrors.ErrNotRecording
	}

	audioPath, err := p.voice.StopCapture()
	if err != nil {
		p.gate.Release()
		return err
	}

	return p.run(ctx, *prof, "", audioPath, onAnswer)
}

// run executes the cycle with the gate already held. Any failure before
// the playback handoff releases the gate here; after a successful handoff
// the playback-done callback owns artifact deletion and gate release.
func (p *Pipeline) run(ctx context.Context, prof profile.Profile, text, audioPath string, onAnswer func(Reply)) (err error) {
	defer func() {
		if err != nil {
			p.gate.Release()
		}
	}()

	if audioPath != "" {
		defer os.Remove(audioPath)
		text, err = p.stt.Transcribe(ctx, audioPath)
		if err != nil {
			return err
		}
	}

	p.conv.SetProfile(prof)
	if err = p.conv.AppendUser(text); err != nil {
		return err
	}
	if err = p.conv.TrimToBudget(p.budget); err != nil {
		return err
	}

	answer, err := p.llm.Complete(ctx, p.conv.History())
	if err != nil {
		return err
	}
	p.conv.AppendAssistant(answer)

	if onAnswer != nil {
		onAnswer(Reply{Profile: prof.Name, Question: text, Answer: answer})
	}

	artifact, err := p.tts.Synthesize(ctx, answer, prof.VoiceID)
	if err != nil {
		return err
	}

	err = p.voice.Play(artifact, func(playErr error) {
		if playErr != nil {
			p.logger.Error("Playback failed", zap.Error(playErr), zap.String("artifact", artifact))
		}
		if rmErr := os.Remove(artifact); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Warn("Failed to remove audio artifact", zap.Error(rmErr), zap.String("artifact", artifact))
		}
		p.gate.Release()
	})
	if err != nil {
		os.Remove(artifact)
		return err
	}

	return nil
}

// Busy reports whether a cycle is in flight.
func (p *Pipeline) Busy() bool {
	return p.gate.Busy()
}
