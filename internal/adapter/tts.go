package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/pkg/logger"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsModelID        = "eleven_multilingual_v2"
	// mp3 is what ffmpeg re-encodes for the voice channel
	elevenLabsOutputFormat = "mp3_44100_64"
)

// ElevenLabsSynthesizer converts reply text into a uniquely named mp3 file
// using the ElevenLabs text-to-speech API
type ElevenLabsSynthesizer struct {
	apiKey     string
	baseURL    string
	outputDir  string
	httpClient *http.Client
	logger     *zap.Logger
}

type elevenLabsRequest struct {
	Text          string                `json:"text"`
	ModelID       string                `json:"model_id"`
	VoiceSettings elevenLabsVoiceConfig `json:"voice_settings"`
}

type elevenLabsVoiceConfig struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// NewElevenLabsSynthesizer creates a new synthesizer writing audio artifacts
// into the system temp directory.
func NewElevenLabsSynthesizer(apiKey string) *ElevenLabsSynthesizer {
	return &ElevenLabsSynthesizer{
		apiKey:     apiKey,
		baseURL:    defaultElevenLabsBaseURL,
		outputDir:  os.TempDir(),
		httpClient: &http.Client{},
		logger:     logger.Get(),
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (s *ElevenLabsSynthesizer) SetBaseURL(url string) {
	s.baseURL = url
}

// SetOutputDir overrides where audio artifacts are written.
func (s *ElevenLabsSynthesizer) SetOutputDir(dir string) {
	s.outputDir = dir
}

// Synthesize converts text to speech with the given voice and returns the
// path of the saved mp3 artifact. The caller owns the file and is
// responsible for deleting it.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModelID,
		VoiceSettings: elevenLabsVoiceConfig{
			Stability:       0.35,
			SimilarityBoost: 0.75,
			Style:           0.35,
			UseSpeakerBoost: false,
		},
	})
	if err != nil {
		return "", apperrors.NewSynthesisFailed(voiceID, err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?optimize_streaming_latency=0&output_format=%s",
		s.baseURL, voiceID, elevenLabsOutputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewSynthesisFailed(voiceID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewSynthesisFailed(voiceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperrors.NewSynthesisFailed(voiceID,
			fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, string(body)))
	}

	outPath := filepath.Join(s.outputDir, uuid.NewString()+".mp3")
	out, err := os.Create(outPath)
	if err != nil {
		return "", apperrors.NewSynthesisFailed(voiceID, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", apperrors.NewSynthesisFailed(voiceID, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", apperrors.NewSynthesisFailed(voiceID, err)
	}

	s.logger.Debug("Saved synthesized audio",
		zap.String("path", outPath),
		zap.String("voice_id", voiceID),
	)

	return outPath, nil
}
