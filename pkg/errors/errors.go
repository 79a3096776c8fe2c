package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfig represents configuration errors (fatal at startup)
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeProfile represents character profile lookup errors
	ErrorTypeProfile ErrorType = "profile"
	// ErrorTypeInput represents user input validation errors
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeToken represents token estimation errors
	ErrorTypeToken ErrorType = "token"
	// ErrorTypeTranscription represents speech-to-text failures
	ErrorTypeTranscription ErrorType = "transcription"
	// ErrorTypeCompletion represents language-model completion failures
	ErrorTypeCompletion ErrorType = "completion"
	// ErrorTypeSynthesis represents text-to-speech failures
	ErrorTypeSynthesis ErrorType = "synthesis"
	// ErrorTypeVoice represents voice channel errors
	ErrorTypeVoice ErrorType = "voice"
	// ErrorTypeBusy represents admission gate rejections
	ErrorTypeBusy ErrorType = "busy"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Config Errors

// ErrConfigLoadFailed wraps a failure to read or parse the config document
type ErrConfigLoadFailed struct {
	*BaseError
	Path string
}

func NewConfigLoadFailed(path string, err error) *ErrConfigLoadFailed {
	return &ErrConfigLoadFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("failed to load config: %s", path), err),
		Path:      path,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Profile Errors

// ErrProfileNotFound is returned when an unknown profile name is requested
type ErrProfileNotFound struct {
	*BaseError
	Name string
}

func NewProfileNotFound(name string) *ErrProfileNotFound {
	return &ErrProfileNotFound{
		BaseError: NewBaseError(ErrorTypeProfile, fmt.Sprintf("profile not found: %s", name), nil),
		Name:      name,
	}
}

// ErrProfileInvalid is returned when a profile entry is missing a required field
type ErrProfileInvalid struct {
	*BaseError
	Name  string
	Field string
}

func NewProfileInvalid(name, field string) *ErrProfileInvalid {
	return &ErrProfileInvalid{
		BaseError: NewBaseError(ErrorTypeProfile, fmt.Sprintf("profile %s: missing %s", name, field), nil),
		Name:      name,
		Field:     field,
	}
}

// Input Errors

// ErrEmptyInput is returned when a prompt is blank
var ErrEmptyInput = NewBaseError(ErrorTypeInput, "prompt must not be empty", nil)

// Token Errors

// ErrUnsupportedModel is returned when no token encoding exists for a model
type ErrUnsupportedModel struct {
	*BaseError
	Model string
}

func NewUnsupportedModel(model string, err error) *ErrUnsupportedModel {
	return &ErrUnsupportedModel{
		BaseError: NewBaseError(ErrorTypeToken, fmt.Sprintf("no token encoding for model: %s", model), err),
		Model:     model,
	}
}

// Pipeline Errors

// ErrRequestInProgress is returned when the admission gate is already held
var ErrRequestInProgress = NewBaseError(ErrorTypeBusy, "a request is currently in progress", nil)

// ErrTranscriptionFailed is returned when speech-to-text fails
type ErrTranscriptionFailed struct {
	*BaseError
	AudioPath string
}

func NewTranscriptionFailed(audioPath string, err error) *ErrTranscriptionFailed {
	return &ErrTranscriptionFailed{
		BaseError: NewBaseError(ErrorTypeTranscription, "failed to transcribe audio", err),
		AudioPath: audioPath,
	}
}

// ErrCompletionFailed is returned when the language-model call fails
type ErrCompletionFailed struct {
	*BaseError
	Model string
}

func NewCompletionFailed(model string, err error) *ErrCompletionFailed {
	return &ErrCompletionFailed{
		BaseError: NewBaseError(ErrorTypeCompletion, "failed to generate completion", err),
		Model:     model,
	}
}

// ErrSynthesisFailed is returned when text-to-speech fails
type ErrSynthesisFailed struct {
	*BaseError
	VoiceID string
}

func NewSynthesisFailed(voiceID string, err error) *ErrSynthesisFailed {
	return &ErrSynthesisFailed{
		BaseError: NewBaseError(ErrorTypeSynthesis, "failed to synthesize speech", err),
		VoiceID:   voiceID,
	}
}

// Voice Errors

// ErrNotInVoiceChannel is returned when the bot has no active voice connection
var ErrNotInVoiceChannel = NewBaseError(ErrorTypeVoice, "not connected to a voice channel", nil)

// ErrNotRecording is returned when stop_recording is issued without a capture in flight
var ErrNotRecording = NewBaseError(ErrorTypeVoice, "no recording in progress", nil)

// ErrVoiceConnectFailed is returned when joining a voice channel fails
type ErrVoiceConnectFailed struct {
	*BaseError
	ChannelID string
}

func NewVoiceConnectFailed(channelID string, err error) *ErrVoiceConnectFailed {
	return &ErrVoiceConnectFailed{
		BaseError: NewBaseError(ErrorTypeVoice, fmt.Sprintf("failed to join voice channel: %s", channelID), err),
		ChannelID: channelID,
	}
}

// Helper functions

// typed is implemented by BaseError and, through embedding, by every
// error in this package.
type typed interface {
	ErrorType() ErrorType
}

// ErrorType reports the category of the error
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var t typed
	if stderrors.As(err, &t) {
		return t.ErrorType() == errType
	}
	return false
}

// IsUserFacing reports whether an error should be relayed to the end user
// as a plain chat message rather than logged as an internal failure.
func IsUserFacing(err error) bool {
	for _, t := range []ErrorType{ErrorTypeProfile, ErrorTypeInput, ErrorTypeBusy, ErrorTypeVoice} {
		if IsErrorType(err, t) {
			return true
		}
	}
	return false
}
