package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/internal/pipeline"
	"github.com/Snekussaurier/Yellpepper/internal/profile"
	"github.com/Snekussaurier/Yellpepper/internal/voice"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

const embedColorBlurple = 0x5865F2

// Handler dispatches slash commands to the pipeline and voice manager.
type Handler struct {
	pipeline *pipeline.Pipeline
	registry *profile.Registry
	voice    *voice.Manager
	logger   *zap.Logger
}

// NewHandler creates a command handler.
func NewHandler(p *pipeline.Pipeline, reg *profile.Registry, vm *voice.Manager, log *zap.Logger) *Handler {
	return &Handler{
		pipeline: p,
		registry: reg,
		voice:    vm,
		logger:   log,
	}
}

// HandleInteraction routes an incoming slash command.
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	h.logger.Debug("Handling command", zap.String("command", name))

	switch name {
	case "join":
		h.handleJoin(s, i)
	case "leave":
		h.handleLeave(s, i)
	case "ask_with_text":
		h.handleAskWithText(s, i)
	case "ask_with_voice":
		h.handleAskWithVoice(s, i)
	case "stop_recording":
		h.handleStopRecording(s, i)
	}
}

func (h *Handler) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	channelID, err := h.callerVoiceChannel(s, i)
	if err != nil {
		h.respondText(s, i, "You need to be in a voice channel to use this command.")
		return
	}

	if err := h.voice.Join(i.GuildID, channelID); err != nil {
		h.respondError(s, i, err)
		return
	}

	h.respondText(s, i, fmt.Sprintf("Joined <#%s>.", channelID))
}

func (h *Handler) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := h.voice.Leave(); err != nil {
		h.respondError(s, i, err)
		return
	}
	h.respondText(s, i, "Left the voice channel.")
}

func (h *Handler) handleAskWithText(s *discordgo.Session, i *discordgo.InteractionCreate) {
	profileName := optionString(i, "profile")
	text := strings.TrimSpace(optionString(i, "text"))

	if _, err := h.registry.Get(profileName); err != nil {
		h.respondText(s, i, fmt.Sprintf("Profile %s does not exist. Available profiles: %s",
			profileName, strings.Join(h.registry.Names(), ", ")))
		return
	}
	if text == "" {
		h.respondText(s, i, "Your question must not be empty.")
		return
	}
	if err := h.ensureVoiceConnection(s, i); err != nil {
		h.respondText(s, i, "You need to be in a voice channel to use this command.")
		return
	}

	// The completion can take a while; defer and follow up with the embed
	if err := h.deferResponse(s, i); err != nil {
		return
	}

	err := h.pipeline.Ask(context.Background(), profileName, text, func(r pipeline.Reply) {
		h.followupEmbed(s, i, r)
	})
	if err != nil {
		h.followupError(s, i, err)
	}
}

func (h *Handler) handleAskWithVoice(s *discordgo.Session, i *discordgo.InteractionCreate) {
	profileName := optionString(i, "profile")

	if _, err := h.registry.Get(profileName); err != nil {
		h.respondText(s, i, fmt.Sprintf("Profile %s does not exist. Available profiles: %s",
			profileName, strings.Join(h.registry.Names(), ", ")))
		return
	}
	if err := h.ensureVoiceConnection(s, i); err != nil {
		h.respondText(s, i, "You need to be in a voice channel to use this command.")
		return
	}

	if err := h.pipeline.StartVoiceAsk(profileName); err != nil {
		h.respondError(s, i, err)
		return
	}

	h.respondText(s, i, "Started recording!")
}

func (h *Handler) handleStopRecording(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.voice.Recording() {
		h.respondText(s, i, "No recording in progress.")
		return
	}

	if err := h.deferResponse(s, i); err != nil {
		return
	}

	err := h.pipeline.FinishVoiceAsk(context.Background(), func(r pipeline.Reply) {
		h.followupEmbed(s, i, r)
	})
	if err != nil {
		h.followupError(s, i, err)
	}
}

// ensureVoiceConnection joins the caller's voice channel when the bot is
// not connected yet.
func (h *Handler) ensureVoiceConnection(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if h.voice.Connected() {
		return nil
	}
	channelID, err := h.callerVoiceChannel(s, i)
	if err != nil {
		return err
	}
	return h.voice.Join(i.GuildID, channelID)
}

// callerVoiceChannel resolves the voice channel the invoking user is in.
func (h *Handler) callerVoiceChannel(s *discordgo.Session, i *discordgo.InteractionCreate) (string, error) {
	if i.Member == nil || i.Member.User == nil {
		return "", apperrors.ErrNotInVoiceChannel
	}
	vs, err := s.State.VoiceState(i.GuildID, i.Member.User.ID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", apperrors.ErrNotInVoiceChannel
	}
	return vs.ChannelID, nil
}

// requestEmbed renders a completed cycle as the transcript embed.
func requestEmbed(r pipeline.Reply) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color: embedColorBlurple,
		Author: &discordgo.MessageEmbedAuthor{
			Name: r.Profile,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Prompt:", Value: r.Question, Inline: false},
			{Name: "Answer:", Value: r.Answer},
		},
	}
}

// userMessage maps an error to the plain text shown in the channel. Internal
// failures stay generic; details go to the log only.
func userMessage(err error) string {
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeBusy):
		return "A request is currently in progress! Ask again later."
	case apperrors.IsUserFacing(err):
		return err.Error()
	case apperrors.IsErrorType(err, apperrors.ErrorTypeTranscription):
		return "I could not understand the recording. Please try again."
	default:
		return "Something went wrong while answering. Please try again."
	}
}

func (h *Handler) respondText(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: msg},
	})
	if err != nil {
		h.logger.Warn("Failed to respond to interaction", zap.Error(err))
	}
}

func (h *Handler) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	h.logger.Error("Command failed", zap.Error(err))
	h.respondText(s, i, userMessage(err))
}

func (h *Handler) deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		h.logger.Warn("Failed to defer interaction response", zap.Error(err))
	}
	return err
}

func (h *Handler) followupEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, r pipeline.Reply) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{requestEmbed(r)},
	})
	if err != nil {
		h.logger.Warn("Failed to send transcript embed", zap.Error(err))
	}
}

func (h *Handler) followupError(s *discordgo.Session, i *discordgo.InteractionCreate, cmdErr error) {
	h.logger.Error("Command failed", zap.Error(cmdErr))
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: userMessage(cmdErr),
	})
	if err != nil {
		h.logger.Warn("Failed to send error followup", zap.Error(err))
	}
}

// optionString returns the named string option of the command, or "".
func optionString(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}
