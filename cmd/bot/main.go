package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/internal/adapter"
	"github.com/Snekussaurier/Yellpepper/internal/discord"
	"github.com/Snekussaurier/Yellpepper/internal/gate"
	"github.com/Snekussaurier/Yellpepper/internal/pipeline"
	"github.com/Snekussaurier/Yellpepper/internal/profile"
	"github.com/Snekussaurier/Yellpepper/internal/session"
	"github.com/Snekussaurier/Yellpepper/internal/tokens"
	"github.com/Snekussaurier/Yellpepper/internal/voice"
	"github.com/Snekussaurier/Yellpepper/internal/web"
	"github.com/Snekussaurier/Yellpepper/pkg/config"
	"github.com/Snekussaurier/Yellpepper/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config document")
	flag.Parse()

	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting voice assistant bot...")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Load character profiles
	registry, err := profile.Load(cfg.ProfilesPath)
	if err != nil {
		log.Fatal("Failed to load character profiles", zap.Error(err))
	}
	log.Info("Character profiles loaded", zap.Strings("profiles", registry.Names()))

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}

	// Wire the pipeline and its collaborators
	estimator := tokens.NewEstimator(cfg.ModelID)
	conv := session.New(estimator)
	admission := gate.New()
	llm := adapter.NewLLMAdapter(cfg.OpenAIAPIKey, cfg.ModelID)
	stt := adapter.NewWhisperTranscriber(cfg.OpenAIAPIKey)
	tts := adapter.NewElevenLabsSynthesizer(cfg.ElevenLabsAPIKey)
	voiceManager := voice.NewManager(dg, cfg.FFmpegLocation)
	pl := pipeline.New(registry, conv, admission, llm, stt, tts, voiceManager, cfg.TokenBudget)

	handler := discord.NewHandler(pl, registry, voiceManager, log)

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("Logged in", zap.String("user", r.User.Username))
	})
	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		handler.HandleInteraction(s, i)
	})

	// Guild and voice state intents are required for voice connections
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildVoiceStates

	// Open connection
	if err := dg.Open(); err != nil {
		log.Fatal("Failed to open Discord connection", zap.Error(err))
	}
	defer dg.Close()

	// Register slash commands
	commands := discord.Commands(registry.Names())
	for _, cmd := range commands {
		if _, err := dg.ApplicationCommandCreate(dg.State.User.ID, "", cmd); err != nil {
			log.Fatal("Failed to register slash command",
				zap.String("command", cmd.Name),
				zap.Error(err),
			)
		}
	}
	log.Info("Slash commands registered", zap.Int("count", len(commands)))

	// Status surface
	statusServer := web.NewServer(registry, pl, voiceManager, cfg.IsProduction(), log)
	go func() {
		if err := statusServer.Run(":" + cfg.Port); err != nil {
			log.Error("Status server stopped", zap.Error(err))
		}
	}()

	log.Info("Bot is running. Press CTRL-C to exit.")

	// Wait for interrupt signal
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-shutdownChan

	log.Info("Shutting down...")
	if voiceManager.Connected() {
		if err := voiceManager.Leave(); err != nil {
			log.Warn("Failed to leave voice channel on shutdown", zap.Error(err))
		}
	}
}
