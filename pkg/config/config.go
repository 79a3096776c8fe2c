package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	// Discord
	BotToken string `yaml:"bot_token"`

	// Codec tooling (mp3 decode and opus capture handling)
	FFmpegLocation string `yaml:"ffmpeg_location"`

	// External services
	OpenAIAPIKey     string `yaml:"openai_api_key"`
	ElevenLabsAPIKey string `yaml:"eleven_labs_api_key"`

	// Chat model
	ModelID     string `yaml:"model_id"`
	TokenBudget int    `yaml:"token_budget"`

	// Character profiles
	ProfilesPath string `yaml:"profiles_path"`
}

// Load reads the YAML config document at path. Values in the document may
// reference environment variables as ${VAR}; a .env file is loaded first
// when present.
func Load(path string) (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigLoadFailed(path, err)
	}

	cfg := &Config{
		Env:            "development",
		Port:           "8080",
		FFmpegLocation: "ffmpeg",
		ModelID:        "gpt-3.5-turbo",
		TokenBudget:    8000,
		ProfilesPath:   "character_profiles.yaml",
	}

	expanded := os.Expand(string(raw), os.Getenv)
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, apperrors.NewConfigLoadFailed(path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return apperrors.NewConfigMissingRequired("bot_token")
	}
	if c.OpenAIAPIKey == "" {
		return apperrors.NewConfigMissingRequired("openai_api_key")
	}
	if c.ElevenLabsAPIKey == "" {
		return apperrors.NewConfigMissingRequired("eleven_labs_api_key")
	}
	if c.TokenBudget <= 0 {
		return apperrors.NewConfigMissingRequired("token_budget")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
