package voice

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/pkg/logger"
	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// Manager owns the bot's single voice connection. It is established lazily
// on the first join and reused across requests; the admission gate upstream
// guarantees playback and capture never overlap.
type Manager struct {
	mu         sync.Mutex
	dg         *discordgo.Session
	conn       *discordgo.VoiceConnection
	recorder   *recorder
	ffmpegPath string
	logger     *zap.Logger
}

// NewManager creates a manager bound to the Discord session. ffmpegPath is
// the codec binary used to decode synthesized audio for playback.
func NewManager(dg *discordgo.Session, ffmpegPath string) *Manager {
	return &Manager{
		dg:         dg,
		ffmpegPath: ffmpegPath,
		logger:     logger.Get(),
	}
}

// Join connects to the given voice channel. Joining while already connected
// is a no-op.
func (m *Manager) Join(guildID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return nil
	}

	// deaf=false so the connection can capture audio for voice questions
	conn, err := m.dg.ChannelVoiceJoin(guildID, channelID, false, false)
	if err != nil {
		return apperrors.NewVoiceConnectFailed(channelID, err)
	}

	m.conn = conn
	m.logger.Info("Joined voice channel",
		zap.String("guild_id", guildID),
		zap.String("channel_id", channelID),
	)
	return nil
}

// Leave disconnects from the current voice channel.
func (m *Manager) Leave() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return apperrors.ErrNotInVoiceChannel
	}

	err := m.conn.Disconnect()
	m.conn = nil
	if err != nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeVoice, "failed to disconnect", err)
	}

	m.logger.Info("Left voice channel")
	return nil
}

// Connected reports whether a voice connection is established.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

func (m *Manager) connection() (*discordgo.VoiceConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil, apperrors.ErrNotInVoiceChannel
	}
	return m.conn, nil
}
