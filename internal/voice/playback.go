package voice

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// Play decodes the audio artifact at path and streams it into the voice
// channel. done fires exactly once when playback finishes or fails; the
// caller uses it to delete the artifact and release the admission gate, so
// the gate is held for the whole audible response.
func (m *Manager) Play(path string, done func(error)) error {
	conn, err := m.connection()
	if err != nil {
		return err
	}

	go func() {
		done(m.stream(conn, path))
	}()
	return nil
}

func (m *Manager) stream(conn *discordgo.VoiceConnection, path string) error {
	// ffmpeg re-encodes the mp3 as OGG/Opus on stdout; the pages are parsed
	// here and the raw Opus packets handed to Discord
	cmd := exec.Command(m.ffmpegPath,
		"-i", path,
		"-ac", "2",
		"-ar", "48000",
		"-f", "ogg",
		"-c:a", "libopus",
		"-b:a", "64k",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeVoice, "failed to open ffmpeg pipe", err)
	}
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeVoice, "failed to start ffmpeg", err)
	}
	defer cmd.Wait()
	defer cmd.Process.Kill()

	if err := conn.Speaking(true); err != nil {
		m.logger.Warn("Failed to set speaking state", zap.Error(err))
	}
	defer func() {
		if err := conn.Speaking(false); err != nil {
			m.logger.Warn("Failed to clear speaking state", zap.Error(err))
		}
	}()

	packets := 0
	err = readOggPackets(stdout, func(packet []byte) {
		packets++
		// The first two stream packets are OpusHead/OpusTags, not audio
		if packets <= 2 {
			return
		}
		conn.OpusSend <- packet
	})
	if err != nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeVoice, "playback stream failed", err)
	}

	m.logger.Debug("Playback finished",
		zap.String("path", path),
		zap.Int("packets", packets),
	)
	return nil
}

// readOggPackets walks the Ogg pages on r and calls emit for every packet
// assembled from the lacing table. Packets spanning pages are stitched
// together through continuation segments.
func readOggPackets(r io.Reader, emit func([]byte)) error {
	var packet []byte
	header := make([]byte, 27)

	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return err
		}
		if string(header[0:4]) != "OggS" {
			return fmt.Errorf("invalid OGG capture pattern")
		}

		segCount := int(header[26])
		if segCount == 0 {
			continue
		}

		segTable := make([]byte, segCount)
		if _, err := io.ReadFull(r, segTable); err != nil {
			return err
		}

		for _, segLen := range segTable {
			if segLen > 0 {
				segData := make([]byte, segLen)
				if _, err := io.ReadFull(r, segData); err != nil {
					return err
				}
				packet = append(packet, segData...)
			}
			// A lacing value below 255 terminates the packet
			if segLen < 255 {
				if len(packet) > 0 {
					out := make([]byte, len(packet))
					copy(out, packet)
					emit(out)
				}
				packet = packet[:0]
			}
		}
	}
}
