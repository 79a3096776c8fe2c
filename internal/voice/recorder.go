package voice

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/Snekussaurier/Yellpepper/pkg/errors"
)

// recorder drains Opus packets from the voice connection until stopped.
// Frame boundaries are kept so the capture can be written out as a valid
// Ogg/Opus stream.
type recorder struct {
	mu     sync.Mutex
	frames [][]byte
	stop   chan struct{}
	group  *errgroup.Group
}

// StartCapture begins recording the voice channel. Only one capture can be
// active at a time.
func (m *Manager) StartCapture() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return apperrors.ErrNotInVoiceChannel
	}
	if m.recorder != nil {
		return apperrors.NewBaseError(apperrors.ErrorTypeVoice, "a recording is already in progress", nil)
	}

	rec := &recorder{
		stop:  make(chan struct{}),
		group: &errgroup.Group{},
	}

	conn := m.conn
	rec.group.Go(func() error {
		for {
			select {
			case <-rec.stop:
				return nil
			case packet, ok := <-conn.OpusRecv:
				if !ok {
					return nil
				}
				frame := make([]byte, len(packet.Opus))
				copy(frame, packet.Opus)
				rec.mu.Lock()
				rec.frames = append(rec.frames, frame)
				rec.mu.Unlock()
			}
		}
	})

	m.recorder = rec
	m.logger.Info("Started voice capture")
	return nil
}

// Recording reports whether a capture is in progress.
func (m *Manager) Recording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recorder != nil
}

// StopCapture ends the recording and writes the captured audio into a
// uniquely named Ogg/Opus temp file. The caller owns the returned file.
func (m *Manager) StopCapture() (string, error) {
	m.mu.Lock()
	rec := m.recorder
	m.recorder = nil
	m.mu.Unlock()

	if rec == nil {
		return "", apperrors.ErrNotRecording
	}

	close(rec.stop)
	if err := rec.group.Wait(); err != nil {
		return "", apperrors.NewBaseError(apperrors.ErrorTypeVoice, "capture loop failed", err)
	}

	rec.mu.Lock()
	frames := rec.frames
	rec.mu.Unlock()

	if len(frames) == 0 {
		return "", apperrors.NewTranscriptionFailed("", apperrors.NewBaseError(apperrors.ErrorTypeTranscription, "no audio captured", nil))
	}

	path := filepath.Join(os.TempDir(), uuid.NewString()+".ogg")
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.NewBaseError(apperrors.ErrorTypeVoice, "failed to create capture file", err)
	}

	w := newOggWriter(f)
	// Discord delivers stereo frames
	err = w.writeHeaders(2)
	if err == nil {
		err = w.writeFrames(frames, true)
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", apperrors.NewBaseError(apperrors.ErrorTypeVoice, "failed to write capture file", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", apperrors.NewBaseError(apperrors.ErrorTypeVoice, "failed to close capture file", err)
	}

	m.logger.Info("Stopped voice capture",
		zap.Int("frames", len(frames)),
		zap.String("path", path),
	)
	return path, nil
}
