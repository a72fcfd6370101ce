//go:build !portaudio

package portaudio

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/parrot/internal/session"
)

// Available reports whether PortAudio capture is compiled in.
func Available() bool { return false }

// Capturer is a placeholder that never grants the microphone.
type Capturer struct{}

// NewCapturer returns ErrUnavailable when PortAudio is not built in.
func NewCapturer(sampleRate int, logger *slog.Logger) (*Capturer, error) {
	return nil, ErrUnavailable
}

func (c *Capturer) Available() bool { return false }

func (c *Capturer) Acquire(context.Context) (session.Capture, error) {
	return nil, ErrUnavailable
}

func (c *Capturer) Subscribe() <-chan []byte { return nil }

func (c *Capturer) Close() error { return nil }
