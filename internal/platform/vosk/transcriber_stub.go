//go:build !vosk

package vosk

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/parrot/internal/session"
)

// Available reports whether Vosk is compiled in.
func Available() bool { return false }

// Transcriber is a placeholder that never recognizes anything.
type Transcriber struct{}

// New returns ErrUnavailable when Vosk is not built in.
func New(feed AudioFeed, models map[string]string, sampleRate int, logger *slog.Logger) (*Transcriber, error) {
	return nil, ErrUnavailable
}

func (t *Transcriber) Available() bool { return false }

func (t *Transcriber) Start(context.Context, string) (<-chan session.TranscriptEvent, error) {
	return nil, ErrUnavailable
}

func (t *Transcriber) Stop() error { return nil }

func (t *Transcriber) Close() error { return nil }
